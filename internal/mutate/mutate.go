// Package mutate holds small pure edits over the block forest. Every helper returns a
// new forest; the input is never modified. Unknown ids are a no-op.
package mutate

import (
	"strings"

	"formbuilder/internal/model"
)

type Result struct {
	Tree    []model.Node
	Changed bool
}

// Update applies fn to the node with the given id in a copy of forest.
func Update(forest []model.Node, id string, fn func(n *model.Node)) Result {
	id = strings.TrimSpace(id)
	out := model.CloneForest(forest)
	if id == "" || fn == nil {
		return Result{Tree: out}
	}
	n := findPtr(out, id)
	if n == nil {
		return Result{Tree: out}
	}
	before := n.Clone()
	fn(n)
	return Result{Tree: out, Changed: !equalShallow(before, *n)}
}

// Find returns a copy of the node with the given id.
func Find(forest []model.Node, id string) (model.Node, bool) {
	for _, n := range forest {
		if n.ID == id {
			return n.Clone(), true
		}
		if got, ok := Find(n.Children, id); ok {
			return got, true
		}
	}
	return model.Node{}, false
}

func findPtr(nodes []model.Node, id string) *model.Node {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
		if got := findPtr(nodes[i].Children, id); got != nil {
			return got
		}
	}
	return nil
}

func equalShallow(a, b model.Node) bool {
	return a.ID == b.ID &&
		a.Label == b.Label &&
		a.Type == b.Type &&
		a.CanHaveChildren == b.CanHaveChildren &&
		a.Collapsed == b.Collapsed &&
		a.IsConstructor == b.IsConstructor &&
		len(a.Children) == len(b.Children)
}
