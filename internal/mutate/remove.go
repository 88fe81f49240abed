package mutate

import (
	"strings"

	"formbuilder/internal/model"
)

// RemoveSubtree excises the node with the given id together with all of its descendants.
func RemoveSubtree(forest []model.Node, id string) Result {
	id = strings.TrimSpace(id)
	if id == "" {
		return Result{Tree: model.CloneForest(forest)}
	}
	out, removed := removeFrom(forest, id)
	return Result{Tree: out, Changed: removed}
}

func removeFrom(nodes []model.Node, id string) ([]model.Node, bool) {
	out := make([]model.Node, 0, len(nodes))
	removed := false
	for _, n := range nodes {
		if !removed && n.ID == id {
			removed = true
			continue
		}
		c := n
		var childRemoved bool
		c.Children, childRemoved = removeFrom(n.Children, id)
		removed = removed || childRemoved
		out = append(out, c)
	}
	return out, removed
}
