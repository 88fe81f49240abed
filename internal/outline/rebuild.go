package outline

import (
	"fmt"

	"formbuilder/internal/model"
)

type UnknownParentError struct {
	ID       string
	ParentID string
}

func (e *UnknownParentError) Error() string {
	return fmt.Sprintf("item %s references parent %s before it appears", e.ID, e.ParentID)
}

type LeafParentError struct {
	ID       string
	ParentID string
}

func (e *LeafParentError) Error() string {
	return fmt.Sprintf("item %s cannot be placed under leaf %s", e.ID, e.ParentID)
}

// Rebuild turns an ordered flat list back into a forest. Sibling order follows the
// input order; Depth and Index are ignored, only ParentID links are used.
//
// A parent must appear before its children. Violations are logic errors: Rebuild
// returns a nil forest and a typed error so the caller can keep its previous tree.
func Rebuild(items []model.FlatItem) ([]model.Node, error) {
	type slot struct {
		node     model.Node
		children []string
	}
	slots := make(map[string]*slot, len(items))
	var roots []string

	for _, it := range items {
		if _, dup := slots[it.ID]; dup {
			return nil, &model.DuplicateIDError{ID: it.ID}
		}
		if it.ParentID == "" {
			roots = append(roots, it.ID)
		} else {
			parent, ok := slots[it.ParentID]
			if !ok {
				return nil, &UnknownParentError{ID: it.ID, ParentID: it.ParentID}
			}
			if !parent.node.CanHaveChildren {
				return nil, &LeafParentError{ID: it.ID, ParentID: it.ParentID}
			}
			parent.children = append(parent.children, it.ID)
		}
		slots[it.ID] = &slot{node: it.Node.Leaf()}
	}

	var build func(id string) model.Node
	build = func(id string) model.Node {
		s := slots[id]
		n := s.node
		n.Children = make([]model.Node, 0, len(s.children))
		for _, ch := range s.children {
			n.Children = append(n.Children, build(ch))
		}
		return n
	}

	out := make([]model.Node, 0, len(roots))
	for _, id := range roots {
		out = append(out, build(id))
	}
	return out, nil
}
