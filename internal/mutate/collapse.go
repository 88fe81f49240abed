package mutate

import "formbuilder/internal/model"

// SetCollapsed sets the collapsed flag of one node.
func SetCollapsed(forest []model.Node, id string, collapsed bool) Result {
	return Update(forest, id, func(n *model.Node) {
		n.Collapsed = collapsed
	})
}

// ToggleCollapsed flips the collapsed flag of one node.
func ToggleCollapsed(forest []model.Node, id string) Result {
	return Update(forest, id, func(n *model.Node) {
		n.Collapsed = !n.Collapsed
	})
}
