package mutate

import "formbuilder/internal/model"

// ChildCount returns the number of transitive descendants of id. Unknown ids and
// leaves count 0.
func ChildCount(forest []model.Node, id string) int {
	n, ok := Find(forest, id)
	if !ok {
		return 0
	}
	return countDescendants(n.Children)
}

func countDescendants(nodes []model.Node) int {
	total := 0
	for _, n := range nodes {
		total += 1 + countDescendants(n.Children)
	}
	return total
}
