package outline

import "formbuilder/internal/model"

// Flatten linearizes the forest in pre-order (document order). Collapsed subtrees are
// kept; hide them with RemoveChildrenOf.
func Flatten(forest []model.Node) []model.FlatItem {
	var out []model.FlatItem
	var walk func(nodes []model.Node, parentID string, depth int)
	walk = func(nodes []model.Node, parentID string, depth int) {
		for i, n := range nodes {
			out = append(out, model.FlatItem{
				Node:     n.Clone(),
				ParentID: parentID,
				Depth:    depth,
				Index:    i,
			})
			walk(n.Children, n.ID, depth+1)
		}
	}
	walk(forest, "", 0)
	return out
}

// CollapsedIDs returns the ids of collapsed items that actually hide something.
func CollapsedIDs(items []model.FlatItem) []string {
	var out []string
	for _, it := range items {
		if it.Collapsed && len(it.Children) > 0 {
			out = append(out, it.ID)
		}
	}
	return out
}

// RemoveChildrenOf drops every item that descends from one of ids. The listed items
// themselves stay in the result.
func RemoveChildrenOf(items []model.FlatItem, ids []string) []model.FlatItem {
	if len(ids) == 0 {
		return append([]model.FlatItem(nil), items...)
	}
	hidden := make(map[string]bool, len(ids))
	for _, id := range ids {
		hidden[id] = true
	}

	// Parents precede children, so a single pass sees every ancestor first.
	removed := map[string]bool{}
	out := make([]model.FlatItem, 0, len(items))
	for _, it := range items {
		if it.ParentID != "" && (hidden[it.ParentID] || removed[it.ParentID]) {
			removed[it.ID] = true
			continue
		}
		out = append(out, it)
	}
	return out
}

// Visible flattens the forest and hides the contents of collapsed items plus the
// descendants of any extra ids (typically the item being dragged).
func Visible(forest []model.Node, extra ...string) []model.FlatItem {
	flat := Flatten(forest)
	ids := append(append([]string(nil), extra...), CollapsedIDs(flat)...)
	return RemoveChildrenOf(flat, ids)
}

// IndexOf returns the position of id in items, or -1.
func IndexOf(items []model.FlatItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// SubtreeEnd returns the index one past the last descendant of items[i].
func SubtreeEnd(items []model.FlatItem, i int) int {
	if i < 0 || i >= len(items) {
		return i
	}
	depth := items[i].Depth
	j := i + 1
	for j < len(items) && items[j].Depth > depth {
		j++
	}
	return j
}
