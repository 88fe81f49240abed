package outline

import (
	"math"

	"formbuilder/internal/model"
)

// Projection is where the active item would land if dropped now.
type Projection struct {
	Depth    int    `json:"depth"`
	MinDepth int    `json:"minDepth"`
	MaxDepth int    `json:"maxDepth"`
	ParentID string `json:"parentId,omitempty"`
}

// DragDepth converts a horizontal pointer offset into whole indentation steps,
// rounding halves toward positive infinity.
func DragDepth(offset float64, indentationWidth int) int {
	if indentationWidth <= 0 {
		return 0
	}
	return int(math.Floor(offset/float64(indentationWidth) + 0.5))
}

// Project computes the legal depth and parent for activeID if it were removed from
// items and reinserted directly after overID, shifted by offset pixels.
//
// items should already hide collapsed subtrees and the active item's descendants
// (see Visible). The active item itself may still be present; it is skipped.
// ok is false when active and over are the same item, when either is missing, or
// when indentationWidth is not positive.
func Project(items []model.FlatItem, activeID, overID string, offset float64, indentationWidth int) (Projection, bool) {
	if activeID == "" || overID == "" || activeID == overID || indentationWidth <= 0 {
		return Projection{}, false
	}
	if IndexOf(items, activeID) < 0 {
		return Projection{}, false
	}

	rest := make([]model.FlatItem, 0, len(items))
	for _, it := range items {
		if it.ID != activeID {
			rest = append(rest, it)
		}
	}
	overIdx := IndexOf(rest, overID)
	if overIdx < 0 {
		return Projection{}, false
	}

	prev := rest[overIdx]
	maxDepth := prev.Depth
	if prev.CanHaveChildren {
		maxDepth++
	}
	minDepth := 0
	if overIdx+1 < len(rest) {
		minDepth = rest[overIdx+1].Depth
	}

	depth := prev.Depth + DragDepth(offset, indentationWidth)
	// Upper bound wins a conflict so a leaf never becomes a parent.
	if depth < minDepth {
		depth = minDepth
	}
	if depth > maxDepth {
		depth = maxDepth
	}
	if depth < 0 {
		depth = 0
	}

	p := Projection{Depth: depth, MinDepth: minDepth, MaxDepth: maxDepth}
	if depth == 0 {
		return p, true
	}
	for i := overIdx; i >= 0; i-- {
		if rest[i].Depth == depth-1 {
			p.ParentID = rest[i].ID
			return p, true
		}
	}
	// Unreachable for well-formed lists: depth <= prev.Depth+1 guarantees an ancestor.
	p.Depth = 0
	return p, true
}
