package outline

import (
	"errors"
	"reflect"
	"testing"

	"formbuilder/internal/model"
)

func page(id string, children ...model.Node) model.Node {
	if children == nil {
		children = []model.Node{}
	}
	return model.Node{ID: id, Label: "Page", Type: model.BlockPage, CanHaveChildren: true, Children: children}
}

func section(id string, children ...model.Node) model.Node {
	if children == nil {
		children = []model.Node{}
	}
	return model.Node{ID: id, Label: "Section", Type: model.BlockSection, CanHaveChildren: true, Children: children}
}

func field(id string) model.Node {
	return model.Node{ID: id, Label: "Text Input", Type: model.BlockTextInput, Children: []model.Node{}}
}

func sampleForest() []model.Node {
	return []model.Node{
		page("P1"),
		page("P2",
			section("S1", field("F1"), field("F2"), field("F3")),
		),
		page("P3", field("F4"), field("F5")),
	}
}

func ids(items []model.FlatItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFlatten_SimpleParentChild(t *testing.T) {
	flat := Flatten([]model.Node{page("P1", section("S1"))})
	if len(flat) != 2 {
		t.Fatalf("expected 2 items, got %d", len(flat))
	}
	if flat[0].ID != "P1" || flat[0].Depth != 0 || flat[0].ParentID != "" {
		t.Fatalf("unexpected root: %+v", flat[0])
	}
	if flat[1].ID != "S1" || flat[1].Depth != 1 || flat[1].ParentID != "P1" {
		t.Fatalf("unexpected child: %+v", flat[1])
	}
}

func TestFlatten_DocumentOrderAndSiblingIndex(t *testing.T) {
	flat := Flatten(sampleForest())
	want := []string{"P1", "P2", "S1", "F1", "F2", "F3", "P3", "F4", "F5"}
	if got := ids(flat); !reflect.DeepEqual(got, want) {
		t.Fatalf("order: got %v want %v", got, want)
	}
	if flat[5].Index != 2 || flat[5].ParentID != "S1" || flat[5].Depth != 2 {
		t.Fatalf("unexpected F3: %+v", flat[5])
	}
	if flat[6].Index != 2 || flat[6].ParentID != "" {
		t.Fatalf("unexpected P3: %+v", flat[6])
	}
}

func TestFlatten_KeepsCollapsedSubtrees(t *testing.T) {
	forest := sampleForest()
	forest[1].Collapsed = true
	if got := len(Flatten(forest)); got != 9 {
		t.Fatalf("expected collapsed subtree to stay in flatten output, got %d items", got)
	}
}

func TestFlatten_DepthNeverJumpsMoreThanOne(t *testing.T) {
	flat := Flatten(sampleForest())
	for i := 1; i < len(flat); i++ {
		if flat[i].Depth > flat[i-1].Depth+1 {
			t.Fatalf("depth jump at %d: %d after %d", i, flat[i].Depth, flat[i-1].Depth)
		}
	}
}

func TestRebuild_RoundTrip(t *testing.T) {
	forest := sampleForest()
	forest[2].Collapsed = true
	got, err := Rebuild(Flatten(forest))
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if !reflect.DeepEqual(got, forest) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, forest)
	}
}

func TestRebuild_EmptyForest(t *testing.T) {
	got, err := Rebuild(nil)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil forest, got %#v", got)
	}
}

func TestRebuild_UnknownParentIsAnError(t *testing.T) {
	flat := Flatten(sampleForest())
	// Move S1 ahead of its parent.
	flat[1], flat[2] = flat[2], flat[1]
	_, err := Rebuild(flat)
	var upe *UnknownParentError
	if !errors.As(err, &upe) {
		t.Fatalf("expected UnknownParentError, got %v", err)
	}
	if upe.ID != "S1" || upe.ParentID != "P2" {
		t.Fatalf("unexpected error payload: %+v", upe)
	}
}

func TestRebuild_LeafParentIsAnError(t *testing.T) {
	flat := Flatten([]model.Node{field("F1"), field("F2")})
	flat[1].ParentID = "F1"
	_, err := Rebuild(flat)
	var lpe *LeafParentError
	if !errors.As(err, &lpe) {
		t.Fatalf("expected LeafParentError, got %v", err)
	}
}

func TestRebuild_DuplicateIDIsAnError(t *testing.T) {
	flat := Flatten([]model.Node{field("F1"), field("F2")})
	flat[1].ID = "F1"
	_, err := Rebuild(flat)
	var dup *model.DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIDError, got %v", err)
	}
}

func TestRemoveChildrenOf_RemovesAllDescendantsOnly(t *testing.T) {
	flat := Flatten(sampleForest())
	got := ids(RemoveChildrenOf(flat, []string{"P2"}))
	want := []string{"P1", "P2", "P3", "F4", "F5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestRemoveChildrenOf_NestedCollapseSet(t *testing.T) {
	flat := Flatten(sampleForest())
	got := ids(RemoveChildrenOf(flat, []string{"P2", "S1", "P3"}))
	want := []string{"P1", "P2", "P3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestRemoveChildrenOf_UnknownIDIsHarmless(t *testing.T) {
	flat := Flatten(sampleForest())
	if got := RemoveChildrenOf(flat, []string{"nope"}); len(got) != len(flat) {
		t.Fatalf("expected nothing removed, got %d of %d", len(got), len(flat))
	}
}

func TestVisible_HidesCollapsedWithChildren(t *testing.T) {
	forest := sampleForest()
	forest[0].Collapsed = true // no children: nothing to hide
	forest[1].Children[0].Collapsed = true
	got := ids(Visible(forest))
	want := []string{"P1", "P2", "S1", "P3", "F4", "F5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestProject_DragChildToRootAfterParent(t *testing.T) {
	items := Flatten([]model.Node{page("P1", section("S1"))})
	p, ok := Project(items, "S1", "P1", 0, 50)
	if !ok {
		t.Fatalf("expected projection")
	}
	if p.Depth != 0 || p.ParentID != "" {
		t.Fatalf("expected root placement, got %+v", p)
	}
}

func TestProject_NeverNestsUnderLeaf(t *testing.T) {
	items := Visible(sampleForest(), "F5")
	// F4 is a leaf at depth 1; dragging far right must still be a sibling.
	p, ok := Project(items, "F5", "F4", 500, 50)
	if !ok {
		t.Fatalf("expected projection")
	}
	if p.MaxDepth != 1 || p.Depth != 1 || p.ParentID != "P3" {
		t.Fatalf("expected sibling of F4 under P3, got %+v", p)
	}
}

func TestProject_NestsUnderContainerWhenDraggedRight(t *testing.T) {
	items := Visible(sampleForest(), "P3")
	p, ok := Project(items, "P3", "P1", 50, 50)
	if !ok {
		t.Fatalf("expected projection")
	}
	if p.Depth != 1 || p.ParentID != "P1" {
		t.Fatalf("expected child of P1, got %+v", p)
	}
}

func TestProject_MinDepthFromFollowingItem(t *testing.T) {
	items := Visible(sampleForest(), "P1")
	// Inserting after S1 (depth 1) with F1 (depth 2) following: must become a child of S1.
	p, ok := Project(items, "P1", "S1", -500, 50)
	if !ok {
		t.Fatalf("expected projection")
	}
	if p.MinDepth != 2 || p.Depth != 2 || p.ParentID != "S1" {
		t.Fatalf("expected child of S1, got %+v", p)
	}
}

func TestProject_LeftDragResolvesAncestor(t *testing.T) {
	items := Visible(sampleForest(), "F4")
	// After F3 (depth 2, last of S1) with P3 following at depth 0.
	p, ok := Project(items, "F4", "F3", -50, 50)
	if !ok {
		t.Fatalf("expected projection")
	}
	if p.Depth != 1 || p.ParentID != "P2" {
		t.Fatalf("expected sibling of S1 under P2, got %+v", p)
	}
}

func TestProject_InvalidInputs(t *testing.T) {
	items := Visible(sampleForest())
	cases := []struct {
		name         string
		active, over string
		indentation  int
	}{
		{"same item", "F1", "F1", 50},
		{"missing active", "nope", "F1", 50},
		{"missing over", "F1", "nope", 50},
		{"empty over", "F1", "", 50},
		{"zero indentation", "F1", "F2", 0},
	}
	for _, tc := range cases {
		if _, ok := Project(items, tc.active, tc.over, 0, tc.indentation); ok {
			t.Fatalf("%s: expected no projection", tc.name)
		}
	}
}

func TestProject_BoundsAndParentDepthHoldEverywhere(t *testing.T) {
	items := Visible(sampleForest())
	for _, active := range items {
		list := Visible(sampleForest(), active.ID)
		for _, over := range list {
			for _, offset := range []float64{-200, -75, -25, 0, 24, 25, 26, 75, 200} {
				p, ok := Project(list, active.ID, over.ID, offset, 50)
				if active.ID == over.ID {
					if ok {
						t.Fatalf("active==over must not project")
					}
					continue
				}
				if !ok {
					t.Fatalf("expected projection for %s over %s", active.ID, over.ID)
				}
				if p.Depth > p.MaxDepth {
					t.Fatalf("%s over %s: depth %d above max %d", active.ID, over.ID, p.Depth, p.MaxDepth)
				}
				if p.MinDepth <= p.MaxDepth && p.Depth < p.MinDepth {
					t.Fatalf("%s over %s: depth %d below min %d", active.ID, over.ID, p.Depth, p.MinDepth)
				}
				if p.Depth == 0 {
					if p.ParentID != "" {
						t.Fatalf("root projection must not carry a parent: %+v", p)
					}
					continue
				}
				pi := IndexOf(list, p.ParentID)
				if pi < 0 {
					t.Fatalf("parent %q not in list", p.ParentID)
				}
				if list[pi].Depth != p.Depth-1 {
					t.Fatalf("parent depth %d, projected depth %d", list[pi].Depth, p.Depth)
				}
				if !list[pi].CanHaveChildren {
					t.Fatalf("parent %s cannot have children", p.ParentID)
				}
			}
		}
	}
}

func TestDragDepth_RoundsHalfUp(t *testing.T) {
	cases := map[float64]int{0: 0, 24: 0, 25: 1, 74: 1, 75: 2, -24: 0, -25: 0, -26: -1, -75: -1}
	for offset, want := range cases {
		if got := DragDepth(offset, 50); got != want {
			t.Fatalf("DragDepth(%v): got %d want %d", offset, got, want)
		}
	}
}

func TestSubtreeEnd(t *testing.T) {
	flat := Flatten(sampleForest())
	if got := SubtreeEnd(flat, IndexOf(flat, "P2")); got != IndexOf(flat, "P3") {
		t.Fatalf("unexpected subtree end for P2: %d", got)
	}
	if got := SubtreeEnd(flat, IndexOf(flat, "F5")); got != len(flat) {
		t.Fatalf("unexpected subtree end for F5: %d", got)
	}
}
