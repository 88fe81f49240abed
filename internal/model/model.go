package model

import "fmt"

type BlockType string

const (
	BlockPage           BlockType = "Page"
	BlockSection        BlockType = "Section"
	BlockFieldGroup     BlockType = "Field group"
	BlockTextInput      BlockType = "Text Input"
	BlockTextBlock      BlockType = "Text Block"
	BlockCountry        BlockType = "Country"
	BlockSingleChoice   BlockType = "Single Choice"
	BlockMultipleChoice BlockType = "Multiple Choice"
)

// IsContainer reports whether blocks of this type may hold children.
// Unknown types are treated as leaves.
func (t BlockType) IsContainer() bool {
	switch t {
	case BlockPage, BlockSection, BlockFieldGroup:
		return true
	default:
		return false
	}
}

// Container tags the list a draggable lives in.
type Container string

const (
	ContainerPalette Container = "palette"
	ContainerTree    Container = "tree"
)

// Node is one block in the persisted outline.
type Node struct {
	ID              string    `json:"id"`
	Label           string    `json:"label"`
	Type            BlockType `json:"type"`
	CanHaveChildren bool      `json:"canHaveChildren"`
	Collapsed       bool      `json:"collapsed,omitempty"`

	// IsConstructor marks a palette template that has not been dropped yet.
	// Finalizing the drop assigns a fresh id and clears the flag.
	IsConstructor bool `json:"isConstructor,omitempty"`

	Children []Node `json:"children"`
}

// FlatItem is a Node positioned in the pre-order linearization of a forest.
// Children is kept so callers can tell whether a collapsed item hides anything.
type FlatItem struct {
	Node
	ParentID string `json:"parentId,omitempty"`
	Depth    int    `json:"depth"`
	Index    int    `json:"index"`
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	out := n
	out.Children = CloneForest(n.Children)
	return out
}

// CloneForest returns a deep copy of nodes. A nil input yields an empty, non-nil slice
// so JSON output stays `[]`.
func CloneForest(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Clone())
	}
	return out
}

// Leaf returns n without its children, the shape Rebuild starts from.
func (n Node) Leaf() Node {
	out := n
	out.Children = []Node{}
	return out
}

type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate node id: %s", e.ID)
}

type LeafChildrenError struct {
	ID string
}

func (e *LeafChildrenError) Error() string {
	return fmt.Sprintf("node %s cannot have children", e.ID)
}

type EmptyIDError struct {
	Label string
}

func (e *EmptyIDError) Error() string {
	return fmt.Sprintf("node %q has an empty id", e.Label)
}

// Validate checks the forest invariants: non-empty unique ids and no children under
// nodes that cannot have them.
func Validate(forest []Node) error {
	seen := map[string]bool{}
	var walk func(nodes []Node) error
	walk = func(nodes []Node) error {
		for _, n := range nodes {
			if n.ID == "" {
				return &EmptyIDError{Label: n.Label}
			}
			if seen[n.ID] {
				return &DuplicateIDError{ID: n.ID}
			}
			seen[n.ID] = true
			if !n.CanHaveChildren && len(n.Children) > 0 {
				return &LeafChildrenError{ID: n.ID}
			}
			if err := walk(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(forest)
}

// ReservedIDError reports a block whose id belongs to a palette template.
type ReservedIDError struct {
	ID string
}

func (e *ReservedIDError) Error() string {
	return fmt.Sprintf("block id %s is reserved by a palette template", e.ID)
}

// CheckReserved returns a *ReservedIDError for the first id in the forest that
// reserved reports as taken.
func CheckReserved(forest []Node, reserved func(id string) bool) error {
	for _, id := range IDs(forest) {
		if reserved(id) {
			return &ReservedIDError{ID: id}
		}
	}
	return nil
}

// IDs returns every id in the forest in pre-order.
func IDs(forest []Node) []string {
	var out []string
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			out = append(out, n.ID)
			walk(n.Children)
		}
	}
	walk(forest)
	return out
}

// Contains reports whether id appears anywhere in the forest.
func Contains(forest []Node, id string) bool {
	for _, n := range forest {
		if n.ID == id || Contains(n.Children, id) {
			return true
		}
	}
	return false
}
