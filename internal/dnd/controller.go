// Package dnd reconciles a single drag gesture against the block outline: it tracks the
// active item and pointer offset, keeps a live projection of where the item would land,
// and commits or discards the structural change when the gesture ends.
//
// A Controller is not safe for concurrent use. Hosts feed it events from one goroutine.
package dnd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"formbuilder/internal/ids"
	"formbuilder/internal/model"
	"formbuilder/internal/mutate"
	"formbuilder/internal/outline"
	"formbuilder/internal/palette"
)

const (
	DefaultIndentationWidth = 50
	// DefaultPaletteBaseline is the horizontal distance between the palette column and
	// the outline's first indentation level.
	DefaultPaletteBaseline = 79

	maxIDAttempts = 16
)

var (
	ErrNotDragging     = errors.New("no drag gesture in progress")
	ErrAlreadyDragging = errors.New("a drag gesture is already in progress")
	ErrMissingIDs      = errors.New("dnd: an id generator is required")
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseDropping
	PhaseCancelling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseDropping:
		return "dropping"
	case PhaseCancelling:
		return "cancelling"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type Outcome int

const (
	// OutcomeUpdated: transient drag state changed; the committed tree did not.
	OutcomeUpdated Outcome = iota
	OutcomeCommitted
	OutcomeCancelled
	OutcomeNoop
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpdated:
		return "updated"
	case OutcomeCommitted:
		return "committed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeNoop:
		return "noop"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

type Result struct {
	Outcome Outcome      `json:"outcome"`
	Tree    []model.Node `json:"tree"`
}

type Options struct {
	IndentationWidth int
	// Baselines maps the container a gesture starts in to the pointer offset that
	// corresponds to "no indentation change". Missing entries use the defaults.
	Baselines map[model.Container]float64
	IDs       ids.Generator
	Palette   *palette.Palette
	Logger    *slog.Logger
	// Strict panics on internal invariant violations instead of discarding the drop.
	Strict bool
}

func DefaultBaselines() map[model.Container]float64 {
	return map[model.Container]float64{
		model.ContainerPalette: DefaultPaletteBaseline,
		model.ContainerTree:    0,
	}
}

// State is a read-only snapshot of the transient gesture state.
type State struct {
	Phase           Phase           `json:"-"`
	ActiveID        string          `json:"activeId,omitempty"`
	ActiveContainer model.Container `json:"activeContainer,omitempty"`
	OverID          string          `json:"overId,omitempty"`
	OffsetLeft      float64         `json:"offsetLeft"`
	Provisional     bool            `json:"provisional,omitempty"`
	AnimateLayout   bool            `json:"animateLayout"`
	Grabbing        bool            `json:"grabbing,omitempty"`
}

type Controller struct {
	opts Options
	log  *slog.Logger

	tree     []model.Node
	snapshot []model.Node

	phase           Phase
	activeID        string
	activeContainer model.Container
	overID          string
	offsetLeft      float64
	baseline        float64
	baselineSet     bool
	provisional     bool
	projection      outline.Projection
	hasProjection   bool
	animate         bool
	grabbing        bool
}

// New returns an idle controller owning a copy of forest.
func New(forest []model.Node, opts Options) (*Controller, error) {
	if opts.IDs == nil {
		return nil, ErrMissingIDs
	}
	if err := model.Validate(forest); err != nil {
		return nil, err
	}
	if opts.IndentationWidth <= 0 {
		opts.IndentationWidth = DefaultIndentationWidth
	}
	if opts.Palette == nil {
		opts.Palette = palette.Default()
	}
	if err := model.CheckReserved(forest, opts.Palette.Has); err != nil {
		return nil, err
	}
	base := DefaultBaselines()
	for k, v := range opts.Baselines {
		base[k] = v
	}
	opts.Baselines = base

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		opts:    opts,
		log:     log,
		tree:    model.CloneForest(forest),
		animate: true,
	}, nil
}

// Tree returns a copy of the committed (or, mid-gesture, live) forest.
func (c *Controller) Tree() []model.Node {
	return model.CloneForest(c.tree)
}

// Items returns the flattened list to render: collapsed subtrees are hidden and, while
// dragging, so are the descendants of the active item.
func (c *Controller) Items() []model.FlatItem {
	if c.phase == PhaseDragging && c.activeID != "" {
		return outline.Visible(c.tree, c.activeID)
	}
	return outline.Visible(c.tree)
}

func (c *Controller) Projection() (outline.Projection, bool) {
	return c.projection, c.hasProjection
}

func (c *Controller) State() State {
	return State{
		Phase:           c.phase,
		ActiveID:        c.activeID,
		ActiveContainer: c.activeContainer,
		OverID:          c.overID,
		OffsetLeft:      c.offsetLeft,
		Provisional:     c.provisional,
		AnimateLayout:   c.animate,
		Grabbing:        c.grabbing,
	}
}

func (c *Controller) IndentationWidth() int { return c.opts.IndentationWidth }

// Baseline is the pointer offset meaning "no indentation change" for gestures that
// start in ct.
func (c *Controller) Baseline(ct model.Container) float64 { return c.opts.Baselines[ct] }

func (c *Controller) Palette() *palette.Palette { return c.opts.Palette }

// Active returns the flattened entry of the item being dragged, if it is in the tree.
func (c *Controller) Active() (model.FlatItem, bool) {
	if c.activeID == "" {
		return model.FlatItem{}, false
	}
	flat := outline.Flatten(c.tree)
	i := outline.IndexOf(flat, c.activeID)
	if i < 0 {
		return model.FlatItem{}, false
	}
	return flat[i], true
}

// ActiveChildCount is the number of descendants travelling with the active item.
func (c *Controller) ActiveChildCount() int {
	if c.activeID == "" {
		return 0
	}
	return mutate.ChildCount(c.tree, c.activeID)
}

// Handle applies one gesture event.
func (c *Controller) Handle(ev Event) (Result, error) {
	switch e := ev.(type) {
	case DragStart:
		return c.start(e)
	case DragMove:
		return c.move(e)
	case DragOver:
		return c.over(e)
	case DragEnd:
		return c.end(e)
	case DragCancel:
		return c.cancel()
	default:
		return c.result(OutcomeNoop), &UnknownEventError{Type: fmt.Sprintf("%T", ev)}
	}
}

func (c *Controller) start(e DragStart) (Result, error) {
	if c.phase != PhaseIdle {
		return c.result(OutcomeNoop), ErrAlreadyDragging
	}
	id := strings.TrimSpace(e.ActiveID)
	if id == "" {
		return c.result(OutcomeNoop), errors.New("drag start: missing active id")
	}
	container := e.Container
	if container == "" {
		container = c.containerOf(id)
	}
	switch container {
	case model.ContainerTree:
		if !model.Contains(c.tree, id) {
			return c.result(OutcomeNoop), mutate.NotFoundError{Kind: "block", ID: id}
		}
	case model.ContainerPalette:
		if _, ok := c.opts.Palette.Lookup(id); !ok {
			return c.result(OutcomeNoop), mutate.NotFoundError{Kind: "template", ID: id}
		}
	default:
		return c.result(OutcomeNoop), mutate.NotFoundError{Kind: "draggable", ID: id}
	}

	c.snapshot = model.CloneForest(c.tree)
	c.phase = PhaseDragging
	c.activeID = id
	c.activeContainer = container
	c.animate = false
	c.grabbing = true
	c.log.Debug("drag start", "active", id, "container", container)
	return c.result(OutcomeUpdated), nil
}

func (c *Controller) move(e DragMove) (Result, error) {
	if c.phase != PhaseDragging {
		return c.result(OutcomeNoop), ErrNotDragging
	}
	if !c.baselineSet {
		c.baseline = c.opts.Baselines[c.activeContainer]
		c.baselineSet = true
	}
	c.offsetLeft = e.Delta.X - c.baseline
	c.recompute()
	return c.result(OutcomeUpdated), nil
}

func (c *Controller) over(e DragOver) (Result, error) {
	if c.phase != PhaseDragging {
		return c.result(OutcomeNoop), ErrNotDragging
	}
	if a := strings.TrimSpace(e.ActiveID); a != "" && a != c.activeID {
		return c.result(OutcomeNoop), fmt.Errorf("drag over: active %s does not match gesture item %s", a, c.activeID)
	}
	activeContainer := e.ActiveContainer
	if activeContainer == "" {
		activeContainer = c.activeContainer
	}
	if activeContainer != c.activeContainer {
		return c.result(OutcomeNoop), fmt.Errorf("drag over: active container %s does not match gesture origin %s", activeContainer, c.activeContainer)
	}
	c.overID = strings.TrimSpace(e.OverID)

	overContainer := e.OverContainer
	if overContainer == "" && c.overID != "" {
		overContainer = c.containerOf(c.overID)
	}
	// A template crossing into the outline is spliced in; an empty over id with an
	// explicit tree container means the outline itself (it may have no rows).
	crossing := overContainer != "" && overContainer != activeContainer
	if activeContainer == model.ContainerPalette {
		switch {
		case crossing && overContainer == model.ContainerTree && !c.provisional && !model.Contains(c.tree, c.activeID):
			c.spliceProvisional()
		case !crossing && overContainer == model.ContainerPalette && c.provisional:
			c.tree = model.CloneForest(c.snapshot)
			c.provisional = false
			c.log.Debug("provisional block discarded", "active", c.activeID)
		}
	}
	c.recompute()
	return c.result(OutcomeUpdated), nil
}

// spliceProvisional appends the dragged template to the end of the root forest so the
// projection can treat it as a real neighbor. The next projection fixes its placement.
func (c *Controller) spliceProvisional() {
	tpl, ok := c.opts.Palette.Lookup(c.activeID)
	if !ok {
		return
	}
	c.tree = append(model.CloneForest(c.tree), tpl.Instantiate())
	c.provisional = true
	c.log.Debug("provisional block spliced", "template", tpl.ID, "type", tpl.Type)
}

func (c *Controller) end(e DragEnd) (Result, error) {
	if c.phase != PhaseDragging {
		return c.result(OutcomeNoop), ErrNotDragging
	}
	defer c.reset()
	c.phase = PhaseDropping

	if a := strings.TrimSpace(e.ActiveID); a != "" && a != c.activeID {
		c.tree = c.snapshot
		return c.result(OutcomeNoop), fmt.Errorf("drag end: active %s does not match gesture item %s", a, c.activeID)
	}
	if over := strings.TrimSpace(e.OverID); over != c.overID {
		c.overID = over
		c.recompute()
	}
	if c.overID == "" && c.provisional && len(c.snapshot) == 0 {
		return c.dropIntoEmpty()
	}
	if c.overID == "" || !c.hasProjection {
		c.log.Debug("drop without target", "active", c.activeID)
		c.tree = c.snapshot
		return c.result(OutcomeNoop), nil
	}

	next, err := c.commit()
	if err != nil {
		if c.opts.Strict {
			c.tree = c.snapshot
			panic(err)
		}
		c.log.Error("drop discarded", "active", c.activeID, "over", c.overID, "err", err)
		c.tree = c.snapshot
		return c.result(OutcomeNoop), err
	}
	c.tree = next
	c.log.Debug("drop committed", "active", c.activeID, "over", c.overID,
		"depth", c.projection.Depth, "parent", c.projection.ParentID)
	return c.result(OutcomeCommitted), nil
}

// dropIntoEmpty makes the provisional block the only root of an empty outline.
func (c *Controller) dropIntoEmpty() (Result, error) {
	n := c.tree[len(c.tree)-1]
	id, err := c.freshID()
	if err != nil {
		if c.opts.Strict {
			c.tree = c.snapshot
			panic(err)
		}
		c.log.Error("drop discarded", "active", c.activeID, "err", err)
		c.tree = c.snapshot
		return c.result(OutcomeNoop), err
	}
	c.log.Debug("template finalized", "template", n.ID, "id", id)
	n.ID = id
	n.IsConstructor = false
	c.tree = []model.Node{n}
	c.log.Debug("drop committed", "active", c.activeID, "into", "empty outline")
	return c.result(OutcomeCommitted), nil
}

// commit moves the active item (with its subtree) to sit right after the target, applies
// the projected depth and parent, and finalizes constructor ids.
func (c *Controller) commit() ([]model.Node, error) {
	flat := outline.Flatten(c.tree)
	ai := outline.IndexOf(flat, c.activeID)
	if ai < 0 {
		return nil, mutate.NotFoundError{Kind: "block", ID: c.activeID}
	}
	if outline.IndexOf(flat, c.overID) < 0 {
		return nil, mutate.NotFoundError{Kind: "block", ID: c.overID}
	}
	end := outline.SubtreeEnd(flat, ai)
	block := append([]model.FlatItem(nil), flat[ai:end]...)
	rest := append(append([]model.FlatItem(nil), flat[:ai]...), flat[end:]...)
	oi := outline.IndexOf(rest, c.overID)
	if oi < 0 {
		return nil, fmt.Errorf("cannot drop %s into its own subtree", c.activeID)
	}

	head := &block[0]
	if head.IsConstructor {
		oldID := head.ID
		newID, err := c.freshID()
		if err != nil {
			return nil, err
		}
		head.ID = newID
		head.IsConstructor = false
		for i := 1; i < len(block); i++ {
			if block[i].ParentID == oldID {
				block[i].ParentID = newID
			}
		}
		c.log.Debug("template finalized", "template", oldID, "id", newID)
	}
	delta := c.projection.Depth - head.Depth
	head.ParentID = c.projection.ParentID
	for i := range block {
		block[i].Depth += delta
	}

	moved := make([]model.FlatItem, 0, len(flat))
	moved = append(moved, rest[:oi+1]...)
	moved = append(moved, block...)
	moved = append(moved, rest[oi+1:]...)
	return outline.Rebuild(moved)
}

func (c *Controller) freshID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := c.opts.IDs.NewID()
		if err != nil {
			return "", fmt.Errorf("allocate block id: %w", err)
		}
		id = strings.TrimSpace(id)
		if id == "" || model.Contains(c.tree, id) {
			continue
		}
		if _, clash := c.opts.Palette.Lookup(id); clash {
			continue
		}
		return id, nil
	}
	return "", errors.New("allocate block id: generator kept returning ids already in use")
}

func (c *Controller) cancel() (Result, error) {
	if c.phase != PhaseDragging {
		c.reset()
		return c.result(OutcomeNoop), nil
	}
	defer c.reset()
	c.phase = PhaseCancelling
	c.tree = c.snapshot
	c.log.Debug("drag cancelled", "active", c.activeID)
	return c.result(OutcomeCancelled), nil
}

func (c *Controller) recompute() {
	c.projection, c.hasProjection = outline.Project(c.Items(), c.activeID, c.overID, c.offsetLeft, c.opts.IndentationWidth)
}

// reset clears every piece of transient gesture state. Safe to call repeatedly.
func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.snapshot = nil
	c.activeID = ""
	c.activeContainer = ""
	c.overID = ""
	c.offsetLeft = 0
	c.baseline = 0
	c.baselineSet = false
	c.provisional = false
	c.projection = outline.Projection{}
	c.hasProjection = false
	c.animate = true
	c.grabbing = false
}

func (c *Controller) containerOf(id string) model.Container {
	if model.Contains(c.tree, id) {
		return model.ContainerTree
	}
	if _, ok := c.opts.Palette.Lookup(id); ok {
		return model.ContainerPalette
	}
	return ""
}

func (c *Controller) result(o Outcome) Result {
	return Result{Outcome: o, Tree: c.Tree()}
}

// Collapse sets the collapsed flag of a block. Not allowed mid-gesture.
func (c *Controller) Collapse(id string, collapsed bool) (bool, error) {
	return c.apply(func(f []model.Node) (mutate.Result, error) {
		return mutate.SetCollapsed(f, id, collapsed), nil
	})
}

func (c *Controller) ToggleCollapsed(id string) (bool, error) {
	return c.apply(func(f []model.Node) (mutate.Result, error) {
		return mutate.ToggleCollapsed(f, id), nil
	})
}

// Remove deletes a block and its subtree.
func (c *Controller) Remove(id string) (bool, error) {
	return c.apply(func(f []model.Node) (mutate.Result, error) {
		return mutate.RemoveSubtree(f, id), nil
	})
}

func (c *Controller) Rename(id, label string) (bool, error) {
	return c.apply(func(f []model.Node) (mutate.Result, error) {
		return mutate.SetLabel(f, id, label)
	})
}

// Replace swaps in a new forest, e.g. after the seed file changed on disk.
func (c *Controller) Replace(forest []model.Node) error {
	if c.phase != PhaseIdle {
		return ErrAlreadyDragging
	}
	if err := model.Validate(forest); err != nil {
		return err
	}
	if err := model.CheckReserved(forest, c.opts.Palette.Has); err != nil {
		return err
	}
	c.tree = model.CloneForest(forest)
	return nil
}

func (c *Controller) apply(fn func([]model.Node) (mutate.Result, error)) (bool, error) {
	if c.phase != PhaseIdle {
		return false, ErrAlreadyDragging
	}
	res, err := fn(c.tree)
	if err != nil {
		return false, err
	}
	if res.Changed {
		c.tree = res.Tree
	}
	return res.Changed, nil
}
