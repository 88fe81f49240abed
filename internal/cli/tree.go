package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"formbuilder/internal/dnd"
	"formbuilder/internal/format"
	"formbuilder/internal/model"
	"formbuilder/internal/mutate"
	"formbuilder/internal/outline"
	"formbuilder/internal/palette"
)

func newTreeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Inspect and rearrange the outline (results are printed; the seed file is not modified)",
	}
	cmd.AddCommand(newTreeShowCmd(app))
	cmd.AddCommand(newTreeFlattenCmd(app))
	cmd.AddCommand(newTreeProjectCmd(app))
	cmd.AddCommand(newTreeMoveCmd(app))
	cmd.AddCommand(newTreeAddCmd(app))
	cmd.AddCommand(newTreeCollapseCmd(app))
	cmd.AddCommand(newTreeRemoveCmd(app))
	cmd.AddCommand(newTreeCountCmd(app))
	cmd.AddCommand(newTreeRenameCmd(app))
	cmd.AddCommand(newTreeValidateCmd(app))
	return cmd
}

type treeView struct {
	Tree    []model.Node `json:"tree"`
	showIDs bool
}

func (v treeView) Text() string {
	return format.RenderTree(v.Tree, format.TreeOptions{ShowIDs: v.showIDs})
}

type dropView struct {
	Outcome    dnd.Outcome         `json:"outcome"`
	Projection *outline.Projection `json:"projection,omitempty"`
	Tree       []model.Node        `json:"tree"`
}

func (v dropView) Text() string {
	var b strings.Builder
	b.WriteString(v.Outcome.String())
	if v.Projection != nil {
		b.WriteString(" at ")
		b.WriteString(describeProjection(*v.Projection))
	}
	b.WriteString("\n")
	b.WriteString(format.RenderTree(v.Tree, format.TreeOptions{ShowIDs: true}))
	return b.String()
}

func describeProjection(p outline.Projection) string {
	parent := "top level"
	if p.ParentID != "" {
		parent = "under " + p.ParentID
	}
	return fmt.Sprintf("depth %d (min %d, max %d), %s", p.Depth, p.MinDepth, p.MaxDepth, parent)
}

func newTreeShowCmd(app *App) *cobra.Command {
	var showIDs bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := app.loadForest()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: treeView{Tree: forest, showIDs: showIDs}})
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", true, "Show block ids in text output")
	return cmd
}

type flatView struct {
	Items []model.FlatItem `json:"items"`
}

func (v flatView) Text() string { return format.RenderFlatTable(v.Items) }

func newTreeFlattenCmd(app *App) *cobra.Command {
	var all, tableOut bool
	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "Print the outline as a flat, pre-ordered list with depth and parent links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := app.loadForest()
			if err != nil {
				return writeErr(cmd, err)
			}
			items := outline.Visible(forest)
			if all {
				items = outline.Flatten(forest)
			}
			if items == nil {
				items = []model.FlatItem{}
			}
			if tableOut {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), format.RenderFlatTable(items))
				return err
			}
			return writeOut(cmd, app, envelope{Data: flatView{Items: items}})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include the contents of collapsed blocks")
	cmd.Flags().BoolVar(&tableOut, "table", false, "Print a table instead of structured output")
	return cmd
}

type gestureArgs struct {
	active string
	over   string
	offset float64
}

func (g *gestureArgs) bind(cmd *cobra.Command, activeFlag string) {
	cmd.Flags().StringVar(&g.active, activeFlag, "", "Id of the dragged block (or palette template)")
	cmd.Flags().StringVar(&g.over, "over", "", "Id of the block to drop after")
	cmd.Flags().Float64Var(&g.offset, "offset", 0, "Horizontal drag in pixels (negative = left)")
	_ = cmd.MarkFlagRequired(activeFlag)
	_ = cmd.MarkFlagRequired("over")
}

// drag replays start, move and over for a single-step gesture and leaves the
// controller mid-gesture.
func (app *App) drag(c *dnd.Controller, g gestureArgs) error {
	if _, err := c.Handle(dnd.DragStart{ActiveID: g.active}); err != nil {
		return err
	}
	baseline := app.cfg.Baselines()[c.State().ActiveContainer]
	if _, err := c.Handle(dnd.DragMove{Delta: dnd.Point{X: baseline + g.offset}}); err != nil {
		return err
	}
	if _, err := c.Handle(dnd.DragOver{ActiveID: g.active, OverID: g.over}); err != nil {
		return err
	}
	return nil
}

type projectView struct {
	Active     string              `json:"active"`
	Over       string              `json:"over"`
	Offset     float64             `json:"offset"`
	Projection *outline.Projection `json:"projection"`
}

func (v projectView) Text() string {
	if v.Projection == nil {
		return fmt.Sprintf("%s cannot be dropped after %s", v.Active, v.Over)
	}
	return fmt.Sprintf("%s after %s: %s", v.Active, v.Over, describeProjection(*v.Projection))
}

func newTreeProjectCmd(app *App) *cobra.Command {
	var g gestureArgs
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show where a block would land without dropping it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.loadController()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.drag(c, g); err != nil {
				return writeErr(cmd, err)
			}
			view := projectView{Active: g.active, Over: g.over, Offset: g.offset}
			if p, ok := c.Projection(); ok {
				view.Projection = &p
			}
			if _, err := c.Handle(dnd.DragCancel{}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, envelope{Data: view})
		},
	}
	g.bind(cmd, "active")
	return cmd
}

func (app *App) drop(cmd *cobra.Command, g gestureArgs) error {
	c, err := app.loadController()
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := app.drag(c, g); err != nil {
		return writeErr(cmd, err)
	}
	view := dropView{}
	if p, ok := c.Projection(); ok {
		view.Projection = &p
	}
	res, err := c.Handle(dnd.DragEnd{ActiveID: g.active, OverID: g.over})
	if err != nil {
		return writeErr(cmd, err)
	}
	view.Outcome = res.Outcome
	view.Tree = res.Tree
	if res.Outcome != dnd.OutcomeCommitted {
		view.Projection = nil
	}
	return writeOut(cmd, app, envelope{Data: view})
}

func newTreeMoveCmd(app *App) *cobra.Command {
	var g gestureArgs
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Drag a block (with its children) to sit after another block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := palette.Default().Lookup(g.active); ok {
				return writeErr(cmd, fmt.Errorf("%s is a palette template; use `formbuilder tree add`", g.active))
			}
			return app.drop(cmd, g)
		},
	}
	g.bind(cmd, "active")
	return cmd
}

func newTreeAddCmd(app *App) *cobra.Command {
	var g gestureArgs
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Drag a new block from the palette to sit after an existing block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := resolveTemplate(palette.Default(), g.active)
			if err != nil {
				return writeErr(cmd, err)
			}
			g.active = tpl.ID
			return app.drop(cmd, g)
		},
	}
	g.bind(cmd, "template")
	return cmd
}

// resolveTemplate accepts a template id ("tpl-section") or a block type ("Section").
func resolveTemplate(p *palette.Palette, s string) (palette.Template, error) {
	if t, ok := p.Lookup(s); ok {
		return t, nil
	}
	want := strings.TrimSpace(s)
	for _, t := range p.Templates() {
		if strings.EqualFold(string(t.Type), want) || strings.EqualFold(t.Label, want) {
			return t, nil
		}
	}
	return palette.Template{}, errNotFound("template", s)
}

func requireBlock(c *dnd.Controller, id string) error {
	if !model.Contains(c.Tree(), id) {
		return errNotFound("block", id)
	}
	return nil
}

type editView struct {
	Changed bool         `json:"changed"`
	Tree    []model.Node `json:"tree"`
}

func (v editView) Text() string {
	status := "unchanged"
	if v.Changed {
		status = "changed"
	}
	return status + "\n" + format.RenderTree(v.Tree, format.TreeOptions{ShowIDs: true})
}

func editCmd(app *App, cmd *cobra.Command, id string, fn func(c *dnd.Controller) (bool, error)) error {
	c, err := app.loadController()
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := requireBlock(c, id); err != nil {
		return writeErr(cmd, err)
	}
	changed, err := fn(c)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, envelope{Data: editView{Changed: changed, Tree: c.Tree()}})
}

func newTreeCollapseCmd(app *App) *cobra.Command {
	var expand, toggle bool
	cmd := &cobra.Command{
		Use:   "collapse <block-id>",
		Short: "Collapse (or expand) a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return editCmd(app, cmd, id, func(c *dnd.Controller) (bool, error) {
				if toggle {
					return c.ToggleCollapsed(id)
				}
				return c.Collapse(id, !expand)
			})
		},
	}
	cmd.Flags().BoolVar(&expand, "expand", false, "Expand instead of collapsing")
	cmd.Flags().BoolVar(&toggle, "toggle", false, "Flip the current state")
	cmd.MarkFlagsMutuallyExclusive("expand", "toggle")
	return cmd
}

func newTreeRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <block-id>",
		Short: "Remove a block and everything inside it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return editCmd(app, cmd, id, func(c *dnd.Controller) (bool, error) {
				return c.Remove(id)
			})
		},
	}
}

func newTreeRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <block-id> <label>",
		Short: "Change a block's label",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			label := strings.Join(args[1:], " ")
			return editCmd(app, cmd, id, func(c *dnd.Controller) (bool, error) {
				return c.Rename(id, label)
			})
		},
	}
}

type countView struct {
	ID          string `json:"id"`
	Descendants int    `json:"descendants"`
}

func (v countView) Text() string {
	return fmt.Sprintf("%s: %d descendants", v.ID, v.Descendants)
}

func newTreeCountCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "count <block-id>",
		Short: "Count the blocks nested under a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := app.loadForest()
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			if _, ok := mutate.Find(forest, id); !ok {
				return writeErr(cmd, errNotFound("block", id))
			}
			return writeOut(cmd, app, envelope{Data: countView{ID: id, Descendants: mutate.ChildCount(forest, id)}})
		},
	}
}

type validateView struct {
	Valid    bool `json:"valid"`
	Blocks   int  `json:"blocks"`
	Roots    int  `json:"roots"`
	MaxDepth int  `json:"maxDepth"`
}

func (v validateView) Text() string {
	return fmt.Sprintf("ok: %d blocks, %d top-level, max depth %d", v.Blocks, v.Roots, v.MaxDepth)
}

func newTreeValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the seed outline (unique ids, no children under fields)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := app.loadForest()
			if err != nil {
				return writeErr(cmd, err)
			}
			flat := outline.Flatten(forest)
			view := validateView{Valid: true, Blocks: len(flat), Roots: len(forest)}
			for _, it := range flat {
				if it.Depth > view.MaxDepth {
					view.MaxDepth = it.Depth
				}
			}
			return writeOut(cmd, app, envelope{Data: view})
		},
	}
}
