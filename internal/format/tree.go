package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"formbuilder/internal/model"
	"formbuilder/internal/mutate"
)

var (
	metaStyle      = lipgloss.NewStyle().Faint(true)
	collapsedStyle = lipgloss.NewStyle().Italic(true)
	enumStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type TreeOptions struct {
	ShowIDs bool
	// ExpandAll ignores collapsed flags.
	ExpandAll bool
}

// RenderTree draws the forest as an indented outline with box-drawing connectors.
func RenderTree(forest []model.Node, opts TreeOptions) string {
	if len(forest) == 0 {
		return metaStyle.Render("(empty outline)")
	}
	t := tree.New().
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)
	for _, n := range forest {
		t.Child(renderNode(n, opts))
	}
	return t.String()
}

func renderNode(n model.Node, opts TreeOptions) any {
	label := nodeLine(n, opts)
	if len(n.Children) == 0 {
		return label
	}
	if n.Collapsed && !opts.ExpandAll {
		hidden := mutate.ChildCount([]model.Node{n}, n.ID)
		return label + " " + collapsedStyle.Render(fmt.Sprintf("(+%d hidden)", hidden))
	}
	sub := tree.Root(label).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)
	for _, ch := range n.Children {
		sub.Child(renderNode(ch, opts))
	}
	return sub
}

func nodeLine(n model.Node, opts TreeOptions) string {
	var meta []string
	if string(n.Type) != n.Label {
		meta = append(meta, string(n.Type))
	}
	if opts.ShowIDs {
		meta = append(meta, n.ID)
	}
	if len(meta) == 0 {
		return n.Label
	}
	return n.Label + " " + metaStyle.Render("["+strings.Join(meta, " · ")+"]")
}

// RenderFlatTable lists flattened items with their linkage columns.
func RenderFlatTable(items []model.FlatItem) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "ID", "LABEL", "TYPE", "DEPTH", "PARENT", "INDEX", "FLAGS"})
	for i, it := range items {
		tw.AppendRow(table.Row{
			i,
			it.ID,
			strings.Repeat("  ", it.Depth) + it.Label,
			string(it.Type),
			it.Depth,
			dash(it.ParentID),
			it.Index,
			flags(it),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	tw.SetStyle(table.StyleLight)
	return tw.Render()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func flags(it model.FlatItem) string {
	var out []string
	if it.CanHaveChildren {
		out = append(out, "container")
	}
	if it.Collapsed {
		out = append(out, "collapsed")
	}
	if it.IsConstructor {
		out = append(out, "template")
	}
	if len(it.Children) > 0 {
		out = append(out, "children="+strconv.Itoa(len(it.Children)))
	}
	return strings.Join(out, ",")
}
