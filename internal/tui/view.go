package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"formbuilder/internal/dnd"
	"formbuilder/internal/model"
)

const paletteWidth = 22

func (m Model) View() string {
	if m.mode == modeDocs {
		footer := m.styles.status.Render("esc to close")
		return lipgloss.JoinVertical(lipgloss.Left, m.docs.View(), footer)
	}

	header := m.styles.title.Render("formbuilder") + "  " + m.styles.muted.Render(m.stateLine())

	outlineW := max(m.width-paletteWidth-8, 20)
	bodyH := max(m.height-6, 5)
	palettePane := m.paneStyle(panePalette).Width(paletteWidth).Height(bodyH).Render(m.renderPalette(paletteWidth))
	outlinePane := m.paneStyle(paneOutline).Width(outlineW).Height(bodyH).Render(m.renderOutline(outlineW, bodyH-1))
	body := lipgloss.JoinHorizontal(lipgloss.Top, palettePane, outlinePane)

	var footer []string
	if m.mode == modeRename {
		footer = append(footer, m.input.View())
	}
	if m.status != "" {
		st := m.styles.status
		if m.statusErr {
			st = m.styles.errStatus
		}
		footer = append(footer, st.Render(wordwrap.String(m.status, max(m.width-2, 10))))
	}
	keys := m.keys
	keys.dragging = m.dragging()
	footer = append(footer, m.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, strings.Join(footer, "\n"))
}

func (m Model) paneStyle(p pane) lipgloss.Style {
	if m.focus == p {
		return m.styles.paneFocus
	}
	return m.styles.pane
}

func (m Model) stateLine() string {
	st := m.c.State()
	if st.Phase != dnd.PhaseDragging {
		return fmt.Sprintf("%d blocks", len(model.IDs(m.c.Tree())))
	}
	s := "dragging " + st.ActiveID
	if p, ok := m.c.Projection(); ok {
		parent := "top level"
		if p.ParentID != "" {
			parent = "into " + p.ParentID
		}
		s += fmt.Sprintf(" %s depth %d %s", m.glyphs.sep(), p.Depth, parent)
	} else {
		s += " " + m.glyphs.sep() + " no drop target"
	}
	return s
}

func (m Model) renderPalette(width int) string {
	lines := []string{m.styles.paneTitle.Render("Blocks")}
	st := m.c.State()
	for i, t := range m.c.Palette().Templates() {
		line := "  " + t.Label
		switch {
		case st.Phase == dnd.PhaseDragging && st.ActiveID == t.ID:
			line = m.styles.ghost.Render(m.glyphs.ghost() + " " + t.Label)
		case m.focus == panePalette && i == m.palCursor:
			line = m.styles.selected.Render(truncate(m.glyphs.pointer()+" "+t.Label, width))
		}
		lines = append(lines, truncate(line, width))
	}
	return strings.Join(lines, "\n")
}

type outlineRow struct {
	item   model.FlatItem
	ghost  bool
	depth  int
	cursor bool
}

// rows lays out the outline. While dragging, the held item is drawn as a ghost right
// after the row it is over, at the projected depth.
func (m Model) rows() []outlineRow {
	items := m.c.Items()
	if !m.dragging() {
		out := make([]outlineRow, 0, len(items))
		for i, it := range items {
			out = append(out, outlineRow{item: it, depth: it.Depth, cursor: m.focus == paneOutline && i == m.cursor})
		}
		return out
	}

	active, hasActive := m.c.Active()
	p, hasProjection := m.c.Projection()
	out := make([]outlineRow, 0, len(items))
	for _, it := range m.targets() {
		out = append(out, outlineRow{item: it, depth: it.Depth, cursor: it.ID == m.overID})
		if hasActive && hasProjection && it.ID == m.overID {
			out = append(out, outlineRow{item: active, ghost: true, depth: p.Depth})
		}
	}
	return out
}

func (m Model) renderOutline(width, height int) string {
	rows := m.rows()
	if len(rows) == 0 {
		return m.styles.muted.Render("Empty outline. Press tab, pick a block and press space.")
	}

	// Scroll so the cursor row stays visible.
	start := 0
	for i, r := range rows {
		if r.cursor && i >= height {
			start = i - height + 1
		}
	}
	end := min(len(rows), start+height)

	lines := make([]string, 0, end-start)
	for _, r := range rows[start:end] {
		lines = append(lines, m.renderRow(r, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r outlineRow, width int) string {
	it := r.item
	twisty := m.glyphs.bullet()
	switch {
	case len(it.Children) > 0 && it.Collapsed:
		twisty = m.glyphs.twistyCollapsed()
	case len(it.Children) > 0 || it.CanHaveChildren:
		twisty = m.glyphs.twistyExpanded()
	}
	indent := strings.Repeat("  ", r.depth)

	if r.ghost {
		line := indent + m.glyphs.ghost() + " " + it.Label
		if n := m.c.ActiveChildCount(); n > 0 {
			line += " " + m.styles.badge.Render(fmt.Sprintf("+%d", n))
		}
		return truncate(m.styles.ghost.Render(line), width)
	}

	line := indent + twisty + " " + it.Label
	meta := ""
	if string(it.Type) != it.Label {
		meta = " " + m.styles.muted.Render(string(it.Type))
	}
	if r.cursor {
		return truncate(m.styles.selected.Render(line)+meta, width)
	}
	return truncate(m.styles.row.Render(line)+meta, width)
}

func truncate(s string, width int) string {
	if width <= 0 || xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Truncate(s, width, "…")
}
