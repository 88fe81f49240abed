package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"formbuilder/internal/dnd"
	"formbuilder/internal/docs"
	"formbuilder/internal/model"
	"formbuilder/internal/store"
)

type pane int

const (
	paneOutline pane = iota
	panePalette
)

type mode int

const (
	modeBrowse mode = iota
	modeRename
	modeDocs
)

type Model struct {
	c      *dnd.Controller
	opts   Options
	keys   keyMap
	styles styles
	glyphs glyphSet
	help   help.Model
	input  textinput.Model
	docs   viewport.Model

	focus     pane
	mode      mode
	cursor    int
	palCursor int

	// Keyboard drag sensor: the row the held item is over and the indentation steps
	// relative to that row.
	overID string
	steps  int

	status    string
	statusErr bool

	width, height int

	watcher       *store.Watcher
	pendingReload bool
}

func NewModel(c *dnd.Controller, opts Options) Model {
	in := textinput.New()
	in.Prompt = "label: "
	in.CharLimit = 120

	return Model{
		c:      c,
		opts:   opts,
		keys:   newKeyMap(),
		styles: newStyles(),
		glyphs: glyphsFor(opts.ASCII),
		help:   help.New(),
		input:  in,
		docs:   viewport.New(80, 20),
		width:  100,
		height: 30,
	}
}

func (m Model) logger() *slog.Logger {
	if m.opts.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.opts.Logger
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return waitForSeedChange(m.watcher)
	}
	return nil
}

func (m Model) dragging() bool {
	return m.c.State().Phase == dnd.PhaseDragging
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.docs.Width = msg.Width
		m.docs.Height = max(msg.Height-2, 3)
		return m, nil

	case seedChangedMsg:
		m = m.reload()
		return m, m.Init()

	case watchErrMsg:
		m.logger().Warn("seed watch error", "err", msg.err)
		return m, m.Init()

	case tea.KeyMsg:
		switch m.mode {
		case modeRename:
			return m.updateRename(msg)
		case modeDocs:
			return m.updateDocs(msg)
		}
		if m.dragging() {
			return m.updateDrag(msg), nil
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.c.Items()
	templates := m.c.Palette().Templates()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Focus):
		if m.focus == paneOutline {
			m.focus = panePalette
		} else {
			m.focus = paneOutline
		}
	case key.Matches(msg, m.keys.Up):
		if m.focus == panePalette {
			m.palCursor = max(m.palCursor-1, 0)
		} else {
			m.cursor = max(m.cursor-1, 0)
		}
	case key.Matches(msg, m.keys.Down):
		if m.focus == panePalette {
			m.palCursor = min(m.palCursor+1, len(templates)-1)
		} else {
			m.cursor = min(m.cursor+1, len(items)-1)
		}
	case key.Matches(msg, m.keys.Grab):
		m = m.startDrag()
	case key.Matches(msg, m.keys.Collapse), key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		if id, ok := m.selectedID(); ok {
			var err error
			switch {
			case key.Matches(msg, m.keys.Left):
				_, err = m.c.Collapse(id, true)
			case key.Matches(msg, m.keys.Right):
				_, err = m.c.Collapse(id, false)
			default:
				_, err = m.c.ToggleCollapsed(id)
			}
			m = m.setErr(err)
		}
	case key.Matches(msg, m.keys.Remove):
		if id, ok := m.selectedID(); ok {
			if _, err := m.c.Remove(id); err != nil {
				m = m.setErr(err)
			} else {
				m = m.setStatus("removed " + id)
			}
		}
	case key.Matches(msg, m.keys.Rename):
		if it, ok := m.selectedItem(); ok {
			m.mode = modeRename
			m.input.SetValue("")
			m.input.Placeholder = it.Label
			return m, m.input.Focus()
		}
	case key.Matches(msg, m.keys.Copy):
		if err := copyTree(m.c.Tree()); err != nil {
			m = m.setErr(fmt.Errorf("copy: %w", err))
		} else {
			m = m.setStatus("outline copied as JSON")
		}
	case key.Matches(msg, m.keys.Docs):
		m.mode = modeDocs
		body, _ := docs.Get("gestures")
		style := docs.StyleDark
		if m.opts.NoColor {
			style = docs.StylePlain
		}
		m.docs.SetContent(docs.Render(body, m.docs.Width, style))
		m.docs.GotoTop()
	}
	m.cursor = clampCursor(m.cursor, len(m.c.Items()))
	return m, nil
}

func (m Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m.setStatus("rename cancelled"), nil
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.input.Blur()
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		if _, err := m.c.Rename(id, m.input.Value()); err != nil {
			return m.setErr(err), nil
		}
		return m.setStatus("renamed " + id), nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateDocs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) || key.Matches(msg, m.keys.Docs) || key.Matches(msg, m.keys.Quit) {
		m.mode = modeBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.docs, cmd = m.docs.Update(msg)
	return m, cmd
}

// startDrag picks up the selected row or palette template. An outline row starts over
// the row above it at its current depth, so dropping right away leaves it in place.
// A template starts over the last row, entering the outline at the end.
func (m Model) startDrag() Model {
	if m.focus == panePalette {
		templates := m.c.Palette().Templates()
		if m.palCursor < 0 || m.palCursor >= len(templates) {
			return m
		}
		tpl := templates[m.palCursor]
		if _, err := m.c.Handle(dnd.DragStart{ActiveID: tpl.ID, Container: model.ContainerPalette}); err != nil {
			return m.setErr(err)
		}
		m.focus = paneOutline
		m.steps = 0
		m.overID = ""
		if targets := m.targets(); len(targets) > 0 {
			m.overID = targets[len(targets)-1].ID
		}
		m = m.sendMove()
		return m.sendOver(model.ContainerTree).setStatus("holding " + tpl.Label)
	}

	it, ok := m.selectedItem()
	if !ok {
		return m
	}
	if _, err := m.c.Handle(dnd.DragStart{ActiveID: it.ID, Container: model.ContainerTree}); err != nil {
		return m.setErr(err)
	}
	m.overID = ""
	m.steps = 0
	items := m.c.Items()
	if i := indexOf(items, it.ID); i > 0 {
		m.overID = items[i-1].ID
		m.steps = it.Depth - items[i-1].Depth
	}
	m = m.sendMove()
	return m.sendOver("").setStatus("holding " + it.Label)
}

// targets are the rows the held item can be dropped after.
func (m Model) targets() []model.FlatItem {
	active := m.c.State().ActiveID
	items := m.c.Items()
	out := make([]model.FlatItem, 0, len(items))
	for _, it := range items {
		if it.ID != active {
			out = append(out, it)
		}
	}
	return out
}

func (m Model) sendMove() Model {
	st := m.c.State()
	x := m.c.Baseline(st.ActiveContainer) + float64(m.steps*m.c.IndentationWidth())
	if _, err := m.c.Handle(dnd.DragMove{Delta: dnd.Point{X: x}}); err != nil {
		return m.setErr(err)
	}
	return m
}

func (m Model) sendOver(container model.Container) Model {
	st := m.c.State()
	ev := dnd.DragOver{ActiveID: st.ActiveID, OverID: m.overID, OverContainer: container}
	if _, err := m.c.Handle(ev); err != nil {
		return m.setErr(err)
	}
	return m
}

func (m Model) updateDrag(msg tea.KeyMsg) Model {
	st := m.c.State()
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		if _, err := m.c.Handle(dnd.DragCancel{}); err != nil {
			return m.setErr(err)
		}
		m.overID = ""
		m = m.applyPendingReload()
		return m.setStatus("drag cancelled")

	case key.Matches(msg, m.keys.Drop):
		return m.drop()

	case key.Matches(msg, m.keys.Focus):
		if st.ActiveContainer != model.ContainerPalette {
			return m
		}
		if m.focus == paneOutline {
			// Back over the palette: the provisional block goes away.
			m.focus = panePalette
			m.overID = ""
			return m.sendOver(model.ContainerPalette)
		}
		m.focus = paneOutline
		if targets := m.targets(); len(targets) > 0 {
			m.overID = targets[len(targets)-1].ID
		}
		return m.sendOver(model.ContainerTree)

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		if m.focus != paneOutline {
			return m
		}
		targets := m.targets()
		if len(targets) == 0 {
			return m
		}
		i := indexOf(targets, m.overID)
		if key.Matches(msg, m.keys.Up) {
			i = max(i-1, 0)
		} else {
			i = min(i+1, len(targets)-1)
		}
		m.overID = targets[i].ID
		return m.sendOver("")

	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		if key.Matches(msg, m.keys.Left) {
			m.steps--
		} else {
			m.steps++
		}
		// Keep steps within what the projection can use.
		if p, ok := m.c.Projection(); ok {
			if over, found := m.overItem(); found {
				m.steps = max(min(m.steps, p.MaxDepth-over.Depth), p.MinDepth-over.Depth)
			}
		}
		return m.sendMove()
	}
	return m
}

func (m Model) overItem() (model.FlatItem, bool) {
	targets := m.targets()
	i := indexOf(targets, m.overID)
	if i < 0 {
		return model.FlatItem{}, false
	}
	return targets[i], true
}

func (m Model) drop() Model {
	before := map[string]bool{}
	for _, id := range model.IDs(m.c.Tree()) {
		before[id] = true
	}
	st := m.c.State()
	res, err := m.c.Handle(dnd.DragEnd{ActiveID: st.ActiveID, OverID: m.overID})
	m.overID = ""
	m = m.applyPendingReload()
	if err != nil {
		return m.setErr(err)
	}
	if res.Outcome != dnd.OutcomeCommitted {
		return m.setStatus("nothing moved")
	}

	// Follow the dropped block; a template drop shows up as the one new id.
	landed := st.ActiveID
	if st.ActiveContainer == model.ContainerPalette {
		for _, id := range model.IDs(res.Tree) {
			if !before[id] {
				landed = id
			}
		}
	}
	if i := indexOf(m.c.Items(), landed); i >= 0 {
		m.cursor = i
	}
	m.focus = paneOutline
	return m.setStatus("dropped " + landed)
}

func (m Model) reload() Model {
	if m.dragging() {
		m.pendingReload = true
		return m
	}
	forest, err := store.LoadSeed(m.opts.SeedPath, m.opts.IDs)
	if err != nil {
		return m.setErr(err)
	}
	if err := m.c.Replace(forest); err != nil {
		return m.setErr(err)
	}
	m.cursor = clampCursor(m.cursor, len(m.c.Items()))
	m.logger().Debug("seed reloaded", "path", m.opts.SeedPath)
	return m.setStatus("seed reloaded")
}

func (m Model) applyPendingReload() Model {
	if !m.pendingReload {
		return m
	}
	m.pendingReload = false
	return m.reload()
}

func (m Model) selectedItem() (model.FlatItem, bool) {
	items := m.c.Items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.FlatItem{}, false
	}
	return items[m.cursor], true
}

func (m Model) selectedID() (string, bool) {
	it, ok := m.selectedItem()
	return it.ID, ok
}

func (m Model) setStatus(s string) Model {
	m.status = strings.TrimSpace(s)
	m.statusErr = false
	return m
}

func (m Model) setErr(err error) Model {
	if err == nil {
		return m
	}
	m.logger().Debug("tui error", "err", err)
	m.status = err.Error()
	m.statusErr = true
	return m
}

func indexOf(items []model.FlatItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func clampCursor(i, n int) int {
	if n == 0 {
		return 0
	}
	return max(0, min(i, n-1))
}
