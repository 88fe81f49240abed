package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Focus    key.Binding
	Grab     key.Binding
	Drop     key.Binding
	Cancel   key.Binding
	Collapse key.Binding
	Remove   key.Binding
	Rename   key.Binding
	Copy     key.Binding
	Docs     key.Binding
	Quit     key.Binding

	dragging bool
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "outdent")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "indent")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "palette/outline")),
		Grab:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pick up")),
		Drop:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Collapse: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse")),
		Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		Rename:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy json")),
		Docs:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "guide")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	if k.dragging {
		return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Focus, k.Drop, k.Cancel}
	}
	return []key.Binding{k.Up, k.Down, k.Focus, k.Grab, k.Collapse, k.Rename, k.Remove, k.Copy, k.Docs, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Focus},
		{k.Grab, k.Drop, k.Cancel},
		{k.Collapse, k.Rename, k.Remove, k.Copy, k.Docs, k.Quit},
	}
}
