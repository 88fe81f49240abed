// Package tui is the interactive builder: a palette of templates next to the outline,
// with a keyboard drag sensor feeding the dnd controller.
package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"formbuilder/internal/dnd"
	"formbuilder/internal/ids"
	"formbuilder/internal/store"
)

type Options struct {
	// SeedPath is reloaded on change when Watch is set. Empty means the built-in seed.
	SeedPath string
	Watch    bool
	NoColor  bool
	// ASCII swaps twisties and arrows for plain characters.
	ASCII bool
	// IDs allocates ids for blocks in a reloaded seed that have none.
	IDs    ids.Generator
	Logger *slog.Logger
}

func Run(c *dnd.Controller, opts Options) error {
	if opts.NoColor {
		disableColor()
	}
	m := NewModel(c, opts)
	if opts.Watch && opts.SeedPath != "" {
		w, err := store.Watch(opts.SeedPath)
		if err != nil {
			m.logger().Warn("seed watch disabled", "path", opts.SeedPath, "err", err)
		} else {
			defer w.Close()
			m.watcher = w
		}
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
