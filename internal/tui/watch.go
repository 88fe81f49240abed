package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"formbuilder/internal/store"
)

type seedChangedMsg struct{}

type watchErrMsg struct{ err error }

func waitForSeedChange(w *store.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case _, ok := <-w.Changes():
			if !ok {
				return nil
			}
			return seedChangedMsg{}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}
