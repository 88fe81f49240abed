package tui

import (
	"encoding/json"

	"github.com/atotto/clipboard"

	"formbuilder/internal/model"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func copyTree(forest []model.Node) error {
	b, err := json.MarshalIndent(forest, "", "  ")
	if err != nil {
		return err
	}
	return writeClipboard(string(b))
}
