package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"formbuilder/internal/model"
)

type WriteOptions struct {
	Title      string
	IncludeIDs bool
	Overwrite  bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteForm writes form.md plus one file per top-level container under pages/.
func WriteForm(forest []model.Node, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	ropt := RenderOptions{Title: opt.Title, IncludeIDs: opt.IncludeIDs}

	pagesDir := filepath.Join(toDir, "pages")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "form.md")
	if err := writeFile(indexPath, []byte(RenderFormMarkdown(forest, ropt)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Stops on the first error.
	written := []string{indexPath}
	for _, n := range forest {
		if !n.CanHaveChildren {
			continue
		}
		md, err := RenderPageMarkdown(forest, n.ID, ropt)
		if err != nil {
			return WriteResult{}, err
		}
		p := filepath.Join(pagesDir, safeName(n.ID)+".md")
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func safeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, id)
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
