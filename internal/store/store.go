// Package store loads the outline a session starts from (the seed) and watches it for
// changes. Nothing here writes the outline back; edits live in memory.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"formbuilder/internal/ids"
	"formbuilder/internal/model"
	"formbuilder/internal/palette"
)

const (
	DirName      = ".formbuilder"
	SeedFileName = "seed.json"
)

// Store is a formbuilder directory holding config.yaml and, optionally, seed.json.
type Store struct {
	Dir string
}

// DiscoverDir walks up from start looking for a .formbuilder directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, DirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir is ~/.formbuilder.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

func (s Store) SeedPath() string {
	if strings.TrimSpace(s.Dir) == "" {
		return ""
	}
	return filepath.Join(s.Dir, SeedFileName)
}

// ResolveSeedPath picks the seed file to load: an explicit path wins, then the store's
// seed.json if it exists. An empty result means "use the built-in default outline".
func (s Store) ResolveSeedPath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	p := s.SeedPath()
	if p == "" {
		return ""
	}
	if st, err := os.Stat(p); err == nil && !st.IsDir() {
		return p
	}
	return ""
}

type SeedError struct {
	Path string
	Err  error
}

func (e *SeedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("seed: %v", e.Err)
	}
	return fmt.Sprintf("seed %s: %v", e.Path, e.Err)
}

func (e *SeedError) Unwrap() error { return e.Err }

// seedNode mirrors model.Node with the fields a hand-written seed may leave out.
type seedNode struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	Type            model.BlockType `json:"type"`
	CanHaveChildren *bool           `json:"canHaveChildren"`
	Collapsed       bool            `json:"collapsed"`
	Children        []seedNode      `json:"children"`
}

type seedFile struct {
	Version int        `json:"version"`
	Tree    []seedNode `json:"tree"`
}

// LoadSeed reads a seed file. An empty path yields DefaultSeed.
func LoadSeed(path string, gen ids.Generator) ([]model.Node, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSeed(gen)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &SeedError{Path: path, Err: err}
	}
	forest, err := ParseSeed(b, gen)
	if err != nil {
		var se *SeedError
		if errors.As(err, &se) {
			se.Path = path
			return nil, se
		}
		return nil, &SeedError{Path: path, Err: err}
	}
	return forest, nil
}

// ParseSeed accepts either a bare JSON array of nodes or {"version":1,"tree":[...]}.
// Missing ids are allocated from gen, missing labels default to the block type and a
// missing canHaveChildren follows the type. The result is validated.
func ParseSeed(b []byte, gen ids.Generator) ([]model.Node, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, &SeedError{Err: errors.New("empty document")}
	}
	var raw []seedNode
	if b[0] == '[' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, &SeedError{Err: err}
		}
	} else {
		var f seedFile
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, &SeedError{Err: err}
		}
		if f.Version > 1 {
			return nil, &SeedError{Err: fmt.Errorf("unsupported seed version %d", f.Version)}
		}
		raw = f.Tree
	}

	forest, err := normalize(raw, gen)
	if err != nil {
		return nil, &SeedError{Err: err}
	}
	if err := model.Validate(forest); err != nil {
		return nil, &SeedError{Err: err}
	}
	if err := model.CheckReserved(forest, palette.Default().Has); err != nil {
		return nil, &SeedError{Err: err}
	}
	return forest, nil
}

func normalize(in []seedNode, gen ids.Generator) ([]model.Node, error) {
	out := make([]model.Node, 0, len(in))
	for _, sn := range in {
		n := model.Node{
			ID:        strings.TrimSpace(sn.ID),
			Label:     strings.TrimSpace(sn.Label),
			Type:      sn.Type,
			Collapsed: sn.Collapsed,
		}
		if n.ID == "" {
			if gen == nil {
				return nil, &model.EmptyIDError{Label: n.Label}
			}
			id, err := gen.NewID()
			if err != nil {
				return nil, fmt.Errorf("allocate id: %w", err)
			}
			n.ID = id
		}
		if n.Label == "" {
			n.Label = string(n.Type)
		}
		if sn.CanHaveChildren != nil {
			n.CanHaveChildren = *sn.CanHaveChildren
		} else {
			n.CanHaveChildren = n.Type.IsContainer()
		}
		children, err := normalize(sn.Children, gen)
		if err != nil {
			return nil, err
		}
		n.Children = children
		out = append(out, n)
	}
	return out, nil
}

// DefaultSeed is the outline a fresh builder opens with: three pages, the middle one
// holding a section of address fields, the last one two choice fields.
func DefaultSeed(gen ids.Generator) ([]model.Node, error) {
	if gen == nil {
		gen = ids.Random{}
	}
	type blockDef struct {
		label    string
		typ      model.BlockType
		children []blockDef
	}
	layout := []blockDef{
		{label: "Page", typ: model.BlockPage},
		{label: "Page", typ: model.BlockPage, children: []blockDef{
			{label: "Section", typ: model.BlockSection, children: []blockDef{
				{label: "Country", typ: model.BlockCountry},
				{label: "First name", typ: model.BlockTextBlock},
				{label: "Last name", typ: model.BlockTextInput},
			}},
		}},
		{label: "Page", typ: model.BlockPage, children: []blockDef{
			{label: "Single Choice", typ: model.BlockSingleChoice},
			{label: "Multiple Choice", typ: model.BlockMultipleChoice},
		}},
	}

	var build func(defs []blockDef) ([]model.Node, error)
	build = func(defs []blockDef) ([]model.Node, error) {
		out := make([]model.Node, 0, len(defs))
		for _, s := range defs {
			id, err := gen.NewID()
			if err != nil {
				return nil, fmt.Errorf("allocate id: %w", err)
			}
			children, err := build(s.children)
			if err != nil {
				return nil, err
			}
			out = append(out, model.Node{
				ID:              id,
				Label:           s.label,
				Type:            s.typ,
				CanHaveChildren: s.typ.IsContainer(),
				Children:        children,
			})
		}
		return out, nil
	}
	forest, err := build(layout)
	if err != nil {
		return nil, err
	}
	if err := model.Validate(forest); err != nil {
		return nil, err
	}
	return forest, nil
}
