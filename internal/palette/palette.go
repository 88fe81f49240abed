// Package palette holds the immutable catalog of block templates a user can drag into
// the outline.
package palette

import (
	"fmt"
	"strings"

	"formbuilder/internal/model"
)

// Template is a reusable block definition. Dropping it into the outline copies it.
type Template struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	Type            model.BlockType `json:"type"`
	CanHaveChildren bool            `json:"canHaveChildren"`
}

// Palette is an ordered, read-only set of templates.
type Palette struct {
	templates []Template
	byID      map[string]int
}

// New validates templates (non-empty, unique ids) and returns a palette holding a copy.
func New(templates []Template) (*Palette, error) {
	p := &Palette{
		templates: make([]Template, 0, len(templates)),
		byID:      make(map[string]int, len(templates)),
	}
	for _, t := range templates {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, fmt.Errorf("template %q has an empty id", t.Label)
		}
		if _, dup := p.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id: %s", t.ID)
		}
		p.byID[t.ID] = len(p.templates)
		p.templates = append(p.templates, t)
	}
	return p, nil
}

// Default returns the building blocks shipped with the builder.
func Default() *Palette {
	p, err := New(DefaultTemplates())
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultTemplates lists the stock building blocks in sidebar order.
func DefaultTemplates() []Template {
	blocks := []model.BlockType{
		model.BlockPage,
		model.BlockSection,
		model.BlockFieldGroup,
		model.BlockTextInput,
		model.BlockTextBlock,
		model.BlockCountry,
		model.BlockSingleChoice,
		model.BlockMultipleChoice,
	}
	out := make([]Template, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, Template{
			ID:              "tpl-" + slug(string(b)),
			Label:           string(b),
			Type:            b,
			CanHaveChildren: b.IsContainer(),
		})
	}
	return out
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// Templates returns a copy of the catalog.
func (p *Palette) Templates() []Template {
	if p == nil {
		return nil
	}
	return append([]Template(nil), p.templates...)
}

func (p *Palette) Lookup(id string) (Template, bool) {
	if p == nil {
		return Template{}, false
	}
	i, ok := p.byID[strings.TrimSpace(id)]
	if !ok {
		return Template{}, false
	}
	return p.templates[i], true
}

// Instantiate returns a provisional outline node for the template. It keeps the
// template id and is flagged as a constructor until the drop finalizes it.
func (t Template) Instantiate() model.Node {
	return model.Node{
		ID:              t.ID,
		Label:           t.Label,
		Type:            t.Type,
		CanHaveChildren: t.CanHaveChildren,
		IsConstructor:   true,
		Children:        []model.Node{},
	}
}

// Has reports whether id names a template. Tree blocks may not reuse these ids.
func (p *Palette) Has(id string) bool {
	_, ok := p.Lookup(id)
	return ok
}
