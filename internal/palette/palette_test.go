package palette

import (
	"testing"

	"formbuilder/internal/model"
)

func TestDefault_ContainersCanHaveChildren(t *testing.T) {
	p := Default()
	page, ok := p.Lookup("tpl-page")
	if !ok {
		t.Fatalf("expected tpl-page")
	}
	if !page.CanHaveChildren {
		t.Fatalf("expected Page to be a container")
	}
	choice, ok := p.Lookup("tpl-single-choice")
	if !ok {
		t.Fatalf("expected tpl-single-choice")
	}
	if choice.CanHaveChildren {
		t.Fatalf("expected Single Choice to be a leaf")
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New([]Template{{ID: "a"}, {ID: "a"}})
	if err == nil {
		t.Fatalf("expected duplicate error")
	}
	if _, err := New([]Template{{ID: " "}}); err == nil {
		t.Fatalf("expected empty id error")
	}
}

func TestTemplates_ReturnsCopy(t *testing.T) {
	p := Default()
	ts := p.Templates()
	ts[0].Label = "changed"
	if got, _ := p.Lookup(ts[0].ID); got.Label == "changed" {
		t.Fatalf("palette must not be mutated through Templates()")
	}
}

func TestInstantiate_IsProvisional(t *testing.T) {
	tpl, _ := Default().Lookup("tpl-section")
	n := tpl.Instantiate()
	if n.ID != "tpl-section" || !n.IsConstructor || n.Type != model.BlockSection || !n.CanHaveChildren {
		t.Fatalf("unexpected provisional node: %+v", n)
	}
	if n.Children == nil {
		t.Fatalf("expected non-nil children")
	}
}
