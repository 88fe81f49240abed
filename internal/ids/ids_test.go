package ids

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRandom_DefaultsToShortBlockIDs(t *testing.T) {
	id, err := Random{}.NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if !strings.HasPrefix(id, "blk-") {
		t.Fatalf("expected blk prefix, got %q", id)
	}
	suffix := strings.TrimPrefix(id, "blk-")
	if got, want := len(suffix), 6; got != want {
		t.Fatalf("expected suffix len %d, got %d (%q)", want, got, suffix)
	}
}

func TestRandom_CustomPrefixAndLength(t *testing.T) {
	id, err := Random{Prefix: "node", SuffixLen: 10}.NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if !strings.HasPrefix(id, "node-") {
		t.Fatalf("expected node prefix, got %q", id)
	}
	if got := len(strings.TrimPrefix(id, "node-")); got != 10 {
		t.Fatalf("expected suffix len 10, got %d", got)
	}
}

func TestRandom_DoesNotRepeatQuickly(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := Random{}.NewID()
		if err != nil {
			t.Fatalf("NewID: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id after %d draws: %s", i, id)
		}
		seen[id] = true
	}
}

func TestUUID_Parses(t *testing.T) {
	id, err := UUID{}.NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected parseable uuid, got %q: %v", id, err)
	}
}

func TestSequence_IsDeterministic(t *testing.T) {
	s := &Sequence{Prefix: "n"}
	a, _ := s.NewID()
	b, _ := s.NewID()
	if a != "n-1" || b != "n-2" {
		t.Fatalf("unexpected sequence: %q %q", a, b)
	}
}

func TestNew_Styles(t *testing.T) {
	if _, err := New("uuid", ""); err != nil {
		t.Fatalf("uuid: %v", err)
	}
	if _, err := New("", "blk"); err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, err := New("nope", ""); err == nil {
		t.Fatalf("expected error for unknown style")
	}
}
