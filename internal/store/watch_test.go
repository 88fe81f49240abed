package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SeedFileName)
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	w, err := Watch(path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write other: %v", err)
	}
	select {
	case <-w.Changes():
		t.Fatalf("unexpected change for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`[{"id":"a","type":"Page"}]`), 0o644); err != nil {
			t.Fatalf("rewrite seed: %v", err)
		}
	}
	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for change")
	}
}

func TestWatch_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), SeedFileName)
	w, err := Watch(path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
