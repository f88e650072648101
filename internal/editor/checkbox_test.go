package editor

import (
	"os"
	"path/filepath"
	"testing"

	"tasklens/internal/document"
	"tasklens/internal/grammar"
)

func setup(t *testing.T, content string) (*document.Store, *document.Document, *Editor) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	store := document.NewStore(nil)
	doc, err := store.Open(path)
	if err != nil {
		t.Fatalf("Failed to open document: %v", err)
	}
	return store, doc, New(store, nil)
}

func TestSetMarkerTransitions(t *testing.T) {
	tests := []struct {
		before string
		state  grammar.State
		after  string
	}{
		{"- [ ] Write docs", grammar.StateExecuting, "- [-] Write docs"},
		{"- [-] Write docs", grammar.StatePending, "- [ ] Write docs"},
		{"  * [ ] Indented", grammar.StateExecuting, "  * [-] Indented"},
		{"+ [-] Almost", grammar.StateDone, "+ [x] Almost"},
		{"- [X] Done thing", grammar.StatePending, "- [ ] Done thing"},
	}

	for _, test := range tests {
		_, doc, ed := setup(t, test.before+"\n")
		if err := ed.SetMarker(doc.URI(), 0, test.state); err != nil {
			t.Errorf("%q -> %v: unexpected error: %v", test.before, test.state, err)
			continue
		}
		line, _ := doc.Line(0)
		if line != test.after {
			t.Errorf("%q -> %v: expected %q, got %q", test.before, test.state, test.after, line)
		}
	}
}

func TestSetMarkerNoopWhenAlreadySet(t *testing.T) {
	_, doc, ed := setup(t, "- [-] Busy\n")
	if err := ed.SetMarker(doc.URI(), 0, grammar.StateExecuting); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc.Version() != 1 {
		t.Errorf("Expected no version bump for no-op rewrite, got %d", doc.Version())
	}
}

func TestSetMarkerRewritesSingleCharacterOnly(t *testing.T) {
	_, doc, ed := setup(t, "# Plan\n- [ ] Write docs\n- [ ] Ship it\n")
	before := doc.Lines()

	if err := ed.SetMarker(doc.URI(), 1, grammar.StateExecuting); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	after := doc.Lines()
	for i := range before {
		if i == 1 {
			continue
		}
		if before[i] != after[i] {
			t.Errorf("Line %d changed unexpectedly: %q -> %q", i, before[i], after[i])
		}
	}
	if after[1] != "- [-] Write docs" {
		t.Errorf("Expected marker rewrite on line 1, got %q", after[1])
	}
}

func TestSetMarkerErrors(t *testing.T) {
	_, doc, ed := setup(t, "prose line\n- [ ] Task\n")

	if err := ed.SetMarker(doc.URI(), 0, grammar.StateDone); err == nil {
		t.Error("Expected non-task line to fail")
	}
	if err := ed.SetMarker(doc.URI(), 9, grammar.StateDone); err == nil {
		t.Error("Expected out-of-range line to fail")
	}
	if err := ed.SetMarker("file:///missing.md", 0, grammar.StateDone); err == nil {
		t.Error("Expected unknown document to fail")
	}

	// Best-effort variant swallows the same failures.
	ed.TrySetMarker(doc.URI(), 9, grammar.StateDone)
}
