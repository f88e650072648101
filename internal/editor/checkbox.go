// Package editor is the single edit path for checkbox mutations. Every state
// transition rewrites exactly one bracket character; nothing else in the
// document is touched.
package editor

import (
	"fmt"

	"go.uber.org/zap"

	"tasklens/internal/document"
	"tasklens/internal/grammar"
)

// Editor applies checkbox rewrites through the document store.
type Editor struct {
	store  *document.Store
	logger *zap.Logger
}

// New creates an editor bound to a document store.
func New(store *document.Store, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{store: store, logger: logger}
}

// SetMarker rewrites the checkbox marker on a line to reflect the given
// state. The current line content is re-read first so the rewrite survives
// edits that moved the marker column since the caller last parsed.
func (e *Editor) SetMarker(uri string, line int, state grammar.State) error {
	doc := e.store.Get(uri)
	if doc == nil {
		return fmt.Errorf("no open document for %s", uri)
	}

	content, err := doc.Line(line)
	if err != nil {
		return fmt.Errorf("failed to read line %d: %w", line, err)
	}

	task, ok := grammar.ParseLine(content, line)
	if !ok {
		return fmt.Errorf("line %d is not a task line: %q", line, content)
	}

	marker := grammar.MarkerFor(state)
	col := grammar.MarkerColumn(task.Indent)
	if content[col] == marker {
		return nil
	}

	return e.store.ReplaceRange(uri, line, col, col+1, string(marker))
}

// TrySetMarker is SetMarker with best-effort semantics: failures are logged
// and swallowed. Used where an edit failure must never break the calling
// command handler.
func (e *Editor) TrySetMarker(uri string, line int, state grammar.State) {
	if err := e.SetMarker(uri, line, state); err != nil {
		e.logger.Warn("checkbox rewrite failed",
			zap.String("uri", uri),
			zap.Int("line", line),
			zap.String("state", state.String()),
			zap.Error(err))
	}
}
