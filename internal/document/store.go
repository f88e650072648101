package document

import (
	"fmt"
	"os"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"
)

// Change describes one document mutation delivered to subscribers, in the
// order the mutations happened.
type Change struct {
	URI     string
	Version int
	// ChangedText is the text introduced by the change (insertions only),
	// used by completion detection to cheaply pre-filter before re-reading
	// the affected lines.
	ChangedText string
	// External is true when the change was picked up from disk rather than
	// applied through the store's edit path.
	External bool
}

// Store owns the open documents. A mutex guards the document map and the
// edit path because command handlers and timeout callbacks run off the UI
// loop; subscribers are always notified outside the lock so they may call
// back into the store.
type Store struct {
	mu     sync.Mutex
	docs   map[string]*Document
	subs   []func(Change)
	differ *diffmatchpatch.DiffMatchPatch
	logger *zap.Logger
}

// NewStore creates an empty document store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		docs:   make(map[string]*Document),
		differ: diffmatchpatch.New(),
		logger: logger,
	}
}

// Open reads a file into a buffer and tracks it. Opening an already-open
// path returns the existing buffer untouched.
func (s *Store) Open(path string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uri := URIForPath(path)
	if doc, ok := s.docs[uri]; ok {
		return doc, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	doc := newDocument(path, string(content))
	s.docs[uri] = doc
	s.logger.Debug("document opened",
		zap.String("uri", uri),
		zap.Int("lines", doc.LineCount()))
	return doc, nil
}

// Get returns the open document for a URI, or nil.
func (s *Store) Get(uri string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[uri]
}

// Documents returns the currently open documents.
func (s *Store) Documents() []*Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	return out
}

// Close drops a document from the store.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Subscribe registers a change listener. Listeners run synchronously, in
// registration order, on the caller's goroutine.
func (s *Store) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify(ch Change) {
	s.mu.Lock()
	subs := make([]func(Change), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(ch)
	}
}

// ReplaceRange applies a single-range edit to a live document, persists the
// buffer to disk best-effort, and notifies subscribers. A failed disk write
// is logged, not returned: the in-memory buffer is authoritative.
func (s *Store) ReplaceRange(uri string, line, startCol, endCol int, text string) error {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no open document for %s", uri)
	}
	if err := doc.replaceRange(line, startCol, endCol, text); err != nil {
		s.mu.Unlock()
		return err
	}

	if err := os.WriteFile(doc.Path(), []byte(doc.Text()), 0644); err != nil {
		s.logger.Warn("failed to persist document edit",
			zap.String("uri", uri),
			zap.Error(err))
	}
	version := doc.Version()
	s.mu.Unlock()

	s.notify(Change{
		URI:         uri,
		Version:     version,
		ChangedText: text,
	})
	return nil
}

// Reload re-reads a document from disk, typically after a watcher event.
// Identical content is a no-op so our own writes do not echo back as
// external changes.
func (s *Store) Reload(uri string) error {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("no open document for %s", uri)
	}

	content, err := os.ReadFile(doc.Path())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to reload document: %w", err)
	}

	oldText := doc.Text()
	newText := string(content)
	if newText == oldText {
		s.mu.Unlock()
		return nil
	}

	doc.setText(newText)
	version := doc.Version()
	s.mu.Unlock()

	s.notify(Change{
		URI:         uri,
		Version:     version,
		ChangedText: insertedText(s.differ, oldText, newText),
		External:    true,
	})
	return nil
}

// insertedText collects the text a change introduced, ignoring deletions and
// unchanged spans.
func insertedText(differ *diffmatchpatch.DiffMatchPatch, oldText, newText string) string {
	diffs := differ.DiffMain(oldText, newText, false)
	var inserted string
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffInsert {
			inserted += d.Text
		}
	}
	return inserted
}
