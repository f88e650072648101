// Package document holds in-memory buffers for the files tasklens watches.
// Every buffer carries a monotonically increasing version number; any text
// change, whether applied by us or picked up from disk, bumps it.
package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Document represents one open text buffer backed by a file on disk.
// Identity fields are immutable; the line buffer and version are guarded by
// their own lock because the render goroutine reads while command and timer
// goroutines edit through the store.
type Document struct {
	uri      string
	path     string
	language string

	mu      sync.RWMutex
	version int
	lines   []string
}

// newDocument builds a buffer from file content. The version starts at 1.
func newDocument(path, content string) *Document {
	return &Document{
		uri:      URIForPath(path),
		path:     path,
		language: languageForPath(path),
		version:  1,
		lines:    splitLines(content),
	}
}

// URIForPath returns the stable identity used to key caches and state maps.
func URIForPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

func languageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "markdown"
	default:
		return "plaintext"
	}
}

func splitLines(content string) []string {
	// A trailing newline does not produce a phantom empty last line.
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return []string{}
	}
	return strings.Split(content, "\n")
}

// URI returns the document identity.
func (d *Document) URI() string { return d.uri }

// Path returns the backing file path.
func (d *Document) Path() string { return d.path }

// LanguageID returns the declared language, derived from the file extension.
func (d *Document) LanguageID() string { return d.language }

// Version returns the current revision counter.
func (d *Document) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// LineCount returns the number of lines in the buffer.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// Line returns the content of the zero-based line index.
func (d *Document) Line(i int) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return "", fmt.Errorf("line %d out of range (document has %d lines)", i, len(d.lines))
	}
	return d.lines[i], nil
}

// Lines returns a copy of all lines.
func (d *Document) Lines() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// Text returns the full buffer content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.lines) == 0 {
		return ""
	}
	return strings.Join(d.lines, "\n") + "\n"
}

// replaceRange replaces [startCol, endCol) on a single line. It is the only
// mutation primitive; callers never touch lines directly.
func (d *Document) replaceRange(line, startCol, endCol int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if line < 0 || line >= len(d.lines) {
		return fmt.Errorf("line %d out of range (document has %d lines)", line, len(d.lines))
	}
	content := d.lines[line]
	if startCol < 0 || endCol < startCol || endCol > len(content) {
		return fmt.Errorf("range [%d,%d) out of bounds on line %d (%d chars)", startCol, endCol, line, len(content))
	}
	d.lines[line] = content[:startCol] + text + content[endCol:]
	d.version++
	return nil
}

// setText replaces the whole buffer and bumps the version.
func (d *Document) setText(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = splitLines(content)
	d.version++
}
