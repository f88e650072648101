// Package taskcache memoizes the per-document checklist parse. An entry is
// valid only while the live document's version matches the version captured
// at parse time; stale or expired entries are treated as misses.
package taskcache

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"tasklens/internal/document"
	"tasklens/internal/grammar"
)

const (
	// DefaultTTL is how long a parse result may be served before a full
	// rescan is forced even when the version still matches.
	DefaultTTL = 10 * time.Minute
	// DefaultMaxDocuments bounds the number of memoized documents.
	DefaultMaxDocuments = 64
)

type entry struct {
	tasks   []grammar.Task
	version int
}

// Cache memoizes parse results keyed by document URI. TTL eviction is
// handled by the underlying expirable LRU, which sweeps expired entries
// periodically on its own and is safe for concurrent use; the scan counter
// is atomic because Parse runs on both the render and command goroutines.
type Cache struct {
	entries *expirable.LRU[string, entry]
	scans   atomic.Int64
	logger  *zap.Logger
}

// New creates a cache. Zero ttl or maxDocuments select the defaults.
func New(ttl time.Duration, maxDocuments int, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxDocuments <= 0 {
		maxDocuments = DefaultMaxDocuments
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries: expirable.NewLRU[string, entry](maxDocuments, nil, ttl),
		logger:  logger,
	}
}

// Parse returns the checklist items of a document, ordered by line number.
// A version-matching unexpired entry is served as a defensive copy without
// rescanning; anything else rescans every line and replaces the entry.
func (c *Cache) Parse(doc *document.Document) []grammar.Task {
	uri := doc.URI()
	if e, ok := c.entries.Get(uri); ok && e.version == doc.Version() {
		return copyTasks(e.tasks)
	}

	tasks := c.scan(doc)
	c.entries.Add(uri, entry{
		tasks:   tasks,
		version: doc.Version(),
	})
	c.logger.Debug("document rescanned",
		zap.String("uri", uri),
		zap.Int("version", doc.Version()),
		zap.Int("tasks", len(tasks)))
	return copyTasks(tasks)
}

func (c *Cache) scan(doc *document.Document) []grammar.Task {
	c.scans.Add(1)
	var tasks []grammar.Task
	for i, line := range doc.Lines() {
		if task, ok := grammar.ParseLine(line, i); ok {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// IsTaskDocument is the cheap pre-filter gating all other processing: the
// document must be markdown and either be named like a tasks file or contain
// at least one checklist line.
func (c *Cache) IsTaskDocument(doc *document.Document) bool {
	if doc.LanguageID() != "markdown" {
		return false
	}
	if strings.HasSuffix(doc.Path(), "tasks.md") {
		return true
	}
	for _, line := range doc.Lines() {
		if grammar.IsTaskLine(line) {
			return true
		}
	}
	return false
}

// Invalidate discards a document's entry immediately, independent of TTL.
func (c *Cache) Invalidate(uri string) {
	c.entries.Remove(uri)
}

// Scans reports how many full document scans have run. Tests use it to
// observe cache hits and misses.
func (c *Cache) Scans() int {
	return int(c.scans.Load())
}

func copyTasks(tasks []grammar.Task) []grammar.Task {
	out := make([]grammar.Task, len(tasks))
	copy(out, tasks)
	return out
}
