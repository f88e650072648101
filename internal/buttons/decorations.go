package buttons

import (
	"sync"
	"time"

	"tasklens/internal/clock"
)

// DecorationKind classifies the full-line overlay a task line carries.
type DecorationKind int

const (
	DecorationNone DecorationKind = iota
	// DecorationWarning overlays the line while an execution is in flight.
	DecorationWarning
	// DecorationInfo flashes briefly after a detected completion.
	DecorationInfo
	// DecorationError flashes briefly after a failed dispatch.
	DecorationError
)

const (
	// DefaultSuccessFlash is how long the success overlay stays visible.
	DefaultSuccessFlash = 2 * time.Second
	// DefaultFailureFlash is how long the failure overlay stays visible.
	DefaultFailureFlash = 3 * time.Second
)

type decoration struct {
	kind DecorationKind
	// until is the zero time for decorations that stay until cleared.
	until time.Time
}

// Decorations tracks per-line overlays with time-bounded flashes. Writers
// run on command and timer goroutines while the render loop reads (and Active
// drops expired entries as it reads), so the map is mutex-guarded.
type Decorations struct {
	mu           sync.Mutex
	m            map[key]decoration
	clock        clock.Clock
	successFlash time.Duration
	failureFlash time.Duration
}

// NewDecorations creates a decoration tracker. Zero durations select the
// defaults.
func NewDecorations(clk clock.Clock, successFlash, failureFlash time.Duration) *Decorations {
	if clk == nil {
		clk = clock.New()
	}
	if successFlash <= 0 {
		successFlash = DefaultSuccessFlash
	}
	if failureFlash <= 0 {
		failureFlash = DefaultFailureFlash
	}
	return &Decorations{
		m:            make(map[key]decoration),
		clock:        clk,
		successFlash: successFlash,
		failureFlash: failureFlash,
	}
}

// SetLoading applies the warning overlay until explicitly cleared.
func (d *Decorations) SetLoading(uri string, line int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[key{uri, line}] = decoration{kind: DecorationWarning}
}

// FlashSuccess applies the info overlay for the configured flash window.
func (d *Decorations) FlashSuccess(uri string, line int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[key{uri, line}] = decoration{kind: DecorationInfo, until: d.clock.Now().Add(d.successFlash)}
}

// FlashFailure applies the error overlay for the configured flash window.
func (d *Decorations) FlashFailure(uri string, line int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[key{uri, line}] = decoration{kind: DecorationError, until: d.clock.Now().Add(d.failureFlash)}
}

// Clear removes the overlay for a line.
func (d *Decorations) Clear(uri string, line int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.m, key{uri, line})
}

// Active returns the overlay currently in effect for a line, dropping
// expired flashes as it goes.
func (d *Decorations) Active(uri string, line int) DecorationKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := key{uri, line}
	dec, ok := d.m[k]
	if !ok {
		return DecorationNone
	}
	if !dec.until.IsZero() && d.clock.Now().After(dec.until) {
		delete(d.m, k)
		return DecorationNone
	}
	return dec.kind
}
