// Package lifecycle orchestrates task execution: marker rewrite, dispatch
// handoff, completion detection, and the timeout safeguard that keeps a line
// from staying stuck in a loading state when the chat surface never reports
// back.
package lifecycle

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasklens/internal/buttons"
	"tasklens/internal/chat"
	"tasklens/internal/clock"
	"tasklens/internal/dispatch"
	"tasklens/internal/document"
	"tasklens/internal/editor"
	"tasklens/internal/grammar"
	"tasklens/internal/host"
	"tasklens/internal/taskcache"
)

// Status is the lifecycle state of one in-flight execution.
type Status int

const (
	StatusIdle Status = iota
	StatusDispatching
	StatusChatSent
)

// DefaultTimeout bounds how long an execution may await completion.
const DefaultTimeout = 60 * time.Second

type key struct {
	uri  string
	line int
}

// execution is the bookkeeping for one in-flight task run. At most one per
// (document, line); a superseding Start cancels the old timer and abandons
// the old record.
type execution struct {
	id     string
	status Status
	timer  clock.Timer
}

// Deps wires the controller's collaborators.
type Deps struct {
	Store      *document.Store
	Cache      *taskcache.Cache
	Buttons    *buttons.Store
	Decor      *buttons.Decorations
	Editor     *editor.Editor
	Dispatcher *dispatch.Dispatcher
	Session    *chat.Session
	// ReferenceFiles resolves the steering documents listed in prompts.
	ReferenceFiles func() []string
	Notifier       host.Notifier
	Clock          clock.Clock
	Timeout        time.Duration
	// Refresh asks the surface to recompute affordances. Always called
	// without the controller lock held.
	Refresh func()
	Logger  *zap.Logger
}

// Controller owns the pending-execution map. Bookkeeping is mutex-guarded
// because timeout callbacks and watcher-driven changes arrive from other
// goroutines; document mutations always happen outside the lock so change
// subscribers can re-enter the controller safely.
type Controller struct {
	mu      sync.Mutex
	pending map[key]*execution
	deps    Deps
}

// New creates a controller. Missing optional deps get inert defaults.
func New(deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultTimeout
	}
	if deps.Refresh == nil {
		deps.Refresh = func() {}
	}
	if deps.Notifier == nil {
		deps.Notifier = host.LogNotifier{Logger: zap.NewNop()}
	}
	if deps.ReferenceFiles == nil {
		deps.ReferenceFiles = func() []string { return nil }
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Controller{
		pending: make(map[key]*execution),
		deps:    deps,
	}
}

// Status reports the lifecycle state of a line.
func (c *Controller) Status(uri string, line int) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if exec, ok := c.pending[key{uri, line}]; ok {
		return exec.status
	}
	return StatusIdle
}

// PendingCount reports how many executions are in flight.
func (c *Controller) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Start begins executing a task line: supersede any previous run, mark the
// checkbox executing, arm the timeout, and hand the prompt to the dispatch
// chain. All failures degrade to logged diagnostics plus decorations; Start
// never returns an error to the invoking command surface.
func (c *Controller) Start(ctx context.Context, uri string, line int) {
	doc := c.deps.Store.Get(uri)
	if doc == nil {
		c.deps.Logger.Warn("start on unknown document", zap.String("uri", uri))
		return
	}

	task, ok := c.findTask(doc, line)
	if !ok {
		c.deps.Notifier.Warn("No task on that line anymore")
		c.deps.Logger.Warn("start on non-task line",
			zap.String("uri", uri),
			zap.Int("line", line))
		return
	}

	exec := &execution{id: uuid.NewString(), status: StatusDispatching}

	c.mu.Lock()
	k := key{uri, line}
	if old, exists := c.pending[k]; exists {
		// A restarted line abandons the previous run's bookkeeping; an
		// already-issued dispatch cannot be recalled.
		old.timer.Stop()
		c.deps.Logger.Info("superseding in-flight execution",
			zap.String("uri", uri),
			zap.Int("line", line))
	}
	c.pending[k] = exec
	exec.timer = c.deps.Clock.AfterFunc(c.deps.Timeout, func() {
		c.timeoutFired(uri, line, exec.id)
	})
	c.deps.Buttons.Set(uri, line, buttons.StateLoading)
	c.deps.Decor.SetLoading(uri, line)
	c.mu.Unlock()

	if task.State == grammar.StatePending {
		c.deps.Editor.TrySetMarker(uri, line, grammar.StateExecuting)
	}
	c.deps.Refresh()

	prompt := dispatch.BuildPrompt(task, c.deps.ReferenceFiles())
	result := c.deps.Dispatcher.Dispatch(ctx, prompt)
	c.finishDispatch(uri, line, exec.id, task, prompt, result)
}

// Retry re-runs an already-done line. The state machine is identical to
// Start; the checkbox keeps its done marker while the retry is in flight.
func (c *Controller) Retry(ctx context.Context, uri string, line int) {
	c.Start(ctx, uri, line)
}

func (c *Controller) finishDispatch(uri string, line int, id string, task grammar.Task, prompt string, result dispatch.Result) {
	c.mu.Lock()
	k := key{uri, line}
	exec, ok := c.pending[k]
	if !ok || exec.id != id {
		// Superseded or aborted while the dispatch was in flight.
		c.mu.Unlock()
		return
	}

	if result.Handled {
		// Loading intentionally stays on until completion is detected or
		// the timeout fires; a handoff says nothing about the task itself.
		exec.status = StatusChatSent
		c.mu.Unlock()

		if c.deps.Session != nil {
			if err := c.deps.Session.Record(chat.Entry{
				URI:      uri,
				Line:     line,
				TaskText: task.Text,
				Strategy: result.Strategy,
				Delivery: result.Delivery.String(),
				Prompt:   prompt,
			}); err != nil {
				c.deps.Logger.Warn("failed to record transcript", zap.Error(err))
			}
		}
		if result.Delivery == dispatch.DeliveryCopied {
			c.deps.Notifier.Info("Prompt copied to clipboard — paste it into your chat")
		} else {
			c.deps.Notifier.Info("Task handed off to chat")
		}
		return
	}

	exec.timer.Stop()
	delete(c.pending, k)
	c.deps.Buttons.Set(uri, line, buttons.StateNormal)
	c.deps.Decor.FlashFailure(uri, line)
	c.mu.Unlock()

	c.deps.Notifier.Error("Could not reach the chat surface")
	c.deps.Logger.Warn("dispatch handoff failed",
		zap.String("uri", uri),
		zap.Int("line", line))
	c.deps.Refresh()
}

// Abort cancels an in-flight execution and restores the pending marker,
// regardless of what the checkbox currently reads. A line with nothing in
// flight is left untouched: the abort keybinding is global, and an idle done
// line must not lose its marker to a stray keypress.
func (c *Controller) Abort(uri string, line int) {
	c.mu.Lock()
	k := key{uri, line}
	exec, ok := c.pending[k]
	if !ok {
		c.mu.Unlock()
		return
	}
	exec.timer.Stop()
	delete(c.pending, k)
	c.deps.Buttons.Set(uri, line, buttons.StateNormal)
	c.deps.Decor.Clear(uri, line)
	c.mu.Unlock()

	c.deps.Editor.TrySetMarker(uri, line, grammar.StatePending)
	c.deps.Notifier.Info("Task aborted")
	c.deps.Refresh()
}

// timeoutFired is the liveness safeguard: with no completion signal inside
// the window, revert the executing marker and drop the bookkeeping so the
// affordance cannot stay stuck in loading.
func (c *Controller) timeoutFired(uri string, line int, id string) {
	c.mu.Lock()
	k := key{uri, line}
	exec, ok := c.pending[k]
	if !ok || exec.id != id {
		c.mu.Unlock()
		return
	}
	delete(c.pending, k)
	c.deps.Buttons.Set(uri, line, buttons.StateNormal)
	c.deps.Decor.Clear(uri, line)
	c.mu.Unlock()

	c.revertIfExecuting(uri, line)
	c.deps.Notifier.Warn("Task timed out waiting for the chat to finish")
	c.deps.Logger.Info("execution timed out",
		zap.String("uri", uri),
		zap.Int("line", line))
	c.deps.Refresh()
}

// revertIfExecuting rewrites "[-]" back to "[ ]" on the then-current line.
// Lines that no longer carry the executing marker are left alone.
func (c *Controller) revertIfExecuting(uri string, line int) {
	doc := c.deps.Store.Get(uri)
	if doc == nil {
		return
	}
	content, err := doc.Line(line)
	if err != nil {
		return
	}
	if task, ok := grammar.ParseLine(content, line); ok && task.State == grammar.StateExecuting {
		c.deps.Editor.TrySetMarker(uri, line, grammar.StatePending)
	}
}

// HandleChange feeds document-change notifications into completion
// detection: when a change to a document with pending executions introduces
// a done marker, the affected lines are re-read to confirm they now parse
// as done before the success path runs.
func (c *Controller) HandleChange(ch document.Change) {
	if !strings.ContainsAny(ch.ChangedText, "xX") {
		return
	}
	doc := c.deps.Store.Get(ch.URI)
	if doc == nil {
		return
	}

	type completed struct {
		line int
	}
	var done []completed

	c.mu.Lock()
	for k, exec := range c.pending {
		if k.uri != ch.URI {
			continue
		}
		content, err := doc.Line(k.line)
		if err != nil {
			continue
		}
		task, ok := grammar.ParseLine(content, k.line)
		if !ok || task.State != grammar.StateDone {
			continue
		}
		exec.timer.Stop()
		delete(c.pending, k)
		c.deps.Buttons.Set(k.uri, k.line, buttons.StateNormal)
		c.deps.Decor.FlashSuccess(k.uri, k.line)
		done = append(done, completed{line: k.line})
	}
	c.mu.Unlock()

	for _, d := range done {
		c.deps.Notifier.Info("Task completed")
		c.deps.Logger.Info("completion detected",
			zap.String("uri", ch.URI),
			zap.Int("line", d.line))
	}
	if len(done) > 0 {
		c.deps.Refresh()
	}
}

func (c *Controller) findTask(doc *document.Document, line int) (grammar.Task, bool) {
	for _, task := range c.deps.Cache.Parse(doc) {
		if task.Line == line {
			return task, true
		}
	}
	return grammar.Task{}, false
}
