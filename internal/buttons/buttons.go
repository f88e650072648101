// Package buttons tracks per-line affordance state and computes what labels
// a task line shows. Button state is deliberately independent of the parsed
// checkbox state: a line can show a loading affordance while its marker on
// disk still reads "[ ]".
package buttons

import (
	"sync"

	"tasklens/internal/grammar"
	"tasklens/internal/host"
)

// State is the UI/execution status of one (document, line) pair.
type State int

const (
	StateNormal State = iota
	StateLoading
	// StateDisabled suppresses the command binding on an otherwise
	// actionable affordance. Not reached by the execution lifecycle;
	// reserved for multi-click guards.
	StateDisabled
)

type key struct {
	uri  string
	line int
}

// Store holds button states keyed by (document URI, line). Last writer wins;
// there is no queueing of concurrent updates. Command handlers and timeout
// callbacks write from their own goroutines while the render loop reads, so
// the map is mutex-guarded.
type Store struct {
	mu     sync.Mutex
	states map[key]State
}

// NewStore creates an empty button state store.
func NewStore() *Store {
	return &Store{states: make(map[key]State)}
}

// Set records the state for a line.
func (s *Store) Set(uri string, line int, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key{uri, line}] = state
}

// Get returns the state for a line, defaulting to Normal.
func (s *Store) Get(uri string, line int) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[key{uri, line}]
}

// Clear drops the state for a single line.
func (s *Store) Clear(uri string, line int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key{uri, line})
}

// ClearDocument drops every state belonging to a document, used when the
// document closes or deactivates.
func (s *Store) ClearDocument(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.states {
		if k.uri == uri {
			delete(s.states, k)
		}
	}
}

// Lens is one rendered affordance for a task line. Non-actionable lenses
// carry no command and act as labels only.
type Lens struct {
	Line    int
	Title   string
	Command string
	Args    host.Args
}

// Actionable reports whether the lens is bound to a command.
func (l Lens) Actionable() bool {
	return l.Command != ""
}

// Affordance labels. The running surface renders these verbatim.
const (
	labelStart     = "▶ Start"
	labelExecuting = "⟳ Executing…"
	labelRetrying  = "⟳ Retrying…"
	labelAbort     = "✕ Abort"
	labelCompleted = "✓ completed"
	labelRetry     = "↻ Retry"
)

// RenderLenses computes the affordances for a document's task list given the
// current button states. It is pure over its inputs: rendering the same state
// twice yields the same lenses.
func RenderLenses(uri string, tasks []grammar.Task, states *Store) []Lens {
	var lenses []Lens
	for _, task := range tasks {
		lenses = append(lenses, renderTask(uri, task, states.Get(uri, task.Line))...)
	}
	return lenses
}

func renderTask(uri string, task grammar.Task, state State) []Lens {
	busy := state == StateLoading || task.State == grammar.StateExecuting
	args := host.Args{URI: uri, Line: task.Line, Text: task.Text}

	action := func(title, command string) Lens {
		if state == StateDisabled {
			return Lens{Line: task.Line, Title: title}
		}
		return Lens{Line: task.Line, Title: title, Command: command, Args: args}
	}
	label := func(title string) Lens {
		return Lens{Line: task.Line, Title: title}
	}

	switch {
	case task.State == grammar.StateDone && busy:
		return []Lens{label(labelCompleted), label(labelRetrying), action(labelAbort, host.CmdAbortTask)}
	case task.State == grammar.StateDone:
		return []Lens{label(labelCompleted), action(labelRetry, host.CmdRetryTask)}
	case busy:
		return []Lens{label(labelExecuting), action(labelAbort, host.CmdAbortTask)}
	default:
		return []Lens{action(labelStart, host.CmdStartTask)}
	}
}
