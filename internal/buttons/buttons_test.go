package buttons

import (
	"sync"
	"testing"
	"time"

	"tasklens/internal/clock"
	"tasklens/internal/grammar"
	"tasklens/internal/host"
)

const uri = "file:///tasks.md"

func titles(lenses []Lens) []string {
	out := make([]string, len(lenses))
	for i, l := range lenses {
		out[i] = l.Title
	}
	return out
}

func TestRenderPendingIdle(t *testing.T) {
	tasks := []grammar.Task{{Line: 0, Text: "Write docs", State: grammar.StatePending}}
	lenses := RenderLenses(uri, tasks, NewStore())

	if len(lenses) != 1 {
		t.Fatalf("Expected 1 lens, got %d: %v", len(lenses), titles(lenses))
	}
	if lenses[0].Command != host.CmdStartTask {
		t.Errorf("Expected start command, got %q", lenses[0].Command)
	}
	if lenses[0].Args.Line != 0 || lenses[0].Args.URI != uri {
		t.Errorf("Unexpected lens args: %+v", lenses[0].Args)
	}
}

func TestRenderPendingLoading(t *testing.T) {
	tasks := []grammar.Task{{Line: 2, Text: "Write docs", State: grammar.StatePending}}
	states := NewStore()
	states.Set(uri, 2, StateLoading)

	lenses := RenderLenses(uri, tasks, states)
	if len(lenses) != 2 {
		t.Fatalf("Expected 2 lenses, got %d: %v", len(lenses), titles(lenses))
	}
	if lenses[0].Actionable() {
		t.Error("Expected executing label to be non-actionable")
	}
	if lenses[1].Command != host.CmdAbortTask {
		t.Errorf("Expected abort command, got %q", lenses[1].Command)
	}
}

func TestRenderExecutingMarkerIgnoresButtonState(t *testing.T) {
	// A "[-]" marker renders the executing affordances regardless of any
	// button state entry.
	tasks := []grammar.Task{{Line: 0, Text: "In progress", State: grammar.StateExecuting}}
	lenses := RenderLenses(uri, tasks, NewStore())

	if len(lenses) != 2 {
		t.Fatalf("Expected 2 lenses, got %d: %v", len(lenses), titles(lenses))
	}
	if lenses[0].Actionable() {
		t.Error("Expected executing label to be non-actionable")
	}
	if lenses[1].Command != host.CmdAbortTask {
		t.Errorf("Expected abort command, got %q", lenses[1].Command)
	}
}

func TestRenderDoneIdle(t *testing.T) {
	tasks := []grammar.Task{{Line: 0, Text: "Done thing", State: grammar.StateDone}}
	lenses := RenderLenses(uri, tasks, NewStore())

	if len(lenses) != 2 {
		t.Fatalf("Expected 2 lenses, got %d: %v", len(lenses), titles(lenses))
	}
	if lenses[0].Actionable() {
		t.Error("Expected completed indicator to be non-actionable")
	}
	if lenses[1].Command != host.CmdRetryTask {
		t.Errorf("Expected retry command, got %q", lenses[1].Command)
	}
}

func TestRenderDoneLoading(t *testing.T) {
	tasks := []grammar.Task{{Line: 0, Text: "Done thing", State: grammar.StateDone}}
	states := NewStore()
	states.Set(uri, 0, StateLoading)

	lenses := RenderLenses(uri, tasks, states)
	if len(lenses) != 3 {
		t.Fatalf("Expected 3 lenses, got %d: %v", len(lenses), titles(lenses))
	}
	if lenses[0].Actionable() || lenses[1].Actionable() {
		t.Error("Expected completed and retrying labels to be non-actionable")
	}
	if lenses[2].Command != host.CmdAbortTask {
		t.Errorf("Expected abort command, got %q", lenses[2].Command)
	}
}

func TestRenderDisabledSuppressesCommand(t *testing.T) {
	tasks := []grammar.Task{{Line: 0, Text: "Write docs", State: grammar.StatePending}}
	states := NewStore()
	states.Set(uri, 0, StateDisabled)

	lenses := RenderLenses(uri, tasks, states)
	if len(lenses) != 1 {
		t.Fatalf("Expected 1 lens, got %d", len(lenses))
	}
	if lenses[0].Actionable() {
		t.Error("Expected disabled affordance to be inert")
	}
	if lenses[0].Title == "" {
		t.Error("Expected disabled affordance to keep its label")
	}
}

func TestRenderIdempotent(t *testing.T) {
	tasks := []grammar.Task{
		{Line: 0, Text: "Write docs", State: grammar.StatePending},
		{Line: 1, Text: "Done thing", State: grammar.StateDone},
	}
	states := NewStore()
	states.Set(uri, 0, StateLoading)

	first := RenderLenses(uri, tasks, states)
	second := RenderLenses(uri, tasks, states)

	if len(first) != len(second) {
		t.Fatalf("Expected identical renders, got %d and %d lenses", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Lens %d differs between renders: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestStoreLastWriterWins(t *testing.T) {
	states := NewStore()
	states.Set(uri, 0, StateLoading)
	states.Set(uri, 0, StateNormal)
	if got := states.Get(uri, 0); got != StateNormal {
		t.Errorf("Expected last write to win, got %v", got)
	}
}

func TestClearDocument(t *testing.T) {
	states := NewStore()
	states.Set(uri, 0, StateLoading)
	states.Set(uri, 3, StateDisabled)
	states.Set("file:///other.md", 0, StateLoading)

	states.ClearDocument(uri)

	if states.Get(uri, 0) != StateNormal || states.Get(uri, 3) != StateNormal {
		t.Error("Expected document states to be cleared")
	}
	if states.Get("file:///other.md", 0) != StateLoading {
		t.Error("Expected other document's state to survive")
	}
}

func TestDecorationLifecycle(t *testing.T) {
	clk := clock.NewFake()
	decor := NewDecorations(clk, 2*time.Second, 3*time.Second)

	decor.SetLoading(uri, 0)
	if decor.Active(uri, 0) != DecorationWarning {
		t.Error("Expected warning overlay while loading")
	}

	// Loading does not expire on its own.
	clk.Advance(time.Hour)
	if decor.Active(uri, 0) != DecorationWarning {
		t.Error("Expected warning overlay to persist until cleared")
	}

	decor.FlashSuccess(uri, 0)
	if decor.Active(uri, 0) != DecorationInfo {
		t.Error("Expected info overlay right after success")
	}
	clk.Advance(2500 * time.Millisecond)
	if decor.Active(uri, 0) != DecorationNone {
		t.Error("Expected info overlay to expire after the flash window")
	}

	decor.FlashFailure(uri, 0)
	clk.Advance(2500 * time.Millisecond)
	if decor.Active(uri, 0) != DecorationError {
		t.Error("Expected error overlay to outlast the success window")
	}
	clk.Advance(time.Second)
	if decor.Active(uri, 0) != DecorationNone {
		t.Error("Expected error overlay to expire")
	}

	decor.SetLoading(uri, 0)
	decor.Clear(uri, 0)
	if decor.Active(uri, 0) != DecorationNone {
		t.Error("Expected cleared overlay to be gone")
	}
}

func TestConcurrentStateAccess(t *testing.T) {
	store := NewStore()
	clk := clock.NewFake()
	decor := NewDecorations(clk, time.Second, time.Second)

	// Writers stand in for command and timeout goroutines; the reader for
	// the render loop, which also drops expired flashes inside Active.
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				line := i % 8
				store.Set(uri, line, StateLoading)
				decor.SetLoading(uri, line)
				decor.FlashSuccess(uri, line)
				store.Set(uri, line, StateNormal)
				if w == 0 && i%50 == 0 {
					store.ClearDocument(uri)
					clk.Advance(2 * time.Second)
				}
			}
		}(w)
	}
	for r := 0; r < 2; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				line := i % 8
				_ = store.Get(uri, line)
				_ = decor.Active(uri, line)
				decor.Clear(uri, line)
			}
		}()
	}
	wg.Wait()

	store.ClearDocument(uri)
	if got := store.Get(uri, 0); got != StateNormal {
		t.Errorf("Expected normal state after clear, got %v", got)
	}
}
