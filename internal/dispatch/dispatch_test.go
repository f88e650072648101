package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tasklens/internal/grammar"
	"tasklens/internal/host"
)

type scripted struct {
	name     string
	outcome  Outcome
	delivery Delivery
	err      error
	calls    int
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) Deliver(context.Context, string) (Outcome, Delivery, error) {
	s.calls++
	return s.outcome, s.delivery, s.err
}

func TestDispatchFirstHandledWins(t *testing.T) {
	skip := &scripted{name: "skip", outcome: OutcomeNotApplicable}
	fail := &scripted{name: "fail", outcome: OutcomeError, err: errors.New("boom")}
	win := &scripted{name: "win", outcome: OutcomeHandled, delivery: DeliverySubmitted}
	late := &scripted{name: "late", outcome: OutcomeHandled}

	d := New(nil, skip, fail, win, late)
	res := d.Dispatch(context.Background(), "prompt")

	if !res.Handled {
		t.Fatal("Expected dispatch to be handled")
	}
	if res.Strategy != "win" {
		t.Errorf("Expected 'win' to handle, got %q", res.Strategy)
	}
	if res.Delivery != DeliverySubmitted {
		t.Errorf("Expected submitted delivery, got %v", res.Delivery)
	}
	if skip.calls != 1 || fail.calls != 1 || win.calls != 1 {
		t.Error("Expected every earlier strategy to be tried once")
	}
	if late.calls != 0 {
		t.Error("Expected chain to stop at the first handled strategy")
	}
}

func TestDispatchAllFailing(t *testing.T) {
	d := New(nil,
		&scripted{name: "a", outcome: OutcomeNotApplicable},
		&scripted{name: "b", outcome: OutcomeError, err: errors.New("boom")},
	)
	res := d.Dispatch(context.Background(), "prompt")
	if res.Handled {
		t.Error("Expected unhandled result when no strategy handles")
	}
}

func TestCommandProbe(t *testing.T) {
	registry := host.NewRegistry(nil)
	probe := &CommandProbe{Registry: registry}

	outcome, _, _ := probe.Deliver(context.Background(), "p")
	if outcome != OutcomeNotApplicable {
		t.Errorf("Expected not-applicable with no commands registered, got %v", outcome)
	}

	registry.Register(host.CmdChatSendPrompt, func(ctx context.Context, args host.Args) error {
		return errors.New("surface busy")
	})
	outcome, _, err := probe.Deliver(context.Background(), "p")
	if outcome != OutcomeError || err == nil {
		t.Errorf("Expected error outcome when the only command fails, got %v", outcome)
	}

	var received string
	registry.Register(host.CmdChatSendPrompt, func(ctx context.Context, args host.Args) error {
		received = args.Text
		return nil
	})
	outcome, delivery, _ := probe.Deliver(context.Background(), "the prompt")
	if outcome != OutcomeHandled || delivery != DeliverySubmitted {
		t.Errorf("Expected handled/submitted, got %v/%v", outcome, delivery)
	}
	if received != "the prompt" {
		t.Errorf("Expected prompt passed through, got %q", received)
	}
}

func TestPasteAndSubmit(t *testing.T) {
	registry := host.NewRegistry(nil)
	var steps []string
	strategy := &PasteAndSubmit{
		Registry:       registry,
		SettleDelay:    time.Millisecond,
		Sleep:          func(time.Duration) { steps = append(steps, "settle") },
		WriteClipboard: func(string) error { steps = append(steps, "copy"); return nil },
	}

	outcome, _, _ := strategy.Deliver(context.Background(), "p")
	if outcome != OutcomeNotApplicable {
		t.Errorf("Expected not-applicable without focus/submit commands, got %v", outcome)
	}

	registry.Register(host.CmdChatFocusInput, func(ctx context.Context, args host.Args) error {
		steps = append(steps, "focus")
		return nil
	})
	registry.Register(host.CmdChatSubmitInput, func(ctx context.Context, args host.Args) error {
		steps = append(steps, "submit")
		return nil
	})

	outcome, delivery, err := strategy.Deliver(context.Background(), "p")
	if err != nil || outcome != OutcomeHandled || delivery != DeliverySubmitted {
		t.Fatalf("Expected handled/submitted, got %v/%v (%v)", outcome, delivery, err)
	}
	want := "copy,focus,settle,submit"
	if got := strings.Join(steps, ","); got != want {
		t.Errorf("Expected step order %s, got %s", want, got)
	}
}

func TestChatDirectGating(t *testing.T) {
	strategy := &ChatDirect{Enabled: false, APIKey: "k"}
	if outcome, _, _ := strategy.Deliver(context.Background(), "p"); outcome != OutcomeNotApplicable {
		t.Errorf("Expected disabled strategy to be not-applicable, got %v", outcome)
	}
	strategy = &ChatDirect{Enabled: true}
	if outcome, _, _ := strategy.Deliver(context.Background(), "p"); outcome != OutcomeNotApplicable {
		t.Errorf("Expected keyless strategy to be not-applicable, got %v", outcome)
	}
}

func TestClipboardFallbackAlwaysHandles(t *testing.T) {
	ok := &ClipboardFallback{WriteClipboard: func(string) error { return nil }}
	outcome, delivery, _ := ok.Deliver(context.Background(), "p")
	if outcome != OutcomeHandled || delivery != DeliveryCopied {
		t.Errorf("Expected handled/copied, got %v/%v", outcome, delivery)
	}

	broken := &ClipboardFallback{WriteClipboard: func(string) error { return errors.New("no display") }}
	outcome, delivery, _ = broken.Deliver(context.Background(), "p")
	if outcome != OutcomeHandled || delivery != DeliveryCopied {
		t.Errorf("Expected clipboard failure to still count as handled, got %v/%v", outcome, delivery)
	}
}

func TestBuildPrompt(t *testing.T) {
	task := grammar.Task{Line: 4, Text: "Write docs", State: grammar.StatePending}
	prompt := BuildPrompt(task, []string{".kiro/steering/product.md", ".kiro/steering/tech.md"})

	for _, want := range []string{
		"Write docs",
		"Status: Pending",
		"Line: 5",
		".kiro/steering/product.md",
		".kiro/steering/tech.md",
		"[x]",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q\nprompt:\n%s", want, prompt)
		}
	}

	done := grammar.Task{Line: 0, Text: "Done thing", State: grammar.StateDone}
	prompt = BuildPrompt(done, nil)
	if !strings.Contains(prompt, "Status: Done") {
		t.Errorf("Expected done status label, got:\n%s", prompt)
	}
	if strings.Contains(prompt, "steering documents") {
		t.Error("Expected no steering section without reference files")
	}
}
