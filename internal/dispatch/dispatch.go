// Package dispatch hands a constructed prompt to an external chat surface.
// Mechanisms are ordered strategies tried until one reports it handled the
// prompt; the final strategy degrades to a clipboard copy so content is
// never lost even when automatic submission is impossible.
package dispatch

import (
	"context"

	"go.uber.org/zap"
)

// Outcome is the tri-state result of one strategy attempt.
type Outcome int

const (
	// OutcomeNotApplicable means the strategy's mechanism is absent in the
	// current environment; the chain moves on silently.
	OutcomeNotApplicable Outcome = iota
	// OutcomeHandled means the prompt was delivered.
	OutcomeHandled
	// OutcomeError means the mechanism exists but failed; the chain logs
	// and moves on.
	OutcomeError
)

// Delivery distinguishes how a handled prompt reached the surface.
type Delivery int

const (
	// DeliverySubmitted means the prompt was submitted automatically.
	DeliverySubmitted Delivery = iota
	// DeliveryCopied means the prompt landed on the clipboard and the user
	// must paste it themselves.
	DeliveryCopied
)

// String returns the transcript label for a delivery mode.
func (d Delivery) String() string {
	if d == DeliveryCopied {
		return "copied"
	}
	return "submitted"
}

// Result reports a dispatch attempt up to the lifecycle controller, which
// alone decides user-visible consequences.
type Result struct {
	// Handled reports handoff success, regardless of eventual task
	// completion. A copied-only delivery still counts as a handoff.
	Handled  bool
	Strategy string
	Delivery Delivery
}

// Strategy is one delivery mechanism.
type Strategy interface {
	Name() string
	// Deliver attempts to hand the prompt off. The error is only consulted
	// when the outcome is OutcomeError.
	Deliver(ctx context.Context, prompt string) (Outcome, Delivery, error)
}

// Dispatcher runs the strategy chain.
type Dispatcher struct {
	strategies []Strategy
	logger     *zap.Logger
}

// New creates a dispatcher over an ordered strategy chain.
func New(logger *zap.Logger, strategies ...Strategy) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{strategies: strategies, logger: logger}
}

// Dispatch tries each strategy in order until one handles the prompt.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) Result {
	for _, s := range d.strategies {
		outcome, delivery, err := s.Deliver(ctx, prompt)
		switch outcome {
		case OutcomeHandled:
			d.logger.Info("prompt handed off",
				zap.String("strategy", s.Name()),
				zap.String("delivery", delivery.String()))
			return Result{Handled: true, Strategy: s.Name(), Delivery: delivery}
		case OutcomeError:
			d.logger.Warn("dispatch mechanism failed",
				zap.String("strategy", s.Name()),
				zap.Error(err))
		}
	}
	return Result{}
}
