// Package host is the seam standing in for the editor's command surface:
// a registry of named commands invoked by affordances, and a notification
// sink for non-blocking user-visible messages.
package host

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Command identifiers exposed by tasklens itself.
const (
	CmdStartTask   = "tasklens.startTask"
	CmdRetryTask   = "tasklens.retryTask"
	CmdAbortTask   = "tasklens.abortTask"
	CmdDiagnostics = "tasklens.diagnostics"
)

// Chat-surface command identifiers probed by the dispatch chain. Which of
// these exist depends on what the running surface registered.
const (
	CmdChatSendPrompt  = "chat.sendPrompt"
	CmdChatOpenPanel   = "chat.openPanel"
	CmdChatFocusInput  = "chat.focusInput"
	CmdChatSubmitInput = "chat.submitInput"
)

// Args carries the arguments of a command invocation.
type Args struct {
	URI  string
	Line int
	Text string
}

// Handler executes one command.
type Handler func(ctx context.Context, args Args) error

// Registry maps command identifiers to handlers.
type Registry struct {
	handlers map[string]Handler
	logger   *zap.Logger
}

// NewRegistry creates an empty command registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register binds a handler to a command id, replacing any previous binding.
func (r *Registry) Register(id string, h Handler) {
	r.handlers[id] = h
}

// Has reports whether a command id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.handlers[id]
	return ok
}

// Execute runs a registered command. Handler panics are contained here so a
// misbehaving handler cannot take down the invoking surface.
func (r *Registry) Execute(ctx context.Context, id string, args Args) (err error) {
	h, ok := r.handlers[id]
	if !ok {
		return fmt.Errorf("unknown command: %s", id)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("command %s panicked: %v", id, rec)
			r.logger.Error("command panic",
				zap.String("command", id),
				zap.Any("panic", rec))
		}
	}()

	if err := h(ctx, args); err != nil {
		r.logger.Warn("command failed",
			zap.String("command", id),
			zap.Error(err))
		return err
	}
	return nil
}

// Notifier surfaces non-blocking messages to the user.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// LogNotifier routes notifications to the structured log only. The TUI
// installs its own notifier; this is the fallback for headless commands.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Info(msg string)  { n.Logger.Info(msg) }
func (n LogNotifier) Warn(msg string)  { n.Logger.Warn(msg) }
func (n LogNotifier) Error(msg string) { n.Logger.Error(msg) }
