package dispatch

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"tasklens/internal/host"
)

// CommandProbe tries a fixed ordered list of chat command identifiers,
// passing the prompt as the command text. The first registered command that
// succeeds handles the dispatch.
type CommandProbe struct {
	Registry *host.Registry
	// Candidates are tried in order. Defaults to the direct-send ids.
	Candidates []string
}

func (p *CommandProbe) Name() string { return "command-probe" }

func (p *CommandProbe) candidates() []string {
	if len(p.Candidates) > 0 {
		return p.Candidates
	}
	return []string{host.CmdChatSendPrompt, host.CmdChatOpenPanel}
}

func (p *CommandProbe) Deliver(ctx context.Context, prompt string) (Outcome, Delivery, error) {
	var lastErr error
	tried := false
	for _, id := range p.candidates() {
		if !p.Registry.Has(id) {
			continue
		}
		tried = true
		if err := p.Registry.Execute(ctx, id, host.Args{Text: prompt}); err != nil {
			lastErr = err
			continue
		}
		return OutcomeHandled, DeliverySubmitted, nil
	}
	if !tried {
		return OutcomeNotApplicable, 0, nil
	}
	return OutcomeError, 0, lastErr
}

// PasteAndSubmit copies the prompt to the clipboard, focuses the chat input
// and submits it, pausing between steps so the surface can settle.
type PasteAndSubmit struct {
	Registry    *host.Registry
	SettleDelay time.Duration
	// Sleep is swappable for tests. Nil means time.Sleep.
	Sleep func(time.Duration)
	// WriteClipboard is swappable for tests. Nil means the system clipboard.
	WriteClipboard func(string) error
}

func (p *PasteAndSubmit) Name() string { return "paste-and-submit" }

func (p *PasteAndSubmit) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (p *PasteAndSubmit) write(text string) error {
	if p.WriteClipboard != nil {
		return p.WriteClipboard(text)
	}
	return clipboard.WriteAll(text)
}

func (p *PasteAndSubmit) Deliver(ctx context.Context, prompt string) (Outcome, Delivery, error) {
	if !p.Registry.Has(host.CmdChatFocusInput) || !p.Registry.Has(host.CmdChatSubmitInput) {
		return OutcomeNotApplicable, 0, nil
	}

	if err := p.write(prompt); err != nil {
		return OutcomeError, 0, err
	}
	if err := p.Registry.Execute(ctx, host.CmdChatFocusInput, host.Args{}); err != nil {
		return OutcomeError, 0, err
	}
	p.sleep(p.SettleDelay)
	if err := p.Registry.Execute(ctx, host.CmdChatSubmitInput, host.Args{Text: prompt}); err != nil {
		return OutcomeError, 0, err
	}
	return OutcomeHandled, DeliverySubmitted, nil
}

// ChatDirect submits the prompt straight to an OpenAI-compatible chat
// completion endpoint. Config-gated; absent credentials make it
// not-applicable rather than an error.
type ChatDirect struct {
	Enabled bool
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger

	client *openai.Client
}

func (c *ChatDirect) Name() string { return "chat-direct" }

func (c *ChatDirect) ensureClient() *openai.Client {
	if c.client != nil {
		return c.client
	}
	cfg := openai.DefaultConfig(c.APIKey)
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	c.client = openai.NewClientWithConfig(cfg)
	return c.client
}

func (c *ChatDirect) Deliver(ctx context.Context, prompt string) (Outcome, Delivery, error) {
	if !c.Enabled || c.APIKey == "" {
		return OutcomeNotApplicable, 0, nil
	}

	resp, err := c.ensureClient().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return OutcomeError, 0, err
	}
	if c.Logger != nil && len(resp.Choices) > 0 {
		content := resp.Choices[0].Message.Content
		if len(content) > 200 {
			content = content[:200]
		}
		c.Logger.Info("chat responded", zap.String("snippet", content))
	}
	return OutcomeHandled, DeliverySubmitted, nil
}

// ClipboardFallback is the terminal strategy: copy the prompt so it is not
// lost and report the handoff as handled. A clipboard failure still counts;
// the prompt goes to the log sink instead.
type ClipboardFallback struct {
	Logger *zap.Logger
	// WriteClipboard is swappable for tests. Nil means the system clipboard.
	WriteClipboard func(string) error
}

func (c *ClipboardFallback) Name() string { return "clipboard-fallback" }

func (c *ClipboardFallback) write(text string) error {
	if c.WriteClipboard != nil {
		return c.WriteClipboard(text)
	}
	return clipboard.WriteAll(text)
}

func (c *ClipboardFallback) Deliver(_ context.Context, prompt string) (Outcome, Delivery, error) {
	if err := c.write(prompt); err != nil {
		if c.Logger != nil {
			c.Logger.Warn("clipboard unavailable, prompt preserved in log",
				zap.Error(err),
				zap.String("prompt", prompt))
		}
	} else if c.Logger != nil {
		c.Logger.Info("prompt copied to clipboard", zap.Int("chars", len(prompt)))
	}
	return OutcomeHandled, DeliveryCopied, nil
}

// DefaultChain assembles the production strategy order.
func DefaultChain(registry *host.Registry, chat ChatDirect, settle time.Duration, logger *zap.Logger) []Strategy {
	direct := chat
	direct.Logger = logger
	return []Strategy{
		&CommandProbe{Registry: registry},
		&PasteAndSubmit{Registry: registry, SettleDelay: settle},
		&direct,
		&ClipboardFallback{Logger: logger},
	}
}
