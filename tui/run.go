package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tasklens/internal/buttons"
	"tasklens/internal/chat"
	"tasklens/internal/clock"
	"tasklens/internal/config"
	"tasklens/internal/dispatch"
	"tasklens/internal/document"
	"tasklens/internal/editor"
	"tasklens/internal/host"
	"tasklens/internal/lifecycle"
	"tasklens/internal/steering"
	"tasklens/internal/taskcache"
)

// Options configures a TUI run.
type Options struct {
	WorkspacePath string
	StateDir      string
	// TaskFile is the markdown checklist to open.
	TaskFile string
	Config   *config.Config
	Logger   *zap.Logger
}

// progNotifier routes notifications onto the UI event loop. Installed once
// the program exists; until then messages go to the log only.
type progNotifier struct {
	send   func(tea.Msg)
	logger *zap.Logger
}

func (n *progNotifier) notify(level, msg string) {
	n.logger.Info(msg, zap.String("level", level))
	if n.send != nil {
		n.send(noticeMsg{level: level, text: msg})
	}
}

func (n *progNotifier) Info(msg string)  { n.notify("info", msg) }
func (n *progNotifier) Warn(msg string)  { n.notify("warn", msg) }
func (n *progNotifier) Error(msg string) { n.notify("error", msg) }

// Run assembles the full stack around one task document and blocks until the
// user quits.
func Run(opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := document.NewStore(logger)
	doc, err := store.Open(opts.TaskFile)
	if err != nil {
		return fmt.Errorf("failed to open task file: %w", err)
	}

	cache := taskcache.New(cfg.Cache.TTL, cfg.Cache.MaxDocuments, logger)
	if !cache.IsTaskDocument(doc) {
		return fmt.Errorf("%s is not a task document", opts.TaskFile)
	}

	clk := clock.New()
	btns := buttons.NewStore()
	decor := buttons.NewDecorations(clk, cfg.Render.SuccessFlash, cfg.Render.FailureFlash)
	registry := host.NewRegistry(logger)
	notifier := &progNotifier{logger: logger}
	session := chat.NewSession(opts.StateDir)

	dispatcher := dispatch.New(logger, dispatch.DefaultChain(registry, dispatch.ChatDirect{
		Enabled: cfg.Chat.Direct,
		APIKey:  cfg.Chat.APIKey,
		BaseURL: cfg.Chat.BaseURL,
		Model:   cfg.Chat.Model,
	}, cfg.Chat.SettleDelay, logger)...)

	var program *tea.Program

	controller := lifecycle.New(lifecycle.Deps{
		Store:      store,
		Cache:      cache,
		Buttons:    btns,
		Decor:      decor,
		Editor:     editor.New(store, logger),
		Dispatcher: dispatcher,
		Session:    session,
		ReferenceFiles: func() []string {
			files, err := steering.ReferenceFiles(opts.WorkspacePath)
			if err != nil {
				logger.Warn("failed to list steering files", zap.Error(err))
				return nil
			}
			return files
		},
		Notifier: notifier,
		Clock:    clk,
		Timeout:  cfg.Execution.Timeout,
		Refresh: func() {
			if program != nil {
				program.Send(refreshMsg{})
			}
		},
		Logger: logger,
	})
	store.Subscribe(controller.HandleChange)

	registry.Register(host.CmdStartTask, func(ctx context.Context, args host.Args) error {
		controller.Start(ctx, args.URI, args.Line)
		return nil
	})
	registry.Register(host.CmdRetryTask, func(ctx context.Context, args host.Args) error {
		controller.Retry(ctx, args.URI, args.Line)
		return nil
	})
	registry.Register(host.CmdAbortTask, func(_ context.Context, args host.Args) error {
		controller.Abort(args.URI, args.Line)
		return nil
	})
	registry.Register(host.CmdDiagnostics, func(context.Context, host.Args) error {
		refs, _ := steering.ReferenceFiles(opts.WorkspacePath)
		notifier.Info(fmt.Sprintf("pending=%d docs=%d scans=%d steering=%d",
			controller.PendingCount(), len(store.Documents()), cache.Scans(), len(refs)))
		return nil
	})

	m := newModel(doc.URI(), store, cache, btns, decor, registry, cfg.Render.Debounce, logger)
	program = tea.NewProgram(m, tea.WithAltScreen())
	notifier.send = program.Send

	watcher, err := document.NewWatcher(func(path string) {
		program.Send(fileChangedMsg{path: path})
	}, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(opts.TaskFile); err != nil {
		logger.Warn("failed to watch task file",
			zap.String("path", opts.TaskFile),
			zap.Error(err))
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}

	// The document deactivates with the surface; its affordance state goes
	// with it.
	btns.ClearDocument(doc.URI())
	store.Close(doc.URI())
	return nil
}
