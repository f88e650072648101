// Package tui renders the task list with its affordances and routes key
// presses to the command surface. It is the stand-in for the host editor:
// lenses appear above each task line and decorations color the line itself.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"tasklens/internal/buttons"
	"tasklens/internal/document"
	"tasklens/internal/grammar"
	"tasklens/internal/host"
	"tasklens/internal/taskcache"
)

type keymap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Enter key.Binding
	Abort key.Binding
	Diag  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func defaultKeymap() keymap {
	return keymap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous task")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next task")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous action")),
		Right: key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next action")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run action")),
		Abort: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "abort task")),
		Diag:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "diagnostics")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Abort, k.Quit, k.Help}
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Enter, k.Abort, k.Diag},
		{k.Help, k.Quit},
	}
}

type (
	fileChangedMsg struct{ path string }
	renderTickMsg  struct{ seq int }
	refreshMsg     struct{}
	commandDoneMsg struct{}
)

// noticeMsg carries a non-blocking notification into the status line.
type noticeMsg struct {
	level string
	text  string
}

type model struct {
	uri      string
	store    *document.Store
	cache    *taskcache.Cache
	btns     *buttons.Store
	decor    *buttons.Decorations
	registry *host.Registry
	logger   *zap.Logger

	debounce time.Duration

	tasks    []grammar.Task
	lenses   map[int][]buttons.Lens
	cursor   int
	lensPick int

	viewport  viewport.Model
	spin      spinner.Model
	helpView  help.Model
	keys      keymap
	showHelp  bool
	status    string
	width     int
	height    int
	ready     bool
	renderSeq int
}

func newModel(uri string, store *document.Store, cache *taskcache.Cache, btns *buttons.Store, decor *buttons.Decorations, registry *host.Registry, debounce time.Duration, logger *zap.Logger) *model {
	if logger == nil {
		logger = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := &model{
		uri:      uri,
		store:    store,
		cache:    cache,
		btns:     btns,
		decor:    decor,
		registry: registry,
		logger:   logger,
		debounce: debounce,
		lenses:   make(map[int][]buttons.Lens),
		spin:     sp,
		helpView: help.New(),
		keys:     defaultKeymap(),
	}
	m.recompute()
	return m
}

func (m *model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := m.height - 4
		if bodyHeight < 1 {
			bodyHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, bodyHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = bodyHeight
		}
		m.viewport.SetContent(m.renderBody())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case fileChangedMsg:
		uri := document.URIForPath(msg.path)
		if err := m.store.Reload(uri); err != nil {
			m.logger.Warn("reload failed", zap.String("path", msg.path), zap.Error(err))
			return m, nil
		}
		m.cache.Invalidate(uri)
		// Coalesce bursts of change notifications into one re-render.
		m.renderSeq++
		seq := m.renderSeq
		return m, tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return renderTickMsg{seq: seq}
		})

	case renderTickMsg:
		if msg.seq == m.renderSeq {
			m.recompute()
		}
		return m, nil

	case refreshMsg:
		m.recompute()
		return m, nil

	case noticeMsg:
		m.status = msg.text
		return m, nil

	case commandDoneMsg:
		m.recompute()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.ready {
			m.viewport.SetContent(m.renderBody())
		}
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.lensPick = 0
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
			m.lensPick = 0
		}
	case key.Matches(msg, m.keys.Left):
		m.moveLensPick(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveLensPick(1)
	case key.Matches(msg, m.keys.Enter):
		if lens, ok := m.selectedLens(); ok && lens.Actionable() {
			return m, m.invoke(lens.Command, lens.Args)
		}
	case key.Matches(msg, m.keys.Abort):
		if task, ok := m.currentTask(); ok {
			return m, m.invoke(host.CmdAbortTask, host.Args{URI: m.uri, Line: task.Line})
		}
	case key.Matches(msg, m.keys.Diag):
		return m, m.invoke(host.CmdDiagnostics, host.Args{})
	}
	if m.ready {
		m.viewport.SetContent(m.renderBody())
	}
	return m, nil
}

// invoke runs a command off the UI loop; dispatch mechanisms may pause for
// the chat surface to settle.
func (m *model) invoke(id string, args host.Args) tea.Cmd {
	registry := m.registry
	return func() tea.Msg {
		_ = registry.Execute(context.Background(), id, args)
		return commandDoneMsg{}
	}
}

func (m *model) currentTask() (grammar.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return grammar.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *model) actionableLenses() []buttons.Lens {
	task, ok := m.currentTask()
	if !ok {
		return nil
	}
	var out []buttons.Lens
	for _, lens := range m.lenses[task.Line] {
		if lens.Actionable() {
			out = append(out, lens)
		}
	}
	return out
}

func (m *model) moveLensPick(delta int) {
	actionable := m.actionableLenses()
	if len(actionable) == 0 {
		return
	}
	m.lensPick = (m.lensPick + delta + len(actionable)) % len(actionable)
}

func (m *model) selectedLens() (buttons.Lens, bool) {
	actionable := m.actionableLenses()
	if len(actionable) == 0 {
		return buttons.Lens{}, false
	}
	if m.lensPick >= len(actionable) {
		m.lensPick = 0
	}
	return actionable[m.lensPick], true
}

// recompute re-derives tasks and lenses from the current document and state
// maps. Safe to call repeatedly: same inputs, same output.
func (m *model) recompute() {
	doc := m.store.Get(m.uri)
	if doc == nil {
		m.tasks = nil
		m.lenses = make(map[int][]buttons.Lens)
		return
	}

	m.tasks = m.cache.Parse(doc)
	m.lenses = make(map[int][]buttons.Lens)
	for _, lens := range buttons.RenderLenses(m.uri, m.tasks, m.btns) {
		m.lenses[lens.Line] = append(m.lenses[lens.Line], lens)
	}
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.ready {
		m.viewport.SetContent(m.renderBody())
	}
}

func (m *model) renderBody() string {
	doc := m.store.Get(m.uri)
	if doc == nil {
		return "No task document open."
	}

	taskByLine := make(map[int]int, len(m.tasks))
	for i, task := range m.tasks {
		taskByLine[task.Line] = i
	}

	var b strings.Builder
	for i, line := range doc.Lines() {
		taskIdx, isTask := taskByLine[i]
		if isTask {
			b.WriteString(m.renderLensBar(i, taskIdx == m.cursor))
			b.WriteString("\n")
		}

		prefix := "  "
		if isTask && taskIdx == m.cursor {
			prefix = cursorStyle.Render("❯ ")
		}

		styled := line
		if isTask {
			switch m.decor.Active(m.uri, i) {
			case buttons.DecorationWarning:
				styled = warningLineStyle.Render(line)
			case buttons.DecorationInfo:
				styled = successLineStyle.Render(line)
			case buttons.DecorationError:
				styled = failureLineStyle.Render(line)
			}
		}
		b.WriteString(prefix + styled + "\n")
	}
	return b.String()
}

func (m *model) renderLensBar(line int, selected bool) string {
	lenses := m.lenses[line]
	if len(lenses) == 0 {
		return ""
	}

	actionIdx := 0
	parts := make([]string, 0, len(lenses))
	for _, lens := range lenses {
		title := lens.Title
		switch {
		case !lens.Actionable():
			if strings.Contains(title, "…") {
				title = m.spin.View() + title
			}
			parts = append(parts, lensInertStyle.Render(title))
		case selected && actionIdx == m.lensPick:
			parts = append(parts, lensSelectedStyle.Render(title))
			actionIdx++
		default:
			parts = append(parts, lensStyle.Render(title))
			actionIdx++
		}
	}
	indent := strings.Repeat(" ", 4)
	return indent + strings.Join(parts, "  ·  ")
}

func (m *model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Render("tasklens") + " " + statusStyle.Render(m.uri)

	done := 0
	for _, task := range m.tasks {
		if task.State == grammar.StateDone {
			done++
		}
	}
	stats := statsStyle.Render(fmt.Sprintf("%d/%d done", done, len(m.tasks)))

	footer := stats
	if m.status != "" {
		footer += "  " + statusStyle.Render(m.status)
	}

	helpLine := m.helpView.ShortHelpView(m.keys.ShortHelp())
	if m.showHelp {
		helpLine = m.helpView.FullHelpView(m.keys.FullHelp())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		footer,
		helpLine,
	)
}
