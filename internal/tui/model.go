// Package tui is the interactive terminal front end: a status header,
// a scrollable view of llama-server output, and single-key start/stop
// controls, driven by the same manager and event broker as the HTTP
// API.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/coremaven/llama.cpp-GUI/internal/manager"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

const (
	headerHeight = 3
	footerHeight = 3
	// maxLines bounds the scrollback kept by the view; the supervisor's
	// own ring buffer is the durable copy.
	maxLines = 2000
)

type KeyMap struct {
	Start    key.Binding
	Stop     key.Binding
	Clear    key.Binding
	Refresh  key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var DefaultKeyMap = KeyMap{
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear output"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("home", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("end", "follow"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Clear, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Clear, k.Refresh},
		{k.PageUp, k.PageDown, k.Home, k.End},
		{k.Help, k.Quit},
	}
}

type (
	eventMsg        struct{ ev types.Event }
	eventsClosedMsg struct{}
	tickMsg         time.Time
	actionDoneMsg   struct {
		info string
		err  error
	}
)

type Model struct {
	mgr    *manager.Manager
	events <-chan types.Event
	cancel func()

	width  int
	height int

	viewport viewport.Model
	help     help.Model
	keys     KeyMap

	status types.StatusResponse
	lines  []string
	follow bool

	confirmQuit bool
	exitAfter   bool
	busy        bool

	statusMessage string
	errMessage    string
}

func New(mgr *manager.Manager, events *supervisor.Broker) Model {
	sub, cancel := events.Subscribe(256)

	vp := viewport.New(0, 0)
	vp.Style = panelStyle

	m := Model{
		mgr:      mgr,
		events:   sub,
		cancel:   cancel,
		viewport: vp,
		help:     help.New(),
		keys:     DefaultKeyMap,
		status:   mgr.Status(),
		lines:    mgr.Logs(0).Lines,
		follow:   true,
	}
	m.refreshViewport()
	return m
}

// Close releases the event subscription.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickEvery())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if m.confirmQuit {
			return m.handleConfirmKey(msg)
		}
		return m.handleKey(msg)

	case tickMsg:
		m.status = m.mgr.Status()
		return m, tickEvery()

	case eventMsg:
		m.applyEvent(msg.ev)
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, nil

	case actionDoneMsg:
		m.busy = false
		m.status = m.mgr.Status()
		if msg.err != nil {
			m.errMessage = msg.err.Error()
			m.exitAfter = false
			return m, nil
		}
		m.statusMessage = msg.info
		if m.exitAfter {
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		st := m.status.State
		if st == types.StateRunning || st == types.StateStopping {
			m.confirmQuit = true
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Start):
		if m.busy || m.status.State == types.StateRunning || m.status.State == types.StateStopping {
			return m, nil
		}
		m.busy = true
		m.errMessage = ""
		m.statusMessage = "starting llama-server..."
		return m, m.doStart()

	case key.Matches(msg, m.keys.Stop):
		if m.busy || m.status.State != types.StateRunning {
			return m, nil
		}
		m.busy = true
		m.errMessage = ""
		m.statusMessage = "stopping llama-server..."
		return m, m.doStop()

	case key.Matches(msg, m.keys.Clear):
		m.lines = nil
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.status = m.mgr.Status()
		m.errMessage = ""
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.follow = false
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		m.follow = m.viewport.AtBottom()
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.follow = false
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.follow = true
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

// handleConfirmKey drives the quit dialog shown while llama-server is
// still running: stop it, leave it running, or go back.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		m.confirmQuit = false
		m.busy = true
		m.exitAfter = true
		m.statusMessage = "stopping llama-server..."
		return m, m.doStop()
	case "l":
		m.confirmQuit = false
		m.busy = true
		m.exitAfter = true
		return m, m.doDetach()
	case "esc", "c", "n", "q":
		m.confirmQuit = false
		return m, nil
	}
	return m, nil
}

func (m *Model) applyEvent(ev types.Event) {
	switch ev.Type {
	case types.EventLog:
		m.lines = append(m.lines, ev.Line)
		if len(m.lines) > maxLines {
			m.lines = m.lines[len(m.lines)-maxLines:]
		}
		m.refreshViewport()
	case types.EventState:
		m.status = m.mgr.Status()
		switch ev.State {
		case types.StateCrashed:
			m.errMessage = fmt.Sprintf("llama-server exited unexpectedly (code %d)", ev.ExitCode)
		case types.StateStopped:
			m.statusMessage = "llama-server stopped"
		}
	case types.EventWarning:
		m.statusMessage = ev.Message
	case types.EventError:
		m.errMessage = ev.Message
	case types.EventConfig:
		m.statusMessage = "configuration updated"
	case types.EventProfile:
		m.statusMessage = fmt.Sprintf("profile %q %s", ev.Name, ev.Action)
	}
}

func (m *Model) updateSizes() {
	// the panel border and padding eat two rows and four columns
	m.viewport.Width = m.width - 4
	m.viewport.Height = m.height - headerHeight - footerHeight - 2
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	if m.viewport.Width < 1 {
		m.viewport.Width = 1
	}
	m.help.Width = m.width
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(renderLines(m.lines))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) doStart() tea.Cmd {
	return func() tea.Msg {
		st, err := m.mgr.StartServer()
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{info: fmt.Sprintf("llama-server started (pid %d)", st.PID)}
	}
}

func (m Model) doStop() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.mgr.StopServer(); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{info: "llama-server stopped"}
	}
}

func (m Model) doDetach() tea.Cmd {
	return func() tea.Msg {
		pid, err := m.mgr.DetachServer()
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{info: fmt.Sprintf("llama-server left running (pid %d)", pid)}
	}
}

func waitForEvent(events <-chan types.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
