package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/coremaven/llama.cpp-GUI/internal/manager"
	"github.com/coremaven/llama.cpp-GUI/internal/settings"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	store, err := settings.Open(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	broker := supervisor.NewBroker()
	sup := supervisor.New(supervisor.Options{
		LogPath:   filepath.Join(dir, "server.log"),
		Publisher: broker,
	})
	mgr := manager.New(manager.Options{Store: store, Supervisor: sup, Publisher: broker})
	m := New(mgr, broker)
	t.Cleanup(m.Close)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func keyMsg(s string) tea.KeyMsg {
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelStartsIdle(t *testing.T) {
	m := newTestModel(t)
	if m.status.State != types.StateNotStarted {
		t.Fatalf("state=%s", m.status.State)
	}
	if got := m.View(); got != "loading..." {
		t.Fatalf("zero-size view=%q", got)
	}
}

func TestLogEventAppendsToView(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, cmd := update(t, m, eventMsg{ev: types.Event{Type: types.EventLog, Line: "model loaded"}})
	if cmd == nil {
		t.Fatal("expected a re-arm command after an event")
	}
	if len(m.lines) != 1 || m.lines[0] != "model loaded" {
		t.Fatalf("lines=%v", m.lines)
	}
	if !strings.Contains(m.View(), "model loaded") {
		t.Fatal("view does not show the log line")
	}
}

func TestLogScrollbackIsBounded(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	for i := 0; i < maxLines+10; i++ {
		m, _ = update(t, m, eventMsg{ev: types.Event{Type: types.EventLog, Line: "x"}})
	}
	if len(m.lines) != maxLines {
		t.Fatalf("lines=%d, want %d", len(m.lines), maxLines)
	}
}

func TestQuitWhenIdleQuitsImmediately(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("cmd yielded %T, want tea.QuitMsg", cmd())
	}
}

func TestQuitWhileRunningOpensDialog(t *testing.T) {
	m := newTestModel(t)
	m.status = types.StatusResponse{State: types.StateRunning, PID: 42}
	m, cmd := update(t, m, keyMsg("q"))
	if cmd != nil {
		t.Fatal("should not quit while running")
	}
	if !m.confirmQuit {
		t.Fatal("dialog not shown")
	}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if !strings.Contains(m.View(), "still running") {
		t.Fatal("dialog text missing from view")
	}
	m, _ = update(t, m, keyMsg("esc"))
	if m.confirmQuit {
		t.Fatal("esc did not dismiss the dialog")
	}
}

func TestDialogLeaveRunningDetaches(t *testing.T) {
	m := newTestModel(t)
	m.status = types.StatusResponse{State: types.StateRunning, PID: 42}
	m, _ = update(t, m, keyMsg("q"))
	m, cmd := update(t, m, keyMsg("l"))
	if m.confirmQuit || !m.busy || !m.exitAfter {
		t.Fatalf("dialog state after l: confirm=%v busy=%v exit=%v", m.confirmQuit, m.busy, m.exitAfter)
	}
	if cmd == nil {
		t.Fatal("expected detach command")
	}
}

func TestActionErrorIsShownAndDoesNotExit(t *testing.T) {
	m := newTestModel(t)
	m.exitAfter = true
	m, cmd := update(t, m, actionDoneMsg{err: errFake})
	if cmd != nil {
		t.Fatal("must not quit after a failed action")
	}
	if m.errMessage == "" || m.exitAfter {
		t.Fatalf("err=%q exitAfter=%v", m.errMessage, m.exitAfter)
	}
}

func TestActionSuccessAfterDialogExits(t *testing.T) {
	m := newTestModel(t)
	m.exitAfter = true
	_, cmd := update(t, m, actionDoneMsg{info: "llama-server stopped"})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("cmd yielded %T, want tea.QuitMsg", cmd())
	}
}

func TestClearKeyEmptiesScrollback(t *testing.T) {
	m := newTestModel(t)
	m.lines = []string{"a", "b"}
	m, _ = update(t, m, keyMsg("c"))
	if len(m.lines) != 0 {
		t.Fatalf("lines=%v", m.lines)
	}
}

func TestCrashEventSetsError(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, eventMsg{ev: types.Event{Type: types.EventState, State: types.StateCrashed, ExitCode: 3}})
	if !strings.Contains(m.errMessage, "code 3") {
		t.Fatalf("errMessage=%q", m.errMessage)
	}
}

func TestProfileEventMessage(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, eventMsg{ev: types.Event{Type: types.EventProfile, Name: "small", Action: types.ProfileSaved}})
	if m.statusMessage != `profile "small" saved` {
		t.Fatalf("statusMessage=%q", m.statusMessage)
	}
}

var errFake = &fakeErr{}

type fakeErr struct{}

func (*fakeErr) Error() string { return "fake failure" }
