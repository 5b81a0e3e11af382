package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("150"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 3)

	stateStyles = map[string]lipgloss.Style{
		types.StateNotStarted: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		types.StateRunning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		types.StateStopping:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		types.StateStopped:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		types.StateCrashed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
)

func stateBadge(state string) string {
	st, ok := stateStyles[state]
	if !ok {
		st = dimStyle
	}
	return st.Render(state)
}

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	if m.confirmQuit {
		b.WriteString(m.dialogView())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	parts := []string{titleStyle.Render("llama-server"), stateBadge(m.status.State)}
	if m.status.PID != 0 && m.status.State != types.StateNotStarted {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("pid %d", m.status.PID)))
	}
	if m.status.State == types.StateRunning || m.status.State == types.StateStopping {
		up := time.Duration(m.status.UptimeSeconds) * time.Second
		parts = append(parts, dimStyle.Render("up "+up.String()))
	}
	if m.status.Profile != "" {
		parts = append(parts, dimStyle.Render("profile "+m.status.Profile))
	}
	line := strings.Join(parts, "  ")
	return lipgloss.NewStyle().Padding(0, 1).Render(line) + "\n"
}

func (m Model) dialogView() string {
	msg := "llama-server is still running.\n\n" +
		"[s] stop and exit    [l] leave it running    [esc] cancel"
	box := dialogStyle.Render(msg)
	return lipgloss.Place(m.viewport.Width+2, m.viewport.Height+2, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) footerView() string {
	msg := " "
	switch {
	case m.errMessage != "":
		msg = errorStyle.Render(m.errMessage)
	case m.busy:
		msg = noticeStyle.Render(m.statusMessage)
	case m.statusMessage != "":
		msg = noticeStyle.Render(m.statusMessage)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(0, 1).Render(msg),
		lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(m.keys)),
	)
}

func renderLines(lines []string) string {
	if len(lines) == 0 {
		return dimStyle.Render("no output yet, press s to start llama-server")
	}
	return strings.Join(lines, "\n")
}
