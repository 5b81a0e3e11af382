package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/coremaven/llama.cpp-GUI/internal/manager"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
)

// Run opens the terminal UI and blocks until the user quits.
func Run(mgr *manager.Manager, events *supervisor.Broker) error {
	m := New(mgr, events)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
