package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/planline/planline/internal/reconciler"
)

// Run starts the TUI against the given server and blocks until exit.
func Run(serverURL string, pollInterval time.Duration) error {
	if serverURL == "" {
		serverURL = "http://127.0.0.1:3001"
	}

	rec := reconciler.New(reconciler.NewClient(serverURL), pollInterval)
	rec.Start()
	defer rec.Stop()

	model := NewModel(NewChatClient(serverURL), rec)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
