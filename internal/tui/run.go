package tui

import (
	"fmt"

	"github.com/camel-leaked/camel-leaked/internal/types"
	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the review screen full-window and blocks until the user quits.
func Run(findings []types.Finding, opts Options) error {
	if _, err := tea.NewProgram(NewModel(findings, opts), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	return nil
}
