package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the editor on the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, backend Backend, opts Options) error {
	program := tea.NewProgram(
		New(ctx, backend, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}
