package cli

import (
	"context"
	coreapp "cratedeps/internal/core/app"

	tea "github.com/charmbracelet/bubbletea"
)

func runUI(ctx context.Context, app *coreapp.App, roots []string, initial coreapp.RunSummary) error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	err := app.StartWatcher(ctx, roots, func(changes coreapp.ChangeSet) {
		p.Send(updateMsg{
			runID:    changes.RunID,
			reports:  app.Reports(),
			failures: changes.Failures,
			removed:  changes.Removed,
		})
	})
	if err != nil {
		return err
	}

	go p.Send(updateMsg{
		runID:    initial.ID,
		reports:  initial.Reports,
		failures: initial.Failures,
	})

	_, err = p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
