package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/taskcal/internal/shared"
	"github.com/desertthunder/taskcal/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive ledger dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/taskcal-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	engine, err := r.syncEngine(ctx, "")
	if err != nil {
		return err
	}
	ledger, err := r.ledgerStore()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Opts{
		Syncer:   engine,
		Verifier: engine,
		Records:  ledger,
		Tag:      engine.Tag(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
