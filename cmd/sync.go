package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/shared"
	"github.com/desertthunder/taskcal/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun runs one synchronization pass and prints its counters.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	engine, err := r.syncEngine(ctx, cmd.String("tag"))
	if err != nil {
		return err
	}

	r.logger.Info("starting sync", "tag", engine.Tag())

	var (
		stats  *models.RunStats
		runErr error
	)
	if useJSON {
		stats, runErr = engine.Run(ctx, nil)
	} else {
		stats, runErr = r.runWithProgress(ctx, engine)
	}
	if runErr != nil {
		return runErr
	}

	if useJSON {
		return r.writeJSON(stats, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete!")
	r.printStats(stats)
	return nil
}

// SyncWatch runs a pass immediately and then on every interval until interrupted.
func (r *Runner) SyncWatch(ctx context.Context, cmd *cli.Command) error {
	interval := cmd.Duration("interval")
	if interval == 0 {
		interval = time.Duration(r.config.Sync.IntervalMinutes) * time.Minute
	}
	if interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", shared.ErrInvalidArgument)
	}

	engine, err := r.syncEngine(ctx, cmd.String("tag"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("watching for tagged tasks", "tag", engine.Tag(), "interval", interval)
	r.writePlain("→ Syncing every %s, press Ctrl+C to stop\n", interval)

	err = engine.Watch(ctx, interval, func(stats *models.RunStats, err error) {
		ts := time.Now().Format(time.TimeOnly)
		if err != nil {
			r.writePlain("[%s] ✗ %v\n", ts, err)
			return
		}
		r.writePlain("[%s] ✓ %s\n", ts, stats)
	})
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		r.writePlainln("Stopped.")
		return nil
	}
	return err
}

// runWithProgress runs the engine while printing its progress updates.
func (r *Runner) runWithProgress(ctx context.Context, engine *tasks.SyncEngine) (*models.RunStats, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	stats, err := engine.Run(ctx, progressCh)
	close(progressCh)
	<-done
	return stats, err
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FetchTasks:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.ProcessTask:
		r.writePlain("   %s\n", update.Message)
	case tasks.VerifyRecords:
		r.writePlain("   %s\n", update.Message)
	}
}

func (r *Runner) printStats(stats *models.RunStats) {
	r.writePlain("Tasks found:     %d\n", stats.TasksFound)
	r.writePlain("Events created:  %d\n", stats.EventsCreated)
	r.writePlain("Already synced:  %d\n", stats.AlreadySynced)
	r.writePlain("Errors:          %d\n", stats.Errors)
}
