package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/taskcal/internal/formatter"
	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/shared"
	"github.com/desertthunder/taskcal/internal/tasks"
	"github.com/urfave/cli/v3"
)

// RecordsList prints every ledger record in sync order.
func (r *Runner) RecordsList(ctx context.Context, cmd *cli.Command) error {
	ledger, err := r.ledgerStore()
	if err != nil {
		return err
	}

	records, err := ledger.List()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLedger, err)
	}

	if cmd.Bool("json") {
		if records == nil {
			records = []*models.SyncRecord{}
		}
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		return r.writePlain("No tasks synced yet.\n")
	}

	r.writePlain("Found %d synced tasks:\n\n", len(records))
	for i, rec := range records {
		due := formatter.FormatDue(rec)
		if rec.AllDay {
			due += " (all day)"
		}
		r.writePlain("%d. %s\n", i+1, rec.TaskName)
		r.writePlain("   Task ID: %s\n", rec.TaskID)
		r.writePlain("   Due: %s\n", due)
		r.writePlain("   Event ID: %s\n", rec.EventID)
		r.writePlain("   Synced: %s\n\n", rec.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// RecordsDelete removes a task's ledger record so the next run creates its event again.
//
// With --with-event the calendar event is deleted first.
func (r *Runner) RecordsDelete(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.StringArg("task-id")
	if taskID == "" {
		return fmt.Errorf("%w: task-id", shared.ErrMissingArgument)
	}

	ledger, err := r.ledgerStore()
	if err != nil {
		return err
	}

	record, err := ledger.FindByTaskID(taskID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLedger, err)
	}
	if record == nil {
		return fmt.Errorf("%w: %s", shared.ErrRecordNotFound, taskID)
	}

	if cmd.Bool("with-event") {
		sink, err := r.eventSink(ctx)
		if err != nil {
			return err
		}
		switch err := sink.DeleteEvent(ctx, record.EventID); {
		case errors.Is(err, shared.ErrEventNotFound):
			r.logger.Warn("calendar event already gone", "event_id", record.EventID)
		case err != nil:
			return fmt.Errorf("failed to delete event %s: %w", record.EventID, err)
		default:
			r.logger.Info("deleted calendar event", "event_id", record.EventID)
		}
	}

	deleted, err := ledger.DeleteByTaskID(taskID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLedger, err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s", shared.ErrRecordNotFound, taskID)
	}

	r.logger.Info("deleted sync record", "task_id", taskID)
	return r.writePlain("✓ Removed %s (%s) from the ledger\n", record.TaskName, taskID)
}

// RecordsExport writes the ledger in the requested format to a file or stdout.
func (r *Runner) RecordsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	ledger, err := r.ledgerStore()
	if err != nil {
		return err
	}

	records, err := ledger.List()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLedger, err)
	}

	output := cmd.String("output")
	if output == "-" {
		return formatter.WriteExport(r.output, records, format, r.config.Sync.Tag)
	}

	path, err := formatter.WriteExportFile(records, format, r.config.Sync.Tag, output)
	if err != nil {
		return err
	}

	r.logger.Info("exported ledger", "path", path, "records", len(records))
	return r.writePlain("✓ Exported %d records to %s\n", len(records), path)
}

// verifyReport is the JSON form of a verification pass.
type verifyReport struct {
	Checked int           `json:"checked"`
	Present int           `json:"present"`
	Missing []string      `json:"missing"`
	Failed  []verifyError `json:"failed"`
}

type verifyError struct {
	TaskID string `json:"task_id"`
	Error  string `json:"error"`
}

// RecordsVerify checks every recorded event against the calendar.
func (r *Runner) RecordsVerify(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.syncEngine(ctx, "")
	if err != nil {
		return err
	}

	opts := tasks.VerifyOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float64("rate"),
	}

	useJSON := cmd.Bool("json")
	var result *tasks.VerifyResult
	if useJSON {
		result, err = engine.Verify(ctx, nil, opts)
	} else {
		result, err = r.verifyWithProgress(ctx, engine, opts)
	}
	if err != nil {
		return err
	}

	if useJSON {
		report := verifyReport{Checked: result.Checked, Present: result.Present, Missing: []string{}, Failed: []verifyError{}}
		for _, c := range result.Missing {
			report.Missing = append(report.Missing, c.Record.TaskID)
		}
		for _, c := range result.Failed {
			report.Failed = append(report.Failed, verifyError{TaskID: c.Record.TaskID, Error: c.Error.Error()})
		}
		return r.writeJSON(report, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Verification Results")
	r.writePlain("Checked: %d\n", result.Checked)
	r.writePlain("Present: %d\n", result.Present)

	if len(result.Missing) > 0 {
		r.writePlain("\nMissing from the calendar (%d):\n", len(result.Missing))
		for _, c := range result.Missing {
			r.writePlain("  - %s (task %s, event %s)\n", c.Record.TaskName, c.Record.TaskID, c.Record.EventID)
		}
		r.writePlain("\nTo recreate them, remove their records and run a sync:\n")
		for _, c := range result.Missing {
			r.writePlain("  taskcal records delete %s\n", c.Record.TaskID)
		}
	}

	if len(result.Failed) > 0 {
		r.writePlain("\nCould not check (%d):\n", len(result.Failed))
		for _, c := range result.Failed {
			r.writePlain("  - %s: %v\n", c.Record.TaskName, c.Error)
		}
	}

	return nil
}

func (r *Runner) verifyWithProgress(ctx context.Context, engine *tasks.SyncEngine, opts tasks.VerifyOpts) (*tasks.VerifyResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	result, err := engine.Verify(ctx, progressCh, opts)
	close(progressCh)
	<-done
	return result, err
}
