package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/shared"
	tu "github.com/desertthunder/taskcal/internal/testing"
)

func TestSyncEngineVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("empty ledger", func(t *testing.T) {
		engine := newTestEngine(t, &tu.MockTaskSource{}, &tu.MockEventSink{}, &tu.MemoryLedger{})

		result, err := engine.Verify(ctx, nil, VerifyOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Checked != 0 {
			t.Errorf("expected nothing checked, got %d", result.Checked)
		}
	})

	t.Run("reports events deleted from the calendar", func(t *testing.T) {
		source := &tu.MockTaskSource{Tasks: []models.Task{
			{ID: "1", Name: "A", DueOn: "2023-10-10"},
			{ID: "2", Name: "B", DueOn: "2023-10-11"},
			{ID: "3", Name: "C", DueOn: "2023-10-12"},
		}}
		sink := &tu.MockEventSink{}
		ledger := &tu.MemoryLedger{}
		engine := newTestEngine(t, source, sink, ledger)

		if _, err := engine.Run(ctx, nil); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		record, _ := ledger.FindByTaskID("2")
		if err := sink.DeleteEvent(ctx, record.EventID); err != nil {
			t.Fatalf("failed to delete event: %v", err)
		}

		progress := make(chan ProgressUpdate, 8)
		result, err := engine.Verify(ctx, progress, VerifyOpts{NumWorkers: 2, RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		if result.Checked != 3 || result.Present != 2 {
			t.Errorf("expected 3 checked and 2 present, got %+v", result)
		}
		if len(result.Missing) != 1 || result.Missing[0].Record.TaskID != "2" {
			t.Errorf("expected task 2 to be missing, got %+v", result.Missing)
		}

		var updates int
		for u := range progress {
			if u.Phase != VerifyRecords {
				t.Errorf("unexpected phase %s", u.Phase)
			}
			updates++
		}
		if updates != 3 {
			t.Errorf("expected 3 progress updates, got %d", updates)
		}
	})

	t.Run("ledger failure", func(t *testing.T) {
		engine := newTestEngine(t, &tu.MockTaskSource{}, &tu.MockEventSink{}, &failingListLedger{})

		if _, err := engine.Verify(ctx, nil, VerifyOpts{}); !errors.Is(err, shared.ErrLedger) {
			t.Errorf("expected ErrLedger, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ledger := &tu.MemoryLedger{}
		ledger.Insert(&models.SyncRecord{TaskID: "1", EventID: "evt-1"})
		engine := newTestEngine(t, &tu.MockTaskSource{}, &tu.MockEventSink{}, ledger)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		result, err := engine.Verify(cctx, nil, VerifyOpts{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || len(result.Failed) != 1 {
			t.Errorf("expected the record to be reported as failed, got %+v", result)
		}
	})
}

type failingListLedger struct{ tu.MemoryLedger }

func (l *failingListLedger) List() ([]*models.SyncRecord, error) {
	return nil, errors.New("no such table: sync_records")
}
