// package tasks implements the task to calendar synchronization engine.
//
// The core abstraction is SyncEngine, which mirrors tagged tasks into calendar events exactly once per task.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/services"
	"github.com/desertthunder/taskcal/internal/shared"
)

// DefaultDescriptionFormat renders the event description from the task ID.
const DefaultDescriptionFormat = "Asana task: %s"

// SyncEngineOpts contains the collaborators and settings of a [SyncEngine].
type SyncEngineOpts struct {
	Source            services.TaskSource
	Sink              services.EventSink
	Ledger            models.Ledger
	Tag               string        // Tag selecting the tasks to mirror
	DescriptionFormat string        // fmt format with one %s for the task ID (default: [DefaultDescriptionFormat])
	CallTimeout       time.Duration // Per-call deadline for sink calls, zero for none
	Logger            *log.Logger
}

// SyncEngine mirrors tagged tasks from a [services.TaskSource] into a [services.EventSink].
//
// Runs are idempotent: a task with a ledger record is never sent to the sink again.
// A single engine must not run concurrently with itself; see [SyncEngine.Watch].
type SyncEngine struct {
	source      services.TaskSource
	sink        services.EventSink
	ledger      models.Ledger
	tag         string
	description string
	withTaskID  bool
	callTimeout time.Duration
	logger      *log.Logger
}

// NewSyncEngine creates a new SyncEngine, failing when a collaborator is missing.
func NewSyncEngine(opts SyncEngineOpts) (*SyncEngine, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("%w: task source not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("%w: event sink not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("%w: ledger not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Tag == "" {
		return nil, fmt.Errorf("%w: tag", shared.ErrMissingArgument)
	}

	format := opts.DescriptionFormat
	if format == "" {
		format = DefaultDescriptionFormat
	}
	verbs, err := shared.DescriptionVerbs(format)
	if err != nil {
		return nil, fmt.Errorf("description format: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &SyncEngine{
		source:      opts.Source,
		sink:        opts.Sink,
		ledger:      opts.Ledger,
		tag:         opts.Tag,
		description: format,
		withTaskID:  verbs == 1,
		callTimeout: opts.CallTimeout,
		logger:      logger,
	}, nil
}

// Tag returns the tag this engine syncs.
func (e *SyncEngine) Tag() string {
	return e.tag
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run performs one synchronization pass.
//
// Per-task failures are counted in [models.RunStats.Errors] and do not stop the run.
// A failed task fetch ([shared.ErrSourceFetch]) or ledger lookup ([shared.ErrLedger]) aborts it.
func (e *SyncEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*models.RunStats, error) {
	stats := &models.RunStats{}

	e.sendProgress(progress, fetchingTasksUpdate(e.tag))
	tasks, err := e.source.FetchTaggedTasks(ctx, e.tag, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSourceFetch, err)
	}

	stats.TasksFound = len(tasks)
	e.sendProgress(progress, foundTasksUpdate(len(tasks)))
	e.logger.Debug("fetched tagged tasks", "tag", e.tag, "count", len(tasks))

	total := len(tasks)
	for i, task := range tasks {
		step := i + 1
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		existing, err := e.ledger.FindByTaskID(task.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: lookup task %s: %w", shared.ErrLedger, task.ID, err)
		}
		if existing != nil {
			stats.AlreadySynced++
			e.sendProgress(progress, alreadySyncedUpdate(step, total, task))
			continue
		}

		due, err := e.source.ParseDueDate(task)
		if err != nil {
			stats.Errors++
			e.logger.Warn("skipping task with invalid due date", "task_id", task.ID, "error", err)
			e.sendProgress(progress, taskFailedUpdate(step, total, task, err))
			continue
		}
		if due == nil {
			e.sendProgress(progress, unscheduledUpdate(step, total, task))
			continue
		}

		record, err := e.syncTask(ctx, task, *due, e.source.HasTimeComponent(task))
		if err != nil {
			stats.Errors++
			e.logger.Error("failed to sync task", "task_id", task.ID, "name", task.Name, "error", err)
			e.sendProgress(progress, taskFailedUpdate(step, total, task, err))
			continue
		}

		stats.EventsCreated++
		e.logger.Info("created event", "task_id", task.ID, "event_id", record.EventID, "all_day", record.AllDay)
		e.sendProgress(progress, eventCreatedUpdate(step, total, task, record))
	}

	e.sendProgress(progress, completeUpdate(stats))
	return stats, nil
}

// syncTask creates the event for one task and records it.
//
// When the ledger rejects the record the new event is deleted again so it is not left untracked.
func (e *SyncEngine) syncTask(ctx context.Context, task models.Task, due models.DueDate, hasTime bool) (*models.SyncRecord, error) {
	callCtx, cancel := e.callContext(ctx)
	event, err := e.sink.CreateEvent(callCtx, task.Name, e.describe(task), due.Time, !hasTime)
	cancel()

	if err != nil {
		if errors.Is(err, shared.ErrEventCreate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrEventCreate, err)
	}
	if event == nil || event.ID == "" {
		return nil, fmt.Errorf("%w: no event ID returned", shared.ErrEventCreate)
	}

	record := models.NewSyncRecord(task, due, event.ID)
	record.AllDay = !hasTime

	if err := e.ledger.Insert(record); err != nil {
		e.discardEvent(ctx, task, event.ID)
		return nil, fmt.Errorf("%w: record task %s: %w", shared.ErrLedger, task.ID, err)
	}

	return record, nil
}

// discardEvent removes an event whose ledger write failed.
func (e *SyncEngine) discardEvent(ctx context.Context, task models.Task, eventID string) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	if err := e.sink.DeleteEvent(callCtx, eventID); err != nil {
		e.logger.Error("failed to delete unrecorded event", "task_id", task.ID, "event_id", eventID, "error", err)
		return
	}
	e.logger.Warn("deleted unrecorded event", "task_id", task.ID, "event_id", eventID)
}

func (e *SyncEngine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.callTimeout)
}

func (e *SyncEngine) describe(task models.Task) string {
	if !e.withTaskID {
		return strings.ReplaceAll(e.description, "%%", "%")
	}
	return fmt.Sprintf(e.description, task.ID)
}

// Watch calls Run immediately and then every interval until ctx is done.
//
// Runs execute on the calling goroutine, so they never overlap. onRun may be nil.
func (e *SyncEngine) Watch(ctx context.Context, interval time.Duration, onRun func(*models.RunStats, error)) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %v", shared.ErrInvalidArgument, interval)
	}

	run := func() {
		stats, err := e.Run(ctx, nil)
		if err != nil && ctx.Err() == nil {
			e.logger.Error("sync run failed", "error", err)
		}
		if onRun != nil {
			onRun(stats, err)
		}
	}

	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			run()
		}
	}
}
