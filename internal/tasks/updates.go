package tasks

import (
	"fmt"

	"github.com/desertthunder/taskcal/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchTasks Phase = iota
	ProcessTask
	VerifyRecords
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchTasks:
		return "fetch_tasks"
	case ProcessTask:
		return "process_task"
	case VerifyRecords:
		return "verify_records"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchingTasksUpdate(tag string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTasks,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching tasks tagged %q...", tag),
	}
}

func foundTasksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTasks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d tasks", count),
	}
}

func alreadySyncedUpdate(step, total int, task models.Task) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessTask,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] = %s (already synced)", step, total, task.Name),
	}
}

func unscheduledUpdate(step, total int, task models.Task) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessTask,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] - %s (no due date)", step, total, task.Name),
	}
}

func eventCreatedUpdate(step, total int, task models.Task, record *models.SyncRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessTask,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, task.Name),
		Data:    record,
	}
}

func taskFailedUpdate(step, total int, task models.Task, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessTask,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, task.Name, err),
	}
}

func completeUpdate(stats *models.RunStats) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync complete: %s", stats),
		Data:    *stats,
	}
}

func verifyUpdate(step, total int, res RecordCheck) ProgressUpdate {
	mark := "✓"
	switch {
	case res.Missing:
		mark = "✗"
	case res.Error != nil:
		mark = "!"
	}
	return ProgressUpdate{
		Phase:   VerifyRecords,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, res.Record.TaskName),
	}
}
