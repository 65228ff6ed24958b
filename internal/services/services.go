// package services defines the collaborators of the sync engine and their HTTP API implementations
//
// Asana (task source), Google Calendar (event sink)
package services

import (
	"context"
	"time"

	"github.com/desertthunder/taskcal/internal/models"
)

// TaskSource provides tagged tasks and interprets their due dates.
type TaskSource interface {
	// FetchTaggedTasks returns tasks carrying the named tag.
	// An unknown tag yields an empty slice, not an error.
	FetchTaggedTasks(ctx context.Context, tag string, includeCompleted bool) ([]models.Task, error)

	// ParseDueDate returns nil, nil when the task has no due date.
	ParseDueDate(task models.Task) (*models.DueDate, error)

	// HasTimeComponent reports whether the task has a due time, not just a date.
	HasTimeComponent(task models.Task) bool
}

// EventSink creates and removes calendar events.
type EventSink interface {
	// CreateEvent inserts an event starting at start.
	// All-day events span one date; timed events last [models.DefaultEventDuration].
	CreateEvent(ctx context.Context, title, description string, start time.Time, allDay bool) (*models.CalendarEvent, error)

	// DeleteEvent removes an event by ID.
	DeleteEvent(ctx context.Context, eventID string) error

	// GetEvent fetches an event by ID, returning [shared.ErrEventNotFound] when it does not exist.
	GetEvent(ctx context.Context, eventID string) (*models.CalendarEvent, error)
}

// Pinger is implemented by services that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error

	// Name returns the name of the service (e.g., "Asana", "Google Calendar")
	Name() string
}
