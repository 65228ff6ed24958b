package models

import (
	"fmt"
	"time"
)

var _ Model = (*SyncRecord)(nil)

// SyncRecord maps a task to the calendar event created for it.
//
// Written once per task by the sync engine and never updated by it.
type SyncRecord struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	TaskID    string    `json:"task_id"`
	TaskName  string    `json:"task_name"`
	DueDate   time.Time `json:"due_date"`
	AllDay    bool      `json:"all_day"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSyncRecord creates an unsaved record for task mapped to eventID.
func NewSyncRecord(task Task, due DueDate, eventID string) *SyncRecord {
	now := time.Now().UTC()
	return &SyncRecord{
		TaskID:    task.ID,
		TaskName:  task.Name,
		DueDate:   due.Time,
		AllDay:    !due.HasTime,
		EventID:   eventID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *SyncRecord) GetID() string      { return r.ID }
func (r *SyncRecord) Created() time.Time { return r.CreatedAt }
func (r *SyncRecord) Updated() time.Time { return r.UpdatedAt }

// Validate checks that both sides of the mapping are present.
func (r *SyncRecord) Validate() error {
	if r.TaskID == "" {
		return fmt.Errorf("task ID is required")
	}
	if r.EventID == "" {
		return fmt.Errorf("event ID is required")
	}
	return nil
}

// RunStats counts the outcomes of one synchronization run.
type RunStats struct {
	TasksFound    int `json:"tasks_found"`
	EventsCreated int `json:"events_created"`
	AlreadySynced int `json:"already_synced"`
	Errors        int `json:"errors"`
}

// String renders the counters on one line.
func (s RunStats) String() string {
	return fmt.Sprintf("found=%d created=%d already_synced=%d errors=%d",
		s.TasksFound, s.EventsCreated, s.AlreadySynced, s.Errors)
}
