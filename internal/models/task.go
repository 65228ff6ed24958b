package models

import (
	"fmt"
	"time"
)

// dueOnLayout is the date-only layout used by due_on values.
const dueOnLayout = "2006-01-02"

// Task is a task item fetched from the task source.
//
// DueOn and DueAt hold the raw provider strings; empty means absent or null.
type Task struct {
	ID        string `json:"gid"`
	Name      string `json:"name"`
	DueOn     string `json:"due_on,omitempty"`
	DueAt     string `json:"due_at,omitempty"`
	Completed bool   `json:"completed"`
}

// DueDate is a parsed task due date.
//
// When HasTime is false, Time is a calendar date anchored at midnight UTC.
type DueDate struct {
	Time    time.Time
	HasTime bool
}

// HasTimeComponent reports whether the task carries a specific due time.
func (t Task) HasTimeComponent() bool {
	return t.DueAt != ""
}

// ParseDueDate returns the task's due date, preferring due_at over due_on.
//
// Returns nil, nil when the task has no due date.
func (t Task) ParseDueDate() (*DueDate, error) {
	if t.DueAt != "" {
		ts, err := time.Parse(time.RFC3339Nano, t.DueAt)
		if err != nil {
			return nil, fmt.Errorf("task %s: invalid due_at %q: %w", t.ID, t.DueAt, err)
		}
		return &DueDate{Time: ts, HasTime: true}, nil
	}

	if t.DueOn != "" {
		d, err := time.ParseInLocation(dueOnLayout, t.DueOn, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("task %s: invalid due_on %q: %w", t.ID, t.DueOn, err)
		}
		return &DueDate{Time: d, HasTime: false}, nil
	}

	return nil, nil
}

// String formats the due date as a date for all-day values and RFC 3339 otherwise.
func (d DueDate) String() string {
	if d.HasTime {
		return d.Time.Format(time.RFC3339)
	}
	return d.Time.Format(dueOnLayout)
}
