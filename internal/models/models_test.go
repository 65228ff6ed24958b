package models

import (
	"testing"
	"time"
)

func TestTask(t *testing.T) {
	t.Run("ParseDueDate", func(t *testing.T) {
		t.Run("due_on only gives a date at midnight UTC", func(t *testing.T) {
			task := Task{ID: "1", DueOn: "2023-10-10"}

			due, err := task.ParseDueDate()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if due == nil {
				t.Fatal("expected a due date")
			}

			want := time.Date(2023, 10, 10, 0, 0, 0, 0, time.UTC)
			if !due.Time.Equal(want) {
				t.Errorf("expected %v, got %v", want, due.Time)
			}
			if due.HasTime {
				t.Error("date-only value should not have a time component")
			}
			if due.String() != "2023-10-10" {
				t.Errorf("expected 2023-10-10, got %s", due.String())
			}
		})

		t.Run("due_at wins over due_on", func(t *testing.T) {
			task := Task{ID: "2", DueOn: "2023-10-09", DueAt: "2023-10-10T15:00:00Z"}

			due, err := task.ParseDueDate()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := time.Date(2023, 10, 10, 15, 0, 0, 0, time.UTC)
			if !due.Time.Equal(want) {
				t.Errorf("expected %v, got %v", want, due.Time)
			}
			if !due.HasTime {
				t.Error("timestamp value should have a time component")
			}
		})

		t.Run("due_at keeps its offset", func(t *testing.T) {
			task := Task{ID: "3", DueAt: "2023-10-10T15:00:00.000-04:00"}

			due, err := task.ParseDueDate()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, offset := due.Time.Zone()
			if offset != -4*3600 {
				t.Errorf("expected -04:00 offset, got %d seconds", offset)
			}
		})

		t.Run("no due date", func(t *testing.T) {
			due, err := Task{ID: "4"}.ParseDueDate()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if due != nil {
				t.Errorf("expected nil due date, got %+v", due)
			}
		})

		t.Run("malformed values", func(t *testing.T) {
			tc := []Task{
				{ID: "5", DueOn: "10/10/2023"},
				{ID: "6", DueAt: "tomorrow at noon"},
			}
			for _, task := range tc {
				if _, err := task.ParseDueDate(); err == nil {
					t.Errorf("expected error for task %s", task.ID)
				}
			}
		})
	})

	t.Run("HasTimeComponent", func(t *testing.T) {
		if (Task{DueOn: "2023-10-10"}).HasTimeComponent() {
			t.Error("due_on alone should not have a time component")
		}
		if !(Task{DueAt: "2023-10-10T15:00:00Z"}).HasTimeComponent() {
			t.Error("due_at should have a time component")
		}
	})
}

func TestNewCalendarEvent(t *testing.T) {
	t.Run("all-day event spans one date with exclusive end", func(t *testing.T) {
		start := time.Date(2023, 10, 10, 0, 0, 0, 0, time.UTC)
		e := NewCalendarEvent("Write report", "Asana task: 1", start, true)

		if e.StartDate() != "2023-10-10" {
			t.Errorf("expected start 2023-10-10, got %s", e.StartDate())
		}
		if e.EndDate() != "2023-10-11" {
			t.Errorf("expected end 2023-10-11, got %s", e.EndDate())
		}
		if !e.AllDay {
			t.Error("expected all-day event")
		}
	})

	t.Run("all-day event across month boundary", func(t *testing.T) {
		start := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		e := NewCalendarEvent("Year end", "", start, true)

		if e.EndDate() != "2024-01-01" {
			t.Errorf("expected end 2024-01-01, got %s", e.EndDate())
		}
	})

	t.Run("timed event defaults to one hour", func(t *testing.T) {
		start := time.Date(2023, 10, 10, 15, 0, 0, 0, time.UTC)
		e := NewCalendarEvent("Standup", "", start, false)

		if !e.Start.Equal(start) {
			t.Errorf("expected start %v, got %v", start, e.Start)
		}
		if !e.End.Equal(start.Add(time.Hour)) {
			t.Errorf("expected end %v, got %v", start.Add(time.Hour), e.End)
		}
		if e.AllDay {
			t.Error("expected timed event")
		}
	})
}

func TestSyncRecord(t *testing.T) {
	t.Run("NewSyncRecord", func(t *testing.T) {
		task := Task{ID: "42", Name: "Ship it"}
		due := DueDate{Time: time.Date(2023, 10, 10, 0, 0, 0, 0, time.UTC)}

		r := NewSyncRecord(task, due, "evt-1")

		if r.TaskID != "42" || r.TaskName != "Ship it" || r.EventID != "evt-1" {
			t.Errorf("unexpected record %+v", r)
		}
		if !r.AllDay {
			t.Error("date-only due date should produce an all-day record")
		}
		if r.CreatedAt.IsZero() || !r.CreatedAt.Equal(r.UpdatedAt) {
			t.Error("timestamps should be set and equal on creation")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := (&SyncRecord{TaskID: "1", EventID: "e"}).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := (&SyncRecord{EventID: "e"}).Validate(); err == nil {
			t.Error("expected error for missing task ID")
		}
		if err := (&SyncRecord{TaskID: "1"}).Validate(); err == nil {
			t.Error("expected error for missing event ID")
		}
	})
}

func TestRunStatsString(t *testing.T) {
	s := RunStats{TasksFound: 3, EventsCreated: 1, AlreadySynced: 1, Errors: 1}
	want := "found=3 created=1 already_synced=1 errors=1"
	if s.String() != want {
		t.Errorf("expected %q, got %q", want, s.String())
	}
}
