package models

import "time"

// DefaultEventDuration is the length of a timed event when no end is given.
const DefaultEventDuration = time.Hour

// CalendarEvent is a calendar entry in normalized form.
//
// All-day events use date-only boundaries at midnight UTC with an exclusive End one day after Start.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"all_day"`
}

// NewCalendarEvent builds an unsaved event starting at start.
func NewCalendarEvent(title, description string, start time.Time, allDay bool) *CalendarEvent {
	e := &CalendarEvent{Title: title, Description: description, AllDay: allDay}
	if allDay {
		y, m, d := start.Date()
		e.Start = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		e.End = e.Start.AddDate(0, 0, 1)
	} else {
		e.Start = start
		e.End = start.Add(DefaultEventDuration)
	}
	return e
}

// StartDate returns the all-day start date as YYYY-MM-DD.
func (e CalendarEvent) StartDate() string {
	return e.Start.Format(dueOnLayout)
}

// EndDate returns the exclusive all-day end date as YYYY-MM-DD.
func (e CalendarEvent) EndDate() string {
	return e.End.Format(dueOnLayout)
}
