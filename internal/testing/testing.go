// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/shared"
)

// MockTaskSource is a test double for [services.TaskSource]
type MockTaskSource struct {
	Tasks   []models.Task
	Err     error
	PingErr error

	mu       sync.Mutex
	calls    int
	lastTag  string
	included bool
}

func (m *MockTaskSource) FetchTaggedTasks(ctx context.Context, tag string, includeCompleted bool) ([]models.Task, error) {
	m.mu.Lock()
	m.calls++
	m.lastTag = tag
	m.included = includeCompleted
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	tasks := []models.Task{}
	for _, t := range m.Tasks {
		if t.Completed && !includeCompleted {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (m *MockTaskSource) ParseDueDate(task models.Task) (*models.DueDate, error) {
	due, err := task.ParseDueDate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidDueDate, err)
	}
	return due, nil
}

func (m *MockTaskSource) HasTimeComponent(task models.Task) bool { return task.HasTimeComponent() }
func (m *MockTaskSource) Ping(ctx context.Context) error         { return m.PingErr }
func (m *MockTaskSource) Name() string                           { return "mock source" }

// Calls returns how many times FetchTaggedTasks ran and the last tag it was given.
func (m *MockTaskSource) Calls() (int, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls, m.lastTag
}

// MockEventSink is an in-memory test double for [services.EventSink]
//
// FailFor maps event titles to the error CreateEvent returns for them.
// NilFor and EmptyIDFor make CreateEvent report success without a usable event.
type MockEventSink struct {
	FailFor    map[string]error
	NilFor     map[string]bool
	EmptyIDFor map[string]bool
	DeleteErr  error
	PingErr    error

	mu      sync.Mutex
	nextID  int
	events  map[string]*models.CalendarEvent
	created []*models.CalendarEvent
	deleted []string
}

func (m *MockEventSink) CreateEvent(ctx context.Context, title, description string, start time.Time, allDay bool) (*models.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailFor[title]; err != nil {
		return nil, err
	}
	if m.NilFor[title] {
		return nil, nil
	}

	event := models.NewCalendarEvent(title, description, start, allDay)
	if !m.EmptyIDFor[title] {
		m.nextID++
		event.ID = fmt.Sprintf("evt-%d", m.nextID)
		if m.events == nil {
			m.events = map[string]*models.CalendarEvent{}
		}
		m.events[event.ID] = event
	}
	m.created = append(m.created, event)
	return event, nil
}

func (m *MockEventSink) DeleteEvent(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.events[eventID]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrEventNotFound, eventID)
	}
	delete(m.events, eventID)
	m.deleted = append(m.deleted, eventID)
	return nil
}

func (m *MockEventSink) GetEvent(ctx context.Context, eventID string) (*models.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrEventNotFound, eventID)
	}
	return event, nil
}

func (m *MockEventSink) Ping(ctx context.Context) error { return m.PingErr }
func (m *MockEventSink) Name() string                   { return "mock sink" }

// Created returns every event CreateEvent reported, in call order.
func (m *MockEventSink) Created() []*models.CalendarEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.CalendarEvent(nil), m.created...)
}

// Deleted returns the IDs removed through DeleteEvent.
func (m *MockEventSink) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// Live returns the number of events currently on the fake calendar.
func (m *MockEventSink) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// MemoryLedger is an in-memory [models.Ledger] with the same uniqueness rules as the SQLite one.
type MemoryLedger struct {
	FindErr   error
	InsertErr error

	mu      sync.Mutex
	seq     int
	records []*models.SyncRecord
}

func (l *MemoryLedger) FindByTaskID(taskID string) (*models.SyncRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FindErr != nil {
		return nil, l.FindErr
	}
	for _, r := range l.records {
		if r.TaskID == taskID {
			return r, nil
		}
	}
	return nil, nil
}

func (l *MemoryLedger) Insert(record *models.SyncRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.InsertErr != nil {
		return l.InsertErr
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	for _, r := range l.records {
		if r.TaskID == record.TaskID || r.EventID == record.EventID {
			return fmt.Errorf("%w: task %s", shared.ErrDuplicateRecord, record.TaskID)
		}
	}

	l.seq++
	record.ID = shared.GenerateID()
	record.Sequence = l.seq
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
		record.UpdatedAt = record.CreatedAt
	}
	l.records = append(l.records, record)
	return nil
}

func (l *MemoryLedger) DeleteByTaskID(taskID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, r := range l.records {
		if r.TaskID == taskID {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (l *MemoryLedger) List() ([]*models.SyncRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*models.SyncRecord(nil), l.records...), nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
