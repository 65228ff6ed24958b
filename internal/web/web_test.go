package web

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/taskcal/internal/models"
	tu "github.com/desertthunder/taskcal/internal/testing"
)

type failingLister struct{}

func (failingLister) List() ([]*models.SyncRecord, error) { return nil, errors.New("boom") }

func TestDashboard(t *testing.T) {
	logger := log.New(io.Discard)

	t.Run("renders records", func(t *testing.T) {
		ledger := &tu.MemoryLedger{}
		ledger.Insert(&models.SyncRecord{
			TaskID:   "1",
			TaskName: "Write <report>",
			EventID:  "evt-1",
			DueDate:  time.Date(2023, 10, 10, 0, 0, 0, 0, time.UTC),
			AllDay:   true,
		})

		d, err := NewDashboard(ledger, "schedule", logger)
		if err != nil {
			t.Fatalf("failed to create dashboard: %v", err)
		}

		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{"schedule", "Write &lt;report&gt;", "2023-10-10", "(all day)", "evt-1"} {
			if !strings.Contains(body, want) {
				t.Errorf("expected body to contain %q", want)
			}
		}
	})

	t.Run("empty ledger", func(t *testing.T) {
		d, err := NewDashboard(&tu.MemoryLedger{}, "schedule", logger)
		if err != nil {
			t.Fatalf("failed to create dashboard: %v", err)
		}

		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if !strings.Contains(rec.Body.String(), "No tasks synced yet") {
			t.Error("expected empty state message")
		}
	})

	t.Run("ledger error", func(t *testing.T) {
		d, err := NewDashboard(failingLister{}, "schedule", logger)
		if err != nil {
			t.Fatalf("failed to create dashboard: %v", err)
		}

		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}
