package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/shared"
	th "github.com/desertthunder/taskcal/internal/testing"
)

func sampleRecords() []*models.SyncRecord {
	synced := time.Date(2023, 10, 1, 9, 30, 0, 0, time.UTC)
	return []*models.SyncRecord{
		{
			ID:        "rec-1",
			Sequence:  1,
			TaskID:    "1201",
			TaskName:  "Quarterly report",
			DueDate:   time.Date(2023, 10, 10, 0, 0, 0, 0, time.UTC),
			AllDay:    true,
			EventID:   "evt-1",
			CreatedAt: synced,
			UpdatedAt: synced,
		},
		{
			ID:        "rec-2",
			Sequence:  2,
			TaskID:    "1202",
			TaskName:  "Call | vendor",
			DueDate:   time.Date(2023, 10, 10, 15, 0, 0, 0, time.UTC),
			AllDay:    false,
			EventID:   "evt-2",
			CreatedAt: synced,
			UpdatedAt: synced,
		},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"csv":      FormatCSV,
		"MD":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"txt":      FormatText,
		" text ":   FormatText,
		"json":     FormatJSON,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for xml, got %v", err)
	}
}

func TestExporters(t *testing.T) {
	records := sampleRecords()

	t.Run("FormatDue", func(t *testing.T) {
		if got := FormatDue(records[0]); got != "2023-10-10" {
			t.Errorf("expected bare date for all-day record, got %q", got)
		}
		if got := FormatDue(records[1]); got != "2023-10-10 15:00 UTC" {
			t.Errorf("expected date and time for timed record, got %q", got)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(records)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Task ID,Task Name,Due,All Day,Event ID,Synced At") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1201,Quarterly report,2023-10-10,true,evt-1,2023-10-01T09:30:00Z") {
			t.Errorf("CSV missing first record, got: %s", output)
		}
		if !strings.Contains(output, "1202,Call | vendor,2023-10-10 15:00 UTC,false,evt-2") {
			t.Errorf("CSV missing second record, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("with tag", func(t *testing.T) {
			data, err := ExportToMarkdown(records, "schedule")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)
			expected := []string{
				`# Tasks tagged "schedule"`,
				"**Records**: 2",
				"| Quarterly report | 2023-10-10 (all day) | `evt-1` |",
				`| Call \| vendor | 2023-10-10 15:00 UTC | ` + "`evt-2` |",
			}
			for _, exp := range expected {
				if !strings.Contains(output, exp) {
					t.Errorf("Markdown missing %q, got:\n%s", exp, output)
				}
			}
		})

		t.Run("empty ledger", func(t *testing.T) {
			data, err := ExportToMarkdown(nil, "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)
			if !strings.Contains(output, "# Synced tasks") || !strings.Contains(output, "**Records**: 0") {
				t.Errorf("unexpected empty export: %s", output)
			}
			if strings.Contains(output, "| Task |") {
				t.Error("empty export should not contain a table")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(records)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		expected := []string{
			"Records: 2",
			"1. Quarterly report (due 2023-10-10) -> evt-1",
			"2. Call | vendor (due 2023-10-10 15:00 UTC) -> evt-2",
		}
		for _, exp := range expected {
			if !strings.Contains(output, exp) {
				t.Errorf("Text missing %q, got:\n%s", exp, output)
			}
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(records)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []models.SyncRecord
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[1].EventID != "evt-2" {
			t.Errorf("unexpected decoded records: %+v", decoded)
		}

		empty, err := ExportToJSON(nil)
		if err != nil {
			t.Fatalf("ExportToJSON(nil) failed: %v", err)
		}
		if strings.TrimSpace(string(empty)) != "[]" {
			t.Errorf("expected [], got %s", empty)
		}
	})

	t.Run("Export unknown format", func(t *testing.T) {
		if _, err := Export(records, Format("xml"), ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriters(t *testing.T) {
	records := sampleRecords()

	t.Run("WriteText", func(t *testing.T) {
		t.Run("write error", func(t *testing.T) {
			if err := WriteText(&th.FWriter{}, records); err == nil {
				t.Error("expected error from failing writer")
			}
		})

		t.Run("fails mid-stream", func(t *testing.T) {
			var buf bytes.Buffer
			w := th.NewLimitedWriter(2, 0, &buf)

			err := WriteText(&w, records)
			if err == nil || !strings.Contains(err.Error(), "1202") {
				t.Errorf("expected error naming the second record, got %v", err)
			}
			if !strings.Contains(buf.String(), "Quarterly report") {
				t.Errorf("expected first record to be written before failure, got %q", buf.String())
			}
		})
	})

	t.Run("WriteExport", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteExport(&buf, records, FormatCSV, ""); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Task ID,") {
			t.Errorf("expected CSV output, got %q", buf.String())
		}

		if err := WriteExport(&th.FWriter{}, records, FormatText, ""); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("WriteExportFile", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			t.Chdir(t.TempDir())

			path, err := WriteExportFile(records, FormatMarkdown, "schedule", "")
			if err != nil {
				t.Fatalf("WriteExportFile failed: %v", err)
			}
			if path != "sync_records.md" {
				t.Errorf("Expected 'sync_records.md', got '%s'", path)
			}

			th.AssertFileExists(t, path)
			if content := th.MustReadFile(t, path); !strings.Contains(content, "Quarterly report") {
				t.Errorf("export file missing records: %s", content)
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ledger.csv")

			got, err := WriteExportFile(records, FormatCSV, "", path)
			if err != nil {
				t.Fatalf("WriteExportFile failed: %v", err)
			}
			if got != path {
				t.Errorf("Expected %q, got %q", path, got)
			}
			th.AssertFileExists(t, path)
		})

		t.Run("unwritable path", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing", "ledger.txt")
			if _, err := WriteExportFile(records, FormatText, "", path); err == nil {
				t.Error("expected error writing into a missing directory")
			}
		})
	})
}
