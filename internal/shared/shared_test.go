package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "task_id", "123")

		out := buf.String()
		if !strings.Contains(out, "hello") || !strings.Contains(out, "task_id=123") {
			t.Errorf("unexpected log output %q", out)
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "engine")
		logger.Warn("careful")

		if !strings.Contains(buf.String(), "component=engine") {
			t.Errorf("expected component field, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		tc := []struct {
			in   string
			want log.Level
		}{
			{"debug", log.DebugLevel},
			{"warn", log.WarnLevel},
			{"error", log.ErrorLevel},
			{"nonsense", log.InfoLevel},
			{"", log.InfoLevel},
		}

		for _, tt := range tc {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "taskcal.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("written")
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected a valid uuid, got %q: %v", a, err)
	}
}
