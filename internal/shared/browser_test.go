package shared

import (
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	original := getRuntime
	defer func() { getRuntime = original }()

	tc := []struct {
		goos string
		name string
		args int
	}{
		{"darwin", "open", 1},
		{"linux", "xdg-open", 1},
		{"windows", "cmd", 3},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			getRuntime = func() string { return tt.goos }

			name, args, err := browserCommand("https://example.com")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.name {
				t.Errorf("expected %s, got %s", tt.name, name)
			}
			if len(args) != tt.args || args[len(args)-1] != "https://example.com" {
				t.Errorf("unexpected args %v", args)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := GenerateState()

	if a == b {
		t.Error("expected distinct state tokens")
	}
	if len(a) != 32 {
		t.Errorf("expected 32 characters, got %d", len(a))
	}
}
