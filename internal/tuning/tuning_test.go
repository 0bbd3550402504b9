package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "activity_count: 3\nmax_expanded_nodes: 500\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ActivityCount != 3 {
		t.Errorf("activity_count = %d, want 3", got.ActivityCount)
	}
	if got.MaxExpandedNodes != 500 {
		t.Errorf("max_expanded_nodes = %d, want 500", got.MaxExpandedNodes)
	}
	def := Default()
	if got.WatchWindowLevels != def.WatchWindowLevels {
		t.Errorf("untouched field changed: %d != %d", got.WatchWindowLevels, def.WatchWindowLevels)
	}
	if got.MaxSegmentTicks != def.MaxSegmentTicks {
		t.Errorf("untouched field changed: %d != %d", got.MaxSegmentTicks, def.MaxSegmentTicks)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero activities", "activity_count: 0\n"},
		{"sell pressure too high", "sell_pressure_fraction: 1.5\n"},
		{"zero margin", "competitive_margin: 0\n"},
		{"negative budget", "max_expanded_nodes: -1\n"},
		{"not yaml", ": : :\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tuning.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load accepted bad tuning")
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().validate(); err != nil {
		t.Fatalf("default tuning invalid: %v", err)
	}
}
