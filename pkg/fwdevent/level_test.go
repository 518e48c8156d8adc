package fwdevent

import "testing"

// TestParseLevel tests level name mapping
func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{"WARN", LevelWarn},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"FATAL", LevelFatal},
		{" error ", LevelError},
		{"", LevelUnknown},
		{"VERBOSE", LevelUnknown},
		{"OFF", LevelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestLevelString tests level names round trip
func TestLevelString(t *testing.T) {
	for _, lvl := range Levels {
		if got := ParseLevel(lvl.String()); got != lvl {
			t.Errorf("Expected %v to round trip, got %v", lvl, got)
		}
	}
	if LevelUnknown.String() != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN, got %s", LevelUnknown.String())
	}
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN for out of range level, got %s", Level(42).String())
	}
}
