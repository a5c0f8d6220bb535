package logger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	config := &Config{
		Level:       slog.LevelDebug,
		Format:      TEXT,
		Output:      &buf,
		DefaultTags: map[string]interface{}{"test": true},
	}
	logger := New(config)

	logger.Debug("This is a debug message")
	if !strings.Contains(buf.String(), "DEBUG") || !strings.Contains(buf.String(), "This is a debug message") {
		t.Errorf("Expected debug message in log output, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "test=true") {
		t.Errorf("Expected default tag in log output, got: %s", buf.String())
	}

	buf.Reset()
	logger.With("component", "vector").Warn("This is a warning", "line", 12)
	if !strings.Contains(buf.String(), "WARN") ||
		!strings.Contains(buf.String(), "component=vector") ||
		!strings.Contains(buf.String(), "line=12") {
		t.Errorf("Expected warning with attributes in log output, got: %s", buf.String())
	}

	buf.Reset()
	jsonLogger := New(&Config{
		Level:  slog.LevelInfo,
		Format: JSON,
		Output: &buf,
	})

	jsonLogger.Info("JSON message")
	if !strings.Contains(buf.String(), "\"level\":\"INFO\"") ||
		!strings.Contains(buf.String(), "\"msg\":\"JSON message\"") {
		t.Errorf("Expected JSON formatted log, got: %s", buf.String())
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer

	logger := FromSettings("info", "text", &buf)

	logger.Debug("Should not appear")
	if buf.Len() > 0 {
		t.Errorf("DEBUG message should not have been logged, got: %s", buf.String())
	}

	buf.Reset()
	logger.Info("Should appear")
	if buf.Len() == 0 {
		t.Errorf("INFO message should have been logged")
	}

	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"disabled", LevelDisabled},
		{"unknown", slog.LevelInfo},
	}
	for _, test := range tests {
		if got := ParseLevel(test.input); got != test.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", test.input, got, test.want)
		}
	}

	if ParseFormat("JSON") != JSON || ParseFormat("") != TEXT {
		t.Errorf("ParseFormat did not map formats correctly")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Errorf("Discard logger should not be enabled")
	}
	logger.Error("dropped")
}

func ExampleFromSettings() {
	var buf bytes.Buffer
	logger := FromSettings("debug", "text", &buf)

	logger.With("stage", "cluster").Info("k-means converged")

	fmt.Println("Contains stage:", strings.Contains(buf.String(), "stage=cluster"))
	// Output: Contains stage: true
}
