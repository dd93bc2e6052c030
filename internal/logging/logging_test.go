package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{"debug", LevelDebug, true},
		{"DEBUG", LevelDebug, true},
		{"info", LevelInfo, true},
		{"warn", LevelWarn, true},
		{"WARNING", LevelWarn, true},
		{"error", LevelError, true},
		{"unknown", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		level, ok := ParseLevel(tt.input)
		if level != tt.expected || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = (%v, %v), expected (%v, %v)", tt.input, level, ok, tt.expected, tt.ok)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error %d", 42)

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below level were written: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn message") {
		t.Errorf("expected warn message, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] error 42") {
		t.Errorf("expected formatted error message, got %q", out)
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf, Prefix: "test"})

	logger.WithComponent("storage").WithField("bytes", 64).Info("released")

	out := buf.String()
	if !strings.Contains(out, "test: released {bytes=64, component=storage}") {
		t.Errorf("unexpected line %q", out)
	}
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Config{Level: LevelDebug, Output: &buf})
	_ = parent.WithField("k", "v")

	parent.Info("plain")
	if strings.Contains(buf.String(), "k=v") {
		t.Errorf("parent logger picked up child field: %q", buf.String())
	}
}

func TestLogger_Enabled(t *testing.T) {
	logger := New(Config{Level: LevelInfo, Output: &bytes.Buffer{}})
	if logger.Enabled(LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	if !logger.Enabled(LevelError) {
		t.Error("error should be enabled at info level")
	}

	if Nop().Enabled(LevelError) {
		t.Error("nop logger should never be enabled")
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(New(Config{Level: LevelDebug, Output: &buf}))
	Default().Debug("via default")

	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("expected default logger output, got %q", buf.String())
	}
}
