package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for input, expect := range tests {
		if got := parseLevel(input); got != expect {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, expect)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	NewComponentLogger(logger, "lineup").Info("extracted films", Int("count", 3))

	line := buf.String()
	if !strings.Contains(line, "[lineup]") {
		t.Fatalf("expected component tag in output, got %q", line)
	}
	if !strings.Contains(line, "count=3") {
		t.Fatalf("expected attr in output, got %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info line should be suppressed at warn level, got %q", buf.String())
	}
	logger.Warn("emitted")
	if buf.Len() == 0 {
		t.Fatal("warn line should be emitted")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("this must not panic", Error(nil))
}
