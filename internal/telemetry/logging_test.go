package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/af-corp/content-assistant/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := NewLogger(config.TelemetryConfig{LogLevel: "info", LogFormat: "json"}, &buf)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("request completed", "request_id", "req-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (debug filtered), got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("expected request_id attr, got %v", entry)
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(config.TelemetryConfig{LogLevel: "debug", LogFormat: "text"}, &buf)

	logger.Debug("visible", "k", "v")

	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.log")
	var buf bytes.Buffer
	logger, closer := NewLogger(config.TelemetryConfig{
		LogLevel:      "info",
		LogFile:       path,
		LogMaxSizeMB:  1,
		LogMaxBackups: 1,
	}, &buf)

	logger.Info("to both sinks")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to both sinks") || !strings.Contains(buf.String(), "to both sinks") {
		t.Errorf("expected line in file and stdout; file=%q stdout=%q", data, buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
