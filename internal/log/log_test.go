package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{})

		logger.Info("hello", "key", "value")

		out := buf.String()
		if !strings.Contains(out, "hello") {
			t.Errorf("log output missing message: %q", out)
		}
		if !strings.Contains(out, "key=value") {
			t.Errorf("log output missing attribute: %q", out)
		}
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{JSON: true})

		logger.Info("hello")

		out := buf.String()
		if !strings.Contains(out, `"msg":"hello"`) {
			t.Errorf("JSON output missing msg field: %q", out)
		}
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

		logger.Debug("debug message")
		logger.Info("info message")

		if buf.Len() != 0 {
			t.Errorf("expected no output below warn level, got %q", buf.String())
		}

		logger.Warn("warn message")
		if !strings.Contains(buf.String(), "warn message") {
			t.Errorf("warn output missing: %q", buf.String())
		}
	})
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	if logger == nil {
		t.Fatal("NewNop() returned nil")
	}
	// Must not panic.
	logger.Info("discarded")
	logger.Error("discarded", "key", "value")
}
