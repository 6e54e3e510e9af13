package shared

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
)

func TestShared(t *testing.T) {
	t.Run("NewLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		logger.Info("hello")
		if buf.Len() == 0 {
			t.Error("expected log output to be written")
		}
	})

	t.Run("NewLogger Defaults To Stderr", func(t *testing.T) {
		if logger := NewLogger(nil); logger == nil {
			t.Fatal("expected logger to be created")
		}
	})

	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		child := WithLogger(logger, "component", "test")
		if child == nil {
			t.Fatal("expected child logger")
		}

		child.Info("tagged")
		if !bytes.Contains(buf.Bytes(), []byte("component")) {
			t.Error("expected child logger to carry key-value pairs")
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		SetLogLevel(logger, log.ErrorLevel)
		logger.Info("suppressed")
		if buf.Len() != 0 {
			t.Error("info output should be suppressed at error level")
		}
	})

	t.Run("GenerateState", func(t *testing.T) {
		a, b := GenerateState(), GenerateState()

		if a == "" || b == "" {
			t.Error("state tokens should not be empty")
		}

		if a == b {
			t.Error("state tokens should be unique")
		}
	})
}
