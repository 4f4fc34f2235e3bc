package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestInitBridgesSlogToZap(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	slog.Info("bridge check", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "bridge check") {
		t.Fatalf("output missing message: %s", out)
	}
	if !strings.Contains(out, `"key"`) || !strings.Contains(out, `"value"`) {
		t.Errorf("output missing attribute: %s", out)
	}
}

func TestInitRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "error", Format: "json", Output: &buf})

	slog.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged despite error level: %s", buf.String())
	}

	slog.Error("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("error not logged: %s", buf.String())
	}
}
