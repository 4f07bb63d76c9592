package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestInitAndLevelString(t *testing.T) {
	defer Init("info")
	Init("debug")
	if got := LevelString(); got != "debug" {
		t.Fatalf("LevelString() = %q, want %q", got, "debug")
	}
	Init("WARN")
	if got := LevelString(); got != "warn" {
		t.Fatalf("LevelString() = %q, want %q", got, "warn")
	}
	Init(" Error ")
	if got := LevelString(); got != "error" {
		t.Fatalf("LevelString() = %q, want %q", got, "error")
	}
	Init("nonsense")
	if got := LevelString(); got != "info" {
		t.Fatalf("LevelString() = %q, want %q for unknown input", got, "info")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)
	defer Init("info")

	Init("warn")
	Debugf("debug-msg")
	Infof("info-msg")
	Warnf("warn-msg %d", 1)
	Error("error-msg")

	out := buf.String()
	if strings.Contains(out, "debug-msg") || strings.Contains(out, "info-msg") {
		t.Fatalf("messages below warn should be suppressed: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn-msg 1") {
		t.Fatalf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error-msg") {
		t.Fatalf("error message missing: %q", out)
	}

	Init("debug")
	buf.Reset()
	Debug("now-visible")
	if !strings.Contains(buf.String(), "now-visible") {
		t.Fatalf("debug expected at debug level, got: %q", buf.String())
	}
	if Writer() != &buf {
		t.Fatalf("Writer() should return the configured output")
	}
}
