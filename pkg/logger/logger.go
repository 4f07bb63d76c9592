package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Leveled logger shared by the guestbook server, worker and CLI.
// Init(level) picks the threshold; SetOutput redirects lines (tests, files).

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var names = map[Level]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
)

// ParseLevel maps a case-insensitive level name to a Level. Unknown names map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	}
	return LevelInfo
}

// Init sets the global log level. Call early during startup.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// SetOutput redirects all log lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

// Writer returns the current destination, for libraries that want an io.Writer.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return logger.Writer()
}

func logf(l Level, format string, v ...interface{}) {
	mu.RLock()
	out, min := logger, level
	mu.RUnlock()
	if l < min {
		return
	}
	head := fmt.Sprintf("%s [%s] ", time.Now().UTC().Format(time.RFC3339), strings.ToUpper(names[l]))
	out.Printf(head+format, v...)
}

func Debugf(format string, v ...interface{}) { logf(LevelDebug, format, v...) }
func Infof(format string, v ...interface{})  { logf(LevelInfo, format, v...) }
func Warnf(format string, v ...interface{})  { logf(LevelWarn, format, v...) }
func Errorf(format string, v ...interface{}) { logf(LevelError, format, v...) }

// Fatalf logs regardless of level and exits.
func Fatalf(format string, v ...interface{}) {
	mu.Lock()
	level = LevelDebug
	mu.Unlock()
	logf(LevelFatal, format, v...)
	os.Exit(1)
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return names[level]
}
