package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// LogLevel represents the severity of a log message
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Environment variables read on first use. PIXSORT_LOG_LEVEL wins over
// LOG_LEVEL; DEBUG=1 forces debug either way.
const (
	EnvLevel       = "PIXSORT_LOG_LEVEL"
	EnvLevelShared = "LOG_LEVEL"
	EnvDebug       = "DEBUG"
)

var (
	level     atomic.Int32
	levelOnce sync.Once
)

func initLevel() {
	levelOnce.Do(func() {
		level.Store(int32(levelFromEnv(os.Getenv)))
	})
}

func levelFromEnv(getenv func(string) string) LogLevel {
	switch strings.ToLower(getenv(EnvDebug)) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}
	for _, key := range []string{EnvLevel, EnvLevelShared} {
		if l, ok := ParseLevel(getenv(key)); ok {
			return l
		}
	}
	return LevelInfo
}

// ParseLevel converts a level name to a LogLevel. Unknown or empty names
// map to LevelInfo and report false.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// SetLevel overrides the level read from the environment. Safe to call
// while workers are logging.
func SetLevel(l LogLevel) {
	initLevel()
	level.Store(int32(l))
}

// SetOutput redirects all log output. The interactive UI owns the terminal,
// so it points logging at a file (or io.Discard) before starting.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	return LogLevel(level.Load())
}

// IsDebugEnabled guards debug lines that are costly to build.
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func logf(l LogLevel, tag, format string, args ...interface{}) {
	if GetLevel() <= l {
		log.Printf(tag+format, args...)
	}
}

// Debug logs per-file detail: cache lookups, decode failures, workers.
func Debug(format string, args ...interface{}) {
	logf(LevelDebug, "[DEBUG] ", format, args...)
}

// Info logs a message
func Info(format string, args ...interface{}) {
	logf(LevelInfo, "[INFO] ", format, args...)
}

// Warn logs a problem pixsort works around, such as a cache write failure.
func Warn(format string, args ...interface{}) {
	logf(LevelWarn, "[WARN] ", format, args...)
}

// Error logs a message
func Error(format string, args ...interface{}) {
	logf(LevelError, "[ERROR] ", format, args...)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
