package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level represents logging verbosity.
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps error|warn|info|debug (any case) to a Level. Unknown names fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// Logger provides leveled logging on top of the standard logger.
type Logger struct {
	level atomic.Int32
	out   *log.Logger
}

// New creates a logger writing to w at level.
func New(w io.Writer, level Level) *Logger {
	l := &Logger{out: log.New(w, "", log.LstdFlags)}
	l.level.Store(int32(level))
	return l
}

// SetLevel changes the verbosity; safe to call concurrently with logging.
func (l *Logger) SetLevel(level Level) { l.level.Store(int32(level)) }

// Level returns the current verbosity.
func (l *Logger) Level() Level { return Level(l.level.Load()) }

// Writer exposes the underlying destination, e.g. for access logs.
func (l *Logger) Writer() io.Writer { return l.out.Writer() }

func (l *Logger) logf(level Level, tag, format string, args ...any) {
	if l.Level() >= level {
		l.out.Printf(tag+format, args...)
	}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, "[ERROR] ", format, args...) }

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...any) { l.logf(LevelWarn, "[WARN] ", format, args...) }

// Info logs info messages
func (l *Logger) Info(format string, args ...any) { l.logf(LevelInfo, "[INFO] ", format, args...) }

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, "[DEBUG] ", format, args...) }

var std = New(os.Stderr, LevelInfo)

// Default returns the process-wide logger.
func Default() *Logger { return std }

// SetLevel adjusts the process-wide logger.
func SetLevel(level Level) { std.SetLevel(level) }

func Errorf(format string, args ...any) { std.Error(format, args...) }
func Warnf(format string, args ...any)  { std.Warn(format, args...) }
func Infof(format string, args ...any)  { std.Info(format, args...) }
func Debugf(format string, args ...any) { std.Debug(format, args...) }
