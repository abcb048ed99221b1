// Package log provides the structured logging interface used across stepwise.
//
// The interface is deliberately slog-shaped so the default backend can be the
// standard log/slog package while callers that already run zerolog can plug
// their logger in with NewZerologLogger. Every component logs through Logger
// and the attribute keys declared in attributes.go.
//
// Example usage:
//
//	logger := log.GetLogger().With(log.ComponentKey, "stepwise")
//	logger.Info("search finished",
//	    log.SelectedTermsKey, 3,
//	    log.AdjustedR2Key, 0.91,
//	)
package log

import (
	"context"
	"sync"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// fields are alternating key/value pairs. With returns a child logger that
// carries the given fields on every record.
type Logger interface {
	// Debug logs diagnostic detail, e.g. per-candidate scores.
	Debug(msg string, fields ...any)

	// Info logs operational milestones such as committed terms.
	Info(msg string, fields ...any)

	// Warn logs conditions the search recovers from, like a skipped singular candidate.
	Warn(msg string, fields ...any)

	// Error logs failures. Pass the error under ErrAttrKey to get a stack trace
	// attached by ErrFmtHandler.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip building expensive debug payloads.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
)

// GetLogger returns the process-wide logger. Until SetLogger is called it is
// a slog logger backed by slog.Default().
func GetLogger() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}
	return NewSlogLogger(nil)
}

// SetLogger replaces the process-wide logger. Passing nil restores the default.
func SetLogger(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Logger { return n }
func (nopLogger) Enabled(context.Context, Level) bool { return false }
