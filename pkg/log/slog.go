package log

import (
	"context"
	"log/slog"
)

// SlogLogger adapts *slog.Logger to Logger.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l. A nil l means slog.Default() at call time.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (s *SlogLogger) logger() *slog.Logger {
	if s.l == nil {
		return slog.Default()
	}
	return s.l
}

// Debug implements Logger.Debug.
func (s *SlogLogger) Debug(msg string, fields ...any) { s.logger().Debug(msg, fields...) }

// Info implements Logger.Info.
func (s *SlogLogger) Info(msg string, fields ...any) { s.logger().Info(msg, fields...) }

// Warn implements Logger.Warn.
func (s *SlogLogger) Warn(msg string, fields ...any) { s.logger().Warn(msg, fields...) }

// Error implements Logger.Error.
func (s *SlogLogger) Error(msg string, fields ...any) { s.logger().Error(msg, fields...) }

// With implements Logger.With.
func (s *SlogLogger) With(fields ...any) Logger {
	return &SlogLogger{l: s.logger().With(fields...)}
}

// Enabled implements Logger.Enabled.
func (s *SlogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.logger().Enabled(ctx, slog.Level(level))
}
