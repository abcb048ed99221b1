package log

import (
	"context"
	"fmt"

	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"github.com/rs/zerolog"
)

// ZerologLogger adapts zerolog.Logger to Logger.
type ZerologLogger struct {
	l zerolog.Logger
}

// NewZerologLogger wraps l.
func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

// Debug implements Logger.Debug.
func (z *ZerologLogger) Debug(msg string, fields ...any) { emit(z.l.Debug(), msg, fields) }

// Info implements Logger.Info.
func (z *ZerologLogger) Info(msg string, fields ...any) { emit(z.l.Info(), msg, fields) }

// Warn implements Logger.Warn.
func (z *ZerologLogger) Warn(msg string, fields ...any) { emit(z.l.Warn(), msg, fields) }

// Error implements Logger.Error.
func (z *ZerologLogger) Error(msg string, fields ...any) { emit(z.l.Error(), msg, fields) }

// With implements Logger.With.
func (z *ZerologLogger) With(fields ...any) Logger {
	ctx := z.l.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(fmt.Sprint(fields[i]), fields[i+1])
	}
	return &ZerologLogger{l: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.l.GetLevel() <= toZerologLevel(level)
}

func emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// InstallZerologWarnings routes errors.Warn through l. Warnings that
// implement zerolog.LogObjectMarshaler are embedded as structured fields.
func InstallZerologWarnings(l zerolog.Logger) {
	errors.SetZerologWarnFunc(func(w error) {
		e := l.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			e = e.EmbedObject(m)
		}
		e.Msg(w.Error())
	})
}
