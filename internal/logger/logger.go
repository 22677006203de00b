// Package logger provides structured, leveled logging built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level controls the minimum severity that gets emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoggerInterface is the logging contract used throughout the application.
// Arguments follow slog's alternating key/value convention.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) LoggerInterface
}

// Logger implements LoggerInterface on top of slog.
type Logger struct {
	sl *slog.Logger
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing JSON records to w. The service name is
// attached to every record. extra attributes (may be nil) are appended.
func New(w io.Writer, level Level, service string, extra []slog.Attr) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level.slogLevel(),
	})

	attrs := []any{slog.String("service", service)}
	for _, a := range extra {
		attrs = append(attrs, a)
	}

	return &Logger{sl: slog.New(handler).With(attrs...)}
}

// Slog exposes the underlying *slog.Logger for libraries that want one.
func (l *Logger) Slog() *slog.Logger {
	return l.sl
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sl.DebugContext(ctx, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sl.InfoContext(ctx, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sl.WarnContext(ctx, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sl.ErrorContext(ctx, msg, args...)
}

// With returns a child logger with the given attributes attached.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{sl: l.sl.With(args...)}
}
