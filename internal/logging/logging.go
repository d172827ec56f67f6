package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a deliberately small, framework-agnostic logging interface.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning.
	Warn(msg string, fields ...Field)

	// Error logs an error.
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value any
}

// StdoutLogger is a structured logger that writes one line per entry to stdout.
// Output is JSON unless GEORISK_LOG_FORMAT=text; the minimum level comes from
// GEORISK_LOG_LEVEL (debug|info|warn|error, default info).
type StdoutLogger struct {
	l *slog.Logger
}

// NewStdoutLogger creates a StdoutLogger. component is optional and is
// attached to every entry when set.
func NewStdoutLogger(component string) *StdoutLogger {
	return newLogger(os.Stdout, component)
}

func newLogger(w io.Writer, component string) *StdoutLogger {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}
	var handler slog.Handler
	if strings.EqualFold(os.Getenv("GEORISK_LOG_FORMAT"), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	l := slog.New(handler)
	if component != "" {
		l = l.With("component", component)
	}
	return &StdoutLogger{l: l}
}

func levelFromEnv() slog.Leveler {
	switch strings.ToLower(os.Getenv("GEORISK_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func toArgs(fields []Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.l.Debug(msg, toArgs(fields)...)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.l.Info(msg, toArgs(fields)...)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.l.Warn(msg, toArgs(fields)...)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.l.Error(msg, toArgs(fields)...)
}

func (s *StdoutLogger) With(fields ...Field) Logger {
	return &StdoutLogger{l: s.l.With(toArgs(fields)...)}
}
