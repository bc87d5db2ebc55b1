// Package logger provides logging utilities for the importer.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a Logger.
type Options struct {
	Level  string
	Format string // "console" or "json"
	Writer io.Writer
}

// Logger provides structured logging functionality.
type Logger struct {
	internal zerolog.Logger
}

// NewLogger creates a console logger on stderr with the specified level.
func NewLogger(level string) *Logger {
	return New(Options{Level: level, Format: "console"})
}

// New creates a logger from opt.
func New(opt Options) *Logger {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}

	if strings.ToLower(opt.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: opt.Writer != nil}
	}

	zl := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()

	return &Logger{internal: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{internal: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level. Unknown names give info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Info logs an info level message.
func (l *Logger) Info(msg string, args ...any) {
	l.emit(l.internal.Info(), msg, args)
}

// Error logs an error level message.
func (l *Logger) Error(msg string, args ...any) {
	l.emit(l.internal.Error(), msg, args)
}

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, args ...any) {
	l.emit(l.internal.Debug(), msg, args)
}

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, args ...any) {
	l.emit(l.internal.Warn(), msg, args)
}

// DebugEnabled reports whether debug messages would be written.
func (l *Logger) DebugEnabled() bool {
	return l.internal.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel
}

// With creates a child logger with the given key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}

	return &Logger{internal: l.internal.With().Fields(args).Logger()}
}

// emit writes key/value pairs onto ev. A trailing key without a value is
// dropped.
func (l *Logger) emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}

	if len(args)%2 == 1 {
		args = args[:len(args)-1]
	}

	if len(args) > 0 {
		ev = ev.Fields(args)
	}

	ev.Msg(msg)
}
