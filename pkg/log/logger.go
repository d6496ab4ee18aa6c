package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name ("debug", "info", ...) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("log: unknown level %q", s)
}

// Format selects the output encoding.
type Format int

const (
	TextFormat Format = iota
	JSONFormat
)

// ParseFormat converts a format name ("text", "json") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return TextFormat, nil
	case "json":
		return JSONFormat, nil
	}
	return TextFormat, fmt.Errorf("log: unknown format %q", s)
}

// Logger is the logging interface passed to sched components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger carrying additional fields.
	With(fields ...Field) Logger
	// WithComponent tags logs with a component name.
	WithComponent(component string) Logger

	// SetLevel sets the minimum log level. Child loggers share the gate.
	SetLevel(level Level)
	// GetLevel returns the current minimum log level.
	GetLevel() Level
}

// Option configures a logger under construction.
type Option func(*options)

type options struct {
	level  Level
	format Format
	output io.Writer
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option { return func(o *options) { o.level = level } }

// WithFormat sets the output encoding.
func WithFormat(format Format) Option { return func(o *options) { o.format = format } }

// WithOutput directs log output to w instead of stderr.
func WithOutput(w io.Writer) Option { return func(o *options) { o.output = w } }

// NewLogger creates a logger backed by a slog handler.
func NewLogger(opts ...Option) Logger {
	o := options{level: InfoLevel, format: TextFormat, output: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	lv := new(slog.LevelVar)
	lv.Set(toSlogLevel(o.level))
	hopts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	switch o.format {
	case JSONFormat:
		h = slog.NewJSONHandler(o.output, hopts)
	default:
		h = slog.NewTextHandler(o.output, hopts)
	}
	return &baseLogger{sl: slog.New(h), lv: lv}
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() Logger {
	return NewLogger(WithOutput(io.Discard), WithLevel(ErrorLevel+1))
}

type baseLogger struct {
	sl *slog.Logger
	lv *slog.LevelVar
}

func (l *baseLogger) log(level Level, msg string, fields []Field) {
	l.sl.LogAttrs(context.Background(), toSlogLevel(level), msg, attrs(fields)...)
}

func (l *baseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *baseLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *baseLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *baseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *baseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	args := make([]any, 0, len(fields))
	for _, a := range attrs(fields) {
		args = append(args, a)
	}
	return &baseLogger{sl: l.sl.With(args...), lv: l.lv}
}

func (l *baseLogger) WithComponent(component string) Logger {
	return l.With(Str("component", component))
}

func (l *baseLogger) SetLevel(level Level) { l.lv.Set(toSlogLevel(level)) }

func (l *baseLogger) GetLevel() Level { return fromSlogLevel(l.lv.Level()) }

func toSlogLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func fromSlogLevel(level slog.Level) Level {
	switch {
	case level <= slog.LevelDebug:
		return DebugLevel
	case level == slog.LevelInfo:
		return InfoLevel
	case level == slog.LevelWarn:
		return WarnLevel
	default:
		return ErrorLevel
	}
}
