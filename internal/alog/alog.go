// Package alog is AltWalker's structured logging adapter. It wraps
// github.com/charmbracelet/log behind a small key/value interface and
// enriches every entry with a correlation ID when one is present in
// context.
package alog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cblog "github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Logger is AltWalker's structured logging contract. All log calls are
// key/value pairs and must be safe for concurrent use.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...any)
	Info(ctx context.Context, msg string, fields ...any)
	Warn(ctx context.Context, msg string, fields ...any)
	Error(ctx context.Context, msg string, fields ...any)
	With(fields ...any) Logger
}

// Options configures a Logger instance.
type Options struct {
	Writer        io.Writer
	Level         string // debug|info|warn|error
	HumanReadable bool
	Component     string // generatorproc|executor|walker|validator|cli...
}

type cblogger struct {
	log       *cblog.Logger
	component string
	fields    []any
}

// New constructs a Logger from Options.
func New(opts Options) (Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("alog: parse level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	formatter := cblog.JSONFormatter
	if opts.HumanReadable {
		formatter = cblog.TextFormatter
	}

	base := cblog.NewWithOptions(writer, cblog.Options{
		Level:           level,
		ReportTimestamp: true,
		Formatter:       formatter,
	})

	var fields []any
	if opts.Component != "" {
		fields = append(fields, "component", opts.Component)
	}

	return &cblogger{log: base, component: opts.Component, fields: fields}, nil
}

func (l *cblogger) log_(ctx context.Context, level cblog.Level, msg string, fields ...any) {
	payload := make([]any, 0, len(l.fields)+len(fields)+2)
	payload = append(payload, l.fields...)
	payload = append(payload, fields...)
	if id := CorrelationID(ctx); id != "" {
		payload = append(payload, "correlation_id", id)
	}

	switch level {
	case cblog.DebugLevel:
		l.log.Debug(msg, payload...)
	case cblog.WarnLevel:
		l.log.Warn(msg, payload...)
	case cblog.ErrorLevel:
		l.log.Error(msg, payload...)
	default:
		l.log.Info(msg, payload...)
	}
}

func (l *cblogger) Debug(ctx context.Context, msg string, fields ...any) {
	l.log_(ctx, cblog.DebugLevel, msg, fields...)
}

func (l *cblogger) Info(ctx context.Context, msg string, fields ...any) {
	l.log_(ctx, cblog.InfoLevel, msg, fields...)
}

func (l *cblogger) Warn(ctx context.Context, msg string, fields ...any) {
	l.log_(ctx, cblog.WarnLevel, msg, fields...)
}

func (l *cblogger) Error(ctx context.Context, msg string, fields ...any) {
	l.log_(ctx, cblog.ErrorLevel, msg, fields...)
}

func (l *cblogger) With(fields ...any) Logger {
	next := make([]any, len(l.fields), len(l.fields)+len(fields))
	copy(next, l.fields)
	next = append(next, fields...)
	return &cblogger{log: l.log, component: l.component, fields: next}
}

// NoOp returns a Logger that discards every entry, used as a safe default
// when the caller has not configured logging (e.g. in unit tests).
func NoOp() Logger { return noop{} }

type noop struct{}

func (noop) Debug(context.Context, string, ...any) {}
func (noop) Info(context.Context, string, ...any)  {}
func (noop) Warn(context.Context, string, ...any)  {}
func (noop) Error(context.Context, string, ...any) {}
func (n noop) With(...any) Logger                  { return n }

type correlationIDKey struct{}

// WithCorrelationID attaches a correlation ID to ctx so downstream layers
// emit correlated log entries.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID extracts the correlation ID from ctx, or "" when none was
// set.
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// NewCorrelationID produces a fresh UUIDv4 correlation ID. CLI entry points
// call this once per invocation.
func NewCorrelationID() string {
	return uuid.NewString()
}
