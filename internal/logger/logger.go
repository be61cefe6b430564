// Package logger wraps zerolog with the conventions used across the server:
// INFO/WARN on stdout, ERROR and above on stderr, an optional log file that
// receives everything, and a request-scoped logger carried in the context.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	Level  string
	Format string // "json" or "console"
	File   string
	Stdout io.Writer
	Stderr io.Writer
}

// Logger is the process-wide structured logger.
type Logger struct {
	base zerolog.Logger
}

type ctxKey struct{}

// levelRouter sends error-and-above events to one writer and the rest to another.
type levelRouter struct {
	out io.Writer
	err io.Writer
}

func (lr levelRouter) Write(p []byte) (int, error) {
	return lr.out.Write(p)
}

func (lr levelRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel && level != zerolog.NoLevel {
		return lr.err.Write(p)
	}
	return lr.out.Write(p)
}

// New builds a Logger. The returned cleanup closes the log file, if any.
func New(opts Options) (*Logger, func() error, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	cleanup := func() error { return nil }
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = f.Close
		stdout = io.MultiWriter(stdout, f)
		stderr = io.MultiWriter(stderr, f)
	}

	if strings.EqualFold(opts.Format, "console") {
		stdout = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.TimeOnly}
		stderr = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	base := zerolog.New(levelRouter{out: stdout, err: stderr}).
		With().
		Timestamp().
		Str("service", "mechatrack").
		Logger().
		Level(ParseLevel(opts.Level))

	return &Logger{base: base}, cleanup, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// ParseLevel maps a textual level to zerolog, falling back to info.
func ParseLevel(value string) zerolog.Level {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(value); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}

// From returns the context's request logger, or the base logger.
func (l *Logger) From(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return entry
		}
	}
	return &l.base
}

// WithFields returns a context whose logger carries the given fields.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	entry := l.From(ctx).With().Fields(fields).Logger()
	return context.WithValue(ctx, ctxKey{}, &entry)
}

// WithField is WithFields for a single key.
func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.WithFields(ctx, map[string]any{key: value})
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.From(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.From(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	l.From(ctx).Warn().Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.From(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}
