// Package logger carries a structured logger through a context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// DebugEnv enables debug logging when set to a non-empty value.
const DebugEnv = "HOOKGATE_DEBUG"

type ctxKey struct{}

// Logger wraps an [slog.Logger] together with the [slog.LevelVar] that
// controls it.
type Logger struct {
	*slog.Logger
	Level *slog.LevelVar
}

// New returns a Logger writing colorized records to w.
// Records below LevelWarn are dropped unless verbose is set or DebugEnv is
// present in the environment.
func New(w io.Writer, verbose, noColor bool) *Logger {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if verbose || os.Getenv(DebugEnv) != "" {
		level.Set(slog.LevelDebug)
	}
	h := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
	return &Logger{Logger: slog.New(h), Level: level}
}

var discard = &Logger{
	Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	Level:  new(slog.LevelVar),
}

// Put returns a copy of ctx carrying l.
func Put(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Get returns the Logger stored in ctx, or one that discards everything.
func Get(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return discard
}

// Debug logs at debug level.
func Debug(ctx context.Context, msg string, args ...any) {
	Get(ctx).DebugContext(ctx, msg, args...)
}

// Info logs at info level.
func Info(ctx context.Context, msg string, args ...any) {
	Get(ctx).InfoContext(ctx, msg, args...)
}

// Warn logs at warn level.
func Warn(ctx context.Context, msg string, args ...any) {
	Get(ctx).WarnContext(ctx, msg, args...)
}

// Timing logs how long phase took since start.
func Timing(ctx context.Context, phase string, start time.Time) {
	Get(ctx).DebugContext(ctx, "timing", "phase", phase, "took", time.Since(start))
}
