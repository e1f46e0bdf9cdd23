package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetWithoutLoggerDiscards(t *testing.T) {
	l := Get(context.Background())
	assert.Same(t, discard, l)
	// Must not panic.
	Debug(context.Background(), "nothing")
}

func TestPutGet(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, true)
	ctx := Put(context.Background(), l)

	assert.Same(t, l, Get(ctx))

	Warn(ctx, "unexpected key", "key", "foo")
	assert.Contains(t, buf.String(), "unexpected key")
	assert.Contains(t, buf.String(), "key=foo")
}

func TestLevels(t *testing.T) {
	t.Setenv(DebugEnv, "")

	var buf bytes.Buffer
	l := New(&buf, false, true)
	assert.Equal(t, slog.LevelWarn, l.Level.Level())

	ctx := Put(context.Background(), l)
	Info(ctx, "hidden")
	assert.Empty(t, buf.String())

	verbose := New(&buf, true, true)
	assert.Equal(t, slog.LevelDebug, verbose.Level.Level())
}

func TestDebugEnv(t *testing.T) {
	t.Setenv(DebugEnv, "1")

	var buf bytes.Buffer
	l := New(&buf, false, true)
	assert.Equal(t, slog.LevelDebug, l.Level.Level())
}
