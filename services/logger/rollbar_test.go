package logsvc

import (
	"errors"
	"testing"

	"github.com/rollbar/rollbar-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/campusbuddy/helpdesk/core"
)

func newObservedLogger(t *testing.T) (*RollbarLogger, *observer.ObservedLogs) {
	t.Helper()
	rollbar.SetEnabled(false)
	zcore, logs := observer.New(zapcore.DebugLevel)
	return newRollbarLogger(zap.New(zcore)), logs
}

func TestRollbarLogger_fields(t *testing.T) {
	l, logs := newObservedLogger(t)

	l.Warn("provider failed",
		errors.New("boom"),
		map[string]interface{}{"provider": "mistral"},
		core.Person{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		core.Person{ID: "u2"},
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	assert.Equal(t, "provider failed", e.Message)

	ctx := e.ContextMap()
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "mistral", ctx["provider"])
	assert.Equal(t, "u1", ctx["user"])
}

func TestRollbarLogger_levels(t *testing.T) {
	l, logs := newObservedLogger(t)

	l.Debug("d")
	l.Info("i")
	l.Error("e", 42)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "42", entries[2].ContextMap()["extra"])
}

func TestRollbarLogger_Named(t *testing.T) {
	l, logs := newObservedLogger(t)

	l.Named("db").Info("connected")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "db", entries[0].LoggerName)
}
