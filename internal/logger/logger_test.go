package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := base
	base = zap.New(core)
	t.Cleanup(func() { base = prev })
	return logs
}

func TestFieldsAreStructured(t *testing.T) {
	logs := observe(t)

	Warn("login failed", map[string]any{"provider": "vatsim", "status": 502})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "login failed", entries[0].Message)
	assert.Equal(t, map[string]any{"provider": "vatsim", "status": int64(502)}, entries[0].ContextMap())
}

func TestNilFields(t *testing.T) {
	logs := observe(t)

	Info("redis ready", nil)
	Error("boom", map[string]any{})

	require.Equal(t, 2, logs.Len())
	assert.Empty(t, logs.All()[0].Context)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
}
