package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Info("donation", "donation committed", map[string]interface{}{"amount": "100000"})
	l.Error("donation", "commit failed", map[string]interface{}{"error": errors.New("boom")})
	l.Debug("auth", "no details", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "donation committed", entries[0].Message)
	assert.Equal(t, "donation", entries[0].ContextMap()["module"])
	assert.Equal(t, map[string]interface{}{"amount": "100000"}, entries[0].ContextMap()["details"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	_, hasDetails := entries[2].ContextMap()["details"]
	assert.False(t, hasDetails)
}

func TestNopDoesNotPanic(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Warn("x", "y", nil)
		_ = l.Sync()
	})
}
