package logger

import (
	"path/filepath"
	"testing"

	"authportal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("whatever"))
}

func TestNew(t *testing.T) {
	l, err := New(&config.Config{AppMode: "release", LogLevel: "warn", LogFormat: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_ReportsCallingSite(t *testing.T) {
	l, err := New(&config.Config{AppMode: "debug", LogLevel: "debug"})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	l = l.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))
	l.Info("hello")

	require.Equal(t, 1, logs.Len())
	caller := logs.All()[0].Caller
	require.True(t, caller.Defined)
	assert.Equal(t, "zap_test.go", filepath.Base(caller.File))
}
