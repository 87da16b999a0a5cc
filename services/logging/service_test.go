package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewService(t *testing.T) {
	t.Run("writes json to a file at the configured level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")

		service, err := NewService(Config{Level: Warn, Format: "json", OutputPath: path})
		require.NoError(t, err)

		service.Info("hidden")
		service.Warn("token superseded", zap.String("owner_id", "abc"))
		require.NoError(t, service.Sync())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "hidden")
		assert.Contains(t, string(content), `"msg":"token superseded"`)
		assert.Contains(t, string(content), `"owner_id":"abc"`)
	})

	t.Run("console format", func(t *testing.T) {
		service, err := NewService(Config{Level: Debug, Format: "console", OutputPath: "stdout"})

		require.NoError(t, err)
		assert.NotNil(t, service.logger)
	})

	t.Run("unwritable output", func(t *testing.T) {
		_, err := NewService(Config{OutputPath: filepath.Join(t.TempDir(), "missing", "app.log")})

		assert.Error(t, err)
	})
}

func TestService_NilSafety(t *testing.T) {
	for name, service := range map[string]*Service{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				service.Debug("debug")
				service.Info("info")
				service.Warn("warn")
				service.Error("error", zap.Error(assert.AnError))
				service.Infof("%d rows", 1)
				service.Warnf("%d rows", 1)
				service.Errorf("%d rows", 1)
				service.Named("mail").Info("named")
				service.With(zap.String("k", "v")).Info("with")
			})
			assert.NoError(t, service.Sync())
		})
	}
}

func TestService_NamedAndWith(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	service := FromZap(zap.New(core))

	service.Named("emailvalidation").With(zap.String("owner_id", "abc")).Info("issuing token")
	service.Errorf("query failed after %d ms", 12)

	entries := recorded.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "emailvalidation", entries[0].LoggerName)
	assert.Equal(t, "abc", entries[0].ContextMap()["owner_id"])

	assert.Equal(t, "", entries[1].LoggerName)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "query failed after 12 ms", entries[1].Message)
}

func TestNewNop(t *testing.T) {
	service := NewNop()

	assert.NotNil(t, service.logger)
	assert.NoError(t, service.Sync())
}

func TestZapLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zapcore.Level
	}{
		{Debug, zapcore.DebugLevel},
		{Info, zapcore.InfoLevel},
		{Warn, zapcore.WarnLevel},
		{Error, zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, zapLevel(tt.input))
		})
	}
}
