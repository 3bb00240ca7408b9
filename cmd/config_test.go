package cmd

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "conda-store", configBaseName)
	assert.Equal(t, "conda-store.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "server", serverFlagName)
	assert.Equal(t, "auth-token", tokenFlagName)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "server.url", serverConfigKey)
	assert.Equal(t, "server.token", tokenConfigKey)
	assert.Equal(t, "wait.timeout", timeoutConfigKey)
	assert.Equal(t, "wait.poll_interval", pollIntervalConfigKey)
	assert.Equal(t, "http://localhost:8080", defaultServerURL)
	assert.Equal(t, 10*time.Minute, defaultTimeout)
	assert.Equal(t, 5*time.Second, defaultPollInterval)
	assert.Equal(t, "CONDA_STORE", envPrefix)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"Info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}
