package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "production", "info")

	logger.Debug("hidden")
	logger.Info("project created", "id", "p1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "project created", rec["msg"])
	assert.Equal(t, "p1", rec["id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_ErrorCarriesStack(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "production", "info").With("component", "test")

	logger.Error("boom")
	assert.Contains(t, buf.String(), `"stacktrace"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
}

func TestNew_DevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "development", "debug")

	logger.Debug("listening", "port", "8080")
	assert.Contains(t, buf.String(), "listening")
	assert.False(t, json.Valid(buf.Bytes()))
}
