// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"codeberg.org/oliverandrich/localeats/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewLogHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newLogHandler(&buf, &config.LogConfig{Level: "warn", Format: "json"}))

	logger.Info("hidden")
	logger.Warn("login_failed", "username", "alice")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "login_failed", entry["msg"])
	assert.Equal(t, "alice", entry["username"])
	assert.NotContains(t, entry, "source")
}

func TestNewLogHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newLogHandler(&buf, &config.LogConfig{Level: "debug", Format: "text"}))

	logger.Debug("assets_found", "css", "/static/css/styles.css")

	out := buf.String()
	assert.Contains(t, out, "assets_found")
	assert.Contains(t, out, "css=/static/css/styles.css")
	assert.Contains(t, out, "logger_test.go")
	assert.NotContains(t, out, "\x1b[", "no color codes outside stdout")
}
