// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberclient/emberclient/internal/logging"
)

func TestSetup_JSONStampsServiceIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("emberclient", "1.0.0", "json", slog.LevelInfo, &buf)

	logger.Info("plugin registered", "plugin", "chatfilter")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "emberclient", record["service"])
	assert.Equal(t, "1.0.0", record["version"])
	assert.Equal(t, "chatfilter", record["plugin"])
	assert.Equal(t, "plugin registered", record["msg"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("emberclient", "dev", "text", slog.LevelInfo, &buf)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "service=emberclient")
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("emberclient", "dev", "json", slog.LevelWarn, &buf)

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, logging.ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}
