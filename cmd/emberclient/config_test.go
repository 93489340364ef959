// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9321", cfg.Observability.Addr)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
log:
  format: text
  level: debug
observability:
  addr: "127.0.0.1:9400"
`)

	cfg, err := loadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9400", cfg.Observability.Addr)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
log:
  level: warn
`)

	cfg, err := loadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format, "unset keys keep their defaults")
	assert.Equal(t, "127.0.0.1:9321", cfg.Observability.Addr)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, `
log:
  format: text
observability:
  addr: "127.0.0.1:9400"
`)

	cmd := NewHostCmd()
	require.NoError(t, cmd.Flags().Set("log-format", "json"))

	cfg, err := loadConfig(path, cmd.Flags())
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Log.Format, "changed flag wins over file")
	assert.Equal(t, "127.0.0.1:9400", cfg.Observability.Addr, "unchanged flag does not clobber file")
}

func TestLoadConfig_InvalidLogFormat(t *testing.T) {
	path := writeConfigFile(t, `
log:
  format: xml
`)

	_, err := loadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log format")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig("/nonexistent/config.yaml", nil)
	require.Error(t, err)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
