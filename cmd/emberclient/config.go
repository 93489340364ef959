// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package main

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the host runner configuration. Values are layered: defaults,
// then the optional YAML config file, then command-line flags.
type Config struct {
	Log           LogConfig           `koanf:"log"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// ObservabilityConfig controls the metrics and health endpoint server.
type ObservabilityConfig struct {
	Addr string `koanf:"addr"`
}

// Default values for host runner configuration.
const (
	defaultLogFormat   = "json"
	defaultLogLevel    = "info"
	defaultMetricsAddr = "127.0.0.1:9321"
)

// Validate checks that the configuration is usable.
func (cfg *Config) Validate() error {
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return oops.With("format", cfg.Log.Format).
			Errorf("log format must be 'json' or 'text'")
	}
	return nil
}

// flagKey maps a command-line flag name to its config key.
func flagKey(name string) string {
	switch name {
	case "log-format":
		return "log.format"
	case "log-level":
		return "log.level"
	case "metrics-addr":
		return "observability.addr"
	}
	return name
}

// loadConfig builds the effective configuration from defaults, an optional
// YAML file, and any flags that were set on the command line.
func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{
		Log: LogConfig{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Observability: ObservabilityConfig{
			Addr: defaultMetricsAddr,
		},
	}

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.With("path", path).Wrapf(err, "load config file")
		}
	}

	if flags != nil {
		// Passing k means flags left at their defaults do not clobber
		// values already loaded from the file.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Wrapf(err, "load flags")
		}
	}

	// Unmarshal only touches keys that are present, so defaults survive.
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Wrapf(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
