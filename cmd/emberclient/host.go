// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/emberclient/emberclient/internal/host"
	"github.com/emberclient/emberclient/internal/logging"
	"github.com/emberclient/emberclient/internal/observability"
	"github.com/emberclient/emberclient/internal/xdg"
)

// NewHostCmd creates the host subcommand.
func NewHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Run the plugin host",
		Long: `Run the plugin host: the event dispatch engine, the plugin and
module registry, and the capability query surface. Plugins attach through
the client interface handed out at load time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configFile
			if path == "" {
				path = xdg.DefaultConfigFile()
			}
			cfg, err := loadConfig(path, cmd.Flags())
			if err != nil {
				return err
			}
			return runHost(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("log-format", defaultLogFormat, "log format (json or text)")
	cmd.Flags().String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	cmd.Flags().String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")

	return cmd
}

// runHost starts the plugin host and blocks until shutdown.
func runHost(ctx context.Context, cfg *Config) error {
	logging.SetDefault("emberclient", version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))

	slog.Info("starting plugin host",
		"version", version,
		"log_format", cfg.Log.Format,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var h *host.Host
	opts := []host.Option{host.WithLogger(slog.Default())}

	var obsServer *observability.Server
	if cfg.Observability.Addr != "" {
		obsServer = observability.NewServer(cfg.Observability.Addr, func() bool {
			return h != nil && h.Ready()
		})
		opts = append(opts, host.WithMetrics(obsServer.Registry(), obsServer.Metrics()))
	}

	h = host.New(opts...)

	if obsServer != nil {
		errCh, err := obsServer.Start()
		if err != nil {
			return oops.Wrapf(err, "start observability server")
		}
		go func() {
			if serveErr, ok := <-errCh; ok && serveErr != nil {
				slog.Error("observability server failed, shutting down", "error", serveErr)
				cancel()
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	info := h.LoadInfo()
	slog.Info("plugin host ready",
		"sdk_major", info.Version.Major,
		"sdk_minor", info.Version.Minor,
	)

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")

	if obsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}
