package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the EmberClient host runner.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emberclient",
		Short: "EmberClient - plugin host for the Ember client",
		Long: `EmberClient runs the host side of the Ember client's plugin
architecture: the event dispatch engine, the plugin/module registry, and the
capability query surface plugins attach to.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewHostCmd())

	return cmd
}
