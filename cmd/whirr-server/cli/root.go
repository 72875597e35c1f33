// Package cli implements the whirr-server command-line entrypoint: a
// cobra root command that loads whirr.toml, opens a Postgres-backed
// sqlstore.Store, mounts httpapi.New over it, and runs the orphan
// reaper (and optionally a retention sweep) alongside the HTTP server
// (spec §2 component 1's "network-hosted relational store").
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"whirr/internal/wconfig"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "whirr-server",
	Short: "whirr-server fronts a shared whirr queue over HTTP",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE:          runServer,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultCfg, _ := wconfig.DefaultConfigPath()
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().String("listen", "", "HTTP listen address (overrides server.listen_addr)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func loadConfig() (*wconfig.Config, error) {
	return wconfig.Load(cfgPath)
}
