// Package cli implements the whirr-worker command-line entrypoint: a
// cobra root command that loads whirr.toml, builds either an embedded
// or networked Store depending on server_url, and runs a WorkerLoop
// until it is told to stop (spec §4.3).
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
	Use:   "whirr-worker",
	Short: "whirr-worker claims and runs jobs from a whirr queue",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE:          runWorker,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultCfg, _ := wconfig.DefaultConfigPath()
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().String("slot", "", "accelerator slot id (overrides worker.slot)")
	rootCmd.Flags().Int("concurrency", 0, "concurrent job slots (overrides worker.concurrency)")
}

// Execute runs the root command, returning its error so main can set a
// process exit code without printing the error twice (spec §6.4).
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func loadConfig() (*wconfig.Config, error) {
	return wconfig.Load(cfgPath)
}
