// Package cli implements whirrctl, the Submission API command-line
// client (spec §4.5): it talks to either an embedded SQLite store or a
// whirr-server over HTTP depending on server_url/WHIRR_SERVER_URL, and
// prints results as JSON — no table renderer, per the original spec's
// "command-line front-end and pretty-printing" non-goal.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"whirr"
	"whirr/internal/wconfig"
	"whirr/store/httpclient"
	"whirr/store/sqlstore"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "whirrctl",
	Short: "whirrctl submits and inspects whirr jobs",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultCfg, _ := wconfig.DefaultConfigPath()
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func loadConfig() (*wconfig.Config, error) {
	return wconfig.Load(cfgPath)
}

// submissionStore is the Submission API's transport-neutral surface
// (spec §4.5): Push to submit, Puller for cancel/retry, Observer for
// status/get/list. Both backends below satisfy it.
type submissionStore interface {
	whirr.Pusher
	whirr.Puller
	whirr.Observer
}

// openStore builds the store a whirrctl subcommand talks to: an HTTP
// client when server_url is configured, otherwise a direct handle on
// the embedded SQLite file under data_dir.
func openStore(cfg *wconfig.Config) (submissionStore, func(), error) {
	if cfg.ServerURL != "" {
		return httpclient.New(cfg.ServerURL, whirr.BackoffConfig{}), func() {}, nil
	}

	db, err := sqlstore.NewSQLiteDB(cfg.DataDir + "/whirr.db")
	if err != nil {
		return nil, nil, fmt.Errorf("open embedded store: %w", err)
	}
	if err := sqlstore.InitDB(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init embedded store: %w", err)
	}
	store := sqlstore.New(db)
	return store, func() { db.Close() }, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
