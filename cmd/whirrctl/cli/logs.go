package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"whirr/rundir"
)

var logsCmd = &cobra.Command{
	Use:   "logs <run-id>",
	Short: "Print a run's combined stdout/stderr log",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)
}

// runLogs reads output.log directly off disk. whirr.Observer has no
// byte-stream method, and the HTTP API only serves artifacts/* (router.go),
// not the run directory's own log file, so this command is only meaningful
// against a local data_dir — not a remote server_url.
func runLogs(cmd *cobra.Command, args []string) error {
	runID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ServerURL != "" {
		return fmt.Errorf("logs requires a local data_dir; whirrctl is configured against server_url %q", cfg.ServerURL)
	}

	path := rundir.Open(cfg.DataDir, runID).OutputPath()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(cmd.OutOrStdout(), f)
	return err
}
