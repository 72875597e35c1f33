package cli

import (
	"github.com/spf13/cobra"

	"whirr"
	"whirr/job"
)

var (
	runsStatus string
	runsTag    string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List run-index rows, optionally filtered by status or tag",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (queued, running, completed, failed, cancelled)")
	runsCmd.Flags().StringVar(&runsTag, "tag", "", "filter by tag")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 0, "maximum rows to return (0 = no limit)")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	status, err := job.ParseStatus(runsStatus)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	runs, err := store.ListRuns(cmd.Context(), whirr.RunFilter{
		Status: status,
		Tag:    runsTag,
		Limit:  runsLimit,
	})
	if err != nil {
		return err
	}
	printJSON(runs)
	return nil
}
