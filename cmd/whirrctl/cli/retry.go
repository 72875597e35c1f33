package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var retryCmd = &cobra.Command{
	Use:   "retry <job-id>",
	Short: "Resubmit a failed or cancelled job as a new attempt",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetry,
}

func init() {
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
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

	j, err := store.Retry(cmd.Context(), id)
	if err != nil {
		return err
	}
	printJSON(map[string]any{
		"job_id":        j.ID,
		"run_id":        j.RunID,
		"parent_job_id": j.ParentJobID,
		"attempt":       j.Attempt,
	})
	return nil
}
