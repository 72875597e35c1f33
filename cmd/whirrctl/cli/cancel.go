package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var cancelAllQueued bool

var cancelCmd = &cobra.Command{
	Use:   "cancel [job-id]",
	Short: "Cancel a job, or every queued job with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCancel,
}

func init() {
	cancelCmd.Flags().BoolVar(&cancelAllQueued, "all", false, "cancel every currently queued job")
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cancelAllQueued {
		count, err := store.CancelAllQueued(cmd.Context())
		if err != nil {
			return err
		}
		printJSON(map[string]int64{"cancelled": count})
		return nil
	}

	if len(args) != 1 {
		return cmd.Help()
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return err
	}

	status, err := store.RequestCancel(cmd.Context(), id)
	if err != nil {
		return err
	}
	printJSON(map[string]string{"status": status.String()})
	return nil
}
