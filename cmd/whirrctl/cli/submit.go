package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"whirr/job"
)

var (
	submitName    string
	submitWorkdir string
	submitTags    []string
)

var submitCmd = &cobra.Command{
	Use:   "submit -- <command> [args...]",
	Short: "Enqueue a new job",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitName, "name", "", "human label for the job")
	submitCmd.Flags().StringVar(&submitWorkdir, "workdir", "", "absolute working directory for the child process")
	submitCmd.Flags().StringArrayVar(&submitTags, "tag", nil, "tag to attach (repeatable)")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if submitWorkdir == "" {
		return fmt.Errorf("--workdir is required")
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

	spec := &job.Spec{
		Name:        submitName,
		CommandArgv: args,
		Workdir:     submitWorkdir,
		Tags:        submitTags,
	}
	submitted, err := store.Push(cmd.Context(), spec)
	if err != nil {
		return err
	}

	printJSON(map[string]any{
		"job_id": submitted.ID,
		"run_id": submitted.RunID,
	})
	return nil
}
