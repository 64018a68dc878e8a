package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gantry-ci/gantry/internal/config"
	"github.com/gantry-ci/gantry/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recent runs, or show one run in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg := config.Load()
		if _, err := os.Stat(cfg.DBPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Println("no run history yet")

				return nil
			}

			return errors.Wrapf(err, "unable to check %s", cfg.DBPath)
		}

		runStore, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer runStore.Close()

		if len(args) == 1 {
			return showRun(runStore, args[0])
		}

		runs, err := runStore.ListRuns(limit)
		if err != nil {
			return err
		}
		for _, run := range runs {
			fmt.Printf("%s  %-10s %-14s %-9s %s\n",
				run.ID, run.Workflow, run.Event, run.Conclusion,
				run.StartedAt.Format("2006-01-02 15:04:05"))
		}

		return nil
	},
}

func showRun(runStore *store.RunStore, id string) error {
	run, steps, err := runStore.GetRun(id)
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s (%s) %s\n", run.ID, run.Workflow, run.Event, run.Conclusion)
	for _, step := range steps {
		fmt.Printf(" * %s/%d. %-30s %-9s exit=%d\n",
			step.Job, step.Index+1, step.Step, step.Conclusion, step.ExitCode)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "number of runs to list")
}
