package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gantry-ci/gantry/internal/config"
	"github.com/gantry-ci/gantry/pkg/workflow"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate the workflow file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			var err error
			file, err = findWorkflowFile(config.Load().FileName)
			if err != nil {
				return err
			}
		}

		wf, err := workflow.ParseFile(file)
		if err != nil {
			return err
		}

		fmt.Printf("%s: ok (%d jobs)\n", file, len(wf.Jobs))
		for _, job := range wf.OrderedJobs() {
			fmt.Printf(" * %s (%d steps)\n", job.Name, len(job.Steps))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("file", "f", "", "workflow file (default: nearest gantry.yml)")
}
