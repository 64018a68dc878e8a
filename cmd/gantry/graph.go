package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gantry-ci/gantry/internal/config"
	"github.com/gantry-ci/gantry/pkg/workflow"
	"github.com/gantry-ci/gantry/pkg/workflow/drawer"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render the workflow as a DOT graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		out, _ := cmd.Flags().GetString("output")

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

		err = drawer.DrawWorkflow(wf, drawer.NewDOTDrawer(out))
		if err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", out)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("file", "f", "", "workflow file (default: nearest gantry.yml)")
	graphCmd.Flags().StringP("output", "o", "workflow.gv", "output DOT file")
}
