// Command gantry runs declarative YAML workflows: independent jobs made of
// sequential, fail-fast steps.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "gantry",
	Short:        "Fail-fast workflow runner",
	Long:         `Gantry finds the nearest workflow file and runs its jobs: jobs execute concurrently and independently, steps inside a job run in order and stop at the first failure.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
