package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gantry-ci/gantry/internal/config"
	"github.com/gantry-ci/gantry/internal/store"
	"github.com/gantry-ci/gantry/pkg/workflow"
	"github.com/gantry-ci/gantry/pkg/workflow/drawer"
	"github.com/gantry-ci/gantry/pkg/workflow/measure"
	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

var runCmd = &cobra.Command{
	Use:   "run [jobs...]",
	Short: "Run the workflow for a trigger event",
	Long:  `Runs all jobs of the nearest workflow file, or only the named jobs and everything they need.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		file, _ := flags.GetString("file")
		event, _ := flags.GetString("event")
		dry, _ := flags.GetBool("dry")
		parallel, _ := flags.GetInt("parallel")
		graphFile, _ := flags.GetString("graph")

		cfg := config.Load()
		if event == "" {
			event = cfg.DefaultEvent
		}

		logger := newLogger()
		ctx := workflow.WithLogger(cmd.Context(), &logger)

		if file == "" {
			var err error
			file, err = findWorkflowFile(cfg.FileName)
			if err != nil {
				return err
			}
		}

		wf, err := workflow.ParseFile(file)
		if err != nil {
			return err
		}
		wf, err = workflow.SelectJobs(wf, args...)
		if err != nil {
			return err
		}

		msr := measure.NewDefaultMeasure()
		runOpts := []model.RunOption{measure.RunMeasure(msr)}
		if graphFile != "" {
			runOpts = append(runOpts, drawer.RunDrawer(drawer.NewDOTDrawer(graphFile)))
		}

		opts := []workflow.Option{
			workflow.WithRunOptions(runOpts...),
			workflow.WithWorkDir(filepath.Dir(file)),
			workflow.MaxParallel(parallel),
		}
		if dry {
			opts = append(opts, workflow.DryRun())
		}

		runner, err := workflow.NewRunner(opts...)
		if err != nil {
			return err
		}

		res, err := runner.Run(ctx, wf, event)
		if err != nil {
			return err
		}

		if !dry {
			err = saveRun(cfg, res)
			if err != nil {
				// History is best effort; a broken db must not flip the
				// run outcome.
				logger.Warn().Err(err).Msg("unable to save run history")
			}
		}

		for _, job := range res.Jobs {
			logger.Info().
				Str("job", job.Name).
				Str("conclusion", string(job.Conclusion)).
				Str("elapsed", msr.AddMetric(job.Name).Elapsed().String()).
				Msg("job summary")
		}
		logger.Info().
			Str("run", res.ID).
			Str("conclusion", string(res.Conclusion)).
			Str("elapsed", msr.TotalDuration().String()).
			Msg("run finished")

		if res.Failed() {
			return errors.New("run failed")
		}

		return nil
	},
}

func saveRun(cfg *config.Config, res *model.RunResult) error {
	err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)
	if err != nil {
		return errors.Wrap(err, "unable to create history directory")
	}

	runStore, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer runStore.Close()

	return runStore.SaveRun(res)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("file", "f", "", "workflow file (default: nearest gantry.yml)")
	runCmd.Flags().StringP("event", "e", "", "trigger event (default: push)")
	runCmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	runCmd.Flags().IntP("parallel", "p", 0, "maximum number of jobs running at once (0 = unlimited)")
	runCmd.Flags().String("graph", "", "write a DOT graph of the run to this file")
}
