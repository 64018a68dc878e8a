package workflow

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

// Runner executes workflows. Jobs run concurrently and in isolation from
// each other; steps inside a job run strictly sequentially behind their
// gate condition.
type Runner struct {
	registry    *Registry
	runOpts     []model.RunOption
	stdout      io.Writer
	stderr      io.Writer
	workDir     string
	maxParallel int
	dryRun      bool
}

// NewRunner creates a runner and initialises the attached run options.
func NewRunner(opts ...Option) (*Runner, error) {
	runner := &Runner{
		registry: NewRegistry(),
		workDir:  ".",
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(runner)
	}

	for _, opt := range runner.runOpts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply run option")
		}
	}

	return runner, nil
}

// Run executes the workflow for the given trigger event and waits for all
// jobs to finish. A step or job failure is reported through the returned
// RunResult, not through the error; the error is reserved for malformed
// workflows and failing run options.
func (r *Runner) Run(ctx context.Context, wf *model.Workflow, event string) (*model.RunResult, error) {
	if wf == nil {
		return nil, ErrWorkflowMustBeSet
	}

	res := model.NewRunResult(wf.Name, event)

	if !wf.Subscribed(event) {
		log(ctx).Info().
			Str("workflow", wf.Name).
			Str("event", event).
			Msg("workflow not subscribed to event")
		res.Conclusion = model.ConclusionSkipped
		res.Complete()

		return res, r.finishRun(res)
	}

	res.Status = model.StatusInProgress

	results := make(map[string]*model.JobResult, len(wf.Jobs))
	for _, name := range wf.JobOrder {
		jobRes := &model.JobResult{Name: name, Status: model.StatusQueued}
		results[name] = jobRes
		res.Jobs = append(res.Jobs, jobRes)
	}

	waves, err := scheduleWaves(wf)
	if err != nil {
		return nil, err
	}

	for _, wave := range waves {
		// A plain group without a shared context keeps sibling jobs
		// isolated: one job failing never cancels another.
		errGrp := errgroup.Group{}
		if r.maxParallel > 0 {
			errGrp.SetLimit(r.maxParallel)
		}

		for _, job := range wave {
			job := job
			errGrp.Go(func() error {
				return r.runJob(ctx, wf, job, results)
			})
		}

		err := errGrp.Wait()
		if err != nil {
			return nil, err
		}
	}

	res.Complete()

	return res, r.finishRun(res)
}

func (r *Runner) finishRun(res *model.RunResult) error {
	for _, opt := range r.runOpts {
		err := opt.Finish(res)
		if err != nil {
			return errors.Wrap(err, "unable to finish run option")
		}
	}

	return nil
}

// scheduleWaves groups jobs into waves so that every job runs strictly
// after all its needs. Jobs inside a wave have no ordering between them.
func scheduleWaves(wf *model.Workflow) ([][]*model.Job, error) {
	levels := make(map[string]int, len(wf.Jobs))
	remaining := append([]string{}, wf.JobOrder...)

	for len(remaining) > 0 {
		progressed := false
		next := make([]string, 0, len(remaining))

		for _, name := range remaining {
			job := wf.Jobs[name]
			level, ok := jobLevel(job, levels, wf)
			if !ok {
				next = append(next, name)

				continue
			}
			levels[name] = level
			progressed = true
		}

		if !progressed {
			return nil, errors.Wrap(ErrNeedsCycle, remaining[0])
		}
		remaining = next
	}

	maxLevel := 0
	for _, level := range levels {
		if level > maxLevel {
			maxLevel = level
		}
	}

	waves := make([][]*model.Job, maxLevel+1)
	for _, name := range wf.JobOrder {
		level := levels[name]
		waves[level] = append(waves[level], wf.Jobs[name])
	}

	return waves, nil
}

func jobLevel(job *model.Job, levels map[string]int, wf *model.Workflow) (int, bool) {
	level := 0
	for _, need := range job.Needs {
		if _, ok := wf.Jobs[need]; !ok {
			return 0, false
		}
		needLevel, ok := levels[need]
		if !ok {
			return 0, false
		}
		if needLevel+1 > level {
			level = needLevel + 1
		}
	}

	return level, true
}

func (r *Runner) runJob(ctx context.Context, wf *model.Workflow, job *model.Job, results map[string]*model.JobResult) error {
	jobRes := results[job.Name]
	info := &model.JobInfo{Name: job.Name, Needs: job.Needs}

	for _, opt := range r.runOpts {
		err := opt.BeforeJob(info)
		if err != nil {
			return errors.Wrap(err, "unable to run before job function")
		}
	}

	for _, need := range job.Needs {
		if !results[need].Conclusion.Success() {
			log(ctx).Info().
				Str("job", job.Name).
				Str("needs", need).
				Msg("skipped because a needed job did not succeed")

			return r.skipJob(job, info, jobRes)
		}
	}

	jobRes.Status = model.StatusInProgress
	jobRes.StartedAt = time.Now()
	log(ctx).Info().Str("job", job.Name).Msg("job started")

	jobEnv := mergeEnv(wf.Env, job.Env)
	dir := r.workDir
	failed := false
	cancelled := false

	for idx, step := range job.Steps {
		stepInfo := &model.StepInfo{JobName: job.Name, Name: step.Label(), Index: idx, Uses: step.Uses}
		for _, opt := range r.runOpts {
			err := opt.BeforeStep(info, stepInfo)
			if err != nil {
				return errors.Wrap(err, "unable to run before step function")
			}
		}

		stepRes := &model.StepResult{Name: step.Label(), Index: idx}

		cond, err := parseCondition(step.If)
		if err != nil {
			return errors.Wrapf(err, "job %s step %d", job.Name, idx+1)
		}

		if ctx.Err() != nil {
			cancelled = true
		}

		if !cond.eval(failed, cancelled) {
			stepRes.Status = model.StatusCompleted
			stepRes.Conclusion = model.ConclusionSkipped
			log(ctx).Debug().
				Str("job", job.Name).
				Str("step", step.Label()).
				Msg("step skipped")
		} else {
			r.executeStep(ctx, step, stepRes, jobEnv, &dir)
			if stepRes.Conclusion == model.ConclusionCancelled {
				cancelled = true
			}
			if stepRes.Conclusion == model.ConclusionFailure && !step.ContinueOnError {
				failed = true
			}
		}

		jobRes.Steps = append(jobRes.Steps, stepRes)
		for _, opt := range r.runOpts {
			err := opt.AfterStep(info, stepInfo, stepRes)
			if err != nil {
				return errors.Wrap(err, "unable to run after step function")
			}
		}
	}

	jobRes.Status = model.StatusCompleted
	jobRes.CompletedAt = time.Now()
	switch {
	case failed:
		jobRes.Conclusion = model.ConclusionFailure
	case cancelled:
		jobRes.Conclusion = model.ConclusionCancelled
	default:
		jobRes.Conclusion = model.ConclusionSuccess
	}
	log(ctx).Info().
		Str("job", job.Name).
		Str("conclusion", string(jobRes.Conclusion)).
		Msg("job finished")

	return r.afterJob(info, jobRes)
}

func (r *Runner) skipJob(job *model.Job, info *model.JobInfo, jobRes *model.JobResult) error {
	jobRes.Status = model.StatusCompleted
	jobRes.Conclusion = model.ConclusionSkipped
	jobRes.CompletedAt = time.Now()

	for idx, step := range job.Steps {
		stepInfo := &model.StepInfo{JobName: job.Name, Name: step.Label(), Index: idx, Uses: step.Uses}
		stepRes := &model.StepResult{
			Name:       step.Label(),
			Index:      idx,
			Status:     model.StatusCompleted,
			Conclusion: model.ConclusionSkipped,
		}
		jobRes.Steps = append(jobRes.Steps, stepRes)

		for _, opt := range r.runOpts {
			err := opt.BeforeStep(info, stepInfo)
			if err != nil {
				return errors.Wrap(err, "unable to run before step function")
			}
			err = opt.AfterStep(info, stepInfo, stepRes)
			if err != nil {
				return errors.Wrap(err, "unable to run after step function")
			}
		}
	}

	return r.afterJob(info, jobRes)
}

func (r *Runner) afterJob(info *model.JobInfo, jobRes *model.JobResult) error {
	for _, opt := range r.runOpts {
		err := opt.AfterJob(info, jobRes)
		if err != nil {
			return errors.Wrap(err, "unable to run after job function")
		}
	}

	return nil
}

// executeStep runs a single step and records the outcome. Failures are
// captured in the result, never returned.
func (r *Runner) executeStep(ctx context.Context, step *model.Step, stepRes *model.StepResult, jobEnv map[string]string, dir *string) {
	stepRes.Status = model.StatusInProgress
	stepRes.StartedAt = time.Now()
	defer func() {
		stepRes.Status = model.StatusCompleted
		stepRes.CompletedAt = time.Now()
	}()

	stepCtx := ctx
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	var err error
	if step.Uses != "" {
		err = r.executeAction(stepCtx, step, jobEnv, dir)
	} else {
		err = r.executeShell(stepCtx, step, stepRes, jobEnv, *dir)
	}
	if err == nil {
		stepRes.Conclusion = model.ConclusionSuccess

		return
	}

	// Only cancelation from the outside counts as cancelled. A step
	// running into its own timeout is a plain failure, like any other
	// nonzero exit.
	if ctx.Err() != nil {
		stepRes.Conclusion = model.ConclusionCancelled
	} else {
		stepRes.Conclusion = model.ConclusionFailure
	}

	log(ctx).Error().
		Err(err).
		Str("step", step.Label()).
		Int("exit_code", stepRes.ExitCode).
		Msg("step failed")
}

func (r *Runner) executeAction(ctx context.Context, step *model.Step, jobEnv map[string]string, dir *string) error {
	ref, err := parseActionRef(step.Uses)
	if err != nil {
		return err
	}

	action, err := r.registry.resolve(ref)
	if err != nil {
		return err
	}

	if r.dryRun {
		log(ctx).Info().
			Str("step", step.Label()).
			Str("action", step.Uses).
			Msg("would run action")

		return nil
	}

	inv := &Invocation{
		With: step.With,
		Env:  jobEnv,
		Dir:  *dir,
	}
	err = action.Run(ctx, inv)
	if err != nil {
		return errors.Wrapf(err, "action %s", step.Uses)
	}
	*dir = inv.Dir

	return nil
}

func (r *Runner) executeShell(ctx context.Context, step *model.Step, stepRes *model.StepResult, jobEnv map[string]string, dir string) error {
	if step.WorkingDirectory != "" {
		if filepath.IsAbs(step.WorkingDirectory) {
			dir = step.WorkingDirectory
		} else {
			dir = filepath.Join(dir, step.WorkingDirectory)
		}
	}

	env := os.Environ()
	env = append(env, flattenEnv(jobEnv)...)
	env = append(env, flattenEnv(step.Env)...)

	code, err := runShell(ctx, step.Run, step.Label(), dir, env, r.stdout, r.stderr, r.dryRun)
	stepRes.ExitCode = code

	return err
}

// mergeEnv overlays the maps left to right; later maps win.
func mergeEnv(maps ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, m := range maps {
		for name, value := range m {
			merged[name] = value
		}
	}

	return merged
}

func flattenEnv(env map[string]string) []string {
	flat := make([]string, 0, len(env))
	for name, value := range env {
		flat = append(flat, name+"="+value)
	}

	return flat
}
