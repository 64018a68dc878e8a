package workflow

import (
	"io"

	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

// Option configures a Runner.
type Option func(r *Runner)

// MaxParallel caps how many jobs execute at the same time. Zero or
// negative means no limit.
func MaxParallel(limit int) Option {
	return func(r *Runner) {
		r.maxParallel = limit
	}
}

// DryRun makes the runner print every command without executing anything.
// Action steps are resolved but not run.
func DryRun() Option {
	return func(r *Runner) {
		r.dryRun = true
	}
}

// WithRegistry replaces the action registry.
func WithRegistry(registry *Registry) Option {
	return func(r *Runner) {
		r.registry = registry
	}
}

// WithWorkDir sets the initial working directory for every job.
func WithWorkDir(dir string) Option {
	return func(r *Runner) {
		r.workDir = dir
	}
}

// WithOutput redirects step output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithRunOptions attaches run observers such as the drawer or the measure.
func WithRunOptions(opts ...model.RunOption) Option {
	return func(r *Runner) {
		r.runOpts = append(r.runOpts, opts...)
	}
}
