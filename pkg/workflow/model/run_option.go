package model

// JobInfo identifies a job to RunOption hooks.
type JobInfo struct {
	Name  string
	Needs []string
}

// StepInfo identifies a step to RunOption hooks.
type StepInfo struct {
	JobName string
	Name    string
	Index   int
	Uses    string
}

// RunOption defines the interface for run observers. Hooks for different
// jobs may be called concurrently; implementations must be safe for
// concurrent use.
type RunOption interface {
	// New initialises the option before the run starts.
	New() error
	// BeforeJob runs before the first step of a job.
	BeforeJob(job *JobInfo) error
	// BeforeStep runs before a step is gated and executed.
	BeforeStep(job *JobInfo, step *StepInfo) error
	// AfterStep runs once a step has a result, including skipped steps.
	AfterStep(job *JobInfo, step *StepInfo, result *StepResult) error
	// AfterJob runs once all steps of a job have a result.
	AfterJob(job *JobInfo, result *JobResult) error
	// Finish runs after the whole run completed.
	Finish(result *RunResult) error
}
