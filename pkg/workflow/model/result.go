package model

import (
	"time"

	"github.com/google/uuid"
)

// StepResult is the outcome of a single step.
type StepResult struct {
	Name        string
	Index       int
	Status      Status
	Conclusion  Conclusion
	ExitCode    int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Duration returns the wall time spent executing the step.
func (r *StepResult) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.CompletedAt.IsZero() {
		return 0
	}

	return r.CompletedAt.Sub(r.StartedAt)
}

// JobResult is the outcome of a job and all its steps.
type JobResult struct {
	Name        string
	Status      Status
	Conclusion  Conclusion
	Steps       []*StepResult
	StartedAt   time.Time
	CompletedAt time.Time
}

// RunResult is the outcome of one workflow run.
type RunResult struct {
	ID          string
	Workflow    string
	Event       string
	Status      Status
	Conclusion  Conclusion
	Jobs        []*JobResult
	StartedAt   time.Time
	CompletedAt time.Time
}

// NewRunResult creates a queued run result with a fresh identifier.
func NewRunResult(workflow, event string) *RunResult {
	return &RunResult{
		ID:        uuid.NewString(),
		Workflow:  workflow,
		Event:     event,
		Status:    StatusQueued,
		StartedAt: time.Now(),
	}
}

// Complete marks the run completed and rolls the job conclusions up into
// the run conclusion. A run fails if any job failed; skipped jobs never
// fail a run.
func (r *RunResult) Complete() {
	r.Status = StatusCompleted
	r.CompletedAt = time.Now()
	if r.Conclusion != "" {
		return
	}

	conclusion := ConclusionSuccess
	for _, job := range r.Jobs {
		switch job.Conclusion {
		case ConclusionFailure:
			r.Conclusion = ConclusionFailure
			return
		case ConclusionCancelled:
			conclusion = ConclusionCancelled
		case ConclusionSuccess, ConclusionSkipped:
		}
	}
	r.Conclusion = conclusion
}

// Failed reports whether the run concluded with a failure.
func (r *RunResult) Failed() bool {
	return r.Conclusion == ConclusionFailure
}

// Job returns the result for the named job, or nil.
func (r *RunResult) Job(name string) *JobResult {
	for _, job := range r.Jobs {
		if job.Name == name {
			return job
		}
	}

	return nil
}
