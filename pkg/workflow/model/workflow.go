package model

import "time"

// Workflow is a parsed workflow document: a set of trigger events and the
// jobs they run.
type Workflow struct {
	Name string
	// On lists the trigger events this workflow subscribes to. An empty
	// list means the workflow runs for any event.
	On  []string
	Env map[string]string
	// Jobs maps job names to their definitions. JobOrder preserves the
	// declaration order of the document.
	Jobs     map[string]*Job
	JobOrder []string
}

// Subscribed reports whether the workflow runs for the given event.
func (w *Workflow) Subscribed(event string) bool {
	if len(w.On) == 0 {
		return true
	}
	for _, ev := range w.On {
		if ev == event {
			return true
		}
	}

	return false
}

// OrderedJobs returns the jobs in declaration order.
func (w *Workflow) OrderedJobs() []*Job {
	jobs := make([]*Job, 0, len(w.JobOrder))
	for _, name := range w.JobOrder {
		jobs = append(jobs, w.Jobs[name])
	}

	return jobs
}

// Job is an independently executed group of sequential steps.
type Job struct {
	Name  string
	Env   map[string]string
	Needs []string
	Steps []*Step
}

// Step is a single unit of work in a job: either a shell block (Run) or a
// reusable action reference (Uses). Exactly one of the two is set.
type Step struct {
	Name string
	ID   string
	// If holds the gate condition. The empty string means success().
	If   string
	Run  string
	Uses string
	With map[string]string
	Env  map[string]string
	// WorkingDirectory overrides the job working directory for this step.
	WorkingDirectory string
	ContinueOnError  bool
	// Timeout bounds the step execution. Zero means no limit.
	Timeout time.Duration
}

// Label returns the display name of the step, falling back to the command
// or action reference when no name was given.
func (s *Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Uses != "" {
		return s.Uses
	}

	return s.Run
}
