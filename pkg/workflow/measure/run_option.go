package measure

import (
	"fmt"
	"time"

	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

type runMeasure struct {
	m         Measure
	startTime time.Time
}

func (rm *runMeasure) New() error {
	rm.startTime = time.Now()

	return nil
}

func (rm *runMeasure) BeforeJob(*model.JobInfo) error {
	return nil
}

func (rm *runMeasure) BeforeStep(*model.JobInfo, *model.StepInfo) error {
	return nil
}

func (rm *runMeasure) AfterStep(job *model.JobInfo, step *model.StepInfo, result *model.StepResult) error {
	name := fmt.Sprintf("%s/%d. %s", job.Name, step.Index+1, step.Name)
	rm.m.AddMetric(name).AddDuration(result.Duration())

	return nil
}

func (rm *runMeasure) AfterJob(job *model.JobInfo, result *model.JobResult) error {
	if result.StartedAt.IsZero() || result.CompletedAt.IsZero() {
		return nil
	}
	rm.m.AddMetric(job.Name).AddDuration(result.CompletedAt.Sub(result.StartedAt))

	return nil
}

func (rm *runMeasure) Finish(*model.RunResult) error {
	rm.m.SetTotalDuration(time.Since(rm.startTime))

	return nil
}

// RunMeasure wraps a Measure into a run option that records job and step
// wall times.
func RunMeasure(m Measure) model.RunOption {
	return &runMeasure{m: m}
}
