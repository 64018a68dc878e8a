package workflow

import (
	"github.com/pkg/errors"

	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

// SelectJobs returns a copy of the workflow restricted to the named jobs
// and, transitively, everything they need. With no names the workflow is
// returned unchanged.
func SelectJobs(wf *model.Workflow, names ...string) (*model.Workflow, error) {
	if wf == nil {
		return nil, ErrWorkflowMustBeSet
	}
	if len(names) == 0 {
		return wf, nil
	}

	keep := make(map[string]struct{})
	queue := append([]string{}, names...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		job, ok := wf.Jobs[name]
		if !ok {
			return nil, errors.Wrap(ErrUnknownJob, name)
		}
		if _, done := keep[name]; done {
			continue
		}
		keep[name] = struct{}{}
		queue = append(queue, job.Needs...)
	}

	selected := &model.Workflow{
		Name: wf.Name,
		On:   wf.On,
		Env:  wf.Env,
		Jobs: make(map[string]*model.Job, len(keep)),
	}
	for _, name := range wf.JobOrder {
		if _, ok := keep[name]; !ok {
			continue
		}
		selected.Jobs[name] = wf.Jobs[name]
		selected.JobOrder = append(selected.JobOrder, name)
	}

	return selected, nil
}
