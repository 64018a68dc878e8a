package drawer

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

// DrawWorkflow renders the static structure of a workflow without running
// it: one node per job and per step, chains inside jobs, needs edges
// between jobs.
func DrawWorkflow(wf *model.Workflow, drawer Drawer) error {
	for _, job := range wf.OrderedJobs() {
		err := drawer.AddNode(job.Name)
		if err != nil {
			return errors.Wrapf(err, "unable to add job %s", job.Name)
		}
	}

	for _, job := range wf.OrderedJobs() {
		for _, need := range job.Needs {
			err := drawer.AddLink(need, job.Name)
			if err != nil {
				return errors.Wrapf(err, "unable to link job %s to %s", need, job.Name)
			}
		}

		parent := job.Name
		for idx, step := range job.Steps {
			node := fmt.Sprintf("%s/%d. %s", job.Name, idx+1, step.Label())
			err := drawer.AddNode(node)
			if err != nil {
				return errors.Wrapf(err, "unable to add step %s", node)
			}
			err = drawer.AddLink(parent, node)
			if err != nil {
				return errors.Wrapf(err, "unable to link step %s", node)
			}
			parent = node
		}
	}

	err := drawer.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw workflow")
	}

	return nil
}
