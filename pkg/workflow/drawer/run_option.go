package drawer

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

type runDrawer struct {
	Drawer
	// Job hooks run concurrently; the graph underneath is not safe for
	// concurrent writes.
	mu sync.Mutex
	// prev remembers the last step node per job so the next step can be
	// chained to it.
	prev map[string]string
}

func stepNode(job *model.JobInfo, step *model.StepInfo) string {
	return fmt.Sprintf("%s/%d. %s", job.Name, step.Index+1, step.Name)
}

func (rd *runDrawer) New() error {
	return nil
}

func (rd *runDrawer) BeforeJob(job *model.JobInfo) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	err := rd.AddNode(job.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add job to drawer")
	}

	// Needed jobs always complete in an earlier wave, so their nodes
	// already exist.
	for _, need := range job.Needs {
		err = rd.AddLink(need, job.Name)
		if err != nil {
			return errors.Wrapf(err, "unable to link needed job %s", need)
		}
	}

	return nil
}

func (rd *runDrawer) BeforeStep(job *model.JobInfo, step *model.StepInfo) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	node := stepNode(job, step)
	err := rd.AddNode(node)
	if err != nil {
		return errors.Wrap(err, "unable to add step to drawer")
	}

	parent, ok := rd.prev[job.Name]
	if !ok {
		parent = job.Name
	}
	err = rd.AddLink(parent, node)
	if err != nil {
		return errors.Wrap(err, "unable to link step to drawer")
	}
	rd.prev[job.Name] = node

	return nil
}

func (rd *runDrawer) AfterStep(job *model.JobInfo, step *model.StepInfo, result *model.StepResult) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	node := stepNode(job, step)
	err := rd.SetConclusion(node, result.Conclusion)
	if err != nil {
		return errors.Wrap(err, "unable to set step conclusion")
	}

	if elapsed := result.Duration(); elapsed > 0 {
		err = rd.SetDuration(node, elapsed)
		if err != nil {
			return errors.Wrap(err, "unable to set step duration")
		}
	}

	return nil
}

func (rd *runDrawer) AfterJob(job *model.JobInfo, result *model.JobResult) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	err := rd.SetConclusion(job.Name, result.Conclusion)
	if err != nil {
		return errors.Wrap(err, "unable to set job conclusion")
	}

	return nil
}

func (rd *runDrawer) Finish(*model.RunResult) error {
	rd.mu.Lock()
	defer rd.mu.Unlock()

	err := rd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw run")
	}

	return nil
}

// RunDrawer wraps a Drawer into a run option that follows a run and
// renders the graph once the run completed.
func RunDrawer(drawer Drawer) model.RunOption {
	return &runDrawer{Drawer: drawer, prev: make(map[string]string)}
}
