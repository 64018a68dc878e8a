package workflow

import "github.com/pkg/errors"

var (
	ErrWorkflowMustBeSet = errors.New("workflow must be set")
	ErrNoJobs            = errors.New("workflow must define at least one job")
	ErrNoSteps           = errors.New("job must define at least one step")
	ErrStepEmpty         = errors.New("step must set run or uses")
	ErrStepAmbiguous     = errors.New("step must set only one of run and uses")
	ErrUnknownJob        = errors.New("unknown job")
	ErrNeedsCycle        = errors.New("job dependencies form a cycle")
	ErrUnknownCondition  = errors.New("unknown condition")
	ErrBadActionRef      = errors.New("action reference must look like name@version")
	ErrActionEnv         = errors.New("env is not allowed on uses steps, pass parameters through with")
	ErrUnknownAction     = errors.New("unknown action")
)
