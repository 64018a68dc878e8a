package workflow_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantry-ci/gantry/pkg/workflow"
	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

func TestRunNilWorkflow(t *testing.T) {
	t.Parallel()

	runner, err := workflow.NewRunner()
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), nil, "push")
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrWorkflowMustBeSet)
}

func TestRunAllGreen(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
name: ci
on: push
jobs:
  lint:
    steps:
      - run: "true"
      - run: echo lint done
  build:
    steps:
      - run: echo build done
`)

	runner, err := workflow.NewRunner(workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)

	assert.Equal(t, model.ConclusionSuccess, res.Conclusion)
	require.Len(t, res.Jobs, 2)
	for _, job := range res.Jobs {
		assert.Equal(t, model.ConclusionSuccess, job.Conclusion)
		for _, step := range job.Steps {
			assert.Equal(t, model.ConclusionSuccess, step.Conclusion)
		}
	}
}

func TestRunFailFastGate(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
on: push
jobs:
  lint:
    steps:
      - run: "true"
      - run: exit 3
      - run: echo never reached
`)

	runner, err := workflow.NewRunner(workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)

	assert.Equal(t, model.ConclusionFailure, res.Conclusion)
	assert.True(t, res.Failed())

	lint := res.Job("lint")
	require.NotNil(t, lint)
	assert.Equal(t, []model.Conclusion{
		model.ConclusionSuccess,
		model.ConclusionFailure,
		model.ConclusionSkipped,
	}, stepConclusions(t, lint))
	assert.Equal(t, 3, lint.Steps[1].ExitCode)
}

func TestRunStepTimeoutFailsJob(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
on: push
jobs:
  slow:
    steps:
      - name: stuck
        run: sleep 5
        timeout: 200ms
      - run: echo never reached
`)

	runner, err := workflow.NewRunner(workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)

	slow := res.Job("slow")
	require.NotNil(t, slow)
	assert.Equal(t, []model.Conclusion{
		model.ConclusionFailure,
		model.ConclusionSkipped,
	}, stepConclusions(t, slow))
	assert.Equal(t, model.ConclusionFailure, slow.Conclusion)
	assert.Equal(t, model.ConclusionFailure, res.Conclusion)
	assert.True(t, res.Failed())
}

func TestRunJobsAreIndependent(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
on: push
jobs:
  failing:
    steps:
      - run: "false"
  healthy:
    steps:
      - run: echo still running
`)

	runner, err := workflow.NewRunner(workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)

	assert.Equal(t, model.ConclusionFailure, res.Conclusion)
	assert.Equal(t, model.ConclusionFailure, res.Job("failing").Conclusion)
	assert.Equal(t, model.ConclusionSuccess, res.Job("healthy").Conclusion)
}

func TestRunFailureAndAlwaysGates(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
on: push
jobs:
  cleanup:
    steps:
      - run: exit 1
      - name: on failure
        if: failure()
        run: echo report
      - name: on success
        if: success()
        run: echo never
      - name: always
        if: always()
        run: echo cleanup
`)

	runner, err := workflow.NewRunner(workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)

	cleanup := res.Job("cleanup")
	require.NotNil(t, cleanup)
	assert.Equal(t, []model.Conclusion{
		model.ConclusionFailure,
		model.ConclusionSuccess,
		model.ConclusionSkipped,
		model.ConclusionSuccess,
	}, stepConclusions(t, cleanup))
	assert.Equal(t, model.ConclusionFailure, cleanup.Conclusion)
}

func TestRunContinueOnError(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
on: push
jobs:
  tolerant:
    steps:
      - run: exit 1
        continue-on-error: true
      - run: echo still here
`)

	runner, err := workflow.NewRunner(workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)

	tolerant := res.Job("tolerant")
	require.NotNil(t, tolerant)
	assert.Equal(t, []model.Conclusion{
		model.ConclusionFailure,
		model.ConclusionSuccess,
	}, stepConclusions(t, tolerant))
	assert.Equal(t, model.ConclusionSuccess, tolerant.Conclusion)
	assert.Equal(t, model.ConclusionSuccess, res.Conclusion)
}

func TestRunNeedsOrdering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wf := mustParse(t, `
on: push
jobs:
  produce:
    steps:
      - run: echo artifact > produced.txt
  consume:
    needs: produce
    steps:
      - run: "[ -f produced.txt ]"
`)

	runner, err := workflow.NewRunner(
		workflow.WithWorkDir(dir),
		workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}),
	)
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)

	assert.Equal(t, model.ConclusionSuccess, res.Conclusion)
	assert.Equal(t, model.ConclusionSuccess, res.Job("consume").Conclusion)

	_, err = os.Stat(filepath.Join(dir, "produced.txt"))
	assert.NoError(t, err)
}

func TestRunNeedsSkippedOnFailure(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
on: push
jobs:
  produce:
    steps:
      - run: "false"
  consume:
    needs: produce
    steps:
      - run: echo never
`)

	runner, err := workflow.NewRunner(workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)

	assert.Equal(t, model.ConclusionFailure, res.Conclusion)
	consume := res.Job("consume")
	require.NotNil(t, consume)
	assert.Equal(t, model.ConclusionSkipped, consume.Conclusion)
	assert.Equal(t, []model.Conclusion{model.ConclusionSkipped}, stepConclusions(t, consume))
}

func TestRunEventNotSubscribed(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
on: push
jobs:
  lint:
    steps:
      - run: echo hi
`)

	runner, err := workflow.NewRunner()
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "release")
	require.NoError(t, err)

	assert.Equal(t, model.ConclusionSkipped, res.Conclusion)
	assert.Empty(t, res.Jobs)
}

func TestRunDryRunExecutesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wf := mustParse(t, `
on: push
jobs:
  dangerous:
    steps:
      - run: echo oops > side-effect.txt
      - run: exit 1
`)

	runner, err := workflow.NewRunner(
		workflow.DryRun(),
		workflow.WithWorkDir(dir),
		workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}),
	)
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)

	assert.Equal(t, model.ConclusionSuccess, res.Conclusion)
	_, err = os.Stat(filepath.Join(dir, "side-effect.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
on: push
jobs:
  lint:
    steps:
      - run: echo hi
      - name: on cancel
        if: cancelled()
        run: echo cancelled
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner, err := workflow.NewRunner(workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	res, err := runner.Run(ctx, wf, "push")
	require.NoError(t, err)

	assert.Equal(t, model.ConclusionCancelled, res.Conclusion)
	lint := res.Job("lint")
	require.NotNil(t, lint)
	assert.Equal(t, model.ConclusionSkipped, lint.Steps[0].Conclusion)
}

func TestRunStepEnvPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wf := mustParse(t, `
on: push
env:
  GREETING: workflow
jobs:
  env:
    env:
      GREETING: job
    steps:
      - run: echo "$GREETING" > greeting.txt
        env:
          GREETING: step
`)

	runner, err := workflow.NewRunner(
		workflow.WithWorkDir(dir),
		workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}),
	)
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)
	require.Equal(t, model.ConclusionSuccess, res.Conclusion)

	content, err := os.ReadFile(filepath.Join(dir, "greeting.txt"))
	require.NoError(t, err)
	assert.Equal(t, "step\n", string(content))
}

func TestRunSetupEnvAction(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wf := mustParse(t, `
on: push
jobs:
  env:
    steps:
      - uses: setup-env@v1
        with:
          TOKEN: sekret
      - run: echo "$TOKEN" > token.txt
`)

	runner, err := workflow.NewRunner(
		workflow.WithWorkDir(dir),
		workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}),
	)
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)
	require.Equal(t, model.ConclusionSuccess, res.Conclusion)

	content, err := os.ReadFile(filepath.Join(dir, "token.txt"))
	require.NoError(t, err)
	assert.Equal(t, "sekret\n", string(content))
}

func TestRunUnknownActionFailsStep(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
on: push
jobs:
  broken:
    steps:
      - uses: teleport@v1
      - run: echo never
`)

	runner, err := workflow.NewRunner(workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)

	broken := res.Job("broken")
	require.NotNil(t, broken)
	assert.Equal(t, []model.Conclusion{
		model.ConclusionFailure,
		model.ConclusionSkipped,
	}, stepConclusions(t, broken))
	assert.Equal(t, model.ConclusionFailure, res.Conclusion)
}

func TestRunMaxParallel(t *testing.T) {
	t.Parallel()

	wf := mustParse(t, `
on: push
jobs:
  one:
    steps:
      - run: echo one
  two:
    steps:
      - run: echo two
  three:
    steps:
      - run: echo three
`)

	runner, err := workflow.NewRunner(
		workflow.MaxParallel(1),
		workflow.WithOutput(&bytes.Buffer{}, &bytes.Buffer{}),
	)
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), wf, "push")
	require.NoError(t, err)
	assert.Equal(t, model.ConclusionSuccess, res.Conclusion)
	assert.Len(t, res.Jobs, 3)
}
