package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantry-ci/gantry/internal/store"
	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

func testRun(t *testing.T) *model.RunResult {
	t.Helper()

	res := model.NewRunResult("ci", "push")
	started := time.Now().Add(-time.Minute)
	res.StartedAt = started
	res.Jobs = []*model.JobResult{
		{
			Name:       "lint",
			Status:     model.StatusCompleted,
			Conclusion: model.ConclusionFailure,
			Steps: []*model.StepResult{
				{Name: "isort", Index: 0, Status: model.StatusCompleted, Conclusion: model.ConclusionSuccess, StartedAt: started, CompletedAt: started.Add(time.Second)},
				{Name: "flake8", Index: 1, Status: model.StatusCompleted, Conclusion: model.ConclusionFailure, ExitCode: 1, StartedAt: started.Add(time.Second), CompletedAt: started.Add(2 * time.Second)},
				{Name: "black", Index: 2, Status: model.StatusCompleted, Conclusion: model.ConclusionSkipped},
			},
		},
	}
	res.Complete()

	return res
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	runStore, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer runStore.Close()

	res := testRun(t)
	require.NoError(t, runStore.SaveRun(res))

	run, steps, err := runStore.GetRun(res.ID)
	require.NoError(t, err)
	assert.Equal(t, "ci", run.Workflow)
	assert.Equal(t, "push", run.Event)
	assert.Equal(t, model.ConclusionFailure, run.Conclusion)

	require.Len(t, steps, 3)
	assert.Equal(t, "isort", steps[0].Step)
	assert.Equal(t, model.ConclusionFailure, steps[1].Conclusion)
	assert.Equal(t, 1, steps[1].ExitCode)
	assert.Equal(t, model.ConclusionSkipped, steps[2].Conclusion)
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	runStore, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer runStore.Close()

	first := testRun(t)
	second := testRun(t)
	second.StartedAt = first.StartedAt.Add(time.Minute)
	require.NoError(t, runStore.SaveRun(first))
	require.NoError(t, runStore.SaveRun(second))

	runs, err := runStore.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)

	runs, err = runStore.ListRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestGetRunMissing(t *testing.T) {
	t.Parallel()

	runStore, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer runStore.Close()

	_, _, err = runStore.GetRun("no-such-run")
	assert.Error(t, err)
}
