package workflow_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gantry-ci/gantry/pkg/workflow"
	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

func mustParse(t *testing.T, doc string) *model.Workflow {
	t.Helper()
	wf, err := workflow.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	return wf
}

func stepConclusions(t *testing.T, job *model.JobResult) []model.Conclusion {
	t.Helper()
	conclusions := make([]model.Conclusion, 0, len(job.Steps))
	for _, step := range job.Steps {
		conclusions = append(conclusions, step.Conclusion)
	}

	return conclusions
}
