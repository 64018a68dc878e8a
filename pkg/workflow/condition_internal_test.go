package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	t.Parallel()

	cond, err := parseCondition("")
	require.NoError(t, err)
	assert.Equal(t, condSuccess, cond)

	cond, err = parseCondition("  always()  ")
	require.NoError(t, err)
	assert.Equal(t, condAlways, cond)

	_, err = parseCondition("sometimes()")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCondition)
}

func TestConditionEval(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		cond      condition
		failed    bool
		cancelled bool
		want      bool
	}{
		{"success clean", condSuccess, false, false, true},
		{"success after failure", condSuccess, true, false, false},
		{"success after cancel", condSuccess, false, true, false},
		{"failure clean", condFailure, false, false, false},
		{"failure after failure", condFailure, true, false, true},
		{"failure after cancel", condFailure, true, true, false},
		{"always after failure", condAlways, true, false, true},
		{"always after cancel", condAlways, false, true, true},
		{"cancelled clean", condCancelled, false, false, false},
		{"cancelled after cancel", condCancelled, false, true, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cond.eval(tc.failed, tc.cancelled))
		})
	}
}
