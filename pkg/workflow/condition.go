package workflow

import (
	"strings"

	"github.com/pkg/errors"
)

// condition is a step gate. The four literals mirror the status functions
// of the workflow file format.
type condition string

const (
	condSuccess   condition = "success()"
	condFailure   condition = "failure()"
	condAlways    condition = "always()"
	condCancelled condition = "cancelled()"
)

func parseCondition(raw string) (condition, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return condSuccess, nil
	}

	cond := condition(trimmed)
	switch cond {
	case condSuccess, condFailure, condAlways, condCancelled:
		return cond, nil
	}

	return "", errors.Wrap(ErrUnknownCondition, trimmed)
}

// eval decides whether a step runs given the state of its job so far.
func (c condition) eval(failed, cancelled bool) bool {
	switch c {
	case condAlways:
		return true
	case condCancelled:
		return cancelled
	case condFailure:
		return failed && !cancelled
	default:
		return !failed && !cancelled
	}
}
