package model

// Status describes where a run, job or step is in its lifecycle.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Conclusion describes how a completed run, job or step ended. The zero
// value means the unit has not completed yet.
type Conclusion string

const (
	ConclusionSuccess   Conclusion = "success"
	ConclusionFailure   Conclusion = "failure"
	ConclusionCancelled Conclusion = "cancelled"
	ConclusionSkipped   Conclusion = "skipped"
)

// Success reports whether the conclusion counts as a pass. Skipped units
// neither pass nor fail.
func (c Conclusion) Success() bool {
	return c == ConclusionSuccess
}
