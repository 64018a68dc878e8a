package measure

import "time"

// Measure collects wall-time metrics for the jobs and steps of a run.
type Measure interface {
	AddMetric(name string) Metric
	AllMetrics() map[string]Metric
	SetTotalDuration(elapsed time.Duration)
	TotalDuration() time.Duration
}

// Metric records the wall time of a single job or step.
type Metric interface {
	AddDuration(elapsed time.Duration)
	Elapsed() time.Duration
}
