package measure

import (
	"sync"
	"time"
)

// DefaultMetric is the default Metric implementation. It is safe for
// concurrent use.
type DefaultMetric struct {
	mu      *sync.Mutex
	elapsed time.Duration
}

// AddDuration adds wall time to the metric.
func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.elapsed += elapsed
}

// Elapsed returns the recorded wall time, rounded to a sensible unit.
func (mt *DefaultMetric) Elapsed() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return round(mt.elapsed)
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Hour:
		d = d.Round(time.Hour)
	}

	return d
}
