package measure

import (
	"sync"
	"time"
)

// DefaultMeasure is the default Measure implementation.
type DefaultMeasure struct {
	mu      sync.Mutex
	metrics map[string]Metric
	total   time.Duration
}

// NewDefaultMeasure creates an empty measure.
func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		metrics: make(map[string]Metric),
	}
}

// AddMetric returns the metric for the given name, creating it when
// needed.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.metrics[name]; ok {
		return mt
	}

	mt := &DefaultMetric{mu: &sync.Mutex{}}
	m.metrics[name] = mt

	return mt
}

// AllMetrics returns all recorded metrics keyed by job or step name.
func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make(map[string]Metric, len(m.metrics))
	for name, mt := range m.metrics {
		all[name] = mt
	}

	return all
}

// SetTotalDuration records the wall time of the whole run.
func (m *DefaultMeasure) SetTotalDuration(elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = elapsed
}

// TotalDuration returns the wall time of the whole run.
func (m *DefaultMeasure) TotalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return round(m.total)
}
