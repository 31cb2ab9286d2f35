package observability

import (
	"fmt"
	"time"
)

// Metrics aggregates pipeline outcomes from the event log.
type Metrics struct {
	Runs           int        `json:"runs"`
	TasksReused    int        `json:"tasks_reused"`
	TasksGenerated int        `json:"tasks_generated"`
	TasksFailed    int        `json:"tasks_failed"`
	EventCount     int        `json:"event_count"`
	OldestEvent    *time.Time `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time `json:"newest_event,omitempty"`
}

// ReuseRate is the share of resolved tasks that reused existing code.
func (m *Metrics) ReuseRate() float64 {
	resolved := m.TasksReused + m.TasksGenerated
	if resolved == 0 {
		return 0
	}
	return float64(m.TasksReused) / float64(resolved)
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{EventCount: len(events)}
	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t

		switch event.Type {
		case EventRunStarted:
			m.Runs++
		case EventTaskReused:
			m.TasksReused++
		case EventTaskGenerated:
			m.TasksGenerated++
		case EventTaskFailed:
			m.TasksFailed++
		}
	}
	return m, nil
}
