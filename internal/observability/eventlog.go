package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/valter-silva-au/ai-coder/pkg/models"
)

// EventLogFileName is the JSONL run history written inside the logs directory.
const EventLogFileName = "events.jsonl"

// Event types written by the pipeline.
const (
	EventRunStarted    = models.EventRunStarted
	EventRunFinished   = models.EventRunFinished
	EventTaskReused    = models.EventTaskReused
	EventTaskGenerated = models.EventTaskGenerated
	EventTaskFailed    = models.EventTaskFailed
)

// Event is a single pipeline event.
type Event struct {
	Time  time.Time      `json:"time"`
	RunID string         `json:"run_id"`
	Level string         `json:"level"` // INFO, WARN, ERROR
	Type  string         `json:"type"`
	Data  map[string]any `json:"data,omitempty"`
}

// EventFilter specifies criteria for reading events.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	RunID string
}

// EventLog appends and reads pipeline events.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog using an append-only JSONL file.
type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLEventLog creates a new EventLog backed by a JSONL file at path.
func NewJSONLEventLog(path string) (EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{path: path, file: f}, nil
}

// Write appends a JSON-encoded event followed by a newline.
func (l *jsonlEventLog) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Read scans the log file and returns the events matching filter.
// Malformed lines are skipped.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

// Close closes the underlying log file.
func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && event.Time.After(*filter.Until) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.RunID != "" && event.RunID != filter.RunID {
		return false
	}
	return true
}

// levelFor maps an event type to its severity.
func levelFor(eventType string) string {
	if eventType == EventTaskFailed {
		return "ERROR"
	}
	return "INFO"
}

// RunRecorder stamps events with one run id and writes them to an EventLog.
// Write failures are dropped: the event log must never break a run.
type RunRecorder struct {
	RunID string
	log   EventLog
	now   func() time.Time
}

// NewRunRecorder creates a RunRecorder. now may be nil.
func NewRunRecorder(log EventLog, runID string, now func() time.Time) *RunRecorder {
	if now == nil {
		now = time.Now
	}
	return &RunRecorder{RunID: runID, log: log, now: now}
}

// LogEvent writes an event of the given type.
func (r *RunRecorder) LogEvent(eventType string, data map[string]any) {
	if r == nil || r.log == nil {
		return
	}
	_ = r.log.Write(Event{
		Time:  r.now().UTC(),
		RunID: r.RunID,
		Level: levelFor(eventType),
		Type:  eventType,
		Data:  data,
	})
}
