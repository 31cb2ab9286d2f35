package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestEventLog(t *testing.T) (EventLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), EventLogFileName)
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("NewJSONLEventLog: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log, path
}

func TestJSONLEventLog_WriteAndRead(t *testing.T) {
	log, _ := newTestEventLog(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	events := []Event{
		{Time: base, RunID: "r1", Level: "INFO", Type: EventRunStarted, Data: map[string]any{"request": "blog"}},
		{Time: base.Add(time.Minute), RunID: "r1", Level: "INFO", Type: EventTaskGenerated, Data: map[string]any{"task_id": "post_api"}},
		{Time: base.Add(2 * time.Minute), RunID: "r2", Level: "ERROR", Type: EventTaskFailed},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	all, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[1].Data["task_id"] != "post_api" {
		t.Errorf("Data = %v, want task_id post_api", all[1].Data)
	}

	byRun, _ := log.Read(EventFilter{RunID: "r1"})
	if len(byRun) != 2 {
		t.Errorf("RunID filter: got %d events, want 2", len(byRun))
	}

	byType, _ := log.Read(EventFilter{Type: EventTaskFailed})
	if len(byType) != 1 || byType[0].RunID != "r2" {
		t.Errorf("Type filter: got %+v", byType)
	}

	since := base.Add(30 * time.Second)
	until := base.Add(90 * time.Second)
	window, _ := log.Read(EventFilter{Since: &since, Until: &until})
	if len(window) != 1 || window[0].Type != EventTaskGenerated {
		t.Errorf("time window: got %+v", window)
	}
}

func TestJSONLEventLog_SkipsMalformedLines(t *testing.T) {
	log, path := newTestEventLog(t)
	if err := log.Write(Event{Time: time.Now().UTC(), Type: EventRunStarted}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("not json\n\n")
	_ = f.Close()

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events, want 1", len(events))
	}
}

func TestRunRecorder_StampsEvents(t *testing.T) {
	log, _ := newTestEventLog(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("KST", 9*3600))
	rec := NewRunRecorder(log, "run-123", func() time.Time { return at })

	rec.LogEvent(EventTaskReused, map[string]any{"task_id": "db_design"})
	rec.LogEvent(EventTaskFailed, map[string]any{"task_id": "post_api", "error": "boom"})

	events, err := log.Read(EventFilter{RunID: "run-123"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].Time.Equal(at) || events[0].Time.Location() != time.UTC {
		t.Errorf("Time = %v, want %v in UTC", events[0].Time, at)
	}
	if events[0].Level != "INFO" || events[1].Level != "ERROR" {
		t.Errorf("levels = %s, %s; want INFO, ERROR", events[0].Level, events[1].Level)
	}
}

func TestRunRecorder_NilSafe(t *testing.T) {
	var rec *RunRecorder
	rec.LogEvent(EventRunStarted, nil)

	NewRunRecorder(nil, "r", nil).LogEvent(EventRunStarted, nil)
}
