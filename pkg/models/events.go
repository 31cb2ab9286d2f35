package models

// Run event types recorded in the event log.
const (
	EventRunStarted    = "run.started"
	EventRunFinished   = "run.finished"
	EventTaskReused    = "task.reused"
	EventTaskGenerated = "task.generated"
	EventTaskFailed    = "task.failed"
)
