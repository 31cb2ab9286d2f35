package models

import (
	"errors"
	"fmt"
)

// TaskStatus represents the current lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// ErrInvalidTransition is returned when a status change would move a task backwards.
var ErrInvalidTransition = errors.New("invalid task status transition")

// allowedTransitions lists the forward-only edges of the task lifecycle.
var allowedTransitions = map[TaskStatus][]TaskStatus{
	StatusPending:    {StatusInProgress, StatusFailed},
	StatusInProgress: {StatusCompleted, StatusFailed},
}

// CodeMatch is the result of scoring one file against a search keyword.
type CodeMatch struct {
	FilePath       string `json:"file_path" yaml:"file_path"`
	Content        string `json:"-" yaml:"-"`
	RelevanceScore int    `json:"relevance_score" yaml:"relevance_score"`
}

// Task is one decomposed unit of a user request. It is created by the
// decomposer, mutated by the resolver and never persisted as a record;
// only its Markdown artifact outlives the run.
type Task struct {
	ID            string      `json:"id" yaml:"id"`
	Description   string      `json:"description" yaml:"description"`
	Status        TaskStatus  `json:"status" yaml:"status"`
	CodeMatches   []CodeMatch `json:"code_matches,omitempty" yaml:"code_matches,omitempty"`
	GeneratedCode string      `json:"-" yaml:"-"`
	OutputPath    string      `json:"output_path,omitempty" yaml:"output_path,omitempty"`
}

// NewTask returns a pending task.
func NewTask(id, description string) *Task {
	return &Task{ID: id, Description: description, Status: StatusPending}
}

// Transition moves the task to the given status. Only forward edges are
// accepted, and a task cannot complete without generated code.
func (t *Task) Transition(to TaskStatus) error {
	for _, next := range allowedTransitions[t.Status] {
		if next != to {
			continue
		}
		if to == StatusCompleted && t.GeneratedCode == "" {
			return fmt.Errorf("%w: task %s has no generated code", ErrInvalidTransition, t.ID)
		}
		t.Status = to
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
}

// TopMatch returns the highest scoring match, if any.
func (t *Task) TopMatch() (CodeMatch, bool) {
	if len(t.CodeMatches) == 0 {
		return CodeMatch{}, false
	}
	return t.CodeMatches[0], true
}

// Reused reports whether the task's top match scored strictly above threshold.
func (t *Task) Reused(threshold int) bool {
	top, ok := t.TopMatch()
	return ok && top.RelevanceScore > threshold
}
