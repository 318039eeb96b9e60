package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the state of a remote optimization task.
type TaskStatus string

const (
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusStopped   TaskStatus = "stopped"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCompleted TaskStatus = "completed"
)

// IsTerminal returns true when the task will not change its status anymore.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusStopped, TaskStatusFailed, TaskStatusCompleted:
		return true
	}
	return false
}

// ParseTaskStatus parses a status ignoring case, remote optimizers report them in upper case.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case TaskStatusRunning, TaskStatusStopped, TaskStatusFailed, TaskStatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown task status %q: %w", s, ErrNotValid)
}

// Task is a launched remote optimization job.
type Task struct {
	// ID is assigned by the remote optimizer.
	ID string
	// Method is the name of the method descriptor used to start the task, it
	// routes every later call (progress, stop) to the right remote endpoints.
	Method     string
	Status     TaskStatus
	Parameters *Row
	Owner      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate validates the task.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if t.Method == "" {
		return fmt.Errorf("method is required: %w", ErrNotValid)
	}
	if t.Owner == "" {
		return fmt.Errorf("owner is required: %w", ErrNotValid)
	}
	if _, err := ParseTaskStatus(string(t.Status)); err != nil {
		return err
	}
	return nil
}

// StartedTask is the handle returned to callers after a successful remote start.
type StartedTask struct {
	TaskID string
	Method string
}
