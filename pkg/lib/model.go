package lib

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/slok/blendeval/internal/model"
)

var (
	// ErrNotFound is returned when a resource does not exist (task, configuration).
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned on invalid input.
	ErrNotValid = errors.New("not valid")
	// ErrOptimizerUnreachable is returned when the remote optimizer could not be reached or rejected the call.
	ErrOptimizerUnreachable = errors.New("optimizer unreachable")
)

// OptimizerType identifies the optimizer implementation.
type OptimizerType string

const (
	// OptimizerRemote talks to a real optimizer over HTTP.
	OptimizerRemote OptimizerType = "remote"

	// OptimizerFake uses an in-memory simulation of the optimizer.
	// Use this for testing without infrastructure dependencies.
	OptimizerFake OptimizerType = "fake"
)

// Method is an optimizer method and its endpoints, relative to the optimizer URL.
// Empty paths default to `/<name>/<action>/`.
type Method struct {
	Name         string
	StartPath    string
	ProgressPath string
	StopPath     string
}

// TaskStatus represents the lifecycle state of a task.
//
//	running -> completed | stopped | failed
type TaskStatus string

const (
	// TaskStatusRunning indicates the task is running on the optimizer.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the optimizer finished the task.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusStopped indicates the task was stopped by its owner.
	TaskStatusStopped TaskStatus = "stopped"
	// TaskStatusFailed indicates the task was lost or failed on the optimizer.
	TaskStatusFailed TaskStatus = "failed"
)

// Task represents a launched optimization task.
type Task struct {
	// ID is assigned by the optimizer.
	ID string
	// Method is the name of the method that runs the task.
	Method    string
	Status    TaskStatus
	Owner     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartedTask is a task started by [Client.StartTasks].
type StartedTask struct {
	ID     string
	Method string
}

// ListTasksOpts configures task listing.
type ListTasksOpts struct {
	// Owner filters by task owner, empty lists every owner.
	Owner string
	// Status filters by status, nil lists every status.
	Status *TaskStatus
}

// ProgressOpts configures the progress results view.
type ProgressOpts struct {
	// Owner when set the task must belong to it.
	Owner string
	// Sort is a dotted path of the result fields (e.g. `cost.total`).
	Sort string
	// Descending reverses the sort order.
	Descending bool
	// Page starts at 1. Default: 1.
	Page int
	// PageSize default: 10.
	PageSize int
}

// Progress is a page of a task progress.
type Progress struct {
	TaskID string
	Method string
	// Status is the status reported by the optimizer.
	Status string
	// Progress and Total are the optimizer counters, nil when unknown.
	Progress any
	Total    any
	// Results are the result rows as JSON objects, keeping the optimizer field order.
	Results      []json.RawMessage
	Page         int
	PageSize     int
	TotalResults int
	TotalPages   int
}

// ReferenceItem is an entity referenced by ID on the optimizer results (e.g. a raw material).
type ReferenceItem struct {
	ID          int64
	Name        string
	Composition map[string]float64
}

// Configuration is a saved parameter set of a user for a module.
type Configuration struct {
	ID           string
	Owner        string
	Module       string
	ReferenceIDs []int64
	// Settings is a JSON object with free-form sections, usually keyed by method name.
	Settings  json.RawMessage
	CreatedAt time.Time
}

// SaveConfigurationOpts configures a new configuration.
type SaveConfigurationOpts struct {
	Owner        string
	Module       string
	ReferenceIDs []int64
	// Settings is an optional JSON object.
	Settings json.RawMessage
}

func toInternalMethod(m Method) model.MethodDescriptor {
	d := model.MethodDescriptor{
		Name:         m.Name,
		StartPath:    m.StartPath,
		ProgressPath: m.ProgressPath,
		StopPath:     m.StopPath,
	}
	if d.StartPath == "" {
		d.StartPath = "/" + m.Name + "/start/"
	}
	if d.ProgressPath == "" {
		d.ProgressPath = "/" + m.Name + "/progress/"
	}
	if d.StopPath == "" {
		d.StopPath = "/" + m.Name + "/stop/"
	}
	return d
}

func fromInternalTask(t model.Task) Task {
	return Task{
		ID:        t.ID,
		Method:    t.Method,
		Status:    TaskStatus(t.Status),
		Owner:     t.Owner,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func fromInternalTaskList(ts []model.Task) []Task {
	result := make([]Task, len(ts))
	for i, t := range ts {
		result[i] = fromInternalTask(t)
	}
	return result
}

func fromInternalStartedList(ts []model.StartedTask) []StartedTask {
	result := make([]StartedTask, len(ts))
	for i, t := range ts {
		result[i] = StartedTask{ID: t.TaskID, Method: t.Method}
	}
	return result
}

func fromInternalProgressPage(p model.ProgressPage) (*Progress, error) {
	out := &Progress{
		TaskID:       p.TaskID,
		Method:       p.Method,
		Status:       p.Status,
		Progress:     fromInternalValue(p.Progress),
		Total:        fromInternalValue(p.Total),
		Results:      make([]json.RawMessage, 0, len(p.Results)),
		Page:         p.Page,
		PageSize:     p.PageSize,
		TotalResults: p.TotalResults,
		TotalPages:   p.TotalPages,
	}
	for _, r := range p.Results {
		data, err := r.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("could not encode result row: %w", err)
		}
		out.Results = append(out.Results, data)
	}
	return out, nil
}

func fromInternalValue(v model.Value) any {
	switch v.Kind() {
	case model.KindNull:
		return nil
	case model.KindNumber:
		if i, ok := v.AsInt(); ok {
			return i
		}
		if lit, ok := v.IntegerLiteral(); ok {
			return json.Number(lit)
		}
		n, _ := v.AsNumber()
		return n
	case model.KindString:
		s, _ := v.AsString()
		return s
	case model.KindBool:
		b, _ := v.AsBool()
		return b
	default:
		data, _ := v.MarshalJSON()
		return json.RawMessage(data)
	}
}

func fromInternalConfiguration(c model.ConfigurationSnapshot) (*Configuration, error) {
	out := &Configuration{
		ID:           c.ID,
		Owner:        c.Owner,
		Module:       c.Module,
		ReferenceIDs: c.ReferenceIDs,
		CreatedAt:    c.CreatedAt,
	}
	if c.Settings != nil {
		data, err := c.Settings.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("could not encode settings: %w", err)
		}
		out.Settings = data
	}
	return out, nil
}

func toInternalReferenceItems(items []ReferenceItem) []model.ReferenceItem {
	result := make([]model.ReferenceItem, len(items))
	for i, it := range items {
		result[i] = model.ReferenceItem{ID: it.ID, Name: it.Name, Composition: it.Composition}
	}
	return result
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrNotValid), errors.Is(err, model.ErrMethodDescriptorMissing):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrRemoteUnreachable):
		return joinErrors(err, ErrOptimizerUnreachable)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
