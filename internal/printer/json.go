package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/blendeval/internal/model"
)

// JSONPrinter prints task information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type taskOutput struct {
	ID        string    `json:"id"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type startedOutput struct {
	ID     string `json:"id"`
	Method string `json:"method"`
}

type stoppedOutput struct {
	Stopped []string `json:"stopped"`
}

type progressOutput struct {
	ID           string       `json:"id"`
	Method       string       `json:"method"`
	Status       string       `json:"status"`
	Progress     model.Value  `json:"progress"`
	Total        model.Value  `json:"total"`
	Page         int          `json:"page"`
	PageSize     int          `json:"page_size"`
	TotalResults int          `json:"total_results"`
	TotalPages   int          `json:"total_pages"`
	Results      []*model.Row `json:"results"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTasks prints tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []model.Task) error {
	items := make([]taskOutput, len(tasks))
	for i, t := range tasks {
		items[i] = taskOutput{
			ID:        t.ID,
			Method:    t.Method,
			Status:    string(t.Status),
			Owner:     t.Owner,
			CreatedAt: t.CreatedAt.UTC(),
			UpdatedAt: t.UpdatedAt.UTC(),
		}
	}
	return j.encode(items)
}

// PrintStarted prints the started tasks in JSON format.
func (j *JSONPrinter) PrintStarted(tasks []model.StartedTask) error {
	items := make([]startedOutput, len(tasks))
	for i, t := range tasks {
		items[i] = startedOutput{ID: t.TaskID, Method: t.Method}
	}
	return j.encode(items)
}

// PrintStopped prints the stopped task IDs in JSON format.
func (j *JSONPrinter) PrintStopped(taskIDs []string) error {
	if taskIDs == nil {
		taskIDs = []string{}
	}
	return j.encode(stoppedOutput{Stopped: taskIDs})
}

// PrintProgress prints a progress page in JSON format.
func (j *JSONPrinter) PrintProgress(page model.ProgressPage) error {
	results := page.Results
	if results == nil {
		results = []*model.Row{}
	}
	return j.encode(progressOutput{
		ID:           page.TaskID,
		Method:       page.Method,
		Status:       page.Status,
		Progress:     page.Progress,
		Total:        page.Total,
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalResults: page.TotalResults,
		TotalPages:   page.TotalPages,
		Results:      results,
	})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
