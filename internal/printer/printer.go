package printer

import "github.com/slok/blendeval/internal/model"

// Printer knows how to print task information in different formats.
type Printer interface {
	PrintTasks(tasks []model.Task) error
	PrintStarted(tasks []model.StartedTask) error
	PrintStopped(taskIDs []string) error
	PrintProgress(page model.ProgressPage) error
	PrintMessage(msg string) error
}

var (
	_ Printer = &TablePrinter{}
	_ Printer = &JSONPrinter{}
)
