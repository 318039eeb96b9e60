package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/blendeval/internal/model"
)

// TablePrinter prints task information in a table format.
type TablePrinter struct {
	writer io.Writer
	now    func() time.Time
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w, now: time.Now}
}

// PrintTasks prints tasks in a table format.
func (t *TablePrinter) PrintTasks(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tMETHOD\tSTATUS\tOWNER\tAGE\tUPDATED")
	now := t.now()
	for _, tk := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tk.ID,
			tk.Method,
			tk.Status,
			tk.Owner,
			Age(now, tk.CreatedAt),
			FormatTimestamp(tk.UpdatedAt),
		)
	}

	return nil
}

// PrintStarted prints the started tasks.
func (t *TablePrinter) PrintStarted(tasks []model.StartedTask) error {
	if len(tasks) == 0 {
		fmt.Fprintln(t.writer, "No tasks started")
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tMETHOD")
	for _, tk := range tasks {
		fmt.Fprintf(tw, "%s\t%s\n", tk.TaskID, tk.Method)
	}

	return nil
}

// PrintStopped prints the stopped task IDs.
func (t *TablePrinter) PrintStopped(taskIDs []string) error {
	if len(taskIDs) == 0 {
		fmt.Fprintln(t.writer, "No tasks stopped")
		return nil
	}

	for _, id := range taskIDs {
		fmt.Fprintf(t.writer, "Stopped %s\n", id)
	}
	return nil
}

// PrintProgress prints the progress summary followed by the result rows,
// nested row fields are flattened into dotted columns.
func (t *TablePrinter) PrintProgress(page model.ProgressPage) error {
	fmt.Fprintf(t.writer, "Task:       %s\n", page.TaskID)
	fmt.Fprintf(t.writer, "Method:     %s\n", page.Method)
	fmt.Fprintf(t.writer, "Status:     %s\n", page.Status)
	fmt.Fprintf(t.writer, "Progress:   %s/%s\n", page.Progress, page.Total)
	fmt.Fprintf(t.writer, "Results:    %d (page %d of %d)\n", page.TotalResults, page.Page, page.TotalPages)

	if len(page.Results) == 0 {
		return nil
	}
	fmt.Fprintln(t.writer)

	var cols []string
	seen := map[string]bool{}
	cells := make([]map[string]string, 0, len(page.Results))
	for _, r := range page.Results {
		c := map[string]string{}
		flatten("", r, c, func(col string) {
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		})
		cells = append(cells, c)
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	header := make([]string, 0, len(cols))
	for _, c := range cols {
		header = append(header, strings.ToUpper(c))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, c := range cells {
		line := make([]string, 0, len(cols))
		for _, col := range cols {
			v, ok := c[col]
			if !ok {
				v = "-"
			}
			line = append(line, v)
		}
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func flatten(prefix string, r *model.Row, out map[string]string, addCol func(string)) {
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		col := k
		if prefix != "" {
			col = prefix + "." + k
		}
		if obj, ok := v.AsObject(); ok && obj.Len() > 0 {
			flatten(col, obj, out, addCol)
			continue
		}
		addCol(col)
		out[col] = v.String()
	}
}
