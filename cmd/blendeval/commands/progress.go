package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/blendeval/internal/app/progress"
	"github.com/slok/blendeval/internal/resultview"
)

type ProgressCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID   string
	page     int
	pageSize int
	sort     string
	order    string
	format   string
}

// NewProgressCommand returns the progress command.
func NewProgressCommand(rootCmd *RootCommand, app *kingpin.Application) *ProgressCommand {
	c := &ProgressCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("progress", "Show the progress and the results of a task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("page", "Results page, starts at 1.").Default("1").IntVar(&c.page)
	c.Cmd.Flag("page-size", "Results per page.").Default("10").IntVar(&c.pageSize)
	c.Cmd.Flag("sort", "Dotted path of the result field to sort by (e.g. cost.total).").StringVar(&c.sort)
	c.Cmd.Flag("order", "Sort order (asc, desc).").Default(string(resultview.OrderAsc)).EnumVar(&c.order, string(resultview.OrderAsc), string(resultview.OrderDesc))
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c ProgressCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProgressCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	opt, err := c.rootCmd.newOptimizer()
	if err != nil {
		return err
	}

	methods, err := c.rootCmd.newMethods(ctx)
	if err != nil {
		return err
	}

	svc, err := progress.NewService(progress.ServiceConfig{
		Repository: repo,
		Optimizer:  opt,
		Methods:    methods,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	page, err := svc.Run(ctx, progress.Request{
		TaskID:   c.taskID,
		User:     c.rootCmd.User,
		Sort:     c.sort,
		Order:    resultview.Order(c.order),
		Page:     c.page,
		PageSize: c.pageSize,
	})
	if err != nil {
		return fmt.Errorf("could not get task progress: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintProgress(*page); err != nil {
		return fmt.Errorf("could not print progress: %w", err)
	}

	return nil
}
