package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/blendeval/internal/app/list"
	"github.com/slok/blendeval/internal/model"
)

type TasksCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statusFilter string
	allUsers     bool
	format       string
}

// NewTasksCommand returns the tasks command.
func NewTasksCommand(rootCmd *RootCommand, app *kingpin.Application) *TasksCommand {
	c := &TasksCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("tasks", "List the tasks.")
	c.Cmd.Flag("status", "Filter by status (running, completed, stopped, failed).").StringVar(&c.statusFilter)
	c.Cmd.Flag("all-users", "List the tasks of every user.").BoolVar(&c.allUsers)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c TasksCommand) Name() string { return c.Cmd.FullCommand() }

func (c TasksCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	req := list.Request{User: c.rootCmd.User}
	if c.allUsers {
		req.User = ""
	}
	if c.statusFilter != "" {
		status, err := model.ParseTaskStatus(c.statusFilter)
		if err != nil {
			return fmt.Errorf("invalid status filter: %w", err)
		}
		req.StatusFilter = &status
	}

	repo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := list.NewService(list.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	tasks, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintTasks(tasks); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}

	return nil
}
