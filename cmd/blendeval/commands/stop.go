package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/blendeval/internal/app/stop"
)

type StopCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskIDs []string
	format  string
}

// NewStopCommand returns the stop command.
func NewStopCommand(rootCmd *RootCommand, app *kingpin.Application) *StopCommand {
	c := &StopCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("stop", "Stop running tasks.")
	c.Cmd.Arg("task-id", "Task IDs.").Required().StringsVar(&c.taskIDs)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c StopCommand) Name() string { return c.Cmd.FullCommand() }

func (c StopCommand) Run(ctx context.Context) error {
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

	svc, err := stop.NewService(stop.ServiceConfig{
		Repository: repo,
		Optimizer:  opt,
		Methods:    methods,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	stopped, err := svc.Run(ctx, stop.Request{
		TaskIDs: c.taskIDs,
		User:    c.rootCmd.User,
	})
	if err != nil {
		return fmt.Errorf("could not stop tasks: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintStopped(stopped); err != nil {
		return fmt.Errorf("could not print stopped tasks: %w", err)
	}

	return nil
}
