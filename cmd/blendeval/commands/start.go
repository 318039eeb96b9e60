package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/blendeval/internal/app/start"
)

type StartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	module string
	format string
}

// NewStartCommand returns the start command.
func NewStartCommand(rootCmd *RootCommand, app *kingpin.Application) *StartCommand {
	c := &StartCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("start", "Start one optimization task per method with the latest saved configuration of a module.")
	c.Cmd.Arg("module", "Module whose configuration is used.").Required().StringVar(&c.module)
	c.Cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(&c.format, formatTable, formatJSON)

	return c
}

func (c StartCommand) Name() string { return c.Cmd.FullCommand() }

func (c StartCommand) Run(ctx context.Context) error {
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

	svc, err := start.NewService(start.ServiceConfig{
		Repository: repo,
		Optimizer:  opt,
		Methods:    methods,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	started, err := svc.Run(ctx, start.Request{
		User:   c.rootCmd.User,
		Module: c.module,
	})
	if err != nil {
		return fmt.Errorf("could not start tasks: %w", err)
	}

	if err := c.rootCmd.newPrinter(c.format).PrintStarted(started); err != nil {
		return fmt.Errorf("could not print started tasks: %w", err)
	}

	return nil
}
