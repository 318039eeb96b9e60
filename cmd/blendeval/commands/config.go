package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/blendeval/internal/app/configure"
	storageio "github.com/slok/blendeval/internal/storage/io"
)

type ConfigSaveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	module string
	file   string
}

// NewConfigSaveCommand returns the config save command.
func NewConfigSaveCommand(rootCmd *RootCommand, configCmd *kingpin.CmdClause) *ConfigSaveCommand {
	c := &ConfigSaveCommand{rootCmd: rootCmd}

	c.Cmd = configCmd.Command("save", "Save a new configuration of a module from a YAML file, the latest one is used by start.")
	c.Cmd.Arg("module", "Module of the configuration.").Required().StringVar(&c.module)
	c.Cmd.Arg("file", "YAML file with the reference IDs and the settings.").Required().ExistingFileVar(&c.file)

	return c
}

func (c ConfigSaveCommand) Name() string { return c.Cmd.FullCommand() }

func (c ConfigSaveCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	fsys, name, err := fileFS(c.file)
	if err != nil {
		return err
	}
	snap, err := storageio.NewConfigurationYAMLRepository(fsys).GetConfiguration(ctx, name)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	repo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := configure.NewService(configure.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	saved, err := svc.Run(ctx, configure.Request{
		User:         c.rootCmd.User,
		Module:       c.module,
		ReferenceIDs: snap.ReferenceIDs,
		Settings:     snap.Settings,
	})
	if err != nil {
		return fmt.Errorf("could not save configuration: %w", err)
	}

	p := c.rootCmd.newPrinter(formatTable)
	if err := p.PrintMessage(fmt.Sprintf("Saved configuration %s for module %s", saved.ID, saved.Module)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
