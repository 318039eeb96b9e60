package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/blendeval/internal/app/catalog"
	storageio "github.com/slok/blendeval/internal/storage/io"
)

type CatalogImportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file string
}

// NewCatalogImportCommand returns the catalog import command.
func NewCatalogImportCommand(rootCmd *RootCommand, catalogCmd *kingpin.CmdClause) *CatalogImportCommand {
	c := &CatalogImportCommand{rootCmd: rootCmd}

	c.Cmd = catalogCmd.Command("import", "Import reference items from a YAML file, existing items are replaced.")
	c.Cmd.Arg("file", "YAML file with the reference items.").Required().ExistingFileVar(&c.file)

	return c
}

func (c CatalogImportCommand) Name() string { return c.Cmd.FullCommand() }

func (c CatalogImportCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	fsys, name, err := fileFS(c.file)
	if err != nil {
		return err
	}
	items, err := storageio.NewCatalogYAMLRepository(fsys).GetReferenceItems(ctx, name)
	if err != nil {
		return fmt.Errorf("could not load catalog: %w", err)
	}

	repo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := catalog.NewService(catalog.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	n, err := svc.Run(ctx, catalog.Request{Items: items})
	if err != nil {
		return fmt.Errorf("could not import catalog: %w", err)
	}

	p := c.rootCmd.newPrinter(formatTable)
	if err := p.PrintMessage(fmt.Sprintf("Imported %d reference items", n)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
