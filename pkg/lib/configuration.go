package lib

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/slok/blendeval/internal/app/catalog"
	"github.com/slok/blendeval/internal/app/configure"
	"github.com/slok/blendeval/internal/model"
)

// SaveConfiguration saves a new configuration, the latest one of an owner and
// module is used by [Client.StartTasks].
//
// Returns [ErrNotValid] if a reference item does not exist or the settings are not a JSON object.
func (c *Client) SaveConfiguration(ctx context.Context, opts SaveConfigurationOpts) (*Configuration, error) {
	settings := model.NewRow()
	if len(opts.Settings) > 0 {
		if err := json.Unmarshal(opts.Settings, settings); err != nil {
			return nil, fmt.Errorf("invalid settings: %w", ErrNotValid)
		}
	}

	svc, err := configure.NewService(configure.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	saved, err := svc.Run(ctx, configure.Request{
		User:         opts.Owner,
		Module:       opts.Module,
		ReferenceIDs: opts.ReferenceIDs,
		Settings:     settings,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalConfiguration(*saved)
}

// ImportReferenceItems stores the reference items, replacing existing ones
// with the same ID. Nothing is stored if any item is invalid.
func (c *Client) ImportReferenceItems(ctx context.Context, items []ReferenceItem) (int, error) {
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return 0, fmt.Errorf("could not create service: %w", err)
	}

	n, err := svc.Run(ctx, catalog.Request{Items: toInternalReferenceItems(items)})
	if err != nil {
		return 0, mapError(err)
	}

	return n, nil
}
