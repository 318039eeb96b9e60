package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/blendeval/internal/model"
)

// ConfigurationYAMLRepository loads configuration snapshots from YAML files.
type ConfigurationYAMLRepository struct {
	fs fs.FS
}

// NewConfigurationYAMLRepository creates a new YAML configuration repository.
func NewConfigurationYAMLRepository(filesystem fs.FS) *ConfigurationYAMLRepository {
	return &ConfigurationYAMLRepository{fs: filesystem}
}

// GetConfiguration loads a configuration snapshot from a YAML file. The returned
// snapshot has no owner nor module, those are set by whoever saves it.
func (r *ConfigurationYAMLRepository) GetConfiguration(ctx context.Context, path string) (model.ConfigurationSnapshot, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.ConfigurationSnapshot{}, fmt.Errorf("reading configuration file: %w", err)
	}

	if ctx.Err() != nil {
		return model.ConfigurationSnapshot{}, ctx.Err()
	}

	var cfg ConfigurationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.ConfigurationSnapshot{}, fmt.Errorf("parsing YAML: %w", err)
	}

	for _, id := range cfg.ReferenceIDs {
		if id <= 0 {
			return model.ConfigurationSnapshot{}, fmt.Errorf("invalid reference id %d: %w", id, model.ErrNotValid)
		}
	}

	settings, err := nodeToRow(cfg.Settings)
	if err != nil {
		return model.ConfigurationSnapshot{}, fmt.Errorf("invalid settings: %w", err)
	}

	return model.ConfigurationSnapshot{
		ReferenceIDs: cfg.ReferenceIDs,
		Settings:     settings,
	}, nil
}

// ConfigurationConfig represents the YAML structure of a saved configuration.
type ConfigurationConfig struct {
	ReferenceIDs []int64   `yaml:"reference_ids"`
	Settings     yaml.Node `yaml:"settings"`
}
