package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/blendeval/internal/model"
)

// MethodsYAMLRepository loads method descriptor registries from YAML files.
type MethodsYAMLRepository struct {
	fs fs.FS
}

// NewMethodsYAMLRepository creates a new YAML methods repository.
func NewMethodsYAMLRepository(filesystem fs.FS) *MethodsYAMLRepository {
	return &MethodsYAMLRepository{fs: filesystem}
}

// GetMethods loads the ordered method descriptors from a YAML file.
func (r *MethodsYAMLRepository) GetMethods(ctx context.Context, path string) ([]model.MethodDescriptor, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading methods file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var cfg MethodsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if len(cfg.Methods) == 0 {
		return nil, fmt.Errorf("at least one method is required: %w", model.ErrNotValid)
	}

	methods := make([]model.MethodDescriptor, 0, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods = append(methods, m.toModel())
	}

	return methods, nil
}

// MethodsConfig represents the YAML structure of a methods file.
type MethodsConfig struct {
	Methods []MethodConfig `yaml:"methods"`
}

// MethodConfig represents the YAML structure of a method descriptor.
// Missing endpoints default to `/<name>/<action>/`.
type MethodConfig struct {
	Name     string `yaml:"name"`
	Start    string `yaml:"start"`
	Progress string `yaml:"progress"`
	Stop     string `yaml:"stop"`
}

func (c MethodConfig) toModel() model.MethodDescriptor {
	path := func(custom, action string) string {
		if custom != "" {
			return custom
		}
		if c.Name == "" {
			return ""
		}
		return "/" + c.Name + "/" + action + "/"
	}

	return model.MethodDescriptor{
		Name:         c.Name,
		StartPath:    path(c.Start, "start"),
		ProgressPath: path(c.Progress, "progress"),
		StopPath:     path(c.Stop, "stop"),
	}
}
