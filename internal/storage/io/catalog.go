package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/blendeval/internal/model"
)

// CatalogYAMLRepository loads reference item catalogs from YAML files.
type CatalogYAMLRepository struct {
	fs fs.FS
}

// NewCatalogYAMLRepository creates a new YAML catalog repository.
func NewCatalogYAMLRepository(filesystem fs.FS) *CatalogYAMLRepository {
	return &CatalogYAMLRepository{fs: filesystem}
}

// GetReferenceItems loads the reference items from a YAML file.
func (r *CatalogYAMLRepository) GetReferenceItems(ctx context.Context, path string) ([]model.ReferenceItem, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	seen := map[int64]bool{}
	items := make([]model.ReferenceItem, 0, len(cfg.Items))
	for i, it := range cfg.Items {
		item := model.ReferenceItem{ID: it.ID, Name: it.Name, Composition: it.Composition}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("item %d: duplicated id %d: %w", i, item.ID, model.ErrNotValid)
		}
		seen[item.ID] = true
		items = append(items, item)
	}

	return items, nil
}

// CatalogConfig represents the YAML structure of a reference items catalog.
type CatalogConfig struct {
	Items []ReferenceItemConfig `yaml:"items"`
}

// ReferenceItemConfig represents the YAML structure of a reference item.
type ReferenceItemConfig struct {
	ID          int64              `yaml:"id"`
	Name        string             `yaml:"name"`
	Composition map[string]float64 `yaml:"composition"`
}
