package catalog

import (
	"context"
	"fmt"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/storage"
)

// ServiceConfig is the configuration for the catalog service.
type ServiceConfig struct {
	Repository storage.ReferenceRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service imports reference items into the reference store.
type Service struct {
	repo   storage.ReferenceRepository
	logger log.Logger
}

// NewService creates a new catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the catalog import request parameters.
type Request struct {
	Items []model.ReferenceItem
}

// Run validates all the items and then saves them, existing items are replaced.
// It returns the number of imported items.
func (s *Service) Run(ctx context.Context, req Request) (int, error) {
	seen := map[int64]bool{}
	for _, it := range req.Items {
		if err := it.Validate(); err != nil {
			return 0, fmt.Errorf("invalid reference item %d: %w", it.ID, err)
		}
		if seen[it.ID] {
			return 0, fmt.Errorf("reference item %d is duplicated: %w", it.ID, model.ErrNotValid)
		}
		seen[it.ID] = true
	}

	for i, it := range req.Items {
		if err := s.repo.SaveReferenceItem(ctx, it); err != nil {
			return i, fmt.Errorf("could not save reference item %d: %w", it.ID, err)
		}
	}

	s.logger.Infof("Imported %d reference items", len(req.Items))
	return len(req.Items), nil
}
