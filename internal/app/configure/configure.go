package configure

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/reference"
	"github.com/slok/blendeval/internal/storage"
)

// ServiceConfig is the configuration for the configure service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
	// TimeNowFunc is used to get the current time, defaults to time.Now.
	TimeNowFunc func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.TimeNowFunc == nil {
		c.TimeNowFunc = time.Now
	}

	return nil
}

// Service saves the parameter sets of the users, the latest saved one for a
// module is the one used when starting tasks.
type Service struct {
	repo    storage.Repository
	logger  log.Logger
	timeNow func() time.Time
}

// NewService creates a new configure service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		logger:  cfg.Logger,
		timeNow: cfg.TimeNowFunc,
	}, nil
}

// Request represents the configure request parameters.
type Request struct {
	User   string
	Module string
	// ReferenceIDs are the selected reference items, all of them must exist.
	ReferenceIDs []int64
	// Settings are the free-form sections, usually keyed by method name.
	Settings *model.Row
}

// Run saves a new configuration snapshot.
func (s *Service) Run(ctx context.Context, req Request) (*model.ConfigurationSnapshot, error) {
	ids := reference.Distinct(req.ReferenceIDs)
	if len(ids) > 0 {
		items, err := s.repo.GetReferenceItems(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("could not get reference items: %w", err)
		}
		found := make(map[int64]bool, len(items))
		for _, it := range items {
			found[it.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, fmt.Errorf("reference item %d does not exist: %w", id, model.ErrNotValid)
			}
		}
	}

	settings := req.Settings.Clone()
	if settings == nil {
		settings = model.NewRow()
	}

	cfg := model.ConfigurationSnapshot{
		ID:           ulid.Make().String(),
		Owner:        req.User,
		Module:       req.Module,
		ReferenceIDs: ids,
		Settings:     settings,
		CreatedAt:    s.timeNow().UTC(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := s.repo.SaveConfiguration(ctx, cfg); err != nil {
		return nil, fmt.Errorf("could not save configuration: %w", err)
	}

	s.logger.Infof("Configuration %s saved for user %s module %s", cfg.ID, cfg.Owner, cfg.Module)
	return &cfg, nil
}
