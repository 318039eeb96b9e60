package list

import (
	"context"
	"fmt"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/storage"
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Repository storage.TaskRepository
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

// Service lists registered tasks with optional filtering.
type Service struct {
	repo   storage.TaskRepository
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// User is an optional filter to only show the tasks of this user.
	User string
	// StatusFilter is an optional filter to only show tasks with this status.
	StatusFilter *model.TaskStatus
}

// Run lists the tasks, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Task, error) {
	s.logger.Debugf("listing tasks with filter: user=%q status=%v", req.User, req.StatusFilter)

	opts := storage.TaskListOpts{Owner: req.User}
	if req.StatusFilter != nil {
		opts.Status = *req.StatusFilter
	}

	tasks, err := s.repo.ListTasks(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	s.logger.Debugf("found %d tasks", len(tasks))
	return tasks, nil
}
