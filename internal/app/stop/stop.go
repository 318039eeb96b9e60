package stop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/method"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/optimizer"
	"github.com/slok/blendeval/internal/storage"
)

// ServiceConfig is the configuration for the stop service.
type ServiceConfig struct {
	Repository storage.TaskRepository
	Optimizer  optimizer.Client
	Methods    *method.Registry
	Logger     log.Logger
	// TimeNowFunc is used to get the current time, defaults to time.Now.
	TimeNowFunc func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Optimizer == nil {
		return fmt.Errorf("optimizer is required")
	}

	if c.Methods == nil {
		c.Methods = method.Default()
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.stop"})

	if c.TimeNowFunc == nil {
		c.TimeNowFunc = time.Now
	}

	return nil
}

// Service stops running remote tasks.
type Service struct {
	repo      storage.TaskRepository
	optimizer optimizer.Client
	methods   *method.Registry
	logger    log.Logger
	timeNow   func() time.Time
}

// NewService creates a new stop service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:      cfg.Repository,
		optimizer: cfg.Optimizer,
		methods:   cfg.Methods,
		logger:    cfg.Logger,
		timeNow:   cfg.TimeNowFunc,
	}, nil
}

// Request represents the stop request parameters.
type Request struct {
	// TaskIDs are the tasks to stop, order is not relevant.
	TaskIDs []string
	// User when set only the tasks owned by this user are stopped.
	User string
}

// Run stops the tasks and returns the IDs the optimizer acknowledged.
//
// Each task is routed to the stop endpoint of the method it was started with.
// Unknown and already finished tasks are skipped, remote failures are logged
// and skipped, the caller can retry them. An acknowledged stop is returned even
// if the registry could not record it.
func (s *Service) Run(ctx context.Context, req Request) ([]string, error) {
	stopped := []string{}
	seen := map[string]bool{}
	for _, id := range req.TaskIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		logger := s.logger.WithValues(log.Kv{"task": id})
		ok, err := s.stopTask(ctx, logger, id, req.User)
		if err != nil {
			if ctx.Err() != nil {
				return stopped, ctx.Err()
			}
			logger.Errorf("Could not stop task: %s", err)
			continue
		}
		if ok {
			stopped = append(stopped, id)
		}
	}

	s.logger.Infof("Stopped %d of %d tasks", len(stopped), len(req.TaskIDs))
	return stopped, nil
}

func (s *Service) stopTask(ctx context.Context, logger log.Logger, id, user string) (bool, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Debugf("Task not registered, ignoring")
			return false, nil
		}
		return false, fmt.Errorf("could not get task: %w", err)
	}

	if user != "" && task.Owner != user {
		logger.Warningf("Task is not owned by %s, ignoring", user)
		return false, nil
	}

	if task.Status.IsTerminal() {
		logger.Debugf("Task already %s, ignoring", task.Status)
		return false, nil
	}

	m, err := s.methods.Get(task.Method)
	if err != nil {
		return false, err
	}

	if err := s.optimizer.Stop(ctx, m, task.ID); err != nil {
		return false, fmt.Errorf("remote stop failed: %w", err)
	}

	from := task.Status
	task.Status = model.TaskStatusStopped
	task.UpdatedAt = s.timeNow().UTC()
	if err := s.repo.UpdateTask(ctx, *task, from); err != nil {
		if errors.Is(err, model.ErrConflict) {
			logger.Warningf("Remote task stopped but the task changed meanwhile: %s", err)
		} else {
			logger.Errorf("Remote task stopped but could not be recorded: %s", err)
		}
	}

	return true, nil
}
