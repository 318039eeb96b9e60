package reap

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

// DefaultTTL is the time a running task can go without updates before being checked.
const DefaultTTL = 6 * time.Hour

// ServiceConfig is the configuration for the reap service.
type ServiceConfig struct {
	Repository storage.TaskRepository
	Optimizer  optimizer.Client
	Methods    *method.Registry
	// TTL is the time without updates after a running task is considered stale.
	TTL    time.Duration
	Logger log.Logger
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

	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.reap"})

	if c.TimeNowFunc == nil {
		c.TimeNowFunc = time.Now
	}

	return nil
}

// Service reconciles stale running tasks with the remote optimizer.
//
// A running task without updates for longer than the TTL is polled once:
// a terminal remote status is recorded, a remote that still reports the job as
// alive refreshes the task, and anything else (unreachable, no data, unknown
// method) marks the task as failed.
type Service struct {
	repo      storage.TaskRepository
	optimizer optimizer.Client
	methods   *method.Registry
	ttl       time.Duration
	logger    log.Logger
	timeNow   func() time.Time
}

// NewService creates a new reap service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:      cfg.Repository,
		optimizer: cfg.Optimizer,
		methods:   cfg.Methods,
		ttl:       cfg.TTL,
		logger:    cfg.Logger,
		timeNow:   cfg.TimeNowFunc,
	}, nil
}

// Result is the summary of a reap run.
type Result struct {
	Checked  int
	Alive    []string
	Finished []string
	Failed   []string
}

// Run checks the stale tasks once.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	cutoff := s.timeNow().UTC().Add(-s.ttl)
	tasks, err := s.repo.ListTasks(ctx, storage.TaskListOpts{
		Status:        model.TaskStatusRunning,
		UpdatedBefore: &cutoff,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list stale tasks: %w", err)
	}

	res := &Result{}
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		logger := s.logger.WithValues(log.Kv{"task": t.ID, "method": t.Method})
		status := s.remoteStatus(ctx, logger, t)

		from := t.Status
		t.UpdatedAt = s.timeNow().UTC()
		t.Status = status
		if err := s.repo.UpdateTask(ctx, t, from); err != nil {
			if errors.Is(err, model.ErrConflict) {
				logger.Debugf("Stale task changed meanwhile, skipping: %s", err)
				continue
			}
			logger.Errorf("Could not update stale task: %s", err)
			continue
		}

		switch status {
		case model.TaskStatusRunning:
			res.Alive = append(res.Alive, t.ID)
		case model.TaskStatusFailed:
			logger.Warningf("Stale task marked as failed")
			res.Failed = append(res.Failed, t.ID)
		default:
			logger.Infof("Stale task finished with status %s", status)
			res.Finished = append(res.Finished, t.ID)
		}
	}

	return res, nil
}

func (s *Service) remoteStatus(ctx context.Context, logger log.Logger, t model.Task) model.TaskStatus {
	m, err := s.methods.Get(t.Method)
	if err != nil {
		logger.Errorf("Stale task can't be checked: %s", err)
		return model.TaskStatusFailed
	}

	p, err := s.optimizer.Progress(ctx, m, t.ID)
	if err != nil {
		logger.Debugf("Stale task progress failed: %s", err)
		return model.TaskStatusFailed
	}
	if p == nil {
		return model.TaskStatusFailed
	}

	status, err := model.ParseTaskStatus(p.Status)
	if err != nil {
		// Remote has data but no status we understand, the job is still there.
		return model.TaskStatusRunning
	}
	return status
}
