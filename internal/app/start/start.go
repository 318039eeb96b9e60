package start

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/method"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/optimizer"
	"github.com/slok/blendeval/internal/reference"
	"github.com/slok/blendeval/internal/storage"
)

const (
	bundleModuleKey    = "module"
	bundleMaterialsKey = "materials"
)

// ServiceConfig is the configuration for the start service.
type ServiceConfig struct {
	Repository storage.Repository
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.start"})

	if c.TimeNowFunc == nil {
		c.TimeNowFunc = time.Now
	}

	return nil
}

// Service starts one remote optimization task per configured method.
type Service struct {
	repo      storage.Repository
	resolver  *reference.Resolver
	optimizer optimizer.Client
	methods   *method.Registry
	logger    log.Logger
	timeNow   func() time.Time
}

// NewService creates a new start service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	resolver, err := reference.NewResolver(reference.ResolverConfig{
		Repository: cfg.Repository,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create reference resolver: %w", err)
	}

	return &Service{
		repo:      cfg.Repository,
		resolver:  resolver,
		optimizer: cfg.Optimizer,
		methods:   cfg.Methods,
		logger:    cfg.Logger,
		timeNow:   cfg.TimeNowFunc,
	}, nil
}

// Request represents the start request parameters.
type Request struct {
	// User is the user starting the tasks, their latest configuration is used.
	User string
	// Module is the calculation module.
	Module string
}

func (r Request) validate() error {
	if r.User == "" {
		return fmt.Errorf("user is required: %w", model.ErrNotValid)
	}
	if r.Module == "" {
		return fmt.Errorf("module is required: %w", model.ErrNotValid)
	}
	return nil
}

// Run starts the tasks and returns the ones the optimizer accepted, in method order.
// Methods that fail are logged and skipped, an empty result is not an error.
func (s *Service) Run(ctx context.Context, req Request) ([]model.StartedTask, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	logger := s.logger.WithValues(log.Kv{"user": req.User, "module": req.Module})

	stored, err := s.repo.GetLatestConfiguration(ctx, req.User, req.Module)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("user %s module %s: %w", req.User, req.Module, model.ErrConfigurationMissing)
		}
		return nil, fmt.Errorf("could not get configuration: %w", err)
	}
	cfg := stored.Copy()

	bundle, err := s.buildBundle(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	methods := s.methods.List()
	started := make([]*model.StartedTask, len(methods))
	var wg sync.WaitGroup
	for i, m := range methods {
		wg.Add(1)
		go func(i int, m model.MethodDescriptor) {
			defer wg.Done()

			task, err := s.startMethod(ctx, req.User, m, bundle)
			if err != nil {
				logger.WithValues(log.Kv{"method": m.Name}).Errorf("Could not start task: %s", err)
				return
			}
			started[i] = task
		}(i, m)
	}
	wg.Wait()

	tasks := []model.StartedTask{}
	for _, t := range started {
		if t != nil {
			tasks = append(tasks, *t)
		}
	}

	logger.Infof("Started %d of %d tasks", len(tasks), len(methods))
	return tasks, nil
}

// startMethod is a single fan-out leg, it only touches its own task row.
func (s *Service) startMethod(ctx context.Context, user string, m model.MethodDescriptor, bundle *model.Row) (*model.StartedTask, error) {
	id, err := s.optimizer.Start(ctx, m, bundle)
	if err != nil {
		return nil, fmt.Errorf("remote start failed: %w", err)
	}

	now := s.timeNow().UTC()
	task := model.Task{
		ID:         id,
		Method:     m.Name,
		Status:     model.TaskStatusRunning,
		Parameters: bundle.Clone(),
		Owner:      user,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		// Unregistered jobs can't be stopped later.
		if serr := s.optimizer.Stop(ctx, m, id); serr != nil {
			return nil, fmt.Errorf("remote task %s started but could not be registered (%w) nor stopped: %w", id, err, serr)
		}
		return nil, fmt.Errorf("remote task %s started but could not be registered, remote task stopped: %w", id, err)
	}

	return &model.StartedTask{TaskID: id, Method: m.Name}, nil
}

// buildBundle assembles the parameters shared by all the methods: the resolved
// reference attributes plus the configuration settings sections.
func (s *Service) buildBundle(ctx context.Context, logger log.Logger, cfg model.ConfigurationSnapshot) (*model.Row, error) {
	attrs, err := s.resolver.Attributes(ctx, cfg.ReferenceIDs)
	if err != nil {
		return nil, fmt.Errorf("could not resolve reference items: %w", err)
	}

	materials := model.NewRow()
	for _, id := range reference.Distinct(cfg.ReferenceIDs) {
		a, ok := attrs[id]
		if !ok {
			logger.Warningf("Reference item %d not found, ignoring", id)
			continue
		}
		materials.Set(strconv.FormatInt(id, 10), model.Object(a))
	}

	bundle := model.NewRow().
		Set(bundleModuleKey, model.String(cfg.Module)).
		Set(bundleMaterialsKey, model.Object(materials))

	for _, k := range cfg.Settings.Keys() {
		if k == bundleModuleKey || k == bundleMaterialsKey {
			logger.Warningf("Settings section %q is reserved, ignoring", k)
			continue
		}
		v, _ := cfg.Settings.Get(k)
		bundle.Set(k, v)
	}

	return bundle, nil
}
