package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/method"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/optimizer"
	"github.com/slok/blendeval/internal/reconcile"
	"github.com/slok/blendeval/internal/reference"
	"github.com/slok/blendeval/internal/resultview"
	"github.com/slok/blendeval/internal/storage"
)

// ServiceConfig is the configuration for the progress service.
type ServiceConfig struct {
	Repository storage.Repository
	Optimizer  optimizer.Client
	Methods    *method.Registry
	// IDField is the result row field with the reference item ID, defaults to `material_id`.
	IDField string
	Logger  log.Logger
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

	if c.IDField == "" {
		c.IDField = reconcile.DefaultIDField
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.progress"})

	if c.TimeNowFunc == nil {
		c.TimeNowFunc = time.Now
	}

	return nil
}

// Service returns the enriched, sorted and paginated progress of a task.
type Service struct {
	repo      storage.Repository
	resolver  *reference.Resolver
	optimizer optimizer.Client
	methods   *method.Registry
	idField   string
	logger    log.Logger
	timeNow   func() time.Time
}

// NewService creates a new progress service.
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
		idField:   cfg.IDField,
		logger:    cfg.Logger,
		timeNow:   cfg.TimeNowFunc,
	}, nil
}

// Request represents the progress request parameters.
type Request struct {
	TaskID string
	// User when set the task must be owned by this user.
	User string
	// Sort is an optional dotted path of the result rows to sort by.
	Sort  string
	Order resultview.Order
	// Page starts at 1, zero uses the default.
	Page int
	// PageSize zero uses the default.
	PageSize int
}

func (r *Request) defaults() error {
	if r.TaskID == "" {
		return fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	if r.Page == 0 {
		r.Page = resultview.DefaultPage
	}
	if r.PageSize == 0 {
		r.PageSize = resultview.DefaultPageSize
	}
	if r.Page < 1 || r.PageSize < 1 {
		return fmt.Errorf("page and page size must be positive: %w", model.ErrNotValid)
	}

	order, err := resultview.ParseOrder(string(r.Order))
	if err != nil {
		return err
	}
	r.Order = order

	return nil
}

// Run returns the progress page of a task.
func (s *Service) Run(ctx context.Context, req Request) (*model.ProgressPage, error) {
	if err := req.defaults(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	logger := s.logger.WithValues(log.Kv{"task": req.TaskID})

	task, err := s.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", req.TaskID, model.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	if req.User != "" && task.Owner != req.User {
		return nil, fmt.Errorf("%s: %w", req.TaskID, model.ErrTaskNotFound)
	}

	m, err := s.methods.Get(task.Method)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}

	p, err := s.optimizer.Progress(ctx, m, task.ID)
	if err != nil {
		if !errors.Is(err, model.ErrMalformedRemotePayload) {
			return nil, fmt.Errorf("could not get remote progress: %w", err)
		}
		logger.Warningf("Ignoring malformed progress payload: %s", err)
		p = nil
	}
	if p == nil {
		p = &model.Progress{Status: string(model.TaskStatusRunning)}
	}

	s.observeStatus(ctx, logger, task, p.Status)

	rows := s.enrich(ctx, logger, p.Results)
	if req.Sort != "" {
		rows = resultview.Sort(rows, req.Sort, req.Order)
	}

	page, err := resultview.Paginate(rows, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	return &model.ProgressPage{
		TaskID:       task.ID,
		Method:       task.Method,
		Status:       p.Status,
		Progress:     p.Progress,
		Total:        p.Total,
		Results:      page.Rows,
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalResults: page.TotalResults,
		TotalPages:   page.TotalPages,
	}, nil
}

// enrich replaces the reference IDs with their names, a resolution failure
// returns the rows with the raw IDs.
func (s *Service) enrich(ctx context.Context, logger log.Logger, rows []*model.Row) []*model.Row {
	ids := reconcile.CollectIDs(rows, s.idField)
	names, err := s.resolver.Names(ctx, ids)
	if err != nil {
		logger.Warningf("Could not resolve reference names: %s", err)
		names = nil
	}
	return reconcile.Enrich(rows, s.idField, names)
}

// observeStatus records a terminal remote status on a running task.
func (s *Service) observeStatus(ctx context.Context, logger log.Logger, task *model.Task, remoteStatus string) {
	if task.Status != model.TaskStatusRunning || remoteStatus == "" {
		return
	}

	status, err := model.ParseTaskStatus(remoteStatus)
	if err != nil {
		logger.Debugf("Unknown remote status %q", remoteStatus)
		return
	}
	if !status.IsTerminal() {
		return
	}

	t := *task
	t.Status = status
	t.UpdatedAt = s.timeNow().UTC()
	if err := s.repo.UpdateTask(ctx, t, task.Status); err != nil {
		if errors.Is(err, model.ErrConflict) {
			logger.Debugf("Task changed meanwhile, not recording status %s: %s", status, err)
			return
		}
		logger.Errorf("Could not record task status %s: %s", status, err)
		return
	}
	logger.Infof("Task finished with status %s", status)
}
