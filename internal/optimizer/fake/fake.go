// Package fake has an in-memory optimizer that simulates remote jobs, used
// to run the service without a real optimizer and on tests.
package fake

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/optimizer"
)

const (
	defaultResults = 12
	defaultSteps   = 3
)

// OptimizerConfig is the fake optimizer configuration.
type OptimizerConfig struct {
	// Results is the number of result rows each job produces.
	Results int
	// Steps is the number of progress polls until a job is completed.
	Steps int
	// FailingMethods are the methods that will reject the start calls.
	FailingMethods []string
	// Logger for logging.
	Logger log.Logger
}

func (c *OptimizerConfig) defaults() error {
	if c.Results <= 0 {
		c.Results = defaultResults
	}
	if c.Steps <= 0 {
		c.Steps = defaultSteps
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "optimizer.fake"})
	return nil
}

type job struct {
	method    string
	materials []string
	polls     int
	stopped   bool
}

// Optimizer is an in-memory optimizer.
type Optimizer struct {
	results int
	steps   int
	logger  log.Logger

	mu      sync.Mutex
	jobs    map[string]*job
	failing map[string]bool
}

// NewOptimizer returns a new fake optimizer.
func NewOptimizer(cfg OptimizerConfig) (*Optimizer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	failing := map[string]bool{}
	for _, m := range cfg.FailingMethods {
		failing[m] = true
	}

	return &Optimizer{
		results: cfg.Results,
		steps:   cfg.Steps,
		logger:  cfg.Logger,
		jobs:    map[string]*job{},
		failing: failing,
	}, nil
}

var _ optimizer.Client = &Optimizer{}

func (o *Optimizer) Start(ctx context.Context, method model.MethodDescriptor, bundle *model.Row) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.failing[method.Name] {
		return "", fmt.Errorf("method %s rejected the job: %w", method.Name, model.ErrRemoteUnreachable)
	}

	var materials []string
	if v, ok := bundle.Get("materials"); ok {
		if obj, ok := v.AsObject(); ok {
			materials = obj.Keys()
		}
	}

	id := ulid.Make().String()
	o.jobs[id] = &job{method: method.Name, materials: materials}
	o.logger.Debugf("Fake job %s started on method %s", id, method.Name)

	return id, nil
}

func (o *Optimizer) Progress(ctx context.Context, method model.MethodDescriptor, taskID string) (*model.Progress, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	j, ok := o.jobs[taskID]
	if !ok || j.method != method.Name {
		return nil, nil
	}

	if !j.stopped && j.polls < o.steps {
		j.polls++
	}

	status := "running"
	switch {
	case j.stopped:
		status = "stopped"
	case j.polls >= o.steps:
		status = "completed"
	}

	// Results grow with each poll until the job is completed.
	n := o.results * j.polls / o.steps
	results := make([]*model.Row, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, o.resultRow(j, i))
	}

	return &model.Progress{
		Status:   status,
		Progress: model.Int(int64(j.polls)),
		Total:    model.Int(int64(o.steps)),
		Results:  results,
	}, nil
}

func (o *Optimizer) Stop(ctx context.Context, method model.MethodDescriptor, taskID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	j, ok := o.jobs[taskID]
	if !ok || j.method != method.Name {
		return fmt.Errorf("job %s on method %s: %w", taskID, method.Name, model.ErrRemoteUnreachable)
	}
	j.stopped = true

	return nil
}

// SetFailing sets if a method should reject new jobs.
func (o *Optimizer) SetFailing(method string, fail bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failing[method] = fail
}

func (o *Optimizer) resultRow(j *job, i int) *model.Row {
	r := model.NewRow().Set("rank", model.Int(int64(i+1)))

	materialID := model.Null()
	if len(j.materials) > 0 {
		m := j.materials[i%len(j.materials)]
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			materialID = model.Int(id)
		} else {
			materialID = model.String(m)
		}
	}
	r.Set("material_id", materialID)

	ratio := float64((i*37)%100) / 100
	total := float64(100+(i*53)%90) + ratio
	r.Set("ratio", model.Number(ratio))
	r.Set("cost", model.Object(model.NewRow().
		Set("total", model.Number(total)).
		Set("freight", model.Number(float64(10+i%7)))))

	return r
}
