package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	tasks      map[string]model.Task
	configs    []model.ConfigurationSnapshot
	references map[int64]model.ReferenceItem
	mu         sync.RWMutex
	logger     log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		tasks:      make(map[string]model.Task),
		references: make(map[int64]model.ReferenceItem),
		logger:     cfg.Logger,
	}, nil
}

// CreateTask creates a new task in the repository.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("task with id %s: %w", t.ID, model.ErrAlreadyExists)
	}

	r.tasks[t.ID] = copyTask(t)
	r.logger.Debugf("Created task in repository: %s", t.ID)

	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	taskCopy := copyTask(t)
	return &taskCopy, nil
}

// UpdateTask updates an existing task if its stored status is still `from`.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task, from model.TaskStatus) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.tasks[t.ID]
	if !ok {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrNotFound)
	}
	if current.Status != from {
		return fmt.Errorf("task %s is %s, expected %s: %w", t.ID, current.Status, from, model.ErrConflict)
	}

	r.tasks[t.ID] = copyTask(t)
	r.logger.Debugf("Updated task in repository: %s", t.ID)

	return nil
}

// ListTasks returns the tasks matching the options, newest first.
func (r *Repository) ListTasks(ctx context.Context, opts storage.TaskListOpts) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if opts.Owner != "" && t.Owner != opts.Owner {
			continue
		}
		if opts.Status != "" && t.Status != opts.Status {
			continue
		}
		if opts.UpdatedBefore != nil && !t.UpdatedAt.Before(*opts.UpdatedBefore) {
			continue
		}
		tasks = append(tasks, copyTask(t))
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// SaveConfiguration stores a new configuration snapshot, previous ones are kept.
func (r *Repository) SaveConfiguration(ctx context.Context, c model.ConfigurationSnapshot) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c = c.Copy()
	if c.ID == "" {
		c.ID = ulid.Make().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	r.configs = append(r.configs, c)
	r.logger.Debugf("Saved configuration %s for %s/%s", c.ID, c.Owner, c.Module)

	return nil
}

// GetLatestConfiguration returns the most recent configuration of a user for a module.
func (r *Repository) GetLatestConfiguration(ctx context.Context, owner, module string) (*model.ConfigurationSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.ConfigurationSnapshot
	for i := range r.configs {
		c := r.configs[i]
		if c.Owner != owner || c.Module != module {
			continue
		}
		// On same time, the last saved one wins.
		if latest == nil || !c.CreatedAt.Before(latest.CreatedAt) {
			latest = &c
		}
	}

	if latest == nil {
		return nil, fmt.Errorf("configuration for %s/%s: %w", owner, module, model.ErrNotFound)
	}

	cp := latest.Copy()
	return &cp, nil
}

// SaveReferenceItem creates or replaces a reference item.
func (r *Repository) SaveReferenceItem(ctx context.Context, item model.ReferenceItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid reference item: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.references[item.ID] = copyReferenceItem(item)
	r.logger.Debugf("Saved reference item: %d", item.ID)

	return nil
}

// GetReferenceItems returns the items found for the IDs, ordered by ID.
func (r *Repository) GetReferenceItems(ctx context.Context, ids []int64) ([]model.ReferenceItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[int64]bool{}
	items := []model.ReferenceItem{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		item, ok := r.references[id]
		if !ok {
			continue
		}
		items = append(items, copyReferenceItem(item))
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, nil
}

func copyTask(t model.Task) model.Task {
	t.Parameters = t.Parameters.Clone()
	return t
}

func copyReferenceItem(item model.ReferenceItem) model.ReferenceItem {
	comp := make(map[string]float64, len(item.Composition))
	for k, v := range item.Composition {
		comp[k] = v
	}
	item.Composition = comp
	return item
}
