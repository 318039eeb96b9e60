package storage

import (
	"context"
	"time"

	"github.com/slok/blendeval/internal/model"
)

// TaskListOpts are the options to filter the listed tasks.
type TaskListOpts struct {
	// Owner when set only returns the tasks of this user.
	Owner string
	// Status when set only returns the tasks on this status.
	Status model.TaskStatus
	// UpdatedBefore when set only returns the tasks not updated since this time.
	UpdatedBefore *time.Time
}

// TaskRepository is the task registry, it's the durable record of the launched remote jobs.
// Tasks are never deleted.
type TaskRepository interface {
	CreateTask(ctx context.Context, t model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	// UpdateTask replaces a task only when its stored status is still `from`,
	// otherwise it returns model.ErrConflict.
	UpdateTask(ctx context.Context, t model.Task, from model.TaskStatus) error
	// ListTasks returns the tasks ordered by creation time, newest first.
	ListTasks(ctx context.Context, opts TaskListOpts) ([]model.Task, error)
}

// ConfigurationRepository stores the saved parameter sets of users.
type ConfigurationRepository interface {
	SaveConfiguration(ctx context.Context, c model.ConfigurationSnapshot) error
	// GetLatestConfiguration returns the most recent configuration of a user for a module.
	GetLatestConfiguration(ctx context.Context, owner, module string) (*model.ConfigurationSnapshot, error)
}

// ReferenceRepository is the reference data store.
type ReferenceRepository interface {
	SaveReferenceItem(ctx context.Context, item model.ReferenceItem) error
	// GetReferenceItems returns the found items, missing IDs are ignored.
	GetReferenceItems(ctx context.Context, ids []int64) ([]model.ReferenceItem, error)
}

// Repository groups all the storage concerns.
type Repository interface {
	TaskRepository
	ConfigurationRepository
	ReferenceRepository
}
