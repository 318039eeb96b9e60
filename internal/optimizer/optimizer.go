// Package optimizer has the contract of the remote optimizer that runs the
// blend evaluation jobs.
package optimizer

import (
	"context"

	"github.com/slok/blendeval/internal/model"
)

// Client knows how to talk with the remote optimizer endpoints of a method.
type Client interface {
	// Start starts a remote job with the parameter bundle and returns the remote assigned task ID.
	Start(ctx context.Context, method model.MethodDescriptor, bundle *model.Row) (taskID string, err error)
	// Progress returns the progress of a remote job, nil progress means the remote has no data yet.
	Progress(ctx context.Context, method model.MethodDescriptor, taskID string) (*model.Progress, error)
	// Stop asks the remote optimizer to stop a job.
	Stop(ctx context.Context, method model.MethodDescriptor, taskID string) error
}
