package lib

import (
	"context"
	"fmt"

	"github.com/slok/blendeval/internal/app/list"
	"github.com/slok/blendeval/internal/app/progress"
	"github.com/slok/blendeval/internal/app/reap"
	"github.com/slok/blendeval/internal/app/start"
	"github.com/slok/blendeval/internal/app/stop"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/resultview"
)

// StartTasks starts one task per method using the latest configuration saved
// by the owner for the module. Methods that fail to start are skipped, so the
// result can be empty.
//
// Returns [ErrNotFound] if the owner has no configuration for the module.
func (c *Client) StartTasks(ctx context.Context, owner, module string) ([]StartedTask, error) {
	svc, err := start.NewService(start.ServiceConfig{
		Repository: c.repo,
		Optimizer:  c.optimizer,
		Methods:    c.methods,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	started, err := svc.Run(ctx, start.Request{User: owner, Module: module})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalStartedList(started), nil
}

// StopTasks stops the running tasks of the owner and returns the stopped IDs.
// Unknown, finished or foreign tasks are ignored.
func (c *Client) StopTasks(ctx context.Context, owner string, taskIDs []string) ([]string, error) {
	svc, err := stop.NewService(stop.ServiceConfig{
		Repository: c.repo,
		Optimizer:  c.optimizer,
		Methods:    c.methods,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	stopped, err := svc.Run(ctx, stop.Request{TaskIDs: taskIDs, User: owner})
	if err != nil {
		return nil, mapError(err)
	}

	return stopped, nil
}

// GetProgress returns a page of the task progress, with the reference IDs of
// the results replaced by their names.
// Pass nil opts for defaults.
//
// Returns [ErrNotFound] if the task does not exist or belongs to another owner.
func (c *Client) GetProgress(ctx context.Context, taskID string, opts *ProgressOpts) (*Progress, error) {
	if opts == nil {
		opts = &ProgressOpts{}
	}

	svc, err := progress.NewService(progress.ServiceConfig{
		Repository: c.repo,
		Optimizer:  c.optimizer,
		Methods:    c.methods,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	order := resultview.OrderAsc
	if opts.Descending {
		order = resultview.OrderDesc
	}

	page, err := svc.Run(ctx, progress.Request{
		TaskID:   taskID,
		User:     opts.Owner,
		Sort:     opts.Sort,
		Order:    order,
		Page:     opts.Page,
		PageSize: opts.PageSize,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalProgressPage(*page)
}

// ListTasks lists the tasks, newest first.
// Pass nil opts to list every task.
func (c *Client) ListTasks(ctx context.Context, opts *ListTasksOpts) ([]Task, error) {
	if opts == nil {
		opts = &ListTasksOpts{}
	}

	svc, err := list.NewService(list.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := list.Request{User: opts.Owner}
	if opts.Status != nil {
		s, err := model.ParseTaskStatus(string(*opts.Status))
		if err != nil {
			return nil, mapError(err)
		}
		req.StatusFilter = &s
	}

	tasks, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalTaskList(tasks), nil
}

// ReapStaleTasks checks the running tasks without updates for a while against
// the optimizer once, recording finished and lost ones. It returns the number
// of checked tasks.
func (c *Client) ReapStaleTasks(ctx context.Context) (int, error) {
	svc, err := reap.NewService(reap.ServiceConfig{
		Repository: c.repo,
		Optimizer:  c.optimizer,
		Methods:    c.methods,
		Logger:     c.logger,
	})
	if err != nil {
		return 0, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx)
	if err != nil {
		return 0, mapError(err)
	}

	return res.Checked, nil
}
