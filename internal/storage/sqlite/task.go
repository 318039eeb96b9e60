package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/storage"
)

const taskColumns = `id, method, status, parameters, owner, created_at, updated_at`

// CreateTask creates a new task in the registry.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	params, err := encodeRow(t.Parameters)
	if err != nil {
		return fmt.Errorf("could not encode task parameters: %w", err)
	}

	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		t.ID,
		t.Method,
		t.Status,
		params,
		t.Owner,
		t.CreatedAt.Unix(),
		t.UpdatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: tasks.") {
			return fmt.Errorf("task already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert task: %w", err)
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}

	return &t, nil
}

// UpdateTask updates an existing task if its stored status is still `from`.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task, from model.TaskStatus) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	params, err := encodeRow(t.Parameters)
	if err != nil {
		return fmt.Errorf("could not encode task parameters: %w", err)
	}

	query := `
		UPDATE tasks
		SET
			method = ?,
			status = ?,
			parameters = ?,
			owner = ?,
			created_at = ?,
			updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		t.Method,
		t.Status,
		params,
		t.Owner,
		t.CreatedAt.Unix(),
		t.UpdatedAt.Unix(),
		t.ID,
		from,
	)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		current, err := r.GetTask(ctx, t.ID)
		if err != nil {
			return err
		}
		return fmt.Errorf("task %s is %s, expected %s: %w", t.ID, current.Status, from, model.ErrConflict)
	}

	r.logger.Debugf("Updated task in repository: %s", t.ID)
	return nil
}

// ListTasks returns the tasks matching the options, newest first.
func (r *Repository) ListTasks(ctx context.Context, opts storage.TaskListOpts) ([]model.Task, error) {
	var where []string
	var args []any
	if opts.Owner != "" {
		where = append(where, "owner = ?")
		args = append(args, opts.Owner)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.UpdatedBefore != nil {
		where = append(where, "updated_at < ?")
		args = append(args, opts.UpdatedBefore.Unix())
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

func scanTask(s scanner) (model.Task, error) {
	var t model.Task
	var params string
	var createdAt, updatedAt int64

	err := s.Scan(
		&t.ID,
		&t.Method,
		&t.Status,
		&params,
		&t.Owner,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	t.Parameters, err = decodeRow(params)
	if err != nil {
		return model.Task{}, fmt.Errorf("could not decode task %s parameters: %w", t.ID, err)
	}
	t.CreatedAt = timeFromUnix(createdAt)
	t.UpdatedAt = timeFromUnix(updatedAt)

	return t, nil
}

func encodeRow(r *model.Row) (string, error) {
	if r == nil {
		return "{}", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeRow(s string) (*model.Row, error) {
	row := model.NewRow()
	if s == "" {
		return row, nil
	}
	if err := json.Unmarshal([]byte(s), row); err != nil {
		return nil, err
	}
	return row, nil
}
