package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/blendeval/internal/model"
)

// SaveConfiguration stores a new configuration snapshot, previous ones are kept.
func (r *Repository) SaveConfiguration(ctx context.Context, c model.ConfigurationSnapshot) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.ID == "" {
		c.ID = ulid.Make().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	refIDs := c.ReferenceIDs
	if refIDs == nil {
		refIDs = []int64{}
	}
	refIDsJSON, err := json.Marshal(refIDs)
	if err != nil {
		return fmt.Errorf("could not encode reference ids: %w", err)
	}
	settings, err := encodeRow(c.Settings)
	if err != nil {
		return fmt.Errorf("could not encode settings: %w", err)
	}

	query := `
		INSERT INTO configurations (id, owner, module, reference_ids, settings, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, c.ID, c.Owner, c.Module, string(refIDsJSON), settings, c.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("could not insert configuration: %w", err)
	}

	r.logger.Debugf("Saved configuration %s for %s/%s", c.ID, c.Owner, c.Module)
	return nil
}

// GetLatestConfiguration returns the most recent configuration of a user for a module.
func (r *Repository) GetLatestConfiguration(ctx context.Context, owner, module string) (*model.ConfigurationSnapshot, error) {
	query := `
		SELECT id, owner, module, reference_ids, settings, created_at
		FROM configurations
		WHERE owner = ? AND module = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`

	var c model.ConfigurationSnapshot
	var refIDs, settings string
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, owner, module).Scan(
		&c.ID,
		&c.Owner,
		&c.Module,
		&refIDs,
		&settings,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("configuration for %s/%s: %w", owner, module, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query configuration: %w", err)
	}

	if err := json.Unmarshal([]byte(refIDs), &c.ReferenceIDs); err != nil {
		return nil, fmt.Errorf("could not decode reference ids: %w", err)
	}
	c.Settings, err = decodeRow(settings)
	if err != nil {
		return nil, fmt.Errorf("could not decode settings: %w", err)
	}
	c.CreatedAt = timeFromUnix(createdAt)

	return &c, nil
}
