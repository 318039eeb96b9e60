package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/slok/blendeval/internal/model"
)

// SaveReferenceItem creates or replaces a reference item.
func (r *Repository) SaveReferenceItem(ctx context.Context, item model.ReferenceItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid reference item: %w", err)
	}

	comp := item.Composition
	if comp == nil {
		comp = map[string]float64{}
	}
	compJSON, err := json.Marshal(comp)
	if err != nil {
		return fmt.Errorf("could not encode composition: %w", err)
	}

	query := `
		INSERT INTO reference_items (id, name, composition)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, composition = excluded.composition
	`
	if _, err := r.db.ExecContext(ctx, query, item.ID, item.Name, string(compJSON)); err != nil {
		return fmt.Errorf("could not upsert reference item: %w", err)
	}

	r.logger.Debugf("Saved reference item: %d", item.ID)
	return nil
}

// GetReferenceItems returns the items found for the IDs, ordered by ID.
func (r *Repository) GetReferenceItems(ctx context.Context, ids []int64) ([]model.ReferenceItem, error) {
	items := []model.ReferenceItem{}
	if len(ids) == 0 {
		return items, nil
	}

	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}

	query := `SELECT id, name, composition FROM reference_items WHERE id IN (` + strings.Join(placeholders, ", ") + `) ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query reference items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.ReferenceItem
		var comp string
		if err := rows.Scan(&item.ID, &item.Name, &comp); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(comp), &item.Composition); err != nil {
			return nil, fmt.Errorf("could not decode reference item %d composition: %w", item.ID, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}
