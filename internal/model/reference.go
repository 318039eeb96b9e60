package model

import "fmt"

// ReferenceItem is a stored entity (e.g a raw material) resolvable by its numeric ID.
type ReferenceItem struct {
	ID          int64
	Name        string
	Composition map[string]float64
}

// Validate validates the reference item.
func (r *ReferenceItem) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("id must be positive: %w", ErrNotValid)
	}
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	return nil
}
