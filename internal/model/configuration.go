package model

import (
	"fmt"
	"time"
)

// ConfigurationSnapshot is a saved parameter set of a user for a calculation module.
type ConfigurationSnapshot struct {
	ID           string
	Owner        string
	Module       string
	ReferenceIDs []int64
	// Settings holds free-form sections, usually keyed by method name.
	Settings  *Row
	CreatedAt time.Time
}

// Validate validates the configuration snapshot.
func (c *ConfigurationSnapshot) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("owner is required: %w", ErrNotValid)
	}
	if c.Module == "" {
		return fmt.Errorf("module is required: %w", ErrNotValid)
	}
	return nil
}

// Copy returns a deep copy so callers can mutate it without touching the stored one.
func (c ConfigurationSnapshot) Copy() ConfigurationSnapshot {
	cp := c
	if c.ReferenceIDs != nil {
		cp.ReferenceIDs = append([]int64(nil), c.ReferenceIDs...)
	}
	cp.Settings = c.Settings.Clone()
	return cp
}
