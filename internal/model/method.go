package model

import (
	"fmt"
	"strings"
)

// MethodDescriptor identifies one remote evaluation method and its endpoints
// on the optimizer. Paths are relative to the optimizer base URL.
type MethodDescriptor struct {
	Name         string
	StartPath    string
	ProgressPath string
	StopPath     string
}

// Validate validates the method descriptor.
func (m MethodDescriptor) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	if m.StartPath == "" {
		return fmt.Errorf("method %s start path is required: %w", m.Name, ErrNotValid)
	}
	if m.ProgressPath == "" {
		return fmt.Errorf("method %s progress path is required: %w", m.Name, ErrNotValid)
	}
	if m.StopPath == "" {
		return fmt.Errorf("method %s stop path is required: %w", m.Name, ErrNotValid)
	}
	return nil
}

func (m MethodDescriptor) StartURL(base string) string    { return joinURL(base, m.StartPath) }
func (m MethodDescriptor) ProgressURL(base string) string { return joinURL(base, m.ProgressPath) }
func (m MethodDescriptor) StopURL(base string) string     { return joinURL(base, m.StopPath) }

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
