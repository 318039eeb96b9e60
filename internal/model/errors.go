package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrConflict is returned when a resource changed since it was read.
	ErrConflict = errors.New("conflict")

	// ErrConfigurationMissing is returned when there is no saved configuration for a user and module.
	ErrConfigurationMissing = fmt.Errorf("configuration missing: %w", ErrNotFound)
	// ErrTaskNotFound is returned when a task is not in the registry.
	ErrTaskNotFound = fmt.Errorf("task: %w", ErrNotFound)
	// ErrMethodDescriptorMissing is returned when a persisted task references a method that is not configured.
	ErrMethodDescriptorMissing = errors.New("method descriptor missing")
	// ErrRemoteUnreachable is returned when the remote optimizer could not be reached or rejected the call.
	ErrRemoteUnreachable = errors.New("remote unreachable")
	// ErrMalformedRemotePayload is returned when the remote optimizer answered with something we can't decode.
	ErrMalformedRemotePayload = errors.New("malformed remote payload")
)
