package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrMissingUser     = errors.New("user id is required")
	ErrNoResume        = errors.New("user has no resume")
	ErrNoUnread        = errors.New("no unread job posting")

	// ErrInvalidExecContext is returned by repositories handed an unknown
	// transaction handle type.
	ErrInvalidExecContext = errors.New("invalid execution context")
)
