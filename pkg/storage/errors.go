package storage

import "errors"

// Sentinel errors shared by all store implementations.
var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a unique field (username, email)
	// collides with an existing record.
	ErrConflict = errors.New("record already exists")
)
