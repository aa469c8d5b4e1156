package store

import "errors"

var (
	// ErrNotFound indicates the requested story or version does not exist.
	ErrNotFound = errors.New("story not found")
	// ErrRetired is returned when publishing to a retired story. Restore it
	// first.
	ErrRetired = errors.New("story is retired")
)
