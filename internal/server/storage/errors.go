package storage

import "errors"

// Common storage errors
var (
	// ErrCenterNotFound indicates that center was not found in the directory
	ErrCenterNotFound = errors.New("center not found")

	// ErrCenterAlreadyExists indicates that center with this id already exists
	ErrCenterAlreadyExists = errors.New("center already exists")

	// ErrInvalidCenterID indicates that center id does not map to its own namespace
	ErrInvalidCenterID = errors.New("invalid center id")
)
