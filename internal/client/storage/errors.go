package storage

import "errors"

// Common client storage errors
var (
	// ErrEventNotFound indicates that outbox event was not found
	ErrEventNotFound = errors.New("outbox event not found")

	// ErrSettingNotFound indicates that setting key has no value
	ErrSettingNotFound = errors.New("setting not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
