package storage

import "errors"

// Common errors for key-value store operations.
var (
	ErrNotFound      = errors.New("key not found")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvalidDriver = errors.New("invalid storage driver")
)
