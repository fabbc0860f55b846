package errors

import "errors"

var (
	ErrNotFound = errors.New("scheduled item not found")

	ErrInvalidID = errors.New("invalid scheduled item ID format")

	ErrLockHeld = errors.New("resource lock is held by another writer")
)
