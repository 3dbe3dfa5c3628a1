package collection

import "errors"

var (
	// ErrEmptyName is returned when a collection has no name.
	ErrEmptyName = errors.New("collection name cannot be empty")

	// ErrDuplicateName is returned when a collection with the same name exists.
	ErrDuplicateName = errors.New("collection already exists")

	// ErrNotFound is returned when no collection has the given name.
	ErrNotFound = errors.New("collection not found")

	// ErrNegativeAmount is returned for a negative count or value.
	ErrNegativeAmount = errors.New("count and value must not be negative")
)
