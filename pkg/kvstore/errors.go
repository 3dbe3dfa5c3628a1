package kvstore

import "errors"

// Common errors returned by stores.
var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("key not found")

	// ErrInvalidKey is returned when a key is empty or not usable by the driver.
	ErrInvalidKey = errors.New("invalid key")

	// ErrClosed is returned when using a store after Close.
	ErrClosed = errors.New("store is closed")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown storage driver")
)
