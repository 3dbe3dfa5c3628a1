package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyUsername is returned by Login when the profile has no username.
	ErrEmptyUsername = errors.New("username cannot be empty")

	// ErrCorruptState is returned when a persisted value cannot be parsed.
	ErrCorruptState = errors.New("corrupt persisted session state")
)

// PersistenceError reports a failed read or write of a persisted key.
//
// When returned by a mutation, the in-memory state has already changed;
// it is not rolled back.
type PersistenceError struct {
	// Op is the store operation (initialize, login, logout, visit, clear, reload).
	Op string

	// Key is the persisted key involved.
	Key string

	// Err is the underlying store error.
	Err error
}

// Error implements error.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session %s: persist %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying store error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
