package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches a *StatusError with status 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork wraps transport failures.
	ErrNetwork = errors.New("network error")

	// ErrEmptyCredentials is returned when a username or password is blank.
	ErrEmptyCredentials = errors.New("username and password are required")

	// ErrNotFound is returned when a lookup yields no result.
	ErrNotFound = errors.New("not found")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int

	// Message is the server's error text, if it sent one.
	Message string
}

// Error implements error.
func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, msg)
}

// Is reports whether target is ErrUnauthorized and the status is 401.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}
