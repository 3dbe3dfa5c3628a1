package watcher

import "errors"

var (
	// ErrWatcherClosed is returned by Start and Stop after Close.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrAlreadyStarted is returned by Start while running.
	ErrAlreadyStarted = errors.New("watcher already started")

	// ErrNotStarted is returned by Stop when not running.
	ErrNotStarted = errors.New("watcher not started")

	// ErrCircuitBreakerOpen is sent on Errors once consecutive fsnotify
	// failures reach the threshold.
	ErrCircuitBreakerOpen = errors.New("circuit breaker open")

	// ErrInvalidPath is returned by Start when no path is a directory.
	ErrInvalidPath = errors.New("invalid watch path")
)
