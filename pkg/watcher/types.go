// Package watcher reports changes to keys of a file-backed kvstore.
//
// Another vault process writing to the same store directory shows up here
// as an Event naming the changed key. Bursts of writes to one key are
// debounced into a single event.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{
//	    DebounceInterval: 100 * time.Millisecond,
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx, []string{cfg.Storage.Dir}); err != nil {
//	    log.Fatal(err)
//	}
//
//	for event := range w.Events() {
//	    fmt.Printf("key %s: %s\n", event.Key, event.Op)
//	}
package watcher

import (
	"context"
	"time"
)

// Op is the kind of change last seen on a key's file.
type Op uint32

// Ops carry the same bit values as fsnotify.
const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

var opNames = map[Op]string{
	OpCreate: "CREATE",
	OpWrite:  "WRITE",
	OpRemove: "REMOVE",
	OpRename: "RENAME",
	OpChmod:  "CHMOD",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// Event reports a changed key.
type Event struct {
	// Key is the store key whose file changed.
	Key string

	// Path is the file that triggered the event.
	Path string

	// Op is the last operation seen within the debounce window.
	Op Op

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// MatchFunc maps a file path to a store key. Files it rejects are ignored.
type MatchFunc func(path string) (key string, ok bool)

// Watcher reports store key changes made by any process.
type Watcher interface {
	// Start watches the existing directories among paths and returns.
	// Delivery runs in the background until ctx ends, Stop or Close.
	Start(ctx context.Context, paths []string) error

	// Stop ends delivery. The watcher can be started again.
	Stop() error

	// Events delivers one Event per key after its burst settles.
	// Closed by Close.
	Events() <-chan Event

	// Errors delivers fsnotify failures. Closed by Close.
	Errors() <-chan error

	// Close stops the watcher for good.
	Close() error
}

// Config tunes a Watcher. Zero values select the defaults.
type Config struct {
	// DebounceInterval is the quiet period a key needs before its event
	// is emitted (default: 100ms).
	DebounceInterval time.Duration

	// Match maps file paths to keys (default: kvstore.KeyFromPath).
	Match MatchFunc

	// CircuitBreakerThreshold is the number of consecutive failures after
	// which ErrCircuitBreakerOpen is reported (default: 5).
	CircuitBreakerThreshold int
}
