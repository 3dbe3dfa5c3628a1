package watcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/magicvault/vault/pkg/kvstore"
	"github.com/magicvault/vault/pkg/logger"
)

// watcher implements Watcher on top of fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	logger logger.Logger
	config Config

	events chan Event
	errors chan error

	mu       sync.RWMutex
	closed   bool
	cancel   context.CancelFunc // non-nil while running
	failures int

	// One pending timer per key; nil once closed.
	pendingMu sync.Mutex
	pending   map[string]*time.Timer
}

// opTable orders fsnotify operations by precedence when several are set.
var opTable = []struct {
	fs fsnotify.Op
	op Op
}{
	{fsnotify.Create, OpCreate},
	{fsnotify.Write, OpWrite},
	{fsnotify.Remove, OpRemove},
	{fsnotify.Rename, OpRename},
	{fsnotify.Chmod, OpChmod},
}

// New creates a store watcher.
func New(cfg Config, log logger.Logger) (Watcher, error) {
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = 100 * time.Millisecond
	}
	if cfg.Match == nil {
		cfg.Match = kvstore.KeyFromPath
	}
	if cfg.CircuitBreakerThreshold <= 0 {
		cfg.CircuitBreakerThreshold = 5
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &watcher{
		fsw:     fsw,
		logger:  log.With("component", "watcher"),
		config:  cfg,
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context, paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.closed:
		return ErrWatcherClosed
	case w.cancel != nil:
		return ErrAlreadyStarted
	}

	dirs, err := w.resolveDirs(paths)
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.loop(runCtx)

	w.logger.Info("watching store", "dirs", dirs, "debounce", w.config.DebounceInterval)
	return nil
}

// resolveDirs keeps the existing directories among paths.
func (w *watcher) resolveDirs(paths []string) ([]string, error) {
	dirs := make([]string, 0, len(paths))

	for _, p := range paths {
		dir := kvstore.ExpandHome(p)

		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			w.logger.Warn("watch path does not exist, skipping", "path", dir)
		case err != nil:
			return nil, fmt.Errorf("failed to stat path %s: %w", dir, err)
		case !info.IsDir():
			w.logger.Warn("watch path is not a directory, skipping", "path", dir)
		default:
			dirs = append(dirs, dir)
		}
	}

	if len(dirs) == 0 {
		return nil, ErrInvalidPath
	}
	return dirs, nil
}

// Stop implements Watcher.Stop.
func (w *watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.cancel == nil {
		return ErrNotStarted
	}

	w.cancel()
	w.cancel = nil

	w.logger.Info("watcher stopped")
	return nil
}

// Events implements Watcher.Events.
func (w *watcher) Events() <-chan Event {
	return w.events
}

// Errors implements Watcher.Errors.
func (w *watcher) Errors() <-chan error {
	return w.errors
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	w.pendingMu.Lock()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = nil
	w.pendingMu.Unlock()

	close(w.events)
	close(w.errors)

	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// loop forwards fsnotify activity until ctx ends.
func (w *watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.handleError(err)
		}
	}
}

// handleEvent maps an fsnotify event to a key and schedules it.
func (w *watcher) handleEvent(event fsnotify.Event) {
	key, ok := w.config.Match(event.Name)
	if !ok {
		return
	}

	op, ok := translateOp(event.Op)
	if !ok {
		return
	}

	w.mu.Lock()
	w.failures = 0
	w.mu.Unlock()

	w.schedule(Event{
		Key:       key,
		Path:      event.Name,
		Op:        op,
		Timestamp: time.Now(),
	})
}

func translateOp(fsOp fsnotify.Op) (Op, bool) {
	for _, m := range opTable {
		if fsOp.Has(m.fs) {
			return m.op, true
		}
	}
	return 0, false
}

// schedule emits event once no newer event for the same key arrives within
// the debounce interval.
func (w *watcher) schedule(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if w.pending == nil {
		return
	}
	if prev, ok := w.pending[event.Key]; ok {
		prev.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(w.config.DebounceInterval, func() {
		w.pendingMu.Lock()
		if w.pending[event.Key] == timer {
			delete(w.pending, event.Key)
		}
		w.pendingMu.Unlock()

		w.emit(event)
	})
	w.pending[event.Key] = timer
}

// emit delivers event unless the watcher is closed. Holding the read lock
// keeps Close from closing the channel mid-send.
func (w *watcher) emit(event Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return
	}

	select {
	case w.events <- event:
	default:
		w.logger.Warn("event channel full, dropping event", "key", event.Key)
	}
}

// handleError counts consecutive fsnotify failures. Reaching the threshold
// reports ErrCircuitBreakerOpen instead of the raw error.
func (w *watcher) handleError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	w.failures++
	w.logger.Error("fsnotify error", "error", err, "failures", w.failures)

	if w.failures >= w.config.CircuitBreakerThreshold {
		err = ErrCircuitBreakerOpen
	}

	select {
	case w.errors <- err:
	default:
		w.logger.Warn("error channel full, dropping error")
	}
}
