package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/magicvault/vault/pkg/collection"
	"github.com/magicvault/vault/pkg/config"
	"github.com/magicvault/vault/pkg/session"
	"github.com/magicvault/vault/pkg/watcher"
)

// runWatch follows the store directory and re-renders the session whenever
// another process changes it. The session view is drawn by a store
// listener, so every state change shows up once. It returns when ctx is
// cancelled.
func (a *app) runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	debounce := fs.Duration("debounce", 100*time.Millisecond, "coalesce changes within this interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if a.cfg.Storage.Driver != config.DriverFile {
		return fmt.Errorf("watch needs the %q storage driver, configured driver is %q", config.DriverFile, a.cfg.Storage.Driver)
	}

	w, err := watcher.New(watcher.Config{DebounceInterval: *debounce}, a.log)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Start(ctx, []string{a.cfg.Storage.Dir}); err != nil {
		return fmt.Errorf("failed to watch %s: %w", a.cfg.Storage.Dir, err)
	}

	fmt.Fprintf(a.out, "Watching %s - press Ctrl+C to stop\n", a.cfg.Storage.Dir)
	fmt.Fprintln(a.out, strings.Repeat("─", 40))
	if err := a.formatter.FormatSession(a.out, a.session.Snapshot()); err != nil {
		return err
	}

	unsubscribe := a.session.Subscribe(a.renderSession)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			if err := a.handleStoreChange(ctx, event); err != nil {
				a.log.Error("failed to refresh", "key", event.Key, "error", err)
			}

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			if errors.Is(err, watcher.ErrCircuitBreakerOpen) {
				return fmt.Errorf("watch stopped: %w", err)
			}
			a.log.Warn("watcher error", "error", err)
		}
	}
}

// handleStoreChange renders the view affected by a changed key.
func (a *app) handleStoreChange(ctx context.Context, event watcher.Event) error {
	a.log.Debug("store changed", "key", event.Key, "op", event.Op)

	switch event.Key {
	case session.KeyToken, session.KeyUser, session.KeyVisitedCards:
		// Reload notifies renderSession.
		if err := a.session.Reload(ctx); err != nil {
			a.log.Warn("session partially reloaded", "error", err)
		}
		return nil

	case collection.KeyCollections:
		all, err := a.ledger.List(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "\n[%s] collections changed\n", event.Timestamp.Format("15:04:05"))
		return a.formatter.FormatCollections(a.out, all, collection.Sum(all))
	}

	return nil
}

// renderSession is the session listener used while watching.
func (a *app) renderSession(state session.State) {
	fmt.Fprintf(a.out, "\n[%s] session changed\n", time.Now().Format("15:04:05"))
	if err := a.formatter.FormatSession(a.out, state); err != nil {
		a.log.Error("failed to render session", "error", err)
	}
}
