// Package kvstore provides the persisted key-value store used by the vault
// CLI to keep session state across process restarts.
//
// Values are opaque strings addressed by short string keys. Several
// drivers share one interface:
//
//   - bolt:   a single BoltDB file (default)
//   - file:   one file per key inside a directory (observable by the watcher)
//   - redis:  a Redis instance, for sharing state between devices
//   - memory: process-local map, for tests and dry runs
//
// Example usage:
//
//	store, err := kvstore.Open(ctx, kvstore.Config{
//	    Driver: kvstore.DriverBolt,
//	    DBPath: "~/.config/magic-vault/vault.db",
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.Set(ctx, "loginToken", raw); err != nil {
//	    log.Fatal(err)
//	}
package kvstore

import (
	"context"
	"time"
)

// Driver names a storage backend.
type Driver string

// Supported drivers.
const (
	DriverBolt   Driver = "bolt"
	DriverFile   Driver = "file"
	DriverRedis  Driver = "redis"
	DriverMemory Driver = "memory"
)

// Store is a persisted key-value store with opaque string values.
//
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns the value stored under key.
	//
	// Returns ErrNotFound if the key has never been set or was removed.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the underlying resources.
	Close() error
}

// Config contains store configuration.
type Config struct {
	// Driver selects the backend (default: bolt).
	Driver Driver

	// DBPath is the BoltDB file path (bolt driver).
	DBPath string

	// Dir is the directory holding one file per key (file driver).
	Dir string

	// RedisURL is the connection URL, e.g. redis://localhost:6379/0 (redis driver).
	RedisURL string

	// KeyPrefix namespaces keys in shared backends (redis driver, default: vault).
	KeyPrefix string

	// Timeout bounds opening the backend (default: 1 second).
	Timeout time.Duration
}
