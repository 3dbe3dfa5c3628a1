package kvstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/magicvault/vault/pkg/logger"
	bolt "go.etcd.io/bbolt"
)

// bucketValues holds every key of the store: key -> raw value.
var bucketValues = []byte("values")

// boltStore implements Store using a single BoltDB bucket.
type boltStore struct {
	db     *bolt.DB
	logger logger.Logger
}

// NewBolt opens (or creates) the BoltDB file at cfg.DBPath.
//
// BoltDB holds an exclusive file lock while open, so a second process
// opening the same path waits up to cfg.Timeout and then fails.
func NewBolt(cfg Config, log logger.Logger) (Store, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	dbPath := ExpandHome(cfg.DBPath)
	if dbPath == "" {
		return nil, fmt.Errorf("bolt driver: empty database path")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketValues)
		return createErr
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization error",
				"error", closeErr)
		}
		return nil, fmt.Errorf("failed to create values bucket: %w", err)
	}

	log.Debug("bolt store opened", "db_path", dbPath)

	return &boltStore{
		db:     db,
		logger: log,
	}, nil
}

// Get implements Store.Get.
func (s *boltStore) Get(ctx context.Context, key string) (string, error) {
	if err := checkKey(ctx, key); err != nil {
		return "", err
	}

	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketValues).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}

		// data is only valid inside the transaction.
		value = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

// Set implements Store.Set.
func (s *boltStore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketValues).Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
		return nil
	})
}

// Remove implements Store.Remove.
func (s *boltStore) Remove(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketValues).Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		return nil
	})
}

// Close implements Store.Close.
func (s *boltStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.logger.Debug("bolt store closed")
	return nil
}
