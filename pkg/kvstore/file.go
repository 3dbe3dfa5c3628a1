package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/magicvault/vault/pkg/logger"
)

// FileExt is the extension of value files written by the file driver.
const FileExt = ".kv"

// fileStore implements Store with one file per key.
//
// Writes go to a temporary file that is renamed over the target, so
// readers in other processes never observe a partial value.
type fileStore struct {
	dir    string
	logger logger.Logger
	mu     sync.RWMutex
}

// NewFile creates a store rooted at cfg.Dir, creating the directory if needed.
func NewFile(cfg Config, log logger.Logger) (Store, error) {
	dir := ExpandHome(cfg.Dir)
	if dir == "" {
		return nil, fmt.Errorf("file driver: empty directory")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	log.Debug("file store opened", "dir", dir)

	return &fileStore{
		dir:    dir,
		logger: log,
	}, nil
}

// Get implements Store.Get.
func (s *fileStore) Get(ctx context.Context, key string) (string, error) {
	path, err := s.path(ctx, key)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	return string(data), nil
}

// Set implements Store.Set.
func (s *fileStore) Set(ctx context.Context, key, value string) error {
	path, err := s.path(ctx, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()         // nolint:errcheck
		_ = os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) // nolint:errcheck
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	return nil
}

// Remove implements Store.Remove.
func (s *fileStore) Remove(ctx context.Context, key string) error {
	path, err := s.path(ctx, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close implements Store.Close.
func (s *fileStore) Close() error {
	return nil
}

// path maps a key to its value file.
func (s *fileStore) path(ctx context.Context, key string) (string, error) {
	if err := checkKey(ctx, key); err != nil {
		return "", err
	}
	if strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+FileExt), nil
}

// KeyFromPath returns the key stored in a file driver value file.
//
// Returns false for temporary files and anything not written by the file driver.
func KeyFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, FileExt) {
		return "", false
	}
	return strings.TrimSuffix(base, FileExt), true
}
