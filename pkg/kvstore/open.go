package kvstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magicvault/vault/pkg/logger"
)

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config, log logger.Logger) (Store, error) {
	switch cfg.Driver {
	case DriverBolt, "":
		return NewBolt(cfg, log)
	case DriverFile:
		return NewFile(cfg, log)
	case DriverRedis:
		return NewRedis(ctx, cfg, log)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}

// checkKey rejects empty keys and cancelled contexts before touching a backend.
func checkKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
