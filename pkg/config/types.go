// Package config provides configuration management for the vault CLI.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (including a .env file in the working directory)
// 3. Configuration file
// 4. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("API: %s\n", cfg.API.BaseURL)
package config

import (
	"time"
)

// Storage drivers accepted by StorageConfig.Driver.
const (
	DriverBolt   = "bolt"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Bounds for SessionConfig.HistorySize.
const (
	MinHistorySize = 1
	MaxHistorySize = 50
)

// Config represents the complete application configuration.
//
// Invariants:
// - API.BaseURL and API.CardBaseURL must be set
// - API.Timeout and Storage.Timeout must be > 0
// - Storage.Driver must be a known driver with its location set
// - Session.HistorySize must be within [MinHistorySize, MaxHistorySize].
type Config struct {
	// Remote API settings
	API APIConfig `yaml:"api"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Session settings
	Session SessionConfig `yaml:"session"`

	// Display settings
	Display DisplayConfig `yaml:"display"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig contains the remote endpoints.
type APIConfig struct {
	// Base URL of the collection/deck API
	BaseURL string `yaml:"base_url"`

	// Base URL of the public card API
	CardBaseURL string `yaml:"card_base_url"`

	// Per-request timeout
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Driver selects the store (bolt, file, redis, memory)
	Driver string `yaml:"driver"`

	// Path to BoltDB database file
	DBPath string `yaml:"db_path"`

	// Directory for the file driver
	Dir string `yaml:"dir"`

	// Redis connection URL
	RedisURL string `yaml:"redis_url"`

	// Key prefix for the redis driver
	KeyPrefix string `yaml:"key_prefix"`

	// Timeout for opening the store
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig contains session settings.
type SessionConfig struct {
	// Number of visited cards kept
	HistorySize int `yaml:"history_size"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	// Default output format (table, json, simple)
	DefaultFormat string `yaml:"default_format"`

	// Enable colored output
	ColorEnabled bool `yaml:"color_enabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
//
// Thread-safety: This method is read-only and thread-safe.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" || c.API.CardBaseURL == "" {
		return ErrMissingAPIURL
	}
	if c.API.Timeout <= 0 {
		return ErrInvalidAPITimeout
	}

	switch c.Storage.Driver {
	case DriverBolt:
		if c.Storage.DBPath == "" {
			return ErrMissingStorageLocation
		}
	case DriverFile:
		if c.Storage.Dir == "" {
			return ErrMissingStorageLocation
		}
	case DriverRedis:
		if c.Storage.RedisURL == "" {
			return ErrMissingStorageLocation
		}
	case DriverMemory:
	default:
		return ErrInvalidStorageDriver
	}
	if c.Storage.Timeout <= 0 {
		return ErrInvalidStorageTimeout
	}

	if c.Session.HistorySize < MinHistorySize || c.Session.HistorySize > MaxHistorySize {
		return ErrInvalidHistorySize
	}

	validFormats := map[string]bool{
		"table":  true,
		"json":   true,
		"simple": true,
	}
	if !validFormats[c.Display.DefaultFormat] {
		return ErrInvalidDisplayFormat
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8082",
			CardBaseURL: "https://api.scryfall.com",
			Timeout:     10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:    DriverBolt,
			DBPath:    defaultDBPath(),
			Dir:       defaultStoreDir(),
			KeyPrefix: "vault",
			Timeout:   1 * time.Second,
		},
		Session: SessionConfig{
			HistorySize: 6,
		},
		Display: DisplayConfig{
			DefaultFormat: "table",
			ColorEnabled:  true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Output: "stderr",
			Format: "text",
		},
	}
}
