package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader builds a Config from defaults, a YAML file, a .env file and the
// environment, in that order. Later layers win.
type Loader interface {
	// Load applies every layer and validates the result.
	Load() (*Config, error)

	// LoadFromFile reads one YAML file over the defaults. No environment
	// layer and no validation.
	LoadFromFile(path string) (*Config, error)
}

type loader struct {
	configPath string
	envFile    string
}

// NewLoader returns a Loader reading configPath, or the first of
// ./config.yaml and DefaultConfigPath() that exists when configPath is
// empty. ./.env is read into the environment without replacing variables
// that are already set.
func NewLoader(configPath string) Loader {
	return &loader{
		configPath: configPath,
		envFile:    ".env",
	}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	cfg, err := l.fileLayer()
	if err != nil {
		return nil, err
	}

	if err := l.loadEnvFile(); err != nil {
		return nil, err
	}

	if cfg, err = l.applyEnvVars(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// fileLayer returns the defaults overlaid with the chosen config file, if any.
func (l *loader) fileLayer() (*Config, error) {
	path := l.configPath
	if path == "" {
		path = l.findConfigFile()
	}
	if path == "" {
		return Default(), nil
	}

	cfg, err := l.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile. Keys absent from the file
// keep their default values.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return cfg, nil
}

// loadEnvFile exports the variables of the .env file. No file, no error.
func (l *loader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}

	err := godotenv.Load(l.envFile)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", l.envFile, err)
}

func (l *loader) findConfigFile() string {
	for _, path := range []string{"./config.yaml", DefaultConfigPath()} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envOverride maps one environment variable onto the configuration.
type envOverride struct {
	name  string
	apply func(cfg *Config, value string) error
}

// envOverrides lists the supported environment variables.
var envOverrides = []envOverride{
	{"VAULT_API_URL", func(cfg *Config, v string) error {
		cfg.API.BaseURL = strings.TrimRight(v, "/")
		return nil
	}},
	{"VAULT_CARD_API_URL", func(cfg *Config, v string) error {
		cfg.API.CardBaseURL = strings.TrimRight(v, "/")
		return nil
	}},
	{"VAULT_STORAGE_DRIVER", func(cfg *Config, v string) error {
		cfg.Storage.Driver = strings.ToLower(v)
		return nil
	}},
	{"VAULT_DB", func(cfg *Config, v string) error {
		cfg.Storage.DBPath = v
		return nil
	}},
	{"VAULT_STORE_DIR", func(cfg *Config, v string) error {
		cfg.Storage.Dir = v
		return nil
	}},
	{"VAULT_REDIS_URL", func(cfg *Config, v string) error {
		cfg.Storage.RedisURL = v
		return nil
	}},
	{"VAULT_HISTORY_SIZE", func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidHistorySize, v)
		}
		cfg.Session.HistorySize = n
		return nil
	}},
	{"VAULT_LOG_LEVEL", func(cfg *Config, v string) error {
		cfg.Logging.Level = strings.ToLower(v)
		return nil
	}},
}

// applyEnvVars returns a copy of cfg with the set VAULT_* variables applied.
func (l *loader) applyEnvVars(cfg *Config) (*Config, error) {
	result := *cfg

	for _, o := range envOverrides {
		value, ok := os.LookupEnv(o.name)
		if !ok || value == "" {
			continue
		}
		if err := o.apply(&result, value); err != nil {
			return nil, fmt.Errorf("%s: %w", o.name, err)
		}
	}

	return &result, nil
}

// Load reads the configuration from the standard locations.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile reads the configuration from path, then applies the .env
// file and the environment and validates the result.
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save validates cfg and writes it as YAML to path with mode 0600,
// creating missing directories.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
