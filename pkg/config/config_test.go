package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets the override variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"VAULT_API_URL", "VAULT_CARD_API_URL", "VAULT_STORAGE_DRIVER", "VAULT_DB",
		"VAULT_STORE_DIR", "VAULT_REDIS_URL", "VAULT_HISTORY_SIZE", "VAULT_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.API.BaseURL != "http://localhost:8082" {
		t.Errorf("BaseURL = %s, want http://localhost:8082", cfg.API.BaseURL)
	}

	if cfg.Storage.Driver != DriverBolt {
		t.Errorf("Driver = %s, want bolt", cfg.Storage.Driver)
	}

	if !strings.HasSuffix(cfg.Storage.DBPath, "vault.db") {
		t.Errorf("DBPath = %s, want suffix vault.db", cfg.Storage.DBPath)
	}

	if cfg.Session.HistorySize != 6 {
		t.Errorf("HistorySize = %d, want 6", cfg.Session.HistorySize)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:   "valid default config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing api url",
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: ErrMissingAPIURL,
		},
		{
			name:    "zero api timeout",
			mutate:  func(c *Config) { c.API.Timeout = 0 },
			wantErr: ErrInvalidAPITimeout,
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "sqlite" },
			wantErr: ErrInvalidStorageDriver,
		},
		{
			name:    "bolt without path",
			mutate:  func(c *Config) { c.Storage.DBPath = "" },
			wantErr: ErrMissingStorageLocation,
		},
		{
			name: "file without dir",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverFile
				c.Storage.Dir = ""
			},
			wantErr: ErrMissingStorageLocation,
		},
		{
			name:    "redis without url",
			mutate:  func(c *Config) { c.Storage.Driver = DriverRedis },
			wantErr: ErrMissingStorageLocation,
		},
		{
			name: "memory needs no location",
			mutate: func(c *Config) {
				c.Storage.Driver = DriverMemory
				c.Storage.DBPath = ""
			},
		},
		{
			name:    "zero storage timeout",
			mutate:  func(c *Config) { c.Storage.Timeout = 0 },
			wantErr: ErrInvalidStorageTimeout,
		},
		{
			name:    "history size too small",
			mutate:  func(c *Config) { c.Session.HistorySize = 0 },
			wantErr: ErrInvalidHistorySize,
		},
		{
			name:    "history size too large",
			mutate:  func(c *Config) { c.Session.HistorySize = MaxHistorySize + 1 },
			wantErr: ErrInvalidHistorySize,
		},
		{
			name:    "invalid display format",
			mutate:  func(c *Config) { c.Display.DefaultFormat = "live" },
			wantErr: ErrInvalidDisplayFormat,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "invalid" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Config.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid config file",
			content: `
api:
  base_url: https://vault.example.com
  timeout: 5s
storage:
  driver: file
  dir: /tmp/vault-store
session:
  history_size: 10
display:
  default_format: json
  color_enabled: false
logging:
  level: debug
  output: stdout
  format: json
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.API.BaseURL != "https://vault.example.com" {
					t.Errorf("BaseURL = %s", cfg.API.BaseURL)
				}
				if cfg.API.Timeout != 5*time.Second {
					t.Errorf("Timeout = %v, want 5s", cfg.API.Timeout)
				}
				if cfg.Storage.Driver != DriverFile || cfg.Storage.Dir != "/tmp/vault-store" {
					t.Errorf("Storage = %+v", cfg.Storage)
				}
				if cfg.Session.HistorySize != 10 {
					t.Errorf("HistorySize = %d, want 10", cfg.Session.HistorySize)
				}
				if cfg.Display.DefaultFormat != "json" {
					t.Errorf("DefaultFormat = %s, want json", cfg.Display.DefaultFormat)
				}
				if cfg.Display.ColorEnabled {
					t.Error("ColorEnabled = true, want false")
				}
				if cfg.Logging.Level != "debug" {
					t.Errorf("LogLevel = %s, want debug", cfg.Logging.Level)
				}
			},
		},
		{
			name: "partial file keeps defaults",
			content: `
logging:
  level: error
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.API.CardBaseURL != "https://api.scryfall.com" {
					t.Errorf("CardBaseURL = %s", cfg.API.CardBaseURL)
				}
				if !cfg.Display.ColorEnabled {
					t.Error("ColorEnabled = false, want default true")
				}
				if cfg.Session.HistorySize != 6 {
					t.Errorf("HistorySize = %d, want 6", cfg.Session.HistorySize)
				}
			},
		},
		{
			name: "out of range history",
			content: `
session:
  history_size: 100
`,
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			content: `invalid: yaml: content: [`,
			wantErr: true,
		},
		{
			name:    "non-existent file",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var filePath string

			if tt.name != "non-existent file" {
				filePath = filepath.Join(tmpDir, tt.name+".yaml")
				if err := os.WriteFile(filePath, []byte(tt.content), 0600); err != nil {
					t.Fatalf("Failed to create test file: %v", err)
				}
			} else {
				filePath = filepath.Join(tmpDir, "nonexistent.yaml")
			}

			cfg, err := LoadFromFile(filePath)

			if tt.wantErr {
				if err == nil {
					t.Error("LoadFromFile() error = nil, wantErr = true")
				}
				return
			}

			if err != nil {
				t.Fatalf("LoadFromFile() error = %v", err)
			}

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := NewLoader("").LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("error = %v, want ErrConfigNotFound", err)
	}
}

func TestSave(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Logging.Level = "debug"
	cfg.Storage.Driver = DriverRedis
	cfg.Storage.RedisURL = "redis://localhost:6379/0"

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Config file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loadedCfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if loadedCfg.Logging.Level != "debug" {
		t.Errorf("Loaded config LogLevel = %s, want debug", loadedCfg.Logging.Level)
	}
	if loadedCfg.Storage.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Loaded RedisURL = %s", loadedCfg.Storage.RedisURL)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Session.HistorySize = 0

	if err := Save(cfg, filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Error("Save() error = nil, want validation error")
	}
}

func TestEnvVarOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VAULT_CARD_API_URL", "https://cards.example.com/")
	t.Setenv("VAULT_STORE_DIR", "/env/store")
	t.Setenv("VAULT_HISTORY_SIZE", "12")
	t.Setenv("VAULT_API_URL", "https://env.example.com/")
	t.Setenv("VAULT_STORAGE_DRIVER", "REDIS")
	t.Setenv("VAULT_DB", "/env/vault.db")
	t.Setenv("VAULT_REDIS_URL", "redis://env:6379/1")
	t.Setenv("VAULT_LOG_LEVEL", "DEBUG")

	l := &loader{configPath: "", envFile: ""}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %s, want https://env.example.com", cfg.API.BaseURL)
	}
	if cfg.Storage.Driver != DriverRedis {
		t.Errorf("Driver = %s, want redis", cfg.Storage.Driver)
	}
	if cfg.Storage.DBPath != "/env/vault.db" {
		t.Errorf("DBPath = %s, want /env/vault.db", cfg.Storage.DBPath)
	}
	if cfg.Storage.RedisURL != "redis://env:6379/1" {
		t.Errorf("RedisURL = %s", cfg.Storage.RedisURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.Logging.Level)
	}
	if cfg.API.CardBaseURL != "https://cards.example.com" {
		t.Errorf("CardBaseURL = %s", cfg.API.CardBaseURL)
	}
	if cfg.Storage.Dir != "/env/store" {
		t.Errorf("Dir = %s, want /env/store", cfg.Storage.Dir)
	}
	if cfg.Session.HistorySize != 12 {
		t.Errorf("HistorySize = %d, want 12", cfg.Session.HistorySize)
	}
}

func TestEnvVarInvalidHistorySize(t *testing.T) {
	for _, value := range []string{"six", "0", "51"} {
		t.Run(value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("VAULT_HISTORY_SIZE", value)

			l := &loader{}
			if _, err := l.Load(); !errors.Is(err, ErrInvalidHistorySize) {
				t.Errorf("Load() error = %v, want ErrInvalidHistorySize", err)
			}
		})
	}
}

func TestEnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "VAULT_LOG_LEVEL=error\nVAULT_API_URL=http://dotenv:9000\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	// Variables already in the environment win over the file.
	t.Setenv("VAULT_API_URL", "http://real-env:1234")

	l := &loader{envFile: envFile}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "error" {
		t.Errorf("LogLevel = %s, want error", cfg.Logging.Level)
	}
	if cfg.API.BaseURL != "http://real-env:1234" {
		t.Errorf("BaseURL = %s, want http://real-env:1234", cfg.API.BaseURL)
	}
}

func TestMissingEnvFile(t *testing.T) {
	clearEnv(t)

	l := &loader{envFile: filepath.Join(t.TempDir(), "absent.env")}
	if _, err := l.Load(); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
}

// Benchmark config loading.
func BenchmarkLoad(b *testing.B) {
	l := &loader{}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = l.Load() // nolint:errcheck
	}
}
