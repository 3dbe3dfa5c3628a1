package config

import (
	"os"
	"path/filepath"
)

// appDir returns ~/.config/magic-vault, or "." without a home directory.
func appDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(homeDir, ".config", "magic-vault")
}

// defaultDBPath returns the default database file path.
//
// Returns: ~/.config/magic-vault/vault.db.
func defaultDBPath() string {
	return filepath.Join(appDir(), "vault.db")
}

// defaultStoreDir returns the default directory of the file driver.
//
// Returns: ~/.config/magic-vault/store/.
func defaultStoreDir() string {
	return filepath.Join(appDir(), "store")
}

// DefaultConfigPath returns the default configuration file path.
//
// Returns: ~/.config/magic-vault/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(appDir(), "config.yaml")
}
