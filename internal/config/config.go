// Package config loads and saves the TOML dotfile consumed by the rxx CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mevdschee/rxx/internal/rxxerr"
)

// Hooks holds shell commands run on lifecycle events.
type Hooks struct {
	FileReceived string `toml:"file_received"`
}

// Config mirrors $HOME/.rxx.conf.
type Config struct {
	UserID    string `toml:"user_id"`
	ServerURL string `toml:"server_url"`
	Nonce     string `toml:"nonce"`
	Hooks     Hooks  `toml:"hooks"`
}

// Path returns the default config file location, $HOME/.rxx.conf.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".rxx.conf"), nil
}

// Load reads and parses the config file at path. A missing file is
// reported as ConfigMissing, directing the caller toward `register`.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Config{}, rxxerr.New(rxxerr.ConfigMissing, fmt.Sprintf("no config at %s; run `rxx register` first", path))
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, rxxerr.Wrap(rxxerr.ConfigMissing, fmt.Errorf("parse %s: %w", path, err))
	}
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions (it may carry a
// registry nonce).
func Save(path string, cfg Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open %s for writing: %w", path, err)
	}
	defer f.Close()
	if err := f.Chmod(0600); err != nil {
		return fmt.Errorf("restrict permissions of %s: %w", path, err)
	}

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
