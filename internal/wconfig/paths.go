package wconfig

import (
	"os"
	"path/filepath"
)

// ConfigDir returns whirr's configuration directory, respecting
// XDG_CONFIG_HOME. Defaults to ~/.config/whirr.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "whirr"), nil
}

// DefaultConfigPath returns the default location of whirr.toml.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "whirr.toml", err
	}
	return filepath.Join(dir, "whirr.toml"), nil
}

// DefaultDataDir returns the default run-directory root, respecting
// XDG_DATA_HOME. Defaults to ~/.local/share/whirr.
func DefaultDataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "whirr"), nil
}
