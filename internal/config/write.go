package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigDir returns the focusweek config directory path.
// Uses $XDG_CONFIG_HOME/focusweek if set, otherwise ~/.config/focusweek.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "focusweek")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "focusweek")
}

// WriteDefault writes the default config.toml with the built-in taxonomy
// so users have a full file to edit. Returns the config file path. Skips
// if config.toml already exists.
func WriteDefault() (string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, nil // already exists
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# focusweek configuration.\n")
	buf.WriteString("# Rules are matched in order: exact app match first, then title substrings.\n\n")
	if err := toml.NewEncoder(&buf).Encode(DefaultConfig()); err != nil {
		return "", fmt.Errorf("encode default config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}

	return path, nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
