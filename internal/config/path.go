// Package config loads fintrack settings from flags, environment, .env and
// the YAML config file.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDir returns $HOME/.config/fintrack.
func DefaultDir() string {
	return ExpandPath("~/.config/fintrack")
}

// DefaultDatabasePath returns $HOME/.local/share/fintrack/fintrack.db.
func DefaultDatabasePath() string {
	return ExpandPath("~/.local/share/fintrack/fintrack.db")
}
