// Package paths provides centralized path resolution for chatextract.
// This package has NO internal imports (only stdlib) to avoid import cycles.
// All functions return errors to allow callers to log appropriately.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	localConfigName  = "chatextract.toml"
	globalConfigName = "config.toml"
)

// BaseDir returns the chatextract base directory (~/.chatextract).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".chatextract"), nil
}

// DataPath returns a path within the data directory (~/.chatextract/<subpath>).
func DataPath(subpath string) (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, subpath), nil
}

// ConfigPath returns the active config file path.
// Priority: explicit > ./chatextract.toml > ~/.chatextract/config.toml
// Returns ("", nil) if no config exists - this is a valid state, not an error.
// An explicit path that does not exist is an error.
func ConfigPath(explicit string) (string, error) {
	if explicit != "" {
		expanded, err := ExpandTilde(explicit)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(expanded); err != nil {
			return "", fmt.Errorf("config file %s: %w", expanded, err)
		}
		return expanded, nil
	}

	if _, err := os.Stat(localConfigName); err == nil {
		absPath, err := filepath.Abs(localConfigName)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		return absPath, nil
	}

	globalPath, err := DataPath(globalConfigName)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(globalPath); err == nil {
		return globalPath, nil
	}

	return "", nil
}

// ResultsDir returns the directory result files are written to.
// An empty configured value means the system temp directory.
func ResultsDir(configured string) (string, error) {
	if configured == "" {
		return os.TempDir(), nil
	}
	return ExpandTilde(configured)
}

// EnsureDir creates a directory if it doesn't exist.
// Uses 0750 permissions (owner: rwx, group: rx, other: none).
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// ExpandTilde expands a path that starts with ~ to the user's home directory.
// Returns the path unchanged if it doesn't start with ~.
func ExpandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if len(path) == 1 {
		return home, nil
	}
	return filepath.Join(home, path[1:]), nil
}
