// Package settingspath locates the keywordping settings file.
package settingspath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvSettings is the environment variable naming the settings file.
const EnvSettings = "KEYWORDPING_SETTINGS"

// DefaultFileName is the settings file created under the user config dir.
const DefaultFileName = "settings.yaml"

// ErrNotFound is returned when no settings location can be determined.
var ErrNotFound = errors.New("settings location not found")

// userConfigDir is swapped in tests.
var userConfigDir = os.UserConfigDir

// DefaultPath returns <user config dir>/keywordping/settings.yaml.
func DefaultPath() (string, error) {
	base, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if base == "" {
		return "", ErrNotFound
	}
	return filepath.Join(base, "keywordping", DefaultFileName), nil
}

// Find returns the settings file path.
//
// Priority:
//  1. explicit (if non-empty)
//  2. KEYWORDPING_SETTINGS environment variable
//  3. DefaultPath()
//
// The file does not need to exist; stores create it on first save.
// A path that exists but is a directory is rejected.
func Find(explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return validate(explicit)
	}

	if env := strings.TrimSpace(os.Getenv(EnvSettings)); env != "" {
		path, err := validate(env)
		if err != nil {
			return "", fmt.Errorf("%s: %w", EnvSettings, err)
		}
		return path, nil
	}

	path, err := DefaultPath()
	if err != nil {
		return "", err
	}
	return validate(path)
}

// IsSQLite reports whether path selects the SQLite store.
func IsSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	default:
		return false
	}
}

func validate(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving settings path: %w", err)
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return abs, nil
	case err != nil:
		return "", fmt.Errorf("checking settings path: %w", err)
	case info.IsDir():
		return "", fmt.Errorf("%w: %s is a directory", ErrNotFound, filepath.Base(abs))
	}
	return abs, nil
}
