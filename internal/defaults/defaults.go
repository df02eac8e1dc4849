// Package defaults provides the embedded default configuration and the
// platform data directory that holds it alongside managed browser profiles.
//
// Platform paths:
//
//	macOS:   ~/Library/Application Support/Browserd/
//	Windows: %AppData%\Browserd\
//	Linux:   ~/.config/browserd/
//
// Override with BROWSERD_DATA_DIR environment variable.
package defaults

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

//go:embed dotbrowserd/*
var defaultFiles embed.FS

// ConfigFile is the name of the config file inside the data directory.
const ConfigFile = "config.yaml"

// DataDir returns the platform-appropriate data directory.
//
// Set BROWSERD_DATA_DIR to override.
func DataDir() (string, error) {
	if dir := os.Getenv("BROWSERD_DATA_DIR"); dir != "" {
		return dir, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}

	// Linux: lowercase per XDG convention
	// macOS/Windows: title case per platform convention
	if runtime.GOOS == "linux" {
		return filepath.Join(configDir, "browserd"), nil
	}
	return filepath.Join(configDir, "Browserd"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist
// and copies default files if they're missing.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := copyDefaults(dir, false); err != nil {
		return "", err
	}

	return dir, nil
}

// Reset replaces the config files in dir with the embedded defaults.
// Browser profiles are preserved.
func Reset(dir string) error {
	return copyDefaults(dir, true)
}

func copyDefaults(dir string, overwrite bool) error {
	return fs.WalkDir(defaultFiles, "dotbrowserd", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == "dotbrowserd" {
			return nil
		}

		// embed.FS always uses forward slashes.
		relPath := strings.TrimPrefix(path, "dotbrowserd/")
		destPath := filepath.Join(dir, relPath)

		if d.IsDir() {
			return os.MkdirAll(destPath, 0755)
		}

		if !overwrite {
			if _, err := os.Stat(destPath); err == nil {
				return nil
			}
		}

		data, err := defaultFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read embedded %s: %w", path, err)
		}
		if err := os.WriteFile(destPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", destPath, err)
		}
		return nil
	})
}

// GetDefault returns the content of a default file by name.
// Example: GetDefault("config.yaml")
func GetDefault(name string) ([]byte, error) {
	return defaultFiles.ReadFile("dotbrowserd/" + name)
}

// ProfileDir returns the user data directory for a managed browser profile.
func ProfileDir(dataDir, profileName string) string {
	return filepath.Join(dataDir, "browser", profileName, "user-data")
}
