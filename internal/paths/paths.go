// Package paths provides a single source of truth for chimera file paths.
// All path helpers honor environment variable overrides for isolated testing.
//
// Path resolution precedence:
//  1. CHIMERA_LOG_PATH overrides the log file directly
//  2. CHIMERA_DIR sets the base directory (derives config and log paths)
//  3. Default behavior (~/.chimera, ~/.config/chimera) when no env vars are set
package paths

import (
	"os"
	"path/filepath"
)

// Environment variable names for path overrides.
const (
	// EnvChimeraDir is the base directory override (e.g., /tmp/chimera-test).
	EnvChimeraDir = "CHIMERA_DIR"

	// EnvLogPath overrides the log file path directly.
	EnvLogPath = "CHIMERA_LOG_PATH"
)

// BaseDir returns the chimera base directory (~/.chimera by default).
// Honors CHIMERA_DIR.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvChimeraDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chimera"), nil
}

// ConfigDir returns the chimera config directory (~/.config/chimera by default).
// When CHIMERA_DIR is set, returns CHIMERA_DIR/config instead.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvChimeraDir); dir != "" {
		return filepath.Join(dir, "config"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chimera"), nil
}

// ConfigPath returns the path to the global config file
// (~/.config/chimera/config.toml by default, or CHIMERA_DIR/config/config.toml).
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the log file path.
// Precedence: CHIMERA_LOG_PATH > CHIMERA_DIR/chimera.log > ~/.chimera/chimera.log
func LogPath() string {
	if path := os.Getenv(EnvLogPath); path != "" {
		return path
	}
	base, err := BaseDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "chimera.log")
	}
	return filepath.Join(base, "chimera.log")
}
