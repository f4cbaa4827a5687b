package config

import (
	"os"
	"path/filepath"
	goruntime "runtime"
)

const appName = "vesta"

// goos is swapped in tests.
var goos = goruntime.GOOS

// DefaultDataDir picks the store location: VESTA_DATA_DIR, then
// XDG_DATA_HOME, then the per-user application data directory for the host
// OS. Without a home directory it falls back to ./data.
func DefaultDataDir() string {
	if dir := os.Getenv("VESTA_DATA_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data"
	}
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Vesta")
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "Vesta")
		}
		return filepath.Join(home, "AppData", "Local", "Vesta")
	default:
		return filepath.Join(home, ".local", "share", appName)
	}
}
