package pipeline

import (
	"os"
	"path/filepath"
)

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "runway")
}

// DBPath returns the default SQLite database path under dir, or under
// DataDir when dir is empty.
func DBPath(dir string) string {
	if dir == "" {
		dir = DataDir()
	}
	return filepath.Join(dir, "runway.db")
}
