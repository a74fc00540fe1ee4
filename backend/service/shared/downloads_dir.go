package shared

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDownloadsDir returns the platform-standard user downloads directory.
// Linux/macOS/Windows all keep it under the home directory; when even the
// home directory is unknown we fall back below the user data root.
func DefaultDownloadsDir() string {
	home, err := os.UserHomeDir()
	if err == nil && strings.TrimSpace(home) != "" {
		return filepath.Join(home, "Downloads")
	}

	root := UserDataRoot()
	if strings.TrimSpace(root) != "" {
		return filepath.Join(root, "Downloads")
	}
	return "Downloads"
}
