package shared

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvUserDataDir aligns with the shell's app.getPath("userData") and forces the backend
	// to use the exact same directory.
	EnvUserDataDir = "STRIX_USER_DATA_DIR"
)

// UserDataRoot returns the per-user data root directory.
//
// Default (no EnvUserDataDir):
// - Linux: ~/.config/Strix
// - macOS: ~/Library/Application Support/Strix
// - Windows: %APPDATA%\Strix
func UserDataRoot() string {
	if configured := strings.TrimSpace(os.Getenv(EnvUserDataDir)); configured != "" {
		return absPath(configured)
	}

	base, err := os.UserConfigDir()
	if err == nil && strings.TrimSpace(base) != "" {
		return absPath(filepath.Join(base, "Strix"))
	}

	home, err := os.UserHomeDir()
	if err == nil && strings.TrimSpace(home) != "" {
		return absPath(filepath.Join(home, ".strix"))
	}

	if tmp := strings.TrimSpace(os.TempDir()); tmp != "" {
		return absPath(filepath.Join(tmp, "Strix"))
	}

	return ""
}

// DefaultStatePath browser-settings 存储的默认路径
func DefaultStatePath() string {
	root := UserDataRoot()
	if strings.TrimSpace(root) == "" {
		// Extremely unlikely; keep a relative fallback.
		return filepath.Join("data", "browser-settings.json")
	}
	return filepath.Join(root, "data", "browser-settings.json")
}

func absPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
