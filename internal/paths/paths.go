// Package paths resolves where setado keeps its settings file, database and
// backups.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "setado"

// EnvHome overrides the application directory.
const EnvHome = "SETADO_HOME"

// File and directory names inside the application directory.
const (
	SettingsFileName = "config.json"
	DataDirName      = "data"
	DatabaseFileName = "todoui.db"
	BackupDirName    = "backups"
)

// platformDir holds platform lookups that tests can override.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultAppDir returns the platform-specific application directory.
//
// Linux:   $XDG_DATA_HOME/setado (fallback ~/.local/share/setado)
// macOS:   ~/Library/Application Support/setado
// Windows: %APPDATA%/setado
func DefaultAppDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appName), nil
	}

	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveAppDir returns the application directory following the precedence
// chain: flag > SETADO_HOME env > DefaultAppDir().
func ResolveAppDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvHome); env != "" {
		return filepath.Abs(env)
	}
	return DefaultAppDir()
}

// SettingsFile is the settings file location inside appDir.
func SettingsFile(appDir string) string {
	return filepath.Join(appDir, SettingsFileName)
}

// DatabaseFile is the default database location inside appDir.
func DatabaseFile(appDir string) string {
	return filepath.Join(appDir, DataDirName, DatabaseFileName)
}

// BackupDir is the default backup directory inside appDir.
func BackupDir(appDir string) string {
	return filepath.Join(appDir, DataDirName, BackupDirName)
}

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
