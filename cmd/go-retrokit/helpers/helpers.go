package helpers

import (
	"os"
	"path/filepath"
)

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return defaultHomeDir
	}
	return home
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	return filepath.Join(homeDir(), dirSuffix)
}

// defaultInstallRoot returns the default RetroArch install root.
func defaultInstallRoot() string {
	return filepath.Join(homeDir(), installSuffix)
}
