package config

import (
	"os"
	"path/filepath"
)

var (
	homeDir string
)

func init() {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		homeDir = "~"
	}
}

// FormguardDir returns the formguard config directory path
// ~/.config/formguard/
func FormguardDir() string {
	return filepath.Join(homeDir, ".config", "formguard")
}

// ConfigPath returns the config.json file path
// ~/.config/formguard/config.json
func ConfigPath() string {
	return filepath.Join(FormguardDir(), "config.json")
}

// DefaultSiteDir returns the site directory used when none is configured
// ~/.config/formguard/site/
func DefaultSiteDir() string {
	return filepath.Join(FormguardDir(), "site")
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
