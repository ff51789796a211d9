package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "idctl"
	defaultConfigFile    = "config.yaml"
	defaultStoreDirName  = "tokens"
)

func DefaultConfigPath() string {
	if env := os.Getenv("IDCTL_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".idctl", defaultConfigFile)
}

// DefaultStoreDir is where the file-backed credential store keeps its data.
func DefaultStoreDir() string {
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultStoreDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".idctl", defaultStoreDirName)
}
