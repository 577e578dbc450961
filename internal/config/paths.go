package config

import (
	"os"
	"path/filepath"
)

// EnvConfigFile overrides the config file location.
const EnvConfigFile = "FRESH_CONFIG"

// Paths contains standard filesystem paths for fresh-init.
type Paths struct {
	// ConfigFile is the path to the config file (~/.fresh/config.yaml).
	ConfigFile string

	// HomeDir is the fresh home directory (~/.fresh).
	HomeDir string
}

// DefaultPaths returns the default paths.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	freshHome := filepath.Join(homeDir, ".fresh")

	return &Paths{
		ConfigFile: filepath.Join(freshHome, "config.yaml"),
		HomeDir:    freshHome,
	}, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// ~username is not supported.
	return path, nil
}
