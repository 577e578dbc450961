package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"
)

// Loader reads the config file.
type Loader struct {
	v         *viper.Viper
	validator *Validator
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return &Loader{v: viper.New(), validator: validator}, nil
}

// Load loads configuration from path. An empty path or a missing file
// yields DefaultConfig. The file is validated against the schema before it
// is unmarshaled.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := l.validator.ValidateFile(expanded); err != nil {
		return nil, fmt.Errorf("%s: %w", expanded, err)
	}

	l.v.SetConfigFile(expanded)
	l.v.SetConfigType("yaml")
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}
