// Package twind generates utility-class stylesheets for server-rendered
// pages. Only the classes a page actually uses are emitted.
package twind

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the contents of twind.config.yaml.
type Config struct {
	// Preflight prepends a small reset stylesheet.
	Preflight bool `yaml:"preflight"`

	// Rules adds or replaces utilities: class name to CSS declarations.
	Rules map[string]string `yaml:"rules"`
}

// DefaultConfig enables preflight and adds no rules.
func DefaultConfig() *Config {
	return &Config{Preflight: true}
}

// LoadConfig reads a YAML config file. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading twind config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML config. Empty input yields DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing twind config: %w", err)
	}
	for class, decl := range cfg.Rules {
		if class == "" || decl == "" {
			return nil, fmt.Errorf("rule %q: class and declarations must be non-empty", class)
		}
	}
	return cfg, nil
}
