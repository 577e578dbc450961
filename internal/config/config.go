// Package config provides configuration loading and management.
package config

import (
	"github.com/Sumangal44/fresh/internal/features"
)

// RuntimeConfig controls how generated projects depend on the fresh runtime.
type RuntimeConfig struct {
	// Version is the runtime version written to the generated go.mod.
	// Env: FRESH_RUNTIME_VERSION, Default: the tool's own release version.
	Version string `json:"version,omitempty" mapstructure:"version"`

	// Replace points the generated go.mod at a local runtime checkout.
	// Env: FRESH_RUNTIME_REPLACE
	Replace string `json:"replace,omitempty" mapstructure:"replace"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Override with --timestamps.
	Timestamps *bool `json:"timestamps,omitempty" mapstructure:"timestamps"`
}

// DefaultsConfig holds answers for feature questions so they need not be asked.
type DefaultsConfig struct {
	Twind  *bool `json:"twind,omitempty" mapstructure:"twind"`
	VSCode *bool `json:"vscode,omitempty" mapstructure:"vscode"`
}

// Config represents the fresh-init configuration file (~/.fresh/config.yaml).
type Config struct {
	Runtime  RuntimeConfig  `json:"runtime" mapstructure:"runtime"`
	Log      LogConfig      `json:"log" mapstructure:"log"`
	Defaults DefaultsConfig `json:"defaults" mapstructure:"defaults"`
}

// DefaultConfig returns a Config with no preferences recorded.
func DefaultConfig() *Config {
	return &Config{}
}

// FeatureDefault returns the configured answer for f, or nil when the config
// file is silent about it.
func (c *Config) FeatureDefault(f features.Flag) *bool {
	if c == nil {
		return nil
	}
	switch f {
	case features.Twind:
		return c.Defaults.Twind
	case features.VSCode:
		return c.Defaults.VSCode
	default:
		return nil
	}
}
