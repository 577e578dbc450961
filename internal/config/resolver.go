package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Sumangal44/fresh/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceNone means no source supplied a value.
	SourceNone ConfigSource = ""
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// Environment variables consulted by the resolver.
const (
	EnvRuntimeVersion = "FRESH_RUNTIME_VERSION"
	EnvRuntimeReplace = "FRESH_RUNTIME_REPLACE"
	EnvTwind          = "FRESH_TWIND"
	EnvVSCode         = "FRESH_VSCODE"
	EnvTimestamps     = "FRESH_LOG_TIMESTAMPS"
)

// ResolvedValue records the winning value for a key and the values it shadowed.
type ResolvedValue struct {
	Key      string
	Value    any
	Source   ConfigSource
	Shadowed map[ConfigSource]any
}

// Decided reports whether any source supplied the value.
func (r ResolvedValue) Decided() bool {
	return r.Source != SourceNone
}

// String returns the value as a string, or "" when it is not one.
func (r ResolvedValue) String() string {
	s, _ := r.Value.(string)
	return s
}

// Bool returns the value as a bool, or false when it is not one.
func (r ResolvedValue) Bool() bool {
	b, _ := r.Value.(bool)
	return b
}

// StringOptions describes the candidates for a string setting.
type StringOptions struct {
	Key string
	// Flag is nil when the flag was not given on the command line.
	Flag    *string
	EnvVar  string
	Config  string
	Default string
}

// ResolveString resolves a string setting using precedence
// flag > env > config > default. Empty strings count as unset.
func ResolveString(opts StringOptions) ResolvedValue {
	candidates := []struct {
		source ConfigSource
		value  string
		set    bool
	}{
		{SourceFlag, deref(opts.Flag), opts.Flag != nil && *opts.Flag != ""},
		{SourceEnv, os.Getenv(opts.EnvVar), opts.EnvVar != "" && os.Getenv(opts.EnvVar) != ""},
		{SourceConfig, opts.Config, opts.Config != ""},
		{SourceDefault, opts.Default, opts.Default != ""},
	}

	result := ResolvedValue{Key: opts.Key, Shadowed: map[ConfigSource]any{}}
	for _, c := range candidates {
		if !c.set {
			continue
		}
		if result.Source == SourceNone {
			result.Value = c.value
			result.Source = c.source
			continue
		}
		result.Shadowed[c.source] = c.value
	}
	if result.Source == SourceNone {
		result.Value = ""
	}
	return result
}

// BoolOptions describes the candidates for a boolean setting. There is no
// default: an undecided result lets the caller ask the user.
type BoolOptions struct {
	Key string
	// Flag is nil when the flag was not given on the command line.
	Flag   *bool
	EnvVar string
	Config *bool
}

// ResolveBool resolves a boolean setting using precedence flag > env > config.
// An environment value that does not parse as a bool is an error.
func ResolveBool(opts BoolOptions) (ResolvedValue, error) {
	var env *bool
	if opts.EnvVar != "" {
		if raw, ok := os.LookupEnv(opts.EnvVar); ok && raw != "" {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return ResolvedValue{}, fmt.Errorf("%s: %q is not a boolean", opts.EnvVar, raw)
			}
			env = &b
		}
	}

	candidates := []struct {
		source ConfigSource
		value  *bool
	}{
		{SourceFlag, opts.Flag},
		{SourceEnv, env},
		{SourceConfig, opts.Config},
	}

	result := ResolvedValue{Key: opts.Key, Value: false, Shadowed: map[ConfigSource]any{}}
	for _, c := range candidates {
		if c.value == nil {
			continue
		}
		if result.Source == SourceNone {
			result.Value = *c.value
			result.Source = c.source
			continue
		}
		result.Shadowed[c.source] = *c.value
	}
	return result, nil
}

// ResolveConfigPath resolves the config file path using precedence
// --config flag > FRESH_CONFIG > ~/.fresh/config.yaml. Without a home
// directory there is no default file, and the result is empty unless the
// flag or the environment names one.
func ResolveConfigPath(flagValue string) ResolvedValue {
	var def string
	if paths, err := DefaultPaths(); err == nil {
		def = paths.ConfigFile
	} else {
		output.Debug("no default config file", "error", err)
	}

	var flag *string
	if flagValue != "" {
		flag = &flagValue
	}
	return ResolveString(StringOptions{
		Key:     "config",
		Flag:    flag,
		EnvVar:  EnvConfigFile,
		Default: def,
	})
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values ...ResolvedValue) {
	for _, v := range values {
		if !v.Decided() {
			output.Debug("config value unset", "key", v.Key)
			continue
		}
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
