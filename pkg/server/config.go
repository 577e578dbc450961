package server

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults for a generated project.
const (
	DefaultPort            = 8000
	DefaultStaticDir       = "static"
	DefaultEnvFile         = ".env"
	DefaultShutdownTimeout = 5 * time.Second
)

// Environment variables read by the runtime. A .env file may set them too;
// variables already present in the process environment win.
const (
	EnvPort            = "PORT"
	EnvHost            = "HOST"
	EnvStaticDir       = "FRESH_STATIC_DIR"
	EnvShutdownTimeout = "FRESH_SHUTDOWN_TIMEOUT"
)

// Config is the runtime configuration after env and options are applied.
type Config struct {
	Port            int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	Host            string        `mapstructure:"host" validate:"omitempty,hostname_rfc1123|ip"`
	StaticDir       string        `mapstructure:"static_dir" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`

	// TwindConfig is the path of twind.config.yaml. Empty disables utility CSS.
	TwindConfig string `mapstructure:"twind_config"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads envFile (if it exists) into the environment and resolves
// Config from environment variables and defaults.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("host", "")
	v.SetDefault("static_dir", DefaultStaticDir)
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("twind_config", "")

	for key, env := range map[string]string{
		"port":             EnvPort,
		"host":             EnvHost,
		"static_dir":       EnvStaticDir,
		"shutdown_timeout": EnvShutdownTimeout,
	} {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding runtime config: %w", err)
	}
	return cfg, nil
}

// Validate checks the config.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid runtime config: %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid runtime config: %w", err)
	}
	return nil
}
