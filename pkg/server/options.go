package server

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Option configures a Server. Options override the environment.
type Option func(*options)

type options struct {
	envFile         string
	port            *int
	host            *string
	staticDir       *string
	shutdownTimeout *time.Duration
	twind           *string
	stdout          io.Writer
	logger          *log.Logger
}

// WithPort sets the listen port. Zero picks a free port.
func WithPort(port int) Option {
	return func(o *options) { o.port = &port }
}

// WithHost sets the listen host. Empty listens on all interfaces.
func WithHost(host string) Option {
	return func(o *options) { o.host = &host }
}

// WithStaticDir sets the directory served for unmatched GET requests.
func WithStaticDir(dir string) Option {
	return func(o *options) { o.staticDir = &dir }
}

// WithShutdownTimeout bounds graceful shutdown in Run.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) { o.shutdownTimeout = &d }
}

// WithTwind enables utility CSS configured by the YAML file at path.
func WithTwind(path string) Option {
	return func(o *options) { o.twind = &path }
}

// WithEnvFile sets the dotenv file read at startup. Empty disables it.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithStdout sets where the readiness line is printed.
func WithStdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithLogger sets the logger for lifecycle and request failures.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func (o *options) apply(cfg *Config) {
	if o.port != nil {
		cfg.Port = *o.port
	}
	if o.host != nil {
		cfg.Host = *o.host
	}
	if o.staticDir != nil {
		cfg.StaticDir = *o.staticDir
	}
	if o.shutdownTimeout != nil {
		cfg.ShutdownTimeout = *o.shutdownTimeout
	}
	if o.twind != nil {
		cfg.TwindConfig = *o.twind
	}
}
