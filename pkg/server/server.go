// Package server runs a fresh project: it serves the manifest's pages and
// API routes, the island client runtime, and static files.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Sumangal44/fresh/pkg/fresh"
	"github.com/Sumangal44/fresh/pkg/island"
	"github.com/Sumangal44/fresh/pkg/twind"
)

// State is a point in the server lifecycle.
type State int32

const (
	Starting State = iota
	Listening
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Listening:
		return "listening"
	case ShuttingDown:
		return "shutting down"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ReadyPrefix starts the line printed once the socket is bound.
const ReadyPrefix = "Listening on http://"

// Server serves one manifest.
type Server struct {
	manifest *fresh.Manifest
	cfg      Config
	sheet    *twind.Sheet
	stdout   io.Writer
	logger   *log.Logger

	app   *fx.App
	fiber *fiber.App

	state     atomic.Int32
	ready     chan struct{}
	readyOnce sync.Once
	serveErr  chan error

	mu   sync.Mutex
	addr net.Addr
}

// New validates manifest and configuration and builds the application.
// Nothing is bound until Start.
func New(manifest *fresh.Manifest, opts ...Option) (*Server, error) {
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	o := &options{envFile: DefaultEnvFile}
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := LoadConfig(o.envFile)
	if err != nil {
		return nil, err
	}
	o.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		manifest: manifest,
		cfg:      cfg,
		stdout:   o.stdout,
		logger:   o.logger,
		ready:    make(chan struct{}),
		serveErr: make(chan error, 1),
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "fresh"})
	}

	if cfg.TwindConfig != "" {
		tc, err := twind.LoadConfig(cfg.TwindConfig)
		if err != nil {
			return nil, err
		}
		s.sheet = twind.New(tc)
	}

	s.app = fx.New(
		fx.Supply(s),
		fx.Provide(newFiberApp, newStaticHandler),
		fx.Invoke(registerRoutes),
		fx.WithLogger(func() fxevent.Logger { return &fxLogger{logger: s.logger} }),
	)
	if err := s.app.Err(); err != nil {
		return nil, fmt.Errorf("building server: %w", err)
	}
	return s, nil
}

// Start binds the listener and begins serving. It returns once the
// readiness line has been printed.
func (s *Server) Start(ctx context.Context) error {
	if s.State() != Starting {
		return fmt.Errorf("server already %s", s.State())
	}
	return s.app.Start(ctx)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	switch s.State() {
	case Stopped, ShuttingDown:
		return nil
	case Starting:
		s.setState(Stopped)
		return nil
	}
	return s.app.Stop(ctx)
}

// Ready is closed when the server enters Listening.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// State reports the lifecycle state.
func (s *Server) State() State { return State(s.state.Load()) }

// Config returns the resolved configuration.
func (s *Server) Config() Config { return s.cfg }

// Fiber exposes the underlying app, mainly for app.Test in tests.
func (s *Server) Fiber() *fiber.App { return s.fiber }

// Addr is the bound address, or nil before Listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// URL is the base URL clients should use, or "" before Listening.
func (s *Server) URL() string {
	addr, ok := s.Addr().(*net.TCPAddr)
	if !ok {
		return ""
	}
	host := s.cfg.Host
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(addr.Port)) + "/"
}

func (s *Server) setState(st State) {
	s.state.Store(int32(st))
}

// Run serves manifest until SIGINT, SIGTERM or ctx cancellation, then shuts
// down gracefully.
func Run(ctx context.Context, manifest *fresh.Manifest, opts ...Option) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := New(manifest, opts...)
	if err != nil {
		return err
	}
	if err := s.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-s.serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return errors.Join(serveErr, s.Shutdown(shutdownCtx))
}

func newFiberApp(lc fx.Lifecycle, s *Server) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         false,
		ErrorHandler:          s.handleError,
	})
	s.fiber = app

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)))
			if err != nil {
				return fmt.Errorf("listening: %w", err)
			}
			s.mu.Lock()
			s.addr = ln.Addr()
			s.mu.Unlock()

			s.setState(Listening)
			s.readyOnce.Do(func() {
				fmt.Fprintf(s.stdout, "Listening on %s\n", s.URL())
				close(s.ready)
			})

			go func() {
				if err := app.Listener(ln); err != nil && s.State() == Listening {
					s.logger.Error("serve failed", "err", err)
					s.serveErr <- err
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.setState(ShuttingDown)
			s.logger.Debug("shutting down", "addr", s.Addr())
			err := app.ShutdownWithContext(ctx)
			s.setState(Stopped)
			if err != nil {
				return fmt.Errorf("shutting down: %w", err)
			}
			return nil
		},
	})
	return app
}

func registerRoutes(app *fiber.App, s *Server, static *staticHandler) {
	app.Use(fiberrecover.New())
	app.Use(s.logRequest)
	app.Use(static.Handle)

	app.Get(island.ClientScriptPath, func(c *fiber.Ctx) error {
		c.Type("js", "utf-8")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		return c.Send(island.ClientScript)
	})

	for _, r := range s.manifest.Routes {
		if r.Handler != nil {
			app.All(r.Pattern, r.Handler)
			continue
		}
		app.Get(r.Pattern, s.pageHandler(r.Page))
	}
}

func (s *Server) pageHandler(page fresh.PageFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := make(map[string]string, len(c.Route().Params))
		for _, name := range c.Route().Params {
			params[name] = c.Params(name)
		}

		ctx := fresh.NewPageContext(params)
		body, err := page(ctx)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := fresh.RenderDocument(&buf, ctx, body, fresh.DocumentOptions{Sheet: s.sheet}); err != nil {
			return err
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	}
}

func (s *Server) logRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request", "method", c.Method(), "path", c.Path(),
		"status", c.Response().StatusCode(), "duration", time.Since(start))
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).SendString(fe.Message)
	}
	s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
}
