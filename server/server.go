package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/fxyaml/calc"
	"github.com/ardnew/fxyaml/log"
)

// Defaults for [Config] fields left zero.
const (
	DefaultAddr              = ":8080"
	DefaultMaxBodyBytes      = 1 << 20
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Config holds configuration for the server.
type Config struct {
	Calculator        *calc.Calculator
	Addr              string
	MaxBodyBytes      int64
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	Logger            log.Logger

	// Profiler mounts the runtime profiling endpoints under /debug.
	Profiler bool
}

// Server serves formula evaluation over HTTP.
type Server struct {
	calc   *calc.Calculator
	cfg    Config
	logger log.Logger
}

// New returns a Server for cfg. A nil Calculator is replaced by one with
// default options.
func New(cfg Config) (*Server, error) {
	if cfg.Calculator == nil {
		c, err := calc.New()
		if err != nil {
			return nil, err
		}

		cfg.Calculator = c
	}

	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	logger := cfg.Logger
	if logger.Logger == nil {
		logger = log.Default()
	}

	return &Server{
		calc:   cfg.Calculator,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "server")),
	}, nil
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		s.requestID,
		s.recoverer,
		middleware.CleanPath,
		middleware.StripSlashes,
		middleware.RequestSize(s.cfg.MaxBodyBytes),
	)

	r.Post("/calc", s.handleCalc)
	r.Post("/eval", s.handleEval)
	r.Get("/functions", s.handleFunctions)
	r.Get("/healthz", s.handleHealth)

	if s.cfg.Profiler {
		r.Mount("/debug", middleware.Profiler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Serve listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return ErrListen.Wrap(err).With(slog.String("addr", s.cfg.Addr))
	}

	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled. ln is closed on return.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	s.logger.InfoContext(ctx, "listening",
		slog.String("addr", ln.Addr().String()),
		slog.String("engine", s.calc.Engine()),
	)

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return ErrServe.Wrap(err)
		}

		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.WithoutCancel(ctx), s.cfg.ShutdownTimeout,
		)
		defer cancel()

		s.logger.DebugContext(ctx, "shutting down")

		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
