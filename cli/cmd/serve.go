package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/ardnew/fxyaml/log"
	"github.com/ardnew/fxyaml/server"
)

// Serve runs the HTTP service until interrupted.
type Serve struct {
	Addr              string        `default:"${addrDefault}"    help:"Listen address."                             short:"a"`
	MaxBody           int64         `default:"${maxBodyDefault}" help:"Maximum request body size in bytes."`
	ReadHeaderTimeout time.Duration `default:"10s"               help:"Time allowed to read request headers."`
	ShutdownTimeout   time.Duration `default:"5s"                help:"Time allowed for in-flight requests on shutdown."`
	Profiler          bool          `                            help:"Expose runtime profiling endpoints under /debug."`
}

// Run executes the serve command.
func (s *Serve) Run(ctx context.Context) error {
	c, err := calculatorFrom(ctx)
	if err != nil {
		return err
	}

	if ktx := kongContextFrom(ctx); ktx != nil {
		log.DebugContext(ctx, "serve",
			slog.String("config", ktx.Model.Vars()[ConfigIdentifier]),
			slog.String("addr", s.Addr),
			slog.Int64("max_body", s.MaxBody),
			slog.Bool("profiler", s.Profiler),
		)
	}

	srv, err := server.New(server.Config{
		Calculator:        c,
		Addr:              s.Addr,
		MaxBodyBytes:      s.MaxBody,
		ReadHeaderTimeout: s.ReadHeaderTimeout,
		ShutdownTimeout:   s.ShutdownTimeout,
		Logger:            log.Default(),
		Profiler:          s.Profiler,
	})
	if err != nil {
		return err
	}

	return srv.Serve(ctx)
}
