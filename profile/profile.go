package profile

import (
	"log/slog"

	"github.com/ardnew/fxyaml/pkg"
)

var (
	ErrUnknownMode = pkg.NewError("unknown profiling mode")
	ErrDisabled    = pkg.NewError("profiling not compiled in (build with -tags " + Tag + ")")
)

// Stopper stops a running profiler. Stop is safe to call more than once.
type Stopper interface{ Stop() }

type config struct {
	mode  string
	dir   string
	quiet bool
}

// Option configures a profiler started with [Start].
type Option func(config) config

// WithMode selects the profiling mode. See [Modes].
func WithMode(mode string) Option {
	return func(c config) config {
		c.mode = mode

		return c
	}
}

// WithDir sets the directory profiles are written to.
func WithDir(dir string) Option {
	return func(c config) config {
		c.dir = dir

		return c
	}
}

// WithQuiet suppresses the profiler's own log output.
func WithQuiet(quiet bool) Option {
	return func(c config) config {
		c.quiet = quiet

		return c
	}
}

// Start starts a profiler configured by opts.
//
// An empty mode returns a no-op Stopper. A mode not listed by [Modes] is
// an [ErrUnknownMode], or [ErrDisabled] when built without the pprof tag.
func Start(opts ...Option) (Stopper, error) {
	var c config
	for _, opt := range opts {
		c = opt(c)
	}

	if c.mode == "" {
		return ignore{}, nil
	}

	return start(c)
}

func errUnknownMode(mode string) error {
	return ErrUnknownMode.With(slog.String("mode", mode))
}

type ignore struct{}

func (ignore) Stop() {}
