package calc

import (
	"strings"

	"github.com/ardnew/fxyaml/tree"
)

// config holds settings shared by [Calculator] and [NewEvaluator].
type config struct {
	parser         tree.Parser
	engine         string
	allowUndefined bool
}

// Option applies a configuration option to config.
type Option func(config) config

func makeConfig(opts ...Option) config {
	cfg := config{
		parser: tree.GoccyParser{},
		engine: DefaultEngine,
	}

	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}

// WithParser sets the document parser. A nil parser selects the default.
func WithParser(p tree.Parser) Option {
	return func(c config) config {
		if p == nil {
			p = tree.GoccyParser{}
		}

		c.parser = p

		return c
	}
}

// WithEngine selects the expression engine by name; see [Engines].
// An empty name selects [DefaultEngine].
func WithEngine(name string) Option {
	return func(c config) config {
		c.engine = strings.ToLower(strings.TrimSpace(name))
		if c.engine == "" {
			c.engine = DefaultEngine
		}

		return c
	}
}

// WithAllowUndefined controls whether references to unbound names evaluate
// to nil instead of failing.
func WithAllowUndefined(allow bool) Option {
	return func(c config) config {
		c.allowUndefined = allow

		return c
	}
}
