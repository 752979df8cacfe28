package calc

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/fxyaml/pkg"
)

// Evaluator evaluates a single expression against an environment.
//
// Eval must not modify env; storing results is the caller's job.
type Evaluator interface {
	Eval(ctx context.Context, expression string, env *Env) (any, error)

	// Functions returns the sorted names of functions callable from
	// expressions.
	Functions() []string
}

// Names of the expression engines.
const (
	EngineExpr     = "expr"
	EngineStarlark = "starlark"
)

// DefaultEngine is the engine used when none is specified.
const DefaultEngine = EngineExpr

// ErrUnknownEngine is returned for an unrecognized engine name.
var ErrUnknownEngine = pkg.NewError("unknown engine")

// Engines returns the names of all engines.
func Engines() []string {
	return []string{EngineExpr, EngineStarlark}
}

// NewEvaluator returns a new evaluator for the engine selected by opts.
// Evaluators hold no per-request state, but callers create one per request
// regardless so that no engine state is ever shared.
func NewEvaluator(opts ...Option) (Evaluator, error) {
	cfg := makeConfig(opts...)

	switch cfg.engine {
	case EngineExpr:
		return &ExprEvaluator{AllowUndefined: cfg.allowUndefined}, nil
	case EngineStarlark:
		return &StarlarkEvaluator{AllowUndefined: cfg.allowUndefined}, nil
	default:
		return nil, ErrUnknownEngine.With(
			slog.String("engine", cfg.engine),
			slog.String("valid", strings.Join(Engines(), ",")),
		)
	}
}

// Functions returns the sorted names of functions callable from formulas
// using the default engine.
func Functions() []string {
	return (&ExprEvaluator{}).Functions()
}

func sortedDistinct(names []string) []string {
	slices.Sort(names)

	return slices.Compact(names)
}
