package calc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ardnew/fxyaml/formula"
	"github.com/ardnew/fxyaml/log"
	"github.com/ardnew/fxyaml/pkg"
)

// Predefined errors (sentinel values).
var (
	ErrEvaluate = pkg.NewError("formula evaluation failed")
	ErrCanceled = pkg.NewError("evaluation canceled")

	// ErrUnrepresentable is the cause of a [Failure] whose formula produced
	// a value that cannot be encoded as JSON, such as NaN or ±Inf.
	ErrUnrepresentable = pkg.NewError("result is not representable as JSON")
)

// Failure reports the formula that stopped an evaluation.
//
// errors.Is(f, [ErrEvaluate]) is true for every Failure.
type Failure struct {
	Formula formula.Entry
	Message string

	err error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("error on formula %q (=%s): %s",
		f.Formula.Name, f.Formula.Expression, f.Message)
}

// Unwrap returns the evaluator's error.
func (f *Failure) Unwrap() error { return f.err }

// Is reports whether target is [ErrEvaluate].
func (f *Failure) Is(target error) bool { return target == ErrEvaluate }

// LogValue implements slog.LogValuer.
func (f *Failure) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrEvaluate.Message()),
		slog.String("cause", f.Message),
		slog.Any("formula", f.Formula),
	)
}

// Outcome is the value produced by one formula.
type Outcome struct {
	Formula formula.Entry
	Value   any
}

// Result is the outcome of an evaluation.
//
// Outcomes holds one element per evaluated formula, in position order. Env
// is the environment after the last evaluated formula.
type Result struct {
	Outcomes []Outcome
	Env      *Env
}

// Evaluate runs entries in order against a new environment seeded from
// initial, storing each value under its formula's name.
//
// Evaluation stops at the first formula that fails, and the returned error
// is a [*Failure] naming it. Result still holds the outcomes and environment
// up to that point; callers must not report them as a success.
func Evaluate(
	ctx context.Context,
	ev Evaluator,
	entries []formula.Entry,
	initial map[string]any,
) (Result, error) {
	return EvaluateEnv(ctx, ev, entries, NewEnv(initial))
}

// EvaluateEnv is [Evaluate] using env as the starting environment.
// env is updated in place and returned in Result.
func EvaluateEnv(
	ctx context.Context,
	ev Evaluator,
	entries []formula.Entry,
	env *Env,
) (Result, error) {
	logger := log.FromContext(ctx)
	res := Result{
		Outcomes: make([]Outcome, 0, len(entries)),
		Env:      env,
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, ErrCanceled.Wrap(err)
		}

		var (
			out Outcome
			err error
		)

		res.Env, out, err = step(ctx, ev, res.Env, e)
		if err != nil {
			logger.WarnContext(ctx, "formula failed", slog.Any("error", err))

			return res, err
		}

		logger.TraceContext(ctx, "formula evaluated",
			slog.Any("formula", e),
			slog.Any("value", out.Value),
		)

		res.Outcomes = append(res.Outcomes, out)
	}

	return res, nil
}

// step evaluates a single formula and binds its value in env.
func step(
	ctx context.Context,
	ev Evaluator,
	env *Env,
	e formula.Entry,
) (*Env, Outcome, error) {
	v, err := ev.Eval(ctx, e.Expression, env)
	if err != nil {
		if ctx.Err() != nil {
			return env, Outcome{}, ErrCanceled.Wrap(err)
		}

		return env, Outcome{}, &Failure{Formula: e, Message: err.Error(), err: err}
	}

	if _, err := json.Marshal(v); err != nil {
		err = ErrUnrepresentable.Wrap(err)

		return env, Outcome{}, &Failure{Formula: e, Message: err.Error(), err: err}
	}

	env.Set(e.Name, v)

	return env, Outcome{Formula: e, Value: v}, nil
}
