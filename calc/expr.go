package calc

import (
	"context"
	"maps"
	"os"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/builtin"
)

// ExprEvaluator evaluates expressions with github.com/expr-lang/expr.
//
// Each expression is compiled against the current environment, so a
// reference to an unbound name is a compile error unless AllowUndefined is
// set, in which case it evaluates to nil.
type ExprEvaluator struct {
	AllowUndefined bool
}

// Eval implements [Evaluator].
func (x *ExprEvaluator) Eval(
	ctx context.Context,
	expression string,
	env *Env,
) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vars := exprEnv(env)

	opts := []expr.Option{expr.Env(vars)}
	if x.AllowUndefined {
		opts = append(opts, expr.AllowUndefinedVariables())
	}

	program, err := expr.Compile(expression, opts...)
	if err != nil {
		return nil, err
	}

	return expr.Run(program, vars)
}

// Functions implements [Evaluator].
func (x *ExprEvaluator) Functions() []string {
	names := make([]string, 0, len(builtin.Builtins)+2)
	for _, fn := range builtin.Builtins {
		names = append(names, fn.Name)
	}

	for ns, members := range exprBuiltins() {
		m, ok := members.(map[string]any)
		if !ok {
			names = append(names, ns)

			continue
		}

		for name := range m {
			names = append(names, ns+"."+name)
		}
	}

	return sortedDistinct(names)
}

// exprEnv merges the built-in namespaces with the bindings of env.
// Bindings shadow built-ins of the same name.
func exprEnv(env *Env) map[string]any {
	vars := exprBuiltins()
	if env != nil {
		maps.Copy(vars, env.vars)
	}

	return vars
}

// exprBuiltins returns a fresh copy of the functions added to expr's own.
func exprBuiltins() map[string]any {
	return map[string]any{
		// Delimited-list manipulation via mung.
		"mung": map[string]any{
			"prefix":   mungPrefix,
			"prefixif": mungPrefixIf,
		},
	}
}

// mungPrefix prepends items to the delimited list held in subject.
func mungPrefix(subject string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// mungPrefixIf is [mungPrefix] keeping only items accepted by predicate.
func mungPrefixIf(
	subject string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}
