package calc

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

// StarlarkEvaluator evaluates each formula as a single Starlark expression.
//
// Environment bindings are converted to Starlark values with [GoToStarlark]
// and the result is converted back with [StarlarkToGo].
type StarlarkEvaluator struct {
	AllowUndefined bool
}

// Eval implements [Evaluator].
func (s *StarlarkEvaluator) Eval(
	ctx context.Context,
	expression string,
	env *Env,
) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	globals, err := starlarkGlobals(env)
	if err != nil {
		return nil, err
	}

	thread := &starlark.Thread{
		Name:  "formula",
		Print: func(*starlark.Thread, string) {},
	}

	stop := context.AfterFunc(ctx, func() { thread.Cancel(ctx.Err().Error()) })
	defer stop()

	fileOpts := &syntax.FileOptions{}

	if s.AllowUndefined {
		globals, err = s.bindUndefined(fileOpts, expression, globals)
		if err != nil {
			return nil, err
		}
	}

	v, err := starlark.EvalOptions(fileOpts, thread, "formula", expression, globals)
	if err != nil {
		return nil, err
	}

	return StarlarkToGo(v)
}

// bindUndefined binds every free name of expression that is not a global or
// universal to None.
func (s *StarlarkEvaluator) bindUndefined(
	opts *syntax.FileOptions,
	expression string,
	globals starlark.StringDict,
) (starlark.StringDict, error) {
	e, err := opts.ParseExpr("formula", expression, 0)
	if err != nil {
		return nil, err
	}

	syntax.Walk(e, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok {
			if _, bound := globals[id.Name]; !bound && !starlark.Universe.Has(id.Name) {
				globals[id.Name] = starlark.None
			}
		}

		return true
	})

	return globals, nil
}

// Functions implements [Evaluator].
func (s *StarlarkEvaluator) Functions() []string {
	var names []string

	for name, v := range starlark.Universe {
		if _, ok := v.(starlark.Callable); ok {
			names = append(names, name)
		}
	}

	for name, v := range starlarkBuiltins() {
		if m, ok := v.(*starlarkstruct.Module); ok {
			for member := range m.Members {
				names = append(names, name+"."+member)
			}

			continue
		}

		names = append(names, name)
	}

	return sortedDistinct(names)
}

func starlarkGlobals(env *Env) (starlark.StringDict, error) {
	globals := starlarkBuiltins()
	if env == nil {
		return globals, nil
	}

	for _, name := range slices.Sorted(maps.Keys(env.vars)) {
		v, err := GoToStarlark(env.vars[name])
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}

		globals[name] = v
	}

	return globals, nil
}

func starlarkBuiltins() starlark.StringDict {
	return starlark.StringDict{
		"mung": &starlarkstruct.Module{
			Name: "mung",
			Members: starlark.StringDict{
				"prefix":   starlark.NewBuiltin("mung.prefix", starlarkMungPrefix),
				"prefixif": starlark.NewBuiltin("mung.prefixif", starlarkMungPrefixIf),
			},
		},
		"now": starlark.NewBuiltin("now", starlarkNow),
	}
}

func starlarkMungPrefix(
	_ *starlark.Thread,
	b *starlark.Builtin,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}

	strs, err := starlarkStrings(b, args)
	if err != nil {
		return nil, err
	}

	if len(strs) == 0 {
		return nil, fmt.Errorf("%s: missing argument for subject", b.Name())
	}

	return starlark.String(mungPrefix(strs[0], strs[1:]...)), nil
}

func starlarkMungPrefixIf(
	thread *starlark.Thread,
	b *starlark.Builtin,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}

	if len(args) < 2 {
		return nil, fmt.Errorf("%s: want subject and predicate", b.Name())
	}

	pred, ok := args[1].(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("%s: predicate is %s, not callable", b.Name(), args[1].Type())
	}

	strs, err := starlarkStrings(b, append(starlark.Tuple{args[0]}, args[2:]...))
	if err != nil {
		return nil, err
	}

	var callErr error

	out := mungPrefixIf(strs[0], func(item string) bool {
		if callErr != nil {
			return false
		}

		v, err := starlark.Call(thread, pred, starlark.Tuple{starlark.String(item)}, nil)
		if err != nil {
			callErr = err

			return false
		}

		return bool(v.Truth())
	}, strs[1:]...)

	if callErr != nil {
		return nil, callErr
	}

	return starlark.String(out), nil
}

func starlarkNow(
	_ *starlark.Thread,
	b *starlark.Builtin,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}

	return starlark.String(time.Now().Format(time.RFC3339Nano)), nil
}

func starlarkStrings(b *starlark.Builtin, args starlark.Tuple) ([]string, error) {
	strs := make([]string, len(args))
	for i, a := range args {
		s, ok := starlark.AsString(a)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is %s, not string", b.Name(), i+1, a.Type())
		}

		strs[i] = s
	}

	return strs, nil
}

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: nil, string, bool, signed and unsigned integers, floats,
// json.Number, time.Time, []string, []any, and map[string]any.
func GoToStarlark(v any) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil

	case string:
		return starlark.String(val), nil

	case bool:
		return starlark.Bool(val), nil

	case int:
		return starlark.MakeInt(val), nil

	case int8:
		return starlark.MakeInt64(int64(val)), nil

	case int16:
		return starlark.MakeInt64(int64(val)), nil

	case int32:
		return starlark.MakeInt64(int64(val)), nil

	case int64:
		return starlark.MakeInt64(val), nil

	case uint:
		return starlark.MakeUint(val), nil

	case uint8:
		return starlark.MakeUint64(uint64(val)), nil

	case uint16:
		return starlark.MakeUint64(uint64(val)), nil

	case uint32:
		return starlark.MakeUint64(uint64(val)), nil

	case uint64:
		return starlark.MakeUint64(val), nil

	case float32:
		return starlark.Float(val), nil

	case float64:
		return starlark.Float(val), nil

	case json.Number:
		if i, err := val.Int64(); err == nil {
			return starlark.MakeInt64(i), nil
		}

		f, err := val.Float64()
		if err != nil {
			return nil, err
		}

		return starlark.Float(f), nil

	case time.Time:
		return starlark.String(val.Format(time.RFC3339Nano)), nil

	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}

		return starlark.NewList(list), nil

	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}

			list[i] = sv
		}

		return starlark.NewList(list), nil

	case map[string]any:
		dict := starlark.NewDict(len(val))
		for _, k := range slices.Sorted(maps.Keys(val)) {
			sv, err := GoToStarlark(val[k])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}

			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}

		return dict, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// StarlarkToGo converts a Starlark value to a JSON-compatible Go value:
// nil, string, bool, int64, float64, []any, or map[string]any. Integers
// too large for int64 become their decimal string; other values become
// their Starlark string representation.
func StarlarkToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil

	case starlark.String:
		return string(val), nil

	case starlark.Bool:
		return bool(val), nil

	case starlark.Int:
		if i64, ok := val.Int64(); ok {
			return i64, nil
		}

		return val.String(), nil

	case starlark.Float:
		return float64(val), nil

	case starlark.Indexable: // *List, Tuple, and other sequences
		result := make([]any, val.Len())
		for i := range val.Len() {
			gv, err := StarlarkToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}

			result[i] = gv
		}

		return result, nil

	case *starlark.Dict:
		result := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}

			gv, err := StarlarkToGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", string(key), err)
			}

			result[string(key)] = gv
		}

		return result, nil

	default:
		return val.String(), nil
	}
}
