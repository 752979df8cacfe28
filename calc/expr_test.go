package calc

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
)

func TestExprEvaluator_Eval(t *testing.T) {
	t.Parallel()

	env := NewEnv(map[string]any{
		"X":     1,
		"price": 2.5,
		"name":  "fx",
		"items": []any{1, 2, 3},
		"cfg":   map[string]any{"debug": true},
	})

	tests := []struct {
		name    string
		expr    string
		want    any
		wantErr bool
	}{
		{"literal", "1", 1, false},
		{"arithmetic", "X + 1", 2, false},
		{"float", "price * 2", 5.0, false},
		{"string", `upper(name) + "!"`, "FX!", false},
		{"builtin", "sum(items)", 6, false},
		{"member", "cfg.debug", true, false},
		{"unknown name", "Y + 1", nil, true},
		{"syntax", "bad(", nil, true},
		{"empty", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := (&ExprEvaluator{}).Eval(context.Background(), tt.expr, env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Eval(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}

			if !tt.wantErr && got != tt.want {
				t.Errorf("Eval(%q) = %v (%T), want %v (%T)", tt.expr, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestExprEvaluator_AllowUndefined(t *testing.T) {
	t.Parallel()

	got, err := (&ExprEvaluator{AllowUndefined: true}).Eval(
		context.Background(), "missing ?? 5", NewEnv(nil),
	)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}

	if got != 5 {
		t.Errorf("Eval() = %v, want 5", got)
	}
}

func TestExprEvaluator_BindingShadowsBuiltin(t *testing.T) {
	t.Parallel()

	got, err := (&ExprEvaluator{}).Eval(
		context.Background(), "mung", NewEnv(map[string]any{"mung": "mine"}),
	)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}

	if got != "mine" {
		t.Errorf("Eval() = %v, want mine", got)
	}
}

func TestExprEvaluator_Mung(t *testing.T) {
	t.Parallel()

	sep := string(os.PathListSeparator)
	env := NewEnv(map[string]any{"path": "/usr/bin" + sep + "/bin"})

	got, err := (&ExprEvaluator{}).Eval(context.Background(), `mung.prefix(path, "/opt/bin")`, env)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}

	s, ok := got.(string)
	if !ok || !strings.HasPrefix(s, "/opt/bin"+sep) || !strings.Contains(s, "/usr/bin") {
		t.Errorf("mung.prefix = %q", got)
	}
}

func TestExprEvaluator_DoesNotModifyEnv(t *testing.T) {
	t.Parallel()

	env := NewEnv(map[string]any{"a": 1})
	if _, err := (&ExprEvaluator{}).Eval(context.Background(), "a + 1", env); err != nil {
		t.Fatal(err)
	}

	if env.Len() != 1 {
		t.Errorf("env gained names: %v", env.Names())
	}
}

func TestExprEvaluator_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (&ExprEvaluator{}).Eval(ctx, "1", NewEnv(nil)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFunctions(t *testing.T) {
	t.Parallel()

	names := Functions()

	if !slices.IsSorted(names) {
		t.Error("Functions() not sorted")
	}

	if len(slices.Compact(slices.Clone(names))) != len(names) {
		t.Error("Functions() has duplicates")
	}

	for _, want := range []string{"len", "upper", "now", "mung.prefix", "mung.prefixif"} {
		if !slices.Contains(names, want) {
			t.Errorf("Functions() missing %q", want)
		}
	}
}

func TestNewEvaluator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		engine  string
		want    string
		wantErr bool
	}{
		{"", "*calc.ExprEvaluator", false},
		{"expr", "*calc.ExprEvaluator", false},
		{" Starlark ", "*calc.StarlarkEvaluator", false},
		{"powerfx", "", true},
	}

	for _, tt := range tests {
		ev, err := NewEvaluator(WithEngine(tt.engine))
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownEngine) {
				t.Errorf("NewEvaluator(%q) error = %v, want ErrUnknownEngine", tt.engine, err)
			}

			continue
		}

		if err != nil {
			t.Fatalf("NewEvaluator(%q) error = %v", tt.engine, err)
		}

		if got := typeName(ev); got != tt.want {
			t.Errorf("NewEvaluator(%q) = %s, want %s", tt.engine, got, tt.want)
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *ExprEvaluator:
		return "*calc.ExprEvaluator"
	case *StarlarkEvaluator:
		return "*calc.StarlarkEvaluator"
	default:
		return "unknown"
	}
}
