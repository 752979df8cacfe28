package calc

import (
	"context"
	"encoding/json"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"go.starlark.net/starlark"
)

func TestStarlarkEvaluator_Eval(t *testing.T) {
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
		{"literal", "1", int64(1), false},
		{"arithmetic", "X + 1", int64(2), false},
		{"float", "price * 2", 5.0, false},
		{"string", `name.upper() + "!"`, "FX!", false},
		{"list", "[i * 2 for i in items]", []any{int64(2), int64(4), int64(6)}, false},
		{"dict", `{"k": cfg["debug"]}`, map[string]any{"k": true}, false},
		{"tuple", "(1, None)", []any{int64(1), nil}, false},
		{"unknown name", "Y + 1", nil, true},
		{"syntax", "bad(", nil, true},
		{"statement", "x = 1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := (&StarlarkEvaluator{}).Eval(context.Background(), tt.expr, env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Eval(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}

			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Eval(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestStarlarkEvaluator_AllowUndefined(t *testing.T) {
	t.Parallel()

	got, err := (&StarlarkEvaluator{AllowUndefined: true}).Eval(
		context.Background(), "missing == None", NewEnv(nil),
	)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}

	if got != true {
		t.Errorf("Eval() = %v, want true", got)
	}
}

func TestStarlarkEvaluator_Builtins(t *testing.T) {
	t.Parallel()

	ev := &StarlarkEvaluator{}
	env := NewEnv(map[string]any{"path": "b"})

	got, err := ev.Eval(context.Background(), `mung.prefix(path, "a")`, env)
	if err != nil {
		t.Fatalf("mung.prefix error = %v", err)
	}

	if s, _ := got.(string); !strings.HasPrefix(s, "a") {
		t.Errorf("mung.prefix = %q", got)
	}

	got, err = ev.Eval(context.Background(), `mung.prefixif(path, lambda s: s != "", "a")`, env)
	if err != nil {
		t.Fatalf("mung.prefixif error = %v", err)
	}

	if s, _ := got.(string); !strings.Contains(s, "a") {
		t.Errorf("mung.prefixif = %q", got)
	}

	if _, err := ev.Eval(context.Background(), `mung.prefix(1)`, env); err == nil {
		t.Error("mung.prefix(1) should fail")
	}

	got, err = ev.Eval(context.Background(), "now()", env)
	if err != nil {
		t.Fatalf("now() error = %v", err)
	}

	if _, err := time.Parse(time.RFC3339Nano, got.(string)); err != nil {
		t.Errorf("now() = %q: %v", got, err)
	}

	names := ev.Functions()
	for _, want := range []string{"len", "str", "mung.prefix", "now"} {
		if !slices.Contains(names, want) {
			t.Errorf("Functions() missing %q", want)
		}
	}
}

func TestGoToStarlark(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      any
		want    string
		wantErr bool
	}{
		{nil, "None", false},
		{"s", `"s"`, false},
		{true, "True", false},
		{7, "7", false},
		{uint8(7), "7", false},
		{1.5, "1.5", false},
		{json.Number("12"), "12", false},
		{json.Number("1.25"), "1.25", false},
		{[]string{"a"}, `["a"]`, false},
		{[]any{1, "b"}, `[1, "b"]`, false},
		{map[string]any{"b": 2, "a": 1}, `{"a": 1, "b": 2}`, false},
		{struct{}{}, "", true},
		{[]any{struct{}{}}, "", true},
	}

	for _, tt := range tests {
		got, err := GoToStarlark(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("GoToStarlark(%#v) error = %v", tt.in, err)

			continue
		}

		if err == nil && got.String() != tt.want {
			t.Errorf("GoToStarlark(%#v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStarlarkToGo_NonStringKey(t *testing.T) {
	t.Parallel()

	d := starlark.NewDict(1)
	_ = d.SetKey(starlark.MakeInt(1), starlark.None)

	if _, err := StarlarkToGo(d); err == nil {
		t.Error("expected error for non-string dict key")
	}
}
