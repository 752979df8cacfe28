package calc

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestOutput_Render(t *testing.T) {
	t.Parallel()

	var out Output

	out.Add("X", 1)
	out.Add("S", "text")
	out.Add("L", []any{1, 2})

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatJSON, []string{`"X": 1`, `"S": "text"`}},
		{FormatYAML, []string{"X: 1", "S: text"}},
		{FormatTable, []string{"NAME", "VALUE", "X", "text", "[1,2]"}},
		{FormatMarkdown, []string{"| NAME", "| X", "| [1,2]"}},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if err := out.Render(&buf, tt.format); err != nil {
			t.Fatalf("Render(%s) error = %v", tt.format, err)
		}

		for _, want := range tt.want {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("Render(%s) missing %q:\n%s", tt.format, want, buf.String())
			}
		}
	}

	if err := out.Render(&bytes.Buffer{}, "xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Render(xml) error = %v", err)
	}
}

func TestRenderFormulas(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := RenderFormulas(&buf, nil, FormatJSON); err != nil {
		t.Fatal(err)
	}

	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty JSON = %q", buf.String())
	}

	buf.Reset()

	if err := RenderFormulas(&buf, entries("a", "1 + 2"), FormatTable); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"EXPRESSION", "a", "1 + 2"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("table missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRenderNames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := RenderNames(&buf, "function", []string{"len"}, FormatTable); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "FUNCTION") || !strings.Contains(buf.String(), "len") {
		t.Errorf("table = %q", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{
		"json": FormatJSON, " YAML ": FormatYAML, "table": FormatTable, "md": FormatMarkdown,
	} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(xml) error = %v", err)
	}
}

func TestDisplayValue(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{"s", "s"},
		{2, "2"},
		{map[string]any{"a": true}, `{"a":true}`},
	} {
		if got := DisplayValue(tt.in); got != tt.want {
			t.Errorf("DisplayValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
