package calc

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ardnew/fxyaml/formula"
	"github.com/ardnew/fxyaml/pkg"
)

// Format selects how results are rendered.
type Format string

// Supported formats.
const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned for an unrecognized output format.
var ErrUnknownFormat = pkg.NewError("unknown output format")

// Formats returns the names of all formats.
func Formats() []string {
	return []string{
		string(FormatJSON),
		string(FormatYAML),
		string(FormatTable),
		string(FormatMarkdown),
	}
}

// ParseFormat parses a format name. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTable, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", ErrUnknownFormat.With(slog.String("format", s))
	}
}

// Render writes o to w in format f.
func (o *Output) Render(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return renderJSON(w, o)

	case FormatYAML:
		return renderYAML(w, o)

	case FormatTable, FormatMarkdown:
		t := newTable(w, table.Row{"NAME", "VALUE"})
		for name, v := range o.All() {
			t.AppendRow(table.Row{name, DisplayValue(v)})
		}

		return renderTable(t, f)

	default:
		return ErrUnknownFormat.With(slog.String("format", string(f)))
	}
}

// RenderFormulas writes entries to w in format f.
func RenderFormulas(w io.Writer, entries []formula.Entry, f Format) error {
	switch f {
	case FormatJSON:
		if entries == nil {
			entries = []formula.Entry{}
		}

		return renderJSON(w, entries)

	case FormatYAML:
		return renderYAML(w, entries)

	case FormatTable, FormatMarkdown:
		t := newTable(w, table.Row{"#", "NAME", "EXPRESSION"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Position, e.Name, e.Expression})
		}

		return renderTable(t, f)

	default:
		return ErrUnknownFormat.With(slog.String("format", string(f)))
	}
}

// RenderNames writes a list of names under header to w in format f.
func RenderNames(w io.Writer, header string, names []string, f Format) error {
	switch f {
	case FormatJSON:
		if names == nil {
			names = []string{}
		}

		return renderJSON(w, names)

	case FormatYAML:
		return renderYAML(w, names)

	case FormatTable, FormatMarkdown:
		t := newTable(w, table.Row{strings.ToUpper(header)})
		for _, name := range names {
			t.AppendRow(table.Row{name})
		}

		return renderTable(t, f)

	default:
		return ErrUnknownFormat.With(slog.String("format", string(f)))
	}
}

// DisplayValue formats v for a table cell. Strings are shown as-is, nil as
// "null", and everything else as JSON.
func DisplayValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(b)
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func renderYAML(w io.Writer, v any) error {
	return yaml.NewEncoder(w).Encode(v)
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)

	return t
}

func renderTable(t table.Writer, f Format) error {
	if f == FormatMarkdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}

	return nil
}
