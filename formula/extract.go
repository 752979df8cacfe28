package formula

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/ardnew/fxyaml/tree"
)

// Prefix marks the start of a formula.
const Prefix = "="

// Entry is a formula extracted from a document.
//
// Position is the zero-based extraction order. Positions are unique and
// strictly increasing within one extraction, including across entries that
// share a Name.
type Entry struct {
	Name       string `json:"name" yaml:"name"`
	Expression string `json:"expression" yaml:"expression"`
	Position   int    `json:"position" yaml:"position"`
}

// LogValue implements slog.LogValuer.
func (e Entry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", e.Name),
		slog.String("expression", e.Expression),
		slog.Int("position", e.Position),
	)
}

// Parse returns the expression held by text and whether text is a formula.
// Comments are stripped and whitespace trimmed before testing for [Prefix].
func Parse(text string) (string, bool) {
	s := strings.TrimSpace(Strip(text))

	return strings.CutPrefix(s, Prefix)
}

// Extract returns the formulas among entries, in order.
// Entries whose text is not a formula are skipped. Duplicate names are kept.
func Extract(entries iter.Seq[tree.Entry]) []Entry {
	var out []Entry

	for e := range entries {
		expr, ok := Parse(e.Text)
		if !ok {
			continue
		}

		out = append(out, Entry{
			Name:       e.Key,
			Expression: expr,
			Position:   len(out),
		})
	}

	return out
}

// FromDocument returns the formulas found anywhere in root.
func FromDocument(root tree.Node) []Entry {
	return Extract(tree.Entries(root))
}

// FromPairs numbers an already ordered list of name/expression pairs.
// An expression may carry a leading [Prefix], which is removed; comments are
// stripped either way.
func FromPairs(pairs iter.Seq2[string, string]) []Entry {
	var out []Entry

	for name, expr := range pairs {
		s := strings.TrimSpace(Strip(expr))
		s = strings.TrimPrefix(s, Prefix)

		out = append(out, Entry{
			Name:       name,
			Expression: s,
			Position:   len(out),
		})
	}

	return out
}
