package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// isWordBoundary reports whether r delimits a completion word. This
// includes whitespace and the operator and punctuation characters of both
// expression engines. The member-access dot is part of a word so that
// names like "mung.prefix" complete as a whole.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%', '^',
		'<', '>', '=', '!', '~',
		'&', '|', ',', '?', ':', ';',
		'"', '\'', '`':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor position and its byte
// boundaries within input. It returns an empty word when the cursor sits on
// a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the completion candidates for input: session commands
// when the line starts a command, otherwise variables and functions.
func candidates(s *Session, input string) []string {
	if strings.HasPrefix(strings.TrimSpace(input), commandPrefix) {
		return commandNames()
	}

	names := slices.Concat(s.Names(), s.Functions())
	slices.Sort(names)

	return slices.Compact(names)
}

// complete returns the fuzzy matches for the word at cursor, best first,
// and the word's boundaries. An empty word has no matches.
func complete(s *Session, input string, cursor int) (fuzzy.Matches, int, int) {
	if strings.HasPrefix(strings.TrimSpace(input), commandPrefix) {
		// The whole line is the command word, including its prefix.
		trimmed := strings.TrimSpace(input)
		start := strings.Index(input, trimmed)

		return fuzzy.Find(trimmed, commandNames()), start, start + len(trimmed)
	}

	word, start, end := wordBounds(input, cursor)
	if word == "" {
		return nil, start, end
	}

	return fuzzy.Find(word, candidates(s, input)), start, end
}

// renderCandidateBar builds the single-line completion bar, truncated with
// an ellipsis to fit within width. The selected candidate is highlighted
// while tab-cycling.
func renderCandidateBar(matches fuzzy.Matches, selected, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, i == selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += lipgloss.Width(sep)
		}

		if i > 0 && used+w+reserve > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters in bold.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	if selected {
		base = selectedStyle
	}

	highlight := base.Bold(true)

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
