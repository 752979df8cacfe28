package repl

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dotted_name", "mung.pre", 8, "mung.pre", 0, 8},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_minus", "a-fo", 4, "fo", 2, 4},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "add(a, fo", 9, "fo", 7, 9},
		{"in_ternary", "x ? fo", 6, "fo", 4, 6},
		{"after_colon", "y: =fo", 6, "fo", 4, 6},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"cursor_past_end", "ab", 9, "ab", 0, 2},
		{"in_string", `upper("ab`, 9, "ab", 7, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	s := newSession(t, map[string]any{"total_price": 1, "tax": 2})

	matches, start, end := complete(s, "1 + total", 9)
	if start != 4 || end != 9 {
		t.Errorf("bounds = (%d, %d), want (4, 9)", start, end)
	}

	if len(matches) == 0 || matches[0].Str != "total_price" {
		t.Errorf("best match = %v, want total_price", matches)
	}

	matches, _, _ = complete(s, "mung.prefixi", 12)
	if len(matches) == 0 || matches[0].Str != "mung.prefixif" {
		t.Errorf("best match = %v, want mung.prefixif", matches)
	}

	matches, start, end = complete(s, " :va", 4)
	if start != 1 || end != 4 {
		t.Errorf("command bounds = (%d, %d), want (1, 4)", start, end)
	}

	if len(matches) == 0 || matches[0].Str != ":vars" {
		t.Errorf("best command match = %v, want :vars", matches)
	}

	if matches, _, _ := complete(s, "a + ", 4); matches != nil {
		t.Errorf("complete on empty word = %v, want nil", matches)
	}
}

func TestCandidates(t *testing.T) {
	s := newSession(t, map[string]any{"len": 1})

	names := candidates(s, "x")
	if !slices.IsSorted(names) {
		t.Error("candidates not sorted")
	}

	// A variable shadowing a function is offered once.
	count := 0
	for _, n := range names {
		if n == "len" {
			count++
		}
	}

	if count != 1 {
		t.Errorf("len offered %d times, want 1", count)
	}

	if got := candidates(s, ":"); !slices.Equal(got, commandNames()) {
		t.Errorf("command candidates = %v", got)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	s := newSession(t, nil)
	matches, _, _ := complete(s, "s", 1)

	if len(matches) < 3 {
		t.Fatalf("expected several matches, got %d", len(matches))
	}

	if bar := renderCandidateBar(matches, -1, 0); bar != "" {
		t.Errorf("bar with zero width = %q, want empty", bar)
	}

	bar := renderCandidateBar(matches, 0, 20)
	if !strings.Contains(bar, "...") {
		t.Errorf("narrow bar not truncated: %q", bar)
	}
}

func TestModel_CompletionAndExecute(t *testing.T) {
	s := newSession(t, map[string]any{"alpha": 1, "beta": 2})
	m := newModel(t.Context(), Config{Session: s, History: NewHistory("")})

	m = typeRunes(t, m, "alp")
	if len(m.matches) == 0 || m.matches[0].Str != "alpha" {
		t.Fatalf("matches = %v, want alpha first", m.matches)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.input.Value(); got != "alpha" {
		t.Fatalf("after tab input = %q, want alpha", got)
	}

	m = typeRunes(t, m, " + beta")

	m, cmd := m.execute()
	if cmd == nil {
		t.Fatal("execute returned no command")
	}

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	if got, _ := m.history.Entry(0); got != "alpha + beta" {
		t.Errorf("history[0] = %q, want %q", got, "alpha + beta")
	}

	// Up recalls the previous line; Down past the end clears it.
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.input.Value(); got != "alpha + beta" {
		t.Errorf("after up input = %q", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.input.Value(); got != "" {
		t.Errorf("after down input = %q, want empty", got)
	}
}

func TestModel_Quit(t *testing.T) {
	s := newSession(t, nil)
	m := newModel(t.Context(), Config{Session: s, History: NewHistory("")})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if !m.quitting {
		t.Error("ctrl-d on empty line did not quit")
	}

	if m.View() != "" {
		t.Error("view not empty after quit")
	}
}

func typeRunes(t *testing.T, m model, s string) model {
	t.Helper()

	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()

	next, _ := m.Update(msg)

	nm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}

	return nm
}
