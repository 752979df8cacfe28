package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/fxyaml/pkg"
)

// historyLimit bounds the number of lines kept in the history file.
const historyLimit = 1000

// History is the line history of the REPL, persisted one line per entry.
// A repeated line moves to the end instead of being stored twice.
// An empty path keeps history in memory only.
type History struct {
	path    string
	entries []string
	mu      sync.RWMutex
}

// NewHistory creates a new History backed by the file at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads history entries from the history file. A missing file is an
// empty history.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}
	defer file.Close()

	h.entries = h.entries[:0]

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.entries = append(h.entries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}

	return nil
}

// Add appends line to the history, removing an earlier copy of it.
func (h *History) Add(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return nil
	}

	rewrite := false
	if i := slices.Index(h.entries, line); i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
		rewrite = true
	}

	h.entries = append(h.entries, line)

	if len(h.entries) > historyLimit {
		h.entries = slices.Delete(h.entries, 0, len(h.entries)-historyLimit)
		rewrite = true
	}

	if h.path == "" {
		return nil
	}

	if rewrite {
		return h.rewrite()
	}

	return h.append(line)
}

// Entry returns the entry at index i. Index 0 is the oldest entry.
func (h *History) Entry(i int) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return "", ErrOutOfBounds.With(slog.Int("index", i))
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all history entries, oldest first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// append writes line to the end of the history file.
// Must be called with h.mu held.
func (h *History) append(line string) error {
	if err := os.MkdirAll(filepath.Dir(h.path), pkg.DirMode); err != nil {
		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}
	defer file.Close()

	if _, err := file.WriteString(line + "\n"); err != nil {
		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}

	return nil
}

// rewrite replaces the history file with the current entries.
// Must be called with h.mu held.
func (h *History) rewrite() error {
	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(h.path, []byte(b.String()), 0o600); err != nil {
		return ErrHistory.Wrap(err).With(slog.String("file", h.path))
	}

	return nil
}
