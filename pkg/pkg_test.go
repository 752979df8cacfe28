package pkg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "fxyaml" {
		t.Errorf("Expected Name to be %q, got %q", "fxyaml", Name)
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version() != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version())
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain ardnew, got %v", Author)
	}
}

func TestPrefix(t *testing.T) {
	// go test binaries are named "<pkg>.test"
	if got := Prefix(); got != Name {
		t.Errorf("Prefix() = %q, want %q", got, Name)
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	sentinel := NewError("sentinel")
	other := NewError("other")
	cause := errors.New("boom")

	tests := []struct {
		name    string
		err     error
		want    string
		is      error
		isNot   error
		unwraps error
	}{
		{
			name:  "bare",
			err:   sentinel,
			want:  "sentinel",
			is:    sentinel,
			isNot: other,
		},
		{
			name:    "wrapped",
			err:     sentinel.Wrap(cause),
			want:    "sentinel: boom",
			is:      sentinel,
			isNot:   other,
			unwraps: cause,
		},
		{
			name:    "wrapped with attrs",
			err:     sentinel.Wrap(cause).With(slog.String("k", "v")),
			want:    "sentinel: boom",
			is:      sentinel,
			isNot:   other,
			unwraps: cause,
		},
		{
			name:  "fmt wrapped",
			err:   fmt.Errorf("outer: %w", sentinel.With(slog.Int("n", 1))),
			want:  "outer: sentinel",
			is:    sentinel,
			isNot: other,
		},
		{
			name:    "message only cause",
			err:     WrapError(cause),
			want:    "boom",
			is:      cause,
			isNot:   sentinel,
			unwraps: cause,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}

			if !errors.Is(tt.err, tt.is) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.is)
			}

			if errors.Is(tt.err, tt.isNot) {
				t.Errorf("errors.Is(%v, %v) = true", tt.err, tt.isNot)
			}

			if tt.unwraps != nil && !errors.Is(tt.err, tt.unwraps) {
				t.Errorf("expected %v to unwrap to %v", tt.err, tt.unwraps)
			}
		})
	}
}

func TestErrorWithIsImmutable(t *testing.T) {
	t.Parallel()

	base := NewError("base")
	a := base.With(slog.String("a", "1"))
	b := base.With(slog.String("b", "2"))

	if len(base.Attrs()) != 0 {
		t.Errorf("sentinel mutated: %v", base.Attrs())
	}

	if len(a.Attrs()) != 1 || a.Attrs()[0].Key != "a" {
		t.Errorf("a.Attrs() = %v", a.Attrs())
	}

	if len(b.Attrs()) != 1 || b.Attrs()[0].Key != "b" {
		t.Errorf("b.Attrs() = %v", b.Attrs())
	}
}

func TestErrorLogValue(t *testing.T) {
	t.Parallel()

	err := NewError("failed").
		Wrap(errors.New("cause")).
		With(slog.String("name", "X"))

	group := err.LogValue().Group()

	keys := make([]string, 0, len(group))
	for _, a := range group {
		keys = append(keys, a.Key)
	}

	if want := []string{"error", "cause", "name"}; !slices.Equal(keys, want) {
		t.Errorf("LogValue keys = %v, want %v", keys, want)
	}
}
