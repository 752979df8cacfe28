package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fxyaml/calc"
	"github.com/ardnew/fxyaml/tree"
)

// stdinSource is the source argument that reads standard input.
const stdinSource = "-"

type (
	kongContextKey struct{}
	calculatorKey  struct{}
	streamsKey     struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongContextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongContextKey{}).(*kong.Context)

	return ktx
}

// WithCalculator returns a new context.Context containing c.
func WithCalculator(ctx context.Context, c *calc.Calculator) context.Context {
	return context.WithValue(ctx, calculatorKey{}, c)
}

func calculatorFrom(ctx context.Context) (*calc.Calculator, error) {
	c, ok := ctx.Value(calculatorKey{}).(*calc.Calculator)
	if !ok || c == nil {
		return nil, ErrNoCalculator
	}

	return c, nil
}

// Streams are the standard input and output used by a command.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// WithStreams returns a new context.Context whose commands read and write
// s instead of the process's standard streams. Nil fields keep the
// process default.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// readSource reads the document named by src, or standard input for "-".
func readSource(ctx context.Context, src string) ([]byte, error) {
	var r io.Reader = streamsFrom(ctx).In

	if src != "" && src != stdinSource {
		f, err := os.Open(src)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("file", src))
		}
		defer f.Close()

		r = f
	} else {
		src = stdinSource
	}

	data, err := tree.ReadAll(ctx, r)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("file", src))
	}

	return data, nil
}

// decodeContextFlag decodes the --context flag: a JSON object, a JSON
// string holding one, or "@FILE" naming a file containing either. An empty
// flag is no context.
func decodeContextFlag(flag string) (map[string]any, error) {
	raw := []byte(strings.TrimSpace(flag))

	if path, ok := strings.CutPrefix(string(raw), "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, ErrContextFlag.Wrap(err).With(slog.String("file", path))
		}

		raw = data
	}

	m, err := calc.DecodeContext(raw)
	if err != nil {
		return nil, ErrContextFlag.Wrap(err)
	}

	return m, nil
}
