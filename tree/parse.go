package tree

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/klauspost/readahead"

	"github.com/ardnew/fxyaml/log"
	"github.com/ardnew/fxyaml/pkg"
)

// Predefined errors (sentinel values).
var (
	ErrParse         = pkg.NewError("malformed document")
	ErrReadInput     = pkg.NewError("failed to read document")
	ErrUnknownNode   = pkg.NewError("unknown document node")
	ErrUnknownParser = pkg.NewError("unknown parser")
)

// Parser converts raw markup into a document tree.
//
// Implementations must be safe for concurrent use; every call returns a new
// tree that shares nothing with other calls.
type Parser interface {
	Parse(data []byte) (Node, error)
}

// ParserFunc adapts an ordinary function to the [Parser] interface.
type ParserFunc func(data []byte) (Node, error)

// Parse calls f(data).
func (f ParserFunc) Parse(data []byte) (Node, error) { return f(data) }

// Names of the registered parser backends.
const (
	ParserGoccy  = "goccy"
	ParserYAMLv3 = "yaml.v3"
)

// DefaultParser is the name of the parser used when none is specified.
const DefaultParser = ParserGoccy

//nolint:gochecknoglobals
var parsers = map[string]Parser{
	ParserGoccy:  GoccyParser{},
	ParserYAMLv3: YAMLv3Parser{},
}

// Parsers returns the sorted names of all parser backends.
func Parsers() []string {
	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// ParserByName returns the parser backend registered under name.
// An empty name selects [DefaultParser].
func ParserByName(name string) (Parser, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultParser
	}

	if p, ok := parsers[name]; ok {
		return p, nil
	}

	return nil, ErrUnknownParser.With(
		slog.String("parser", name),
		slog.String("valid", strings.Join(Parsers(), ",")),
	)
}

// ReadAll reads r to EOF through an asynchronous read-ahead buffer.
func ReadAll(ctx context.Context, r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	log.FromContext(ctx).TraceContext(
		ctx,
		"read document",
		slog.Int("bytes", len(data)),
	)

	return data, nil
}

// ParseReader reads all of r and parses it with p.
func ParseReader(ctx context.Context, p Parser, r io.Reader) (Node, error) {
	data, err := ReadAll(ctx, r)
	if err != nil {
		return nil, err
	}

	return Parse(ctx, p, data)
}

// Parse parses data with p, or with the default parser if p is nil.
// Every failure is reported as [ErrParse] except [ErrUnknownNode], which is
// a fault in the backend rather than in data.
func Parse(ctx context.Context, p Parser, data []byte) (Node, error) {
	if p == nil {
		p = parsers[DefaultParser]
	}

	root, err := p.Parse(data)
	if err != nil {
		if !errors.Is(err, ErrUnknownNode) {
			err = ErrParse.Wrap(err)
		}

		log.FromContext(ctx).DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	return root, nil
}
