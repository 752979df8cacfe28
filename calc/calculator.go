package calc

import (
	"context"
	"log/slog"

	"github.com/ardnew/fxyaml/formula"
	"github.com/ardnew/fxyaml/log"
	"github.com/ardnew/fxyaml/tree"
)

// Request is the input to [Calculator.Calculate].
type Request struct {
	// Context seeds the environment before any formula runs. It may be nil.
	Context map[string]any

	// Document is the markup holding the formulas.
	Document []byte
}

// Calculator parses documents, extracts their formulas, evaluates them, and
// projects the results.
//
// A Calculator holds only configuration. Each call builds its own
// environment and evaluator, so a Calculator may be shared by concurrent
// requests.
type Calculator struct {
	cfg config
}

// New returns a Calculator configured by opts.
// It fails with [ErrUnknownEngine] if the selected engine does not exist.
func New(opts ...Option) (*Calculator, error) {
	cfg := makeConfig(opts...)

	// Validate the engine once up front.
	if _, err := NewEvaluator(func(config) config { return cfg }); err != nil {
		return nil, err
	}

	return &Calculator{cfg: cfg}, nil
}

// Engine returns the name of the expression engine.
func (c *Calculator) Engine() string { return c.cfg.engine }

// Parser returns the document parser.
func (c *Calculator) Parser() tree.Parser { return c.cfg.parser }

// Evaluator returns a new evaluator for the configured engine.
func (c *Calculator) Evaluator() Evaluator {
	ev, err := NewEvaluator(func(config) config { return c.cfg })
	if err != nil {
		// The engine was validated by New.
		panic(err)
	}

	return ev
}

// Functions returns the sorted names of functions callable from formulas.
func (c *Calculator) Functions() []string {
	return c.Evaluator().Functions()
}

// Extract parses doc and returns its formulas in document order.
// A document that cannot be parsed is a [tree.ErrParse].
func (c *Calculator) Extract(ctx context.Context, doc []byte) ([]formula.Entry, error) {
	root, err := tree.Parse(ctx, c.cfg.parser, doc)
	if err != nil {
		return nil, err
	}

	if err := tree.Validate(root); err != nil {
		return nil, err
	}

	entries := formula.FromDocument(root)

	log.FromContext(ctx).DebugContext(ctx, "extracted formulas",
		slog.Int("count", len(entries)),
	)

	return entries, nil
}

// Calculate evaluates every formula in req.Document and returns the
// projected output.
//
// Errors are a [tree.ErrParse] for an unparseable document or a [*Failure]
// for the first formula that failed; no output is returned with an error.
func (c *Calculator) Calculate(ctx context.Context, req Request) (*Output, error) {
	entries, err := c.Extract(ctx, req.Document)
	if err != nil {
		return nil, err
	}

	return c.CalculateFormulas(ctx, entries, req.Context)
}

// CalculateFormulas evaluates entries, in order, against a new environment
// seeded from initial, and returns the projected output.
func (c *Calculator) CalculateFormulas(
	ctx context.Context,
	entries []formula.Entry,
	initial map[string]any,
) (*Output, error) {
	res, err := Evaluate(ctx, c.Evaluator(), entries, initial)
	if err != nil {
		return nil, err
	}

	out := Project(res.Outcomes)

	log.FromContext(ctx).DebugContext(ctx, "calculated",
		slog.String("engine", c.cfg.engine),
		slog.Int("formulas", len(entries)),
		slog.Int("outputs", out.Len()),
	)

	return out, nil
}
