package cmd

import (
	"context"

	"github.com/ardnew/fxyaml/calc"
)

// Extract prints the formulas of a document in evaluation order.
type Extract struct {
	Source string `arg:"" default:"-"     help:"Document file or '-' for stdin" name:"file" optional:""`
	Output string `       default:"table" enum:"${outputEnum}" help:"Output format (${enum})." short:"o"`
}

// Run executes the extract command.
func (x *Extract) Run(ctx context.Context) error {
	c, err := calculatorFrom(ctx)
	if err != nil {
		return err
	}

	format, err := calc.ParseFormat(x.Output)
	if err != nil {
		return err
	}

	doc, err := readSource(ctx, x.Source)
	if err != nil {
		return err
	}

	entries, err := c.Extract(ctx, doc)
	if err != nil {
		return err
	}

	return calc.RenderFormulas(streamsFrom(ctx).Out, entries, format)
}
