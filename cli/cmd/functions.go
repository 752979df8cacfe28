package cmd

import (
	"context"

	"github.com/ardnew/fxyaml/calc"
)

// Functions lists the functions callable from formulas by the selected
// engine.
type Functions struct {
	Output string `default:"table" enum:"${outputEnum}" help:"Output format (${enum})." short:"o"`
}

// Run executes the functions command.
func (f *Functions) Run(ctx context.Context) error {
	c, err := calculatorFrom(ctx)
	if err != nil {
		return err
	}

	format, err := calc.ParseFormat(f.Output)
	if err != nil {
		return err
	}

	return calc.RenderNames(streamsFrom(ctx).Out, "function", c.Functions(), format)
}
