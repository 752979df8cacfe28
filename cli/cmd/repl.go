package cmd

import (
	"context"

	"github.com/ardnew/fxyaml/cli/cmd/repl"
	"github.com/ardnew/fxyaml/log"
)

// Repl starts an interactive session, optionally preloaded with the
// formulas of a document.
type Repl struct {
	Source  string `arg:"" help:"Document whose formulas are evaluated first" name:"file" optional:"" type:"existingfile"`
	Context string `       help:"Initial variables: JSON object, JSON string, or @FILE" short:"c"`
	History string `       default:"${history}" help:"History file ('' disables history)."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	c, err := calculatorFrom(ctx)
	if err != nil {
		return err
	}

	initial, err := decodeContextFlag(r.Context)
	if err != nil {
		return err
	}

	session := repl.NewSession(c, initial)

	if r.Source != "" {
		doc, err := readSource(ctx, r.Source)
		if err != nil {
			return err
		}

		if err := session.Load(ctx, doc); err != nil {
			return err
		}
	}

	streams := streamsFrom(ctx)

	return repl.Run(ctx, repl.Config{
		Session: session,
		History: repl.NewHistory(r.History),
		In:      streams.In,
		Out:     streams.Out,
		Logger:  log.FromContext(ctx),
	})
}
