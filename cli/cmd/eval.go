package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/fxyaml/calc"
	"github.com/ardnew/fxyaml/log"
)

// watchDebounce coalesces the burst of events an editor produces on save.
const watchDebounce = 100 * time.Millisecond

// Eval evaluates the formulas in a document and prints the projected
// results.
type Eval struct {
	Source  string `arg:"" default:"-"    help:"Document file or '-' for stdin" name:"file" optional:""`
	Context string `       help:"Initial variables: JSON object, JSON string, or @FILE" short:"c"`
	Output  string `       default:"json" enum:"${outputEnum}" help:"Output format (${enum})." short:"o"`
	Watch   bool   `       help:"Re-evaluate whenever the file changes" short:"w"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) error {
	c, err := calculatorFrom(ctx)
	if err != nil {
		return err
	}

	format, err := calc.ParseFormat(e.Output)
	if err != nil {
		return err
	}

	initial, err := decodeContextFlag(e.Context)
	if err != nil {
		return err
	}

	if !e.Watch {
		return e.evaluate(ctx, c, initial, format)
	}

	if e.Source == "" || e.Source == stdinSource {
		return ErrWatchStdin
	}

	return e.watch(ctx, c, initial, format)
}

func (e *Eval) evaluate(
	ctx context.Context,
	c *calc.Calculator,
	initial map[string]any,
	format calc.Format,
) error {
	doc, err := readSource(ctx, e.Source)
	if err != nil {
		return err
	}

	out, err := c.Calculate(ctx, calc.Request{Context: initial, Document: doc})
	if err != nil {
		return err
	}

	return out.Render(streamsFrom(ctx).Out, format)
}

// watch evaluates the source once and again after every change until ctx
// is done. Evaluation errors are reported and do not stop watching.
//
// The parent directory is watched rather than the file so that editors
// replacing the file on save are still observed.
func (e *Eval) watch(
	ctx context.Context,
	c *calc.Calculator,
	initial map[string]any,
	format calc.Format,
) error {
	target, err := filepath.Abs(e.Source)
	if err != nil {
		return ErrWatch.Wrap(err).With(slog.String("file", e.Source))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return ErrWatch.Wrap(err).With(slog.String("file", target))
	}

	logger := log.FromContext(ctx).With(slog.String("file", target))
	stderr := streamsFrom(ctx).Err

	run := func() {
		if err := e.evaluate(ctx, c, initial, format); err != nil {
			logger.WarnContext(ctx, "evaluation failed", slog.Any("error", err))
			fmt.Fprintln(stderr, "error:", err)
		}
	}

	run()

	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if errors.Is(context.Cause(ctx), context.Canceled) {
				return nil
			}

			return context.Cause(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != target ||
				!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			logger.TraceContext(ctx, "file changed", slog.String("op", ev.Op.String()))

			fire = time.After(watchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			logger.WarnContext(ctx, "watcher error", slog.Any("error", err))

		case <-fire:
			fire = nil

			logger.DebugContext(ctx, "re-evaluating")
			run()
		}
	}
}
