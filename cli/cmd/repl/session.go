package repl

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/ardnew/fxyaml/calc"
	"github.com/ardnew/fxyaml/formula"
	"github.com/ardnew/fxyaml/log"
)

// commandPrefix introduces a session command such as ":vars".
const commandPrefix = ":"

type command struct {
	name    string
	aliases []string
	help    string
}

// commands are the session commands, each with its aliases.
var commands = []command{
	{"help", []string{"h", "?"}, "print this help"},
	{"vars", []string{"v"}, "list variables and their values"},
	{"formulas", []string{"f"}, "list formulas defined in this session"},
	{"functions", []string{"fn"}, "list functions callable from formulas"},
	{"reset", []string{"r"}, "discard definitions and restore the initial variables"},
	{"clear", []string{"c"}, "clear the screen"},
	{"quit", []string{"q", "exit"}, "exit"},
}

// commandNames returns the command names prefixed for completion.
func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = commandPrefix + c.name
	}

	return names
}

func helpText() string {
	var b strings.Builder

	b.WriteString("Enter a formula to evaluate it, or define a variable:\n\n")
	b.WriteString("  x + 1          evaluate (a leading '=' is optional)\n")
	b.WriteString("  name: =expr    evaluate and bind the result to name\n\n")
	b.WriteString("Commands:\n\n")

	for _, c := range commands {
		fmt.Fprintf(&b, "  %-12s %s\n", commandPrefix+c.name, c.help)
	}

	return b.String()
}

// identifier matches the names that may be defined with "name: =expr".
var identifier = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// Reply is the result of executing one line of input.
type Reply struct {
	// Text is printed to the user. It may be empty.
	Text string

	// Clear requests the screen be cleared.
	Clear bool

	// Quit requests the session end.
	Quit bool
}

// Session evaluates lines of input against a persistent environment.
//
// Definitions are evaluated exactly as document formulas: each binds its
// value under its name, and later lines see the latest value.
type Session struct {
	calc    *calc.Calculator
	eval    calc.Evaluator
	initial map[string]any
	env     *calc.Env
	defs    []formula.Entry
}

// NewSession returns a session seeded with initial.
func NewSession(c *calc.Calculator, initial map[string]any) *Session {
	return &Session{
		calc:    c,
		eval:    c.Evaluator(),
		initial: initial,
		env:     calc.NewEnv(initial),
	}
}

// Load evaluates the formulas of doc into the session, as if each had been
// entered as a definition in document order.
func (s *Session) Load(ctx context.Context, doc []byte) error {
	entries, err := s.calc.Extract(ctx, doc)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if _, err := s.define(ctx, e.Name, e.Expression); err != nil {
			return ErrInvalidFormulas.Wrap(err)
		}
	}

	return nil
}

// Names returns the sorted names of the session's variables.
func (s *Session) Names() []string { return s.env.Names() }

// Functions returns the functions callable from formulas.
func (s *Session) Functions() []string { return s.eval.Functions() }

// Exec executes one line of input.
func (s *Session) Exec(ctx context.Context, line string) (Reply, error) {
	line = strings.TrimSpace(line)

	switch {
	case line == "":
		return Reply{}, nil

	case strings.HasPrefix(line, commandPrefix):
		return s.runCommand(ctx, strings.TrimPrefix(line, commandPrefix))
	}

	if name, expr, ok := parseDefinition(line); ok {
		v, err := s.define(ctx, name, expr)
		if err != nil {
			return Reply{}, err
		}

		return Reply{Text: name + " = " + calc.DisplayValue(v)}, nil
	}

	expr, ok := formula.Parse(line)
	if !ok {
		expr = strings.TrimSpace(formula.Strip(line))
	}

	if expr == "" {
		return Reply{}, nil
	}

	v, err := s.eval.Eval(ctx, expr, s.env)
	if err != nil {
		return Reply{}, err
	}

	log.FromContext(ctx).TraceContext(ctx, "repl eval",
		slog.String("expression", expr),
		slog.Any("value", v),
	)

	return Reply{Text: calc.DisplayValue(v)}, nil
}

func (s *Session) define(ctx context.Context, name, expr string) (any, error) {
	e := formula.Entry{Name: name, Expression: expr, Position: len(s.defs)}

	res, err := calc.EvaluateEnv(ctx, s.eval, []formula.Entry{e}, s.env)
	if err != nil {
		return nil, err
	}

	s.env = res.Env
	s.defs = append(s.defs, e)

	v, _ := s.env.Get(name)

	return v, nil
}

func (s *Session) runCommand(ctx context.Context, cmd string) (Reply, error) {
	name, _, _ := strings.Cut(strings.TrimSpace(cmd), " ")

	i := slices.IndexFunc(commands, func(c command) bool {
		return c.name == name || slices.Contains(c.aliases, name)
	})
	if i < 0 {
		return Reply{}, ErrUnknownCommand.With(slog.String("command", cmd))
	}

	log.FromContext(ctx).TraceContext(ctx, "repl command",
		slog.String("command", commands[i].name),
	)

	switch commands[i].name {
	case "help":
		return Reply{Text: helpText()}, nil

	case "vars":
		var b strings.Builder

		for _, n := range s.env.Names() {
			v, _ := s.env.Get(n)
			fmt.Fprintf(&b, "%s = %s\n", n, calc.DisplayValue(v))
		}

		return Reply{Text: strings.TrimSuffix(b.String(), "\n")}, nil

	case "formulas":
		var b strings.Builder

		for _, e := range s.defs {
			fmt.Fprintf(&b, "%s: =%s\n", e.Name, e.Expression)
		}

		return Reply{Text: strings.TrimSuffix(b.String(), "\n")}, nil

	case "functions":
		return Reply{Text: strings.Join(s.Functions(), " ")}, nil

	case "reset":
		s.env = calc.NewEnv(s.initial)
		s.defs = nil

		return Reply{Text: "reset"}, nil

	case "clear":
		return Reply{Clear: true}, nil

	default: // quit
		return Reply{Quit: true}, nil
	}
}

// parseDefinition splits "name: =expr" into its name and expression.
func parseDefinition(line string) (name, expr string, ok bool) {
	name, rest, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}

	name = strings.TrimSpace(name)
	if !identifier.MatchString(name) {
		return "", "", false
	}

	expr, ok = formula.Parse(rest)
	if !ok {
		return "", "", false
	}

	return name, expr, true
}
