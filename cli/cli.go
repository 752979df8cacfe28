package cli

import (
	"context"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fxyaml/calc"
	"github.com/ardnew/fxyaml/cli/cmd"
	"github.com/ardnew/fxyaml/pkg"
	"github.com/ardnew/fxyaml/tree"
)

// CLI is the top-level command-line interface for fxyaml.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Engine         string `default:"${engineDefault}" enum:"${engineEnum}" help:"Expression engine (${enum})."          short:"e"`
	Parser         string `default:"${parserDefault}" enum:"${parserEnum}" help:"Document parser (${enum})."`
	AllowUndefined bool   `                                                help:"Evaluate unknown names as null instead of failing."`

	Eval      cmd.Eval      `cmd:"" default:"withargs" help:"Evaluate the formulas in a document"`
	Extract   cmd.Extract   `cmd:""                   help:"List the formulas in a document without evaluating them"`
	Functions cmd.Functions `cmd:""                   help:"List the functions callable from formulas"`
	Serve     cmd.Serve     `cmd:""                   help:"Serve formula evaluation over HTTP"`
	Repl      cmd.Repl      `cmd:""                   help:"Evaluate formulas interactively"`
}

func (*CLI) vars() kong.Vars {
	return kong.Vars{
		"engineDefault": calc.DefaultEngine,
		"engineEnum":    strings.Join(calc.Engines(), ","),
		"parserDefault": tree.DefaultParser,
		"parserEnum":    strings.Join(tree.Parsers(), ","),
	}
}

// calculator builds the calculator selected by the global flags.
func (c *CLI) calculator() (*calc.Calculator, error) {
	p, err := tree.ParserByName(c.Parser)
	if err != nil {
		return nil, err
	}

	return calc.New(
		calc.WithEngine(c.Engine),
		calc.WithParser(p),
		calc.WithAllowUndefined(c.AllowUndefined),
	)
}

// configFilePath returns the configuration file path, which may be
// overridden by the environment variable FXYAML_CONFIG.
func configFilePath() string {
	if path := os.Getenv(pkg.EnvPrefix + "CONFIG"); path != "" {
		return path
	}

	return pkg.ConfigPath(configFile)
}

// Run executes the fxyaml CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	res, err := loadResolver(configFilePath())
	if err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier:  configFilePath(),
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.HistoryIdentifier: pkg.CachePath(cmd.HistoryFile),
	}.
		CloneWith(cli.vars()).
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cmd.Vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Resolvers(res),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	defer cli.Log.start(ctx)()

	calculator, err := cli.calculator()
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithCalculator(ctx, calculator)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	stop, err := cli.Pprof.start(ctx)
	if err != nil {
		return err
	}
	defer stop()

	return ktx.Run(ctx)
}
