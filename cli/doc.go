// Package cli contains the command line interface for fxyaml.
//
// # Usage
//
//	fxyaml [flags] <command> [args]
//
// Commands:
//
//   - eval [FILE]: evaluate the formulas in a document (the default command)
//   - extract [FILE]: list the formulas in a document
//   - functions: list the functions callable from formulas
//   - serve: run the HTTP service
//   - repl [FILE]: evaluate formulas interactively
//
// Global flags select the expression engine (--engine), the document parser
// (--parser), and whether unknown names evaluate to null
// (--allow-undefined).
//
// # Configuration
//
// Flags not given on the command line are resolved from the environment and
// then from the YAML file $XDG_CONFIG_HOME/fxyaml/config.yaml (or the file
// named by FXYAML_CONFIG):
//
//	engine: starlark
//	log:
//	  level: debug
//	serve:
//	  addr: ":9090"
//
// The same settings from the environment:
//
//	FXYAML_ENGINE=starlark FXYAML_LOG_LEVEL=debug FXYAML_SERVE_ADDR=:9090
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp format (RFC3339, RFC3339Nano, Kitchen, none, ...)
//   - --log-caller: include caller information
//   - --[no-]log-pretty: colorized output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag,
// for example with "go build -tags pprof .". It adds the flags:
//
//   - --pprof-mode: enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default ~/.cache/fxyaml/pprof)
package cli
