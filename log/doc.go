// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("request served", slog.Int("status", 200))
//
// All logging methods accept [slog.Attr] values only. Values implementing
// [slog.LogValuer] (such as the project's error type) expand into groups.
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// The package-level functions ([Info], [Debug], ...) write through a default
// logger that is reconfigured with [Config].
//
// # Request Scope
//
// A logger carrying request attributes travels with a [context.Context]:
//
//	ctx = log.IntoContext(ctx, log.With(slog.String("request_id", id)))
//	log.FromContext(ctx).Info("formula evaluated")
//
// # Levels and Formats
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Output is [FormatJSON] (default) or
// [FormatText]. Pretty printing colorizes text output; JSON output is
// always emitted one record per line.
package log
