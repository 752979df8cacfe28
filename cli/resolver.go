package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ardnew/fxyaml/pkg"
)

// configFile is the base name of the configuration file in [pkg.ConfigDir].
const configFile = "config.yaml"

// ErrConfig is returned when the configuration file or environment cannot
// be loaded.
var ErrConfig = pkg.NewError("load configuration")

// resolver is a [kong.Resolver] backed by a YAML configuration file and
// environment variables with prefix [pkg.EnvPrefix]. Environment values
// take precedence over the file; flags given on the command line take
// precedence over both.
//
// A flag is looked up by several keys, first scoped to the command that
// declares it and then unscoped. For flag "max-body" of command "serve":
//
//	serve.max-body, serve.max_body, serve_max_body,
//	max-body, max_body
//
// and for the grouped flag "log-level" also log.level, so both
//
//	log-level: debug
//
// and
//
//	log:
//	  level: debug
//
// are accepted in the file. FXYAML_LOG_LEVEL and FXYAML_SERVE_MAX_BODY set
// the same flags from the environment.
type resolver struct {
	env, file *koanf.Koanf
}

// loadResolver loads the configuration file at path, if it exists, and the
// environment.
func loadResolver(path string) (*resolver, error) {
	r := &resolver{env: koanf.New("."), file: koanf.New(".")}

	if _, err := os.Stat(path); err == nil {
		if err := r.file.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, ErrConfig.Wrap(err).With(slog.String("file", path))
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, ErrConfig.Wrap(err).With(slog.String("file", path))
	}

	// FXYAML_LOG_LEVEL -> log_level
	err := r.env.Load(env.Provider(pkg.EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, pkg.EnvPrefix))
	}), nil)
	if err != nil {
		return nil, ErrConfig.Wrap(err).With(slog.String("env", pkg.EnvPrefix))
	}

	return r, nil
}

// Validate implements [kong.Resolver].
func (*resolver) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r *resolver) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	keys := lookupKeys(commandName(parent), flag.Name)

	for _, k := range []*koanf.Koanf{r.env, r.file} {
		for _, key := range keys {
			if k.Exists(key) {
				return flagValue(k.Get(key)), nil
			}
		}
	}

	return nil, nil
}

func commandName(parent *kong.Path) string {
	if parent == nil || parent.Command == nil {
		return ""
	}

	return parent.Command.Name
}

// lookupKeys returns the configuration keys for flag name of command cmd,
// most specific first.
func lookupKeys(cmd, name string) []string {
	snake := strings.ReplaceAll(name, "-", "_")

	var keys []string

	if cmd != "" {
		keys = append(keys,
			cmd+"."+name,
			cmd+"."+snake,
			strings.ReplaceAll(cmd, "-", "_")+"_"+snake,
		)
	}

	keys = append(keys, name, snake)

	if group, rest, ok := strings.Cut(name, "-"); ok {
		keys = append(keys, group+"."+rest)
	}

	return keys
}

// flagValue converts a configuration value into a form kong's mappers
// accept. Numbers are decoded by kong from strings.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = flagString(e)
		}

		return strings.Join(parts, ",")
	default:
		return v
	}
}

func flagString(v any) string {
	switch v := flagValue(v).(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
