package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/halfbit/lang"
	"github.com/ardnew/halfbit/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads configuration
// files written as hb documents.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config")
//
// Each section names a flag and its body is evaluated to the flag value:
//   - Flag names with hyphens (e.g., "log-level") may use underscores
//     in the config file (e.g., "log_level")
//   - Strings are quoted, booleans are true or false, numbers are unquoted
//   - Lists supply repeatable flags
//   - Sections are evaluated in order with the built-in helpers, and may
//     refer to the sections above them by name
//   - Undefined variables evaluate to none, and sections evaluating to
//     none or failing to evaluate are ignored
//
// Example config file:
//
//	log_level: "debug"
//	log_format: "json"
//	data: ["vars.yaml", "local.yaml"]
//	max_depth: 2 * 64
//
// Command-line flags override config file values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		doc, err := lang.ReadDocument(ctx, baseConfig, r)
		if err != nil {
			return nil, err
		}

		helpers := lang.NewRegistry()
		if err := lang.RegisterBuiltins(helpers); err != nil {
			return nil, err
		}

		scope := lang.NewContext(lang.Lenient)
		conf := config{}

		for _, name := range doc.Names() {
			v, err := doc.Evaluate(ctx, name, scope, helpers)
			if err != nil {
				log.WarnContext(ctx, "ignoring configuration entry",
					slog.String("name", name),
					slog.Any("error", err))

				continue
			}

			scope.Define(name, v)

			if v.IsNone() {
				continue
			}

			conf[name] = flagValue(v.Native())
		}

		return conf, nil
	}
}

// config implements [kong.Resolver] for hb configuration documents.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but section names
	// usually use underscores. Try both forms.
	name := flag.Name
	underscoreName := strings.ReplaceAll(name, "-", "_")

	if value, ok := r[name]; ok {
		return value, nil
	}

	if value, ok := r[underscoreName]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// flagValue converts an evaluated native value to the form Kong decodes.
// Kong requires numbers as strings for parsing.
func flagValue(x any) any {
	switch x := x.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = flagValue(e)
		}

		return out
	default:
		return x
	}
}
