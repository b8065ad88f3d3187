// Package cmd implements the hb subcommands: eval, sections, ast, init,
// repl, and version.
//
// Commands receive their shared evaluation [Settings] and the parsed
// [kong.Context] through [context.Context], see [WithSettings] and
// [WithContext].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
