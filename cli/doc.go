// Package cli contains the command line interface for hb.
//
// # Usage
//
// Evaluate one section of a document and print the result:
//
//	hb -e <section> <file>
//
// The eval command is the default, so the above is equivalent to
// "hb eval -e <section> <file>". Other commands list sections, print
// syntax trees, start a REPL, write a configuration file, and print the
// version. Run "hb --help" for the full tree.
//
// # Exit Status
//
//   - 0: success
//   - 1: input, lex, parse, section lookup, or flag errors
//   - 2: evaluation errors
//
// # Evaluation Options
//
//   - -e, --section: Section to evaluate
//   - -d, --data: YAML, TOML, or JSON file of variables (repeatable)
//   - -D, --define: NAME=EXPR binding evaluated before the section (repeatable)
//   - --lenient: Undefined variables evaluate to none
//   - --max-depth: Bound on parse nesting and evaluation recursion
//   - --accumulate: Combine repeated results as text or a list
//   - --tab-width: Columns per tab in reported positions
//
// # Configuration
//
// Flag defaults are read from the configuration file in the user
// configuration directory, itself an hb document with one section per flag
// (see "hb init"). A JSON file of the same name with a ".json" extension is
// read as well. Command-line flags override both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o hb .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/hb/pprof)
//
// # Examples
//
//	# Evaluate with variables from a data file
//	hb -d vars.yaml -e greeting Makefile
//
//	# Override a variable and print JSON
//	hb -D 'name="world"' -e greeting -o json Makefile
//
//	# Re-evaluate whenever the document changes
//	hb -w -e build notes.txt
//
//	# Debug logging with CPU profiling
//	hb --log-level=debug --pprof-mode=cpu -e build notes.txt
package cli
