// Package log provides a simplified structured logging interface based on
// [log/slog].
//
// Loggers are immutable values. Configuration is applied at creation time
// using functional options, and derived loggers are created with
// [Logger.Wrap] and [Logger.With]. The zero value of [Logger] discards every
// message, so components can hold a Logger field without checking it.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("section compiled", slog.String("name", "build"))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// # Levels
//
// In addition to the [log/slog] levels, [LevelTrace] sits below
// [LevelDebug] and is used for per-token and per-node diagnostics.
//
// # Pretty Output
//
// With [WithPretty] enabled, text output is colorized with lipgloss styles
// chosen for the output writer's terminal profile. Writers that are not
// terminals receive plain text.
//
// # Package Logger
//
// Package-level functions such as [Info] and [Debug] write to a default
// logger that can be reconfigured with [Config].
package log
