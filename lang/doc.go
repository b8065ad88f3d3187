// Package lang implements the halfbit expression and template language.
//
// Source text is organized as a [Document] of named sections. Compiling a
// section runs the pipeline
//
//	Lexer -> parser -> AST -> Evaluator
//
// where the [Lexer] produces tokens on demand, the parser builds an [AST]
// by recursive descent, and the [Evaluator] walks the tree against a
// [Context] of nested scopes, calling helpers from a [Registry].
//
// # Syntax
//
// A section body is a sequence of items. Each item is an expression or a
// block:
//
//	greeting: "hello, " + upper(user.name)
//	answer:   40 + 2
//	list:
//	  {{#each items as x, i}} i ": " x {{else}} "empty" {{/each}}
//	check:
//	  {{#if debug}} "-g" {{else if fast}} "-O2" {{else}} "" {{/if}}
//
// Expressions support number, string, boolean, none, and list literals,
// dotted variable references, helper calls, the arithmetic operators
// + - * / %, comparisons, and the logical operators && || ! (also spelled
// and, or, not). Whitespace separates tokens and "#" starts a comment.
//
// # Evaluation
//
// A body with one item evaluates to that item's value. Bodies with several
// items, and each blocks, combine their results according to the
// [Accumulation] policy: text concatenation by default, or a list.
//
// Variable lookup searches scopes from innermost to outermost. A [Strict]
// context reports unresolved variables with [ErrUndefinedVariable]; a
// [Lenient] context yields none.
//
// # Errors
//
// Every failure is an [*Error] that matches one of the sentinel errors with
// [errors.Is]. [ClassOf] separates parse-time failures from evaluation-time
// failures, and [Error.Snippet] renders the offending source line.
package lang
