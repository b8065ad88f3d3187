package lang

import "github.com/ardnew/halfbit/log"

// DefaultMaxDepth bounds parser nesting and evaluator recursion.
var DefaultMaxDepth = 256

// DefaultTabWidth is the column width of a tab stop.
const DefaultTabWidth = 1

// Accumulation selects how bodies with several results are combined.
type Accumulation int

const (
	// AccumulateText concatenates the text form of each result.
	AccumulateText Accumulation = iota
	// AccumulateList collects each result into a list.
	AccumulateList
)

func (a Accumulation) String() string {
	if a == AccumulateList {
		return "list"
	}

	return "text"
}

// ParseAccumulation parses "text" or "list".
func ParseAccumulation(s string) (Accumulation, bool) {
	switch s {
	case "text":
		return AccumulateText, true
	case "list":
		return AccumulateList, true
	default:
		return AccumulateText, false
	}
}

type options struct {
	logger     log.Logger
	maxDepth   int
	tabWidth   int
	accumulate Accumulation
}

// Option configures lexing, parsing, and evaluation.
type Option func(*options)

func makeOptions(opts ...Option) options {
	o := options{
		maxDepth:   DefaultMaxDepth,
		tabWidth:   DefaultTabWidth,
		accumulate: AccumulateText,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithLogger sets the logger that receives trace and debug records.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMaxDepth bounds parser nesting and evaluator recursion.
// Values below 1 select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		o.maxDepth = depth
	}
}

// WithTabWidth sets the tab stop width used for column numbers.
// Values below 1 select [DefaultTabWidth].
func WithTabWidth(width int) Option {
	return func(o *options) {
		if width < 1 {
			width = DefaultTabWidth
		}

		o.tabWidth = width
	}
}

// WithAccumulation selects how multi-result bodies and each-loops combine.
func WithAccumulation(a Accumulation) Option {
	return func(o *options) { o.accumulate = a }
}
