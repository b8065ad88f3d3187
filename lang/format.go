package lang

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how values are written by [Write].
type OutputFormat int

const (
	OutputText OutputFormat = iota
	OutputJSON
	OutputYAML
)

func (f OutputFormat) String() string {
	switch f {
	case OutputJSON:
		return "json"
	case OutputYAML:
		return "yaml"
	default:
		return "text"
	}
}

// ParseOutputFormat parses "text", "json", or "yaml".
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return OutputText, true
	case "json":
		return OutputJSON, true
	case "yaml", "yml":
		return OutputYAML, true
	default:
		return OutputText, false
	}
}

// Write encodes v to w followed by a newline. Text output uses the value's
// text form; JSON and YAML encode [Value.Native].
func Write(ctx context.Context, w io.Writer, v Value, format OutputFormat) error {
	return encode(ctx, w, v.Native(), v.String(), format)
}

// WriteTree encodes the AST to w. Text output uses [AST.Print].
func WriteTree(ctx context.Context, w io.Writer, a *AST, format OutputFormat) error {
	if format == OutputText {
		return a.Print(w)
	}

	return encode(ctx, w, a.Tree(), "", format)
}

func encode(
	ctx context.Context,
	w io.Writer,
	native any,
	text string,
	format OutputFormat,
) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(native)

	case OutputYAML:
		data, err := yaml.MarshalContext(ctx, native, yaml.Indent(2))
		if err != nil {
			return err
		}

		_, err = w.Write(data)

		return err

	default:
		_, err := io.WriteString(w, text+"\n")

		return err
	}
}
