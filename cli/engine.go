package cli

import (
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/halfbit/cli/cmd"
	"github.com/ardnew/halfbit/lang"
)

// engineConfig holds the flags shared by every command that evaluates
// a document.
type engineConfig struct {
	Section    string   `help:"Section to evaluate"                                  placeholder:"NAME"      short:"e"`
	Data       []string `help:"Data file (YAML, TOML, JSON) providing variables"     placeholder:"FILE"      sep:"none" short:"d" type:"existingfile"`
	Define     []string `help:"Bind a variable to the value of an expression"        placeholder:"NAME=EXPR" sep:"none" short:"D"`
	Lenient    bool     `help:"Resolve undefined variables to none"                                                                   negatable:""`
	MaxDepth   int      `help:"Maximum parse and evaluation depth"                   default:"${maxDepth}"`
	Accumulate string   `help:"Combine repeated results as text or a list (${enum})" default:"text"              enum:"text,list"`
	TabWidth   int      `help:"Columns per tab in reported positions"                default:"${tabWidth}"`
}

func (*engineConfig) vars() kong.Vars {
	return kong.Vars{
		"maxDepth": strconv.Itoa(lang.DefaultMaxDepth),
		"tabWidth": strconv.Itoa(lang.DefaultTabWidth),
	}
}

func (*engineConfig) group() kong.Group {
	var group kong.Group

	group.Key = "engine"
	group.Title = "Evaluation options"

	return group
}

func (e *engineConfig) settings() cmd.Settings {
	return cmd.Settings{
		Section:    e.Section,
		Data:       e.Data,
		Define:     e.Define,
		Accumulate: e.Accumulate,
		MaxDepth:   e.MaxDepth,
		TabWidth:   e.TabWidth,
		Lenient:    e.Lenient,
	}
}
