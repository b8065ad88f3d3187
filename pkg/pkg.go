//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the halfbit module embedded at build
// time. It is printed by the version command.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command name. It appears in help text, error
	// messages, and default config paths.
	Name = "hb"
	// Module is the Go module path of the project.
	Module = "github.com/ardnew/halfbit"
	// Description is a short, human-readable summary of the project used in
	// help output.
	Description = "Section-oriented template and expression evaluator"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
