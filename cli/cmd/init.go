package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/halfbit/lang"
	"github.com/ardnew/halfbit/log"
	"github.com/ardnew/halfbit/pkg"
	"github.com/ardnew/halfbit/profile"
)

// Init generates a configuration file holding the current flag values.
//
// The file is an hb document with one section per flag. Hyphens in flag
// names become underscores, so --log-level is written as:
//
//	log_level: "info"
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// initIgnore lists flag name prefixes that are never written.
var initIgnore = []string{"help", "section", "define", profile.Tag}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.Wrap(lang.NewError("no command-line model"))
	}

	confPath := kongVar(ctx, ConfigIdentifier)
	if confPath == "" {
		return ErrWriteConfig.Wrap(lang.NewError("configuration path undefined"))
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	if err := writeConfig(file, ktx); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return nil
}

// writeConfig writes one section per configurable flag of ktx to w.
func writeConfig(w io.Writer, ktx *kong.Context) error {
	if _, err := fmt.Fprintf(w, "# %s configuration\n", pkg.Name); err != nil {
		return err
	}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(initIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		text, ok := configValue(ktx.FlagValue(flag))
		if !ok {
			continue
		}

		name := strings.ReplaceAll(flag.Name, "-", "_")
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, text); err != nil {
			return err
		}
	}

	return nil
}

// configValue renders a flag value as an hb literal. Empty strings and
// empty lists are skipped so that the flag default applies.
func configValue(x any) (string, bool) {
	v, err := lang.FromNative(x)
	if err != nil || v.IsNone() {
		return "", false
	}

	switch v.Kind() {
	case lang.KindString, lang.KindList:
		if v.Len() == 0 {
			return "", false
		}
	}

	return v.Quote(), true
}
