package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/halfbit/lang"
	"github.com/ardnew/halfbit/log"
)

// watchDelay coalesces bursts of file events, such as an editor writing a
// temporary file and renaming it over the original.
var watchDelay = 100 * time.Millisecond

const watchEvents = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// watch evaluates once and then again whenever the document or one of the
// data files changes, until ctx is done. Evaluation errors are reported and
// do not stop the watch.
func (e *Eval) watch(ctx context.Context, s Settings, format lang.OutputFormat) error {
	if e.File == stdinSource {
		return ErrWatch.Wrap(errors.New("cannot watch standard input"))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	// Watch parent directories so that files replaced by rename are seen.
	files := map[string]bool{}
	dirs := map[string]bool{}

	for _, path := range append([]string{e.File}, s.Data...) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return ErrWatch.Wrap(err).With(slog.String("path", path))
		}

		files[abs] = true

		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return ErrWatch.Wrap(err).With(slog.String("path", dir))
			}

			dirs[dir] = true
		}
	}

	out, diag := stdout(ctx), stderr(ctx)

	// prev is the last document read; its compiled sections are dropped
	// from the section cache once a newer version replaces it.
	var prev *lang.Document

	run := func() {
		doc, err := e.once(ctx, s, format, out)
		if err != nil {
			log.DebugContext(ctx, "watch evaluation failed", slog.Any("error", err))
			fmt.Fprint(diag, Describe(err))
		}

		if doc != nil {
			if prev != nil {
				prev.Forget(doc)
			}

			prev = doc
		}
	}

	run()

	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			abs, err := filepath.Abs(ev.Name)
			if err != nil || !files[abs] || ev.Op&watchEvents == 0 {
				continue
			}

			log.TraceContext(ctx, "file changed",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))

			pending = time.After(watchDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-pending:
			pending = nil

			run()
		}
	}
}
