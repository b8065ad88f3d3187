package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"log/slog"
	"sync"

	"github.com/zeebo/xxh3"
)

// globalCache stores compiled sections keyed by a hash of the section text,
// its location, and the parse options.
var globalCache sync.Map // map[uint64]*state

// state coalesces concurrent compilations of the same section.
type state struct {
	once sync.Once
	ast  *AST
	err  error
}

// optionsKey holds the options that affect parsing.
type optionsKey struct {
	MaxDepth int
	TabWidth int
}

// hashOptions encodes options using gob and hashes with xxh3.
func hashOptions(o options) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(optionsKey{
		MaxDepth: o.maxDepth,
		TabWidth: o.tabWidth,
	})

	return xxh3.Hash(buf.Bytes())
}

// sectionKey identifies a section by name, location, and text.
func sectionKey(src string, s Section, o options) uint64 {
	var buf bytes.Buffer

	_ = gob.NewEncoder(&buf).Encode(s)
	buf.WriteString(src[s.Body.Offset:s.End])

	return xxh3.Hash(buf.Bytes()) ^ hashOptions(o)
}

// compileCached parses a section, reusing a previous result for identical
// input. Cached ASTs are shared and must not be modified.
func compileCached(
	ctx context.Context,
	src string,
	s Section,
	o options,
) (*AST, error) {
	key := sectionKey(src, s, o)

	entry, loaded := globalCache.LoadOrStore(key, new(state))
	st := entry.(*state)

	if loaded {
		o.logger.TraceContext(ctx, "section cache hit", slog.String("name", s.Name))
	}

	st.once.Do(func() {
		st.ast, st.err = parseBody(ctx, s.Name, src, s.Body, s.End, o)
	})

	return st.ast, st.err
}

// forgetCached drops the compiled sections of d whose keys next does not
// also use. next may be nil.
func forgetCached(d, next *Document) {
	keep := map[uint64]bool{}

	if next != nil {
		for _, s := range next.sections {
			keep[sectionKey(next.Source, s, next.opts)] = true
		}
	}

	for _, s := range d.sections {
		if key := sectionKey(d.Source, s, d.opts); !keep[key] {
			globalCache.Delete(key)
		}
	}
}

// ClearCache discards all compiled sections.
func ClearCache() {
	globalCache.Clear()
}
