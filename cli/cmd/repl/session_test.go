package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/halfbit/lang"
	"github.com/ardnew/halfbit/log"
)

const sessionDoc = `fourty_two: 40 + 2
greet: "hello, " + name
`

func newSession(t *testing.T) *Session {
	t.Helper()

	r := lang.NewRegistry()
	if err := lang.RegisterBuiltins(r); err != nil {
		t.Fatal(err)
	}

	c := lang.NewContext(lang.Strict, lang.Scope{
		"name":   lang.String("hb"),
		"server": lang.Map(map[string]lang.Value{"host": lang.String("h"), "port": lang.Number(80)}),
	})

	return NewSession(lang.NewDocument("doc", sessionDoc), c, r)
}

func TestSession_Eval(t *testing.T) {
	s := newSession(t)

	tests := []struct {
		input string
		want  lang.Value
	}{
		{"fourty_two", lang.Number(42)},
		{"greet", lang.String("hello, hb")},
		{"x = 6 * 7", lang.Number(42)},
		{"x + 1", lang.Number(43)},
		{"x == 42", lang.Bool(true)},
		{"server.port", lang.Number(80)},
		{`{{#if x > 1}} "big" {{else}} "small" {{/if}}`, lang.String("big")},
	}

	for _, tt := range tests {
		got, err := s.Eval(t.Context(), tt.input)
		if err != nil {
			t.Fatalf("Eval(%q): %v", tt.input, err)
		}

		if !got.Equal(tt.want) {
			t.Errorf("Eval(%q) = %s, want %s", tt.input, got.Quote(), tt.want.Quote())
		}
	}

	if _, err := s.Eval(t.Context(), "missing"); !errors.Is(err, lang.ErrUndefinedVariable) {
		t.Errorf("undefined error = %v", err)
	}
}

func TestSession_Candidates(t *testing.T) {
	s := newSession(t)

	top := s.Candidates("")
	for _, want := range []string{"fourty_two", "greet", "name", "server", "upper", "not"} {
		if !slices.Contains(top, want) {
			t.Errorf("top-level candidates missing %q", want)
		}
	}

	if got := s.Candidates("server"); !slices.Equal(got, []string{"host", "port"}) {
		t.Errorf("Candidates(server) = %v", got)
	}

	if got := s.Candidates("name"); got != nil {
		t.Errorf("Candidates(name) = %v, want nil", got)
	}

	if got := s.Candidates("nope.x"); got != nil {
		t.Errorf("Candidates(nope.x) = %v, want nil", got)
	}
}

func TestSession_NoDocument(t *testing.T) {
	s := NewSession(nil, nil, nil)

	if err := s.Reload(t.Context()); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Reload() error = %v", err)
	}

	if v, err := s.Eval(t.Context(), "1 + 1"); err != nil || !v.Equal(lang.Number(2)) {
		t.Errorf("Eval() = %v, %v", v, err)
	}
}

func TestModel_TabCompletion(t *testing.T) {
	m := newModel(t.Context(), newSession(t), NewHistory(""), log.Logger{})

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x + upp")})

	if len(m.matches) != 1 || m.matches[0].Str != "upper" {
		t.Fatalf("matches = %v", m.matches)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})

	if got := m.input.Value(); got != "x + upper" {
		t.Errorf("input after tab = %q", got)
	}
}

func TestModel_ModeToggle(t *testing.T) {
	m := newModel(t.Context(), newSession(t), NewHistory(""), log.Logger{})

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1 + 1")})
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("after esc: mode = %v, input = %q", m.mode, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeEval || m.input.Value() != "1 + 1" {
		t.Errorf("after second esc: mode = %v, input = %q", m.mode, m.input.Value())
	}
}

func TestSession_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc")
	if err := os.WriteFile(path, []byte("answer: 40 + 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := lang.LoadDocument(t.Context(), path)
	if err != nil {
		t.Fatal(err)
	}

	s := NewSession(doc, nil, nil)

	if v, err := s.Eval(t.Context(), "answer"); err != nil || !v.Equal(lang.Number(42)) {
		t.Fatalf("Eval() = %v, %v", v, err)
	}

	if err := os.WriteFile(path, []byte("answer: 40 + 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := s.Reload(t.Context()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if v, err := s.Eval(t.Context(), "answer"); err != nil || !v.Equal(lang.Number(43)) {
		t.Errorf("Eval() after reload = %v, %v", v, err)
	}
}
