package lang

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadScope_Formats(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"vars.yaml": "name: hb\nversion: 2\nflags: [a, b]\nbuild:\n  cc: gcc\n",
		"vars.toml": "name = \"hb\"\nversion = 2\nflags = [\"a\", \"b\"]\n[build]\ncc = \"gcc\"\n",
		"vars.json": `{"name": "hb", "version": 2, "flags": ["a", "b"], "build": {"cc": "gcc"}}`,
	}

	want := Scope{
		"name":    String("hb"),
		"version": Number(2),
		"flags":   List(String("a"), String("b")),
		"build":   Map(map[string]Value{"cc": String("gcc")}),
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatal(err)
			}

			got, err := LoadScope(t.Context(), path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}

			if !Map(got).Equal(Map(want)) {
				t.Errorf("got %s, want %s", Map(got).Quote(), Map(want).Quote())
			}
		})
	}
}

func TestLoadScope_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("[1, 2]"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadScope(t.Context(), bad); !errors.Is(err, ErrData) {
		t.Errorf("non-mapping: error = %v, want ErrData", err)
	}

	if _, err := LoadScope(t.Context(), filepath.Join(dir, "none.yaml")); !errors.Is(err, ErrReadInput) {
		t.Errorf("missing: error = %v, want ErrReadInput", err)
	}
}

func TestDataFormatOf(t *testing.T) {
	tests := map[string]DataFormat{
		"a.toml": DataTOML,
		"a.JSON": DataJSON,
		"a.yml":  DataYAML,
		"a":      DataYAML,
	}

	for path, want := range tests {
		if got := DataFormatOf(path); got != want {
			t.Errorf("DataFormatOf(%q) = %v, want %v", path, got, want)
		}
	}
}
