package lang

import (
	"bytes"
	"strings"
	"testing"
)

func TestWrite(t *testing.T) {
	v := Map(map[string]Value{
		"n":  Number(42),
		"xs": List(String("a"), Bool(true)),
	})

	tests := []struct {
		format OutputFormat
		want   string
	}{
		{OutputText, "{ n: 42, xs: [\"a\", true] }\n"},
		{OutputJSON, "{\n  \"n\": 42,\n  \"xs\": [\n    \"a\",\n    true\n  ]\n}\n"},
		{OutputYAML, "n: 42\nxs:\n  - a\n  - true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(t.Context(), &buf, v, tt.format); err != nil {
				t.Fatalf("write: %v", err)
			}

			if tt.format == OutputYAML {
				// Sequence indentation differs between encoder versions.
				for _, part := range []string{"n: 42", "xs:", "- a", "- true"} {
					if !strings.Contains(buf.String(), part) {
						t.Errorf("yaml output %q missing %q", buf.String(), part)
					}
				}

				return
			}

			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWrite_TopLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(t.Context(), &buf, String("plain text"), OutputText); err != nil {
		t.Fatal(err)
	}

	if buf.String() != "plain text\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteTree_JSON(t *testing.T) {
	ast, err := Parse(t.Context(), "a + 1")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteTree(t.Context(), &buf, ast, OutputJSON); err != nil {
		t.Fatal(err)
	}

	for _, part := range []string{`"node": "binary"`, `"op": "+"`, `"path": "a"`, `"value": 1`} {
		if !strings.Contains(buf.String(), part) {
			t.Errorf("output missing %s:\n%s", part, buf.String())
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{
		"text": OutputText, "JSON": OutputJSON, "yml": OutputYAML,
	} {
		if got, ok := ParseOutputFormat(in); !ok || got != want {
			t.Errorf("ParseOutputFormat(%q) = %v, %v", in, got, ok)
		}
	}

	if _, ok := ParseOutputFormat("xml"); ok {
		t.Error("accepted xml")
	}
}
