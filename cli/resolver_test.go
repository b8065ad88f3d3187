package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

const configDocument = `# flags
log-level: "debug"
max_depth: 2 * 64
lenient: true
data: ["a.yaml", "b" + ".yaml"]
prefix: "hb"
name: upper(prefix)
missing: undefined_name
broken: 1 / 0
`

func TestResolve(t *testing.T) {
	res, err := resolve(t.Context())(strings.NewReader(configDocument))
	if err != nil {
		t.Fatal(err)
	}

	want := config{
		"log-level": "debug",
		"max_depth": "128",
		"lenient":   true,
		"data":      []any{"a.yaml", "b.yaml"},
		"prefix":    "hb",
		"name":      "HB",
	}

	if got := res.(config); !reflect.DeepEqual(got, want) {
		t.Errorf("resolve() = %#v, want %#v", got, want)
	}
}

func TestResolve_Flags(t *testing.T) {
	var flags struct {
		LogLevel string   `name:"log-level"`
		MaxDepth int      `default:"1"`
		Lenient  bool
		Data     []string `sep:"none"`
		Name     string
		Other    string   `default:"unset"`
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"config", nil, "HB"},
		{"flag overrides", []string{"--name", "cli"}, "cli"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			parser, err := kong.New(&flags,
				kong.Writers(&buf, &buf),
				kong.Resolvers(mustResolve(t)),
			)
			if err != nil {
				t.Fatal(err)
			}

			if _, err := parser.Parse(tt.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			if flags.Name != tt.want {
				t.Errorf("Name = %q, want %q", flags.Name, tt.want)
			}

			if flags.LogLevel != "debug" || flags.MaxDepth != 128 || !flags.Lenient {
				t.Errorf("flags = %+v", flags)
			}

			if strings.Join(flags.Data, ",") != "a.yaml,b.yaml" {
				t.Errorf("Data = %v", flags.Data)
			}

			if flags.Other != "unset" {
				t.Errorf("Other = %q, want default", flags.Other)
			}
		})
	}
}

func mustResolve(t *testing.T) kong.Resolver {
	t.Helper()

	res, err := resolve(t.Context())(strings.NewReader(configDocument))
	if err != nil {
		t.Fatal(err)
	}

	return res
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{int64(3), "3"},
		{1.5, "1.5"},
		{true, true},
		{"s", "s"},
		{[]any{int64(1), "x", []any{2.5}}, []any{"1", "x", []any{"2.5"}}},
	}

	for _, tt := range tests {
		if got := flagValue(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("flagValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
