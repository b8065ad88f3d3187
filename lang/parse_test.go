package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_Tree(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "precedence",
			input: "1 + 2 * 3",
			want: `section <input>
  binary +
    literal 1
    binary *
      literal 2
      literal 3
`,
		},
		{
			name:  "left associative",
			input: "8 - 4 - 2",
			want: `section <input>
  binary -
    binary -
      literal 8
      literal 4
    literal 2
`,
		},
		{
			name:  "logical keywords",
			input: "not a or b and c",
			want: `section <input>
  binary ||
    unary !
      variable a
    binary &&
      variable b
      variable c
`,
		},
		{
			name:  "helper call binds tighter than operators",
			input: `upper("a") + x.y.z`,
			want: `section <input>
  binary +
    call upper
      literal "a"
    variable x.y.z
`,
		},
		{
			name:  "grouping and lists",
			input: "(1 + 2) * 3 [none, true]",
			want: `section <input>
  binary *
    binary +
      literal 1
      literal 2
    literal 3
  list
    literal none
    literal true
`,
		},
		{
			name:  "else if chain",
			input: `{{#if a}} 1 {{else if b}} 2 {{else}} 3 {{/if}}`,
			want: `section <input>
  if
    variable a
    then
      literal 1
    else
      if
        variable b
        then
          literal 2
        else
          literal 3
`,
		},
		{
			name:  "each with names",
			input: `{{#each xs as x, i}} i x {{/each}}`,
			want: `section <input>
  each as x, i
    variable xs
    then
      variable i
      variable x
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, err := Parse(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if got := ast.String(); got != tt.want {
				t.Errorf("tree mismatch\ngot:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestParse_EachDefaults(t *testing.T) {
	ast, err := Parse(t.Context(), "{{#each xs}}{{else}}{{/each}}")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	b, ok := ast.Body[0].(*Block)
	if !ok {
		t.Fatalf("body[0] is %T, want *Block", ast.Body[0])
	}

	if b.ItemName != DefaultItemName || b.IndexName != DefaultIndexName {
		t.Errorf("names = %s, %s", b.ItemName, b.IndexName)
	}

	if b.Else == nil || len(b.Else) != 0 || len(b.Body) != 0 {
		t.Errorf("body = %v, else = %v; want empty non-nil else", b.Body, b.Else)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{
			name:    "mismatched close",
			input:   "{{#if x}} 1 {{/each}}",
			message: "parse error: expected {{/if, found {{/each at 1:13",
		},
		{
			name:    "unclosed block",
			input:   "{{#each xs}}\n  item",
			message: "parse error: expected {{/each, found end of input at 2:7",
		},
		{
			name:    "stray close",
			input:   "1 {{/if}}",
			message: "parse error: expected expression or end of input, found {{/if at 1:3",
		},
		{
			name:    "unknown block",
			input:   "{{#with x}}{{/with}}",
			message: "parse error: expected {{#if or {{#each, found {{#with at 1:1",
		},
		{
			name:    "missing operand",
			input:   "1 +",
			message: "parse error: expected expression, found end of input at 1:4",
		},
		{
			name:    "unclosed call",
			input:   "f(1 2)",
			message: `parse error: expected "," or ")", found 2 at 1:5`,
		},
		{
			name:    "missing tag end",
			input:   "{{#if x 1",
			message: "parse error: expected }}, found 1 at 1:9",
		},
		{
			name:    "bad property",
			input:   "a.1",
			message: "parse error: expected identifier, found 1 at 1:3",
		},
		{
			name:    "else in each",
			input:   "{{#each x}}{{else if y}}{{/each}}",
			message: "parse error: expected }}, found if at 1:19",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(t.Context(), tt.input)
			if err == nil {
				t.Fatalf("parsed %q without error", tt.input)
			}

			if !errors.Is(err, ErrParse) {
				t.Fatalf("error %v is not ErrParse", err)
			}

			if err.Error() != tt.message {
				t.Errorf("message = %q\nwant      %q", err.Error(), tt.message)
			}
		})
	}
}

func TestParse_ErrorAttributes(t *testing.T) {
	_, err := Parse(t.Context(), "{{#if x}}{{/each}}")

	var ee *Error
	if !errors.As(err, &ee) {
		t.Fatalf("error %v is not *Error", err)
	}

	if v, ok := ee.Attr("expected"); !ok || v.String() != "{{/if" {
		t.Errorf("expected attr = %v, %v", v, ok)
	}

	if v, ok := ee.Attr("found"); !ok || v.String() != "{{/each" {
		t.Errorf("found attr = %v, %v", v, ok)
	}
}

func TestParse_NestingLimit(t *testing.T) {
	input := strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40)

	if _, err := Parse(t.Context(), input, WithMaxDepth(100)); err != nil {
		t.Fatalf("parse within limit: %v", err)
	}

	_, err := Parse(t.Context(), input, WithMaxDepth(20))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("error = %v, want ErrParse", err)
	}

	if !strings.Contains(err.Error(), "nesting too deep") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestParse_LexErrorPropagates(t *testing.T) {
	_, err := Parse(t.Context(), "1 = 2")
	if !errors.Is(err, ErrLex) {
		t.Fatalf("error = %v, want ErrLex", err)
	}

	if errors.Is(err, ErrParse) {
		t.Error("lex error also matches ErrParse")
	}
}

func TestParse_Empty(t *testing.T) {
	ast, err := Parse(t.Context(), "  # only a comment\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(ast.Body) != 0 {
		t.Errorf("body has %d nodes, want 0", len(ast.Body))
	}
}
