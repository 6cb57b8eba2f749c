package lang

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

func TestTemplate_String(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello|world", "hello | world"},
		{"(a|b)c", "(a | b) c"},
		{"foo[bar]?", "foo [bar]?"},
		{"|", " |"},
		{"", ""},
		{"a (|b) c", "a ( | b) c"},
		{"{ pre command ask }?  play\n[song] # trailing", "{pre command ask}? play [song]"},
		{"((x)?)", "((x)?)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tmpl := MustParse(tt.input)

			got := tmpl.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}

			again, err := ParseString(context.Background(), got)
			if err != nil {
				t.Fatalf("reparse %q: %v", got, err)
			}

			if diff := cmp.Diff(tmpl, again); diff != "" {
				t.Errorf("reparse mismatch (-orig +reparsed):\n%s", diff)
			}
		})
	}
}

func TestTemplate_FormatJSON(t *testing.T) {
	tmpl := MustParse("foo [bar]?")

	var buf bytes.Buffer
	if err := tmpl.FormatJSON(context.Background(), &buf, 0); err != nil {
		t.Fatal(err)
	}

	want := `{"clauses":[{"symbols":[{"kind":"literal","text":"foo"},` +
		`{"kind":"varbind","name":"bar","optional":true}]}],"source":"foo [bar]?"}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("FormatJSON =\n%s\nwant\n%s", got, want)
	}

	buf.Reset()

	if err := tmpl.FormatJSON(context.Background(), &buf, 2); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "\n  \"clauses\": [") {
		t.Errorf("indented FormatJSON =\n%s", buf.String())
	}
}

func TestTemplate_FormatYAML(t *testing.T) {
	tmpl := MustParse("{greet} (a|b)")

	for _, indent := range []int{0, 2} {
		var buf bytes.Buffer
		if err := tmpl.FormatYAML(context.Background(), &buf, indent); err != nil {
			t.Fatal(err)
		}

		var got map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("indent %d: unmarshal %q: %v", indent, buf.String(), err)
		}

		if got["source"] != "{greet} (a | b)" {
			t.Errorf("indent %d: source = %v", indent, got["source"])
		}

		clauses, ok := got["clauses"].([]any)
		if !ok || len(clauses) != 1 {
			t.Errorf("indent %d: clauses = %#v", indent, got["clauses"])
		}
	}
}

func TestTemplate_Format(t *testing.T) {
	var buf bytes.Buffer

	if err := MustParse("a|b").Format(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	if got, want := buf.String(), "a | b\n"; got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestTemplate_Print(t *testing.T) {
	var buf bytes.Buffer

	MustParse("a (b|c)? | [x]").Print(&buf)

	want := strings.Join([]string{
		"Template",
		"  Clause",
		"    Literal: a",
		"    Group?",
		"      Template",
		"        Clause",
		"          Literal: b",
		"        Clause",
		"          Literal: c",
		"  Clause",
		"    VarBind: x",
		"",
	}, "\n")

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Print mismatch (-want +got):\n%s", diff)
	}
}
