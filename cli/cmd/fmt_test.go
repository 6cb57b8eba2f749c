package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/phrasegen/lang"
)

// TestNativeFmt tests that templates are printed in canonical syntax.
func TestNativeFmt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "spacing normalized",
			input: "  hi|hey   there ",
			want:  "hi | hey there\n",
		},
		{
			name:  "comments dropped",
			input: "play [song] # the song\non {service}?",
			want:  "play [song] on {service}?\n",
		},
		{
			name:  "groups",
			input: "((could|would) you)? please",
			want:  "((could | would) you)? please\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := testContext(t, tt.input)

			if err := (&Native{}).Run(ctx, &Globals{}); err != nil {
				t.Fatalf("Native.Run() error = %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("Native.Run() wrote %q, want %q", got, tt.want)
			}

			// The canonical form re-parses to the same template.
			again, err := lang.ParseString(ctx, out.String())
			if err != nil {
				t.Fatalf("canonical output does not parse: %v", err)
			}

			if got := again.String() + "\n"; got != tt.want {
				t.Errorf("re-formatted %q, want %q", got, tt.want)
			}
		})
	}
}

// TestNativeFmtInvalidSyntax tests that invalid syntax produces parse errors.
func TestNativeFmtInvalidSyntax(t *testing.T) {
	for _, input := range []string{
		"a | (b",
		"[unclosed",
		"{}",
		"a ??",
	} {
		t.Run(input, func(t *testing.T) {
			ctx, out := testContext(t, input)

			err := (&Native{}).Run(ctx, &Globals{})
			if !errors.Is(err, lang.ErrSyntax) {
				t.Errorf("Native.Run() error = %v, want %v", err, lang.ErrSyntax)
			}

			if out.Len() != 0 {
				t.Errorf("Native.Run() wrote %q on error", out.String())
			}
		})
	}
}

func TestJSONFmt(t *testing.T) {
	ctx, out := testContext(t, "hi [who]?")

	if err := (&JSON{Indent: 2}).Run(ctx, &Globals{}); err != nil {
		t.Fatalf("JSON.Run() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}

	if !strings.Contains(out.String(), "\n  ") {
		t.Errorf("JSON output is not indented:\n%s", out.String())
	}
}

func TestYAMLFmt(t *testing.T) {
	lib := writeLibrary(t, "assistant.phr", testLibrary)

	ctx, out := testContext(t, "")

	y := &YAML{Indent: 2}
	y.Name = "play"

	if err := y.Run(ctx, &Globals{Library: []string{lib}}); err != nil {
		t.Fatalf("YAML.Run() error = %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out.String())
	}

	if !strings.Contains(out.String(), "music service") {
		t.Errorf("YAML output missing subtemplate call:\n%s", out.String())
	}
}

func TestASTFmt(t *testing.T) {
	ctx, out := testContext(t, "")

	a := &AST{}
	a.Template = "hi {name}?"

	if err := a.Run(ctx, &Globals{}); err != nil {
		t.Fatalf("AST.Run() error = %v", err)
	}

	for _, want := range []string{"hi", "name"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("AST output missing %q:\n%s", want, out.String())
		}
	}
}
