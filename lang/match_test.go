package lang

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestMatcher(t *testing.T, opts ...Option) *Matcher {
	t.Helper()

	reg := mustRegistry(t, map[string]string{
		"pre command ask": "(could|would) you please?",
	})

	return NewMatcher(reg, opts...)
}

func TestMatcher_Regexp(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		input string
		want  string
	}{
		{"foo", `^foo$`},
		{"foo?", `^(?:foo)?$`},
		{"(foo)?", `^(?:foo)?$`},
		{"[hello]", `^(?P<g0>.*)$`},
		{"foo|bar", `^(?:foo|bar)$`},
		{"{pre command ask}?", `^(?:(?:could|would)\s*you\s*(?:please)?)?$`},
		{
			"{pre command ask}? play [song] on Spotify",
			`^(?:(?:could|would)\s*you\s*(?:please)?)?\s*play\s*(?P<g0>.*)\s*on\s*spotify$`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			re, err := m.Regexp(context.Background(), MustParse(tt.input))
			if err != nil {
				t.Fatalf("Regexp error = %v", err)
			}

			if got := re.String(); got != tt.want {
				t.Errorf("Regexp = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMatcher_Match(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name     string
		template string
		input    string
		want     map[string]string // nil means no match
	}{
		{name: "literal", template: "foo", input: "foo", want: map[string]string{}},
		{name: "optional call absent", template: "{pre command ask}? foo", input: "foo", want: map[string]string{}},
		{name: "optional call present", template: "{pre command ask}? foo", input: "could you foo", want: map[string]string{}},
		{name: "optional word present", template: "{pre command ask}? foo", input: "could you please foo", want: map[string]string{}},
		{
			name:     "binding captured",
			template: "{pre command ask}? play [song] on Spotify",
			input:    "could you play enter sandman on spotify",
			want:     map[string]string{"song": "enter sandman"},
		},
		{
			name:     "case folded",
			template: "play [song] on Spotify",
			input:    "Play Enter Sandman ON SPOTIFY",
			want:     map[string]string{"song": "enter sandman"},
		},
		{
			name:     "repeated binding keeps first",
			template: "[a] and [a]",
			input:    "x and y",
			want:     map[string]string{"a": "x"},
		},
		{name: "missing prefix word", template: "{pre command ask}? foo", input: "you please foo"},
		{name: "wrong literal", template: "{pre command ask}? foo", input: "baz"},
		{name: "partial prefix", template: "{pre command ask}? foo", input: "please baz"},
		{name: "wrong tail", template: "{pre command ask}? foo", input: "could you baz"},
		{name: "alternatives anchored", template: "foo|bar", input: "foobar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Match(context.Background(), MustParse(tt.template), tt.input)
			if err != nil {
				t.Fatalf("Match error = %v", err)
			}

			if tt.want == nil {
				if got != nil {
					t.Errorf("Match(%q) = %v, want no match", tt.input, got.Bindings())
				}

				return
			}

			if got == nil {
				t.Fatalf("Match(%q) = no match", tt.input)
			}

			if got.Input != tt.input {
				t.Errorf("Input = %q, want %q", got.Input, tt.input)
			}

			if diff := cmp.Diff(tt.want, got.Bindings()); diff != "" {
				t.Errorf("Bindings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatcher_Errors(t *testing.T) {
	t.Run("undefined subtemplate", func(t *testing.T) {
		_, err := NewMatcher(nil).Match(context.Background(), MustParse("{nope} x"), "x")

		var ue *UndefinedSubtemplateError
		if !errors.As(err, &ue) || ue.Name != "nope" {
			t.Errorf("error = %v, want UndefinedSubtemplateError for nope", err)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		reg := mustRegistry(t, map[string]string{"A": "{B}", "B": "{A}"})

		_, err := NewMatcher(reg, WithMaxDepth(8)).Regexp(context.Background(), MustParse("{A}"))
		if !errors.Is(err, ErrRecursionLimit) {
			t.Errorf("error = %v, want ErrRecursionLimit", err)
		}
	})

	t.Run("nil template", func(t *testing.T) {
		_, err := NewMatcher(nil).Regexp(context.Background(), nil)
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("error = %v, want ErrInvalidOption", err)
		}
	})

	t.Run("empty subtemplate", func(t *testing.T) {
		reg := Subtemplates{"x": &Template{}}

		_, err := NewMatcher(reg).Match(context.Background(), MustParse("a {x}"), "a")
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("error = %v, want ErrInvalidOption", err)
		}
	})

	t.Run("empty group", func(t *testing.T) {
		tmpl := NewTemplate(NewClause(Literal("a"), Group(&Template{}).Opt()))

		_, err := NewMatcher(nil).Regexp(context.Background(), tmpl)
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("error = %v, want ErrInvalidOption", err)
		}
	})
}

func TestMatcher_ReplayBindings(t *testing.T) {
	tmpl := MustParse("play [song] on spotify")

	got, err := NewMatcher(nil).Match(context.Background(), tmpl, "play one on spotify")
	if err != nil || got == nil {
		t.Fatalf("Match = %v, %v", got, err)
	}

	text, err := Generate(context.Background(), tmpl, nil,
		WithBindings(got.Bindings()), WithSeparator(" "))
	if err != nil {
		t.Fatal(err)
	}

	if want := "play one on spotify"; text != want {
		t.Errorf("Generate = %q, want %q", text, want)
	}
}
