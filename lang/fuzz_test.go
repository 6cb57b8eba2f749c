package lang

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"
)

// FuzzParseString tests the parser with random inputs to find edge cases.
func FuzzParseString(f *testing.F) {
	// Seed corpus with known valid syntax
	f.Add("hello|world")
	f.Add("(a|b)c")
	f.Add("foo[bar]?")
	f.Add("|")
	f.Add("")
	f.Add("{pre command ask}? play [song] on Spotify")
	f.Add("# comment\nword")
	f.Add("((x)?|y)?")
	f.Add("a|(b")
	f.Add("{}")

	f.Fuzz(func(t *testing.T, input string) {
		// Skip invalid UTF-8
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		// Parser should not panic on any input
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("parser panicked on input %q: %v", input, r)
			}
		}()

		tmpl, err := ParseString(context.Background(), input)
		if err != nil {
			if tmpl != nil {
				t.Errorf("partial template returned with error for %q", input)
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("error for %q is %T, want *SyntaxError", input, err)
			} else if se.Pos.Offset < 0 || se.Pos.Offset > len(input) {
				t.Errorf("offset %d out of range for %q", se.Pos.Offset, input)
			}

			return
		}

		if len(tmpl.Clauses) == 0 {
			t.Fatalf("template for %q has no clauses", input)
		}

		// Canonical form must reparse to the same structure
		again, err := ParseString(context.Background(), tmpl.String())
		if err != nil {
			t.Fatalf("canonical form %q of %q failed to parse: %v",
				tmpl.String(), input, err)
		}

		if !tmpl.Equal(again) {
			t.Errorf("canonical form %q of %q changed structure", tmpl.String(), input)
		}

		// Generation must terminate without panicking
		_, err = Generate(context.Background(), tmpl, nil,
			WithMaxOutput(4096), WithInclusionProbability(1))
		if err != nil && !errors.Is(err, ErrUndefinedSubtemplate) &&
			!errors.Is(err, ErrBudgetExceeded) {
			t.Errorf("Generate(%q) unexpected error: %v", input, err)
		}
	})
}
