package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// String returns the template in canonical source syntax. Parsing the result
// yields a template equal to t.
func (t *Template) String() string {
	var sb strings.Builder

	writeTemplate(&sb, t)

	return sb.String()
}

// String returns the clause in canonical source syntax.
func (c *Clause) String() string {
	var sb strings.Builder

	writeClause(&sb, c)

	return sb.String()
}

// String returns the symbol in canonical source syntax.
func (s *Symbol) String() string {
	var sb strings.Builder

	writeSymbol(&sb, s)

	return sb.String()
}

func writeTemplate(sb *strings.Builder, t *Template) {
	for i, c := range t.Clauses {
		if i > 0 {
			sb.WriteString(" |")

			if len(c.Symbols) > 0 {
				sb.WriteByte(' ')
			}
		}

		writeClause(sb, c)
	}
}

func writeClause(sb *strings.Builder, c *Clause) {
	for i, s := range c.Symbols {
		if i > 0 {
			sb.WriteByte(' ')
		}

		writeSymbol(sb, s)
	}
}

func writeSymbol(sb *strings.Builder, s *Symbol) {
	switch s.Kind {
	case KindLiteral:
		sb.WriteString(s.Text)

	case KindSubtemplate:
		sb.WriteByte('{')
		sb.WriteString(s.Name)
		sb.WriteByte('}')

	case KindVarBind:
		sb.WriteByte('[')
		sb.WriteString(s.Name)
		sb.WriteByte(']')

	case KindGroup:
		sb.WriteByte('(')

		if s.Group != nil {
			writeTemplate(sb, s.Group)
		}

		sb.WriteByte(')')
	}

	if s.Optional {
		sb.WriteByte('?')
	}
}

// Format writes the template in canonical source syntax to the writer.
func (t *Template) Format(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintln(w, t.String())

	return err
}

// FormatJSON writes the template structure as JSON to the writer.
func (t *Template) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(t, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(t)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the template structure as YAML to the writer.
func (t *Template) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, t.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// Print writes an indented tree representation of the template.
func (t *Template) Print(w io.Writer) {
	t.PrintIndent(w, 0)
}

// PrintIndent writes an indented tree representation of the template with
// the given initial indentation.
func (t *Template) PrintIndent(w io.Writer, indent int) {
	put := writer(w)
	prefix := strings.Repeat("  ", indent)

	put("\n", prefix+"Template")

	for _, c := range t.Clauses {
		put("\n", prefix+"  Clause")

		if len(c.Symbols) == 0 {
			put("\n", prefix+"    (empty)")
		}

		for _, s := range c.Symbols {
			s.print(w, indent+2)
		}
	}
}

func (s *Symbol) print(w io.Writer, indent int) {
	put := writer(w)
	prefix := strings.Repeat("  ", indent)

	label := prefix + s.Kind.String()
	if s.Optional {
		label += "?"
	}

	switch s.Kind {
	case KindLiteral:
		put("\n", label, s.Text)

	case KindSubtemplate, KindVarBind:
		put("\n", label, s.Name)

	case KindGroup:
		put("\n", label)

		if s.Group != nil {
			s.Group.PrintIndent(w, indent+1)
		}

	default:
		put("\n", label, "(unknown)")
	}
}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		_, err := io.WriteString(w, strings.Join(item, ": ")+eol)
		if err != nil {
			panic(err)
		}
	}
}
