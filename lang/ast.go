package lang

import (
	"iter"
	"slices"
)

// Template is an ordered, non-empty list of mutually exclusive clauses.
// A parsed Template is immutable and safe to share between goroutines.
type Template struct {
	Clauses []*Clause
	Pos     Position
}

// Clause is an ordered list of symbols whose generated text is concatenated.
// An empty clause generates the empty string.
type Clause struct {
	Symbols []*Symbol
	Pos     Position
}

// Symbol is a single unit of a clause. Exactly one of Text, Name, or Group is
// meaningful, selected by Kind.
type Symbol struct {
	Kind     Kind
	Text     string    // KindLiteral
	Name     string    // KindSubtemplate, KindVarBind
	Group    *Template // KindGroup
	Optional bool
	Pos      Position
}

// Position identifies a location in template source.
type Position struct {
	Offset int // Byte offset, starting at 0
	Line   int // Line number, starting at 1
	Column int // Rune column, starting at 1
}

// Kind indicates the variant of a symbol.
type Kind int

const (
	// KindLiteral is a word emitted verbatim.
	KindLiteral Kind = iota

	// KindSubtemplate is a call to a named template in the registry.
	KindSubtemplate

	// KindVarBind is a variable binding marker.
	KindVarBind

	// KindGroup is a parenthesized nested template.
	KindGroup
)

// String returns a string representation of the symbol kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "Literal"

	case KindSubtemplate:
		return "Subtemplate"

	case KindVarBind:
		return "VarBind"

	case KindGroup:
		return "Group"

	default:
		return "Unknown"
	}
}

// NewTemplate returns a template with the given clauses. It panics if no
// clause is given, since a template always has at least one alternative.
func NewTemplate(clauses ...*Clause) *Template {
	if len(clauses) == 0 {
		panic("lang: template requires at least one clause")
	}

	return &Template{Clauses: clauses}
}

// NewClause returns a clause with the given symbols.
func NewClause(symbols ...*Symbol) *Clause {
	return &Clause{Symbols: symbols}
}

// Literal returns a literal symbol.
func Literal(text string) *Symbol {
	return &Symbol{Kind: KindLiteral, Text: text}
}

// Call returns a subtemplate call symbol.
func Call(name string) *Symbol {
	return &Symbol{Kind: KindSubtemplate, Name: name}
}

// Bind returns a variable binding symbol.
func Bind(ident string) *Symbol {
	return &Symbol{Kind: KindVarBind, Name: ident}
}

// Group returns a group symbol wrapping a nested template.
func Group(t *Template) *Symbol {
	return &Symbol{Kind: KindGroup, Group: t}
}

// Opt returns a copy of the symbol marked optional.
func (s *Symbol) Opt() *Symbol {
	c := *s
	c.Optional = true

	return &c
}

// Equal reports whether two templates have the same structure, ignoring
// source positions.
func (t *Template) Equal(u *Template) bool {
	if t == nil || u == nil {
		return t == u
	}

	return slices.EqualFunc(t.Clauses, u.Clauses, (*Clause).Equal)
}

// Equal reports whether two clauses have the same structure, ignoring source
// positions.
func (c *Clause) Equal(d *Clause) bool {
	if c == nil || d == nil {
		return c == d
	}

	return slices.EqualFunc(c.Symbols, d.Symbols, (*Symbol).Equal)
}

// Equal reports whether two symbols have the same structure, ignoring source
// positions.
func (s *Symbol) Equal(r *Symbol) bool {
	if s == nil || r == nil {
		return s == r
	}

	return s.Kind == r.Kind &&
		s.Optional == r.Optional &&
		s.Text == r.Text &&
		s.Name == r.Name &&
		s.Group.Equal(r.Group)
}

// Walk returns a pre-order iterator over every symbol in the template,
// descending into groups. Subtemplate calls are not followed.
func (t *Template) Walk() iter.Seq[*Symbol] {
	return func(yield func(*Symbol) bool) {
		t.walk(yield)
	}
}

func (t *Template) walk(yield func(*Symbol) bool) bool {
	for _, c := range t.Clauses {
		for _, s := range c.Symbols {
			if !yield(s) {
				return false
			}

			if s.Kind == KindGroup && s.Group != nil && !s.Group.walk(yield) {
				return false
			}
		}
	}

	return true
}

// References returns the sorted, unique names of subtemplates called
// anywhere in the template.
func (t *Template) References() []string {
	return t.names(KindSubtemplate)
}

// Variables returns the sorted, unique identifiers of variable bindings
// anywhere in the template.
func (t *Template) Variables() []string {
	return t.names(KindVarBind)
}

func (t *Template) names(kind Kind) []string {
	var names []string

	for s := range t.Walk() {
		if s.Kind == kind {
			names = append(names, s.Name)
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}
