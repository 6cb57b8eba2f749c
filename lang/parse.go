package lang

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseString parses a template from a string.
//
// The entire input must form a single template. On failure the returned
// error is a *SyntaxError describing the first production that could not be
// matched, and no partial template is returned.
func ParseString(ctx context.Context, s string, opts ...Option) (*Template, error) {
	o := makeOptions(opts...)

	err := o.validate()
	if err != nil {
		return nil, err
	}

	p := &parser{
		input:    []byte(s),
		pos:      0,
		line:     1,
		col:      1,
		class:    o.class,
		maxDepth: o.maxDepth,
	}

	t, err := p.parseTop()
	if err != nil {
		se := &SyntaxError{}
		if errors.As(err, &se) {
			se.Source = s
		}

		o.logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("source_bytes", len(s)),
		slog.Int("clause_count", len(t.Clauses)))

	return t, nil
}

// MustParse parses a template and panics on error. It is intended for
// templates that are constants of the calling program.
func MustParse(s string, opts ...Option) *Template {
	t, err := ParseString(context.Background(), s, opts...)
	if err != nil {
		panic(err)
	}

	return t
}

// parser holds the parser state.
type parser struct {
	input    []byte
	pos      int
	line     int
	col      int
	class    Class
	maxDepth int
	depth    int // current group nesting
}

// parseTop parses: template EOF.
func (p *parser) parseTop() (*Template, error) {
	t, err := p.parseTemplate()
	if err != nil {
		return nil, err
	}

	p.skip()

	if !p.eof() {
		// Anything left over could not start a symbol or a clause separator.
		return nil, p.unexpected(p.position(),
			"end of input", "|", "literal", "{", "[", "(")
	}

	return t, nil
}

// parseTemplate parses: clause ("|" clause)*.
func (p *parser) parseTemplate() (*Template, error) {
	p.skip()

	t := &Template{Pos: p.position()}

	for {
		c, err := p.parseClause()
		if err != nil {
			return nil, err
		}

		t.Clauses = append(t.Clauses, c)

		p.skip()

		if !p.expect('|') {
			return t, nil
		}
	}
}

// parseClause parses: symbol*.
func (p *parser) parseClause() (*Clause, error) {
	p.skip()

	c := &Clause{Pos: p.position()}

	for {
		p.skip()

		if !p.atSymbol() {
			return c, nil
		}

		s, err := p.parseSymbol()
		if err != nil {
			return nil, err
		}

		c.Symbols = append(c.Symbols, s)
	}
}

// parseSymbol parses: (literal | call | bind | "(" template ")") "?"?.
func (p *parser) parseSymbol() (*Symbol, error) {
	pos := p.position()

	var (
		s   *Symbol
		err error
	)

	switch ch := p.peek(); {
	case ch == '{':
		s, err = p.parseCall()

	case ch == '[':
		s, err = p.parseBind()

	case ch == '(':
		s, err = p.parseGroup()

	case p.isLiteral(ch):
		s = Literal(p.scan(p.isLiteral))

	default:
		return nil, p.unexpected(pos, "literal", "{", "[", "(")
	}

	if err != nil {
		return nil, err
	}

	s.Pos = pos

	p.skip()

	if p.expect('?') {
		s.Optional = true
	}

	return s, nil
}

// parseCall parses: "{" name "}".
func (p *parser) parseCall() (*Symbol, error) {
	open := p.position()

	p.advance() // skip '{'
	p.skip()

	name := strings.TrimRight(p.scan(isNameChar), " ")
	if name == "" {
		return nil, p.unexpected(p.position(), "subtemplate name")
	}

	p.skip()

	if !p.expect('}') {
		return nil, p.unclosed(open, "}")
	}

	return Call(name), nil
}

// parseBind parses: "[" ident "]".
func (p *parser) parseBind() (*Symbol, error) {
	open := p.position()

	p.advance() // skip '['
	p.skip()

	ident := p.scan(isIdentChar)
	if ident == "" {
		return nil, p.unexpected(p.position(), "identifier")
	}

	p.skip()

	if !p.expect(']') {
		return nil, p.unclosed(open, "]")
	}

	return Bind(ident), nil
}

// parseGroup parses: "(" template ")".
func (p *parser) parseGroup() (*Symbol, error) {
	open := p.position()

	if p.depth+1 > p.maxDepth {
		return nil, &SyntaxError{
			Pos:    open,
			Found:  "(",
			Reason: "group nesting exceeds maximum depth " + strconv.Itoa(p.maxDepth),
		}
	}

	p.depth++
	defer func() { p.depth-- }()

	p.advance() // skip '('

	t, err := p.parseTemplate()
	if err != nil {
		return nil, err
	}

	p.skip()

	if !p.expect(')') {
		return nil, p.unclosed(open, ")")
	}

	return Group(t), nil
}

// Helper methods

func (p *parser) atSymbol() bool {
	ch := p.peek()

	return ch == '{' || ch == '[' || ch == '(' || p.isLiteral(ch)
}

func (p *parser) isLiteral(r rune) bool {
	if unicode.IsLetter(r) {
		return true
	}

	return p.class == ClassAlphanumeric && unicode.IsDigit(r)
}

// scan consumes the longest run of runes accepted by fn and returns it.
func (p *parser) scan(fn func(rune) bool) string {
	start := p.pos

	for !p.eof() && fn(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos])
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(ch rune) bool {
	if !p.eof() && p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

// skip consumes whitespace and '#' line comments. The newline ending a
// comment is consumed as whitespace on the next iteration.
func (p *parser) skip() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r', '\n':
			p.advance()

		case '#':
			for !p.eof() && p.peek() != '\n' {
				p.advance()
			}

		default:
			return
		}
	}
}

// found describes the input at the current position.
func (p *parser) found() string {
	if p.eof() {
		return "end of input"
	}

	return strconv.QuoteRune(p.peek())
}

func (p *parser) unexpected(pos Position, expected ...string) *SyntaxError {
	return &SyntaxError{
		Pos:      pos,
		Expected: expected,
		Found:    p.found(),
	}
}

// unclosed reports a missing closing bracket at the position of the opening
// bracket it would have matched.
func (p *parser) unclosed(open Position, closer string) *SyntaxError {
	return &SyntaxError{
		Pos:      open,
		Expected: []string{closer},
		Found:    p.found(),
		Reason:   "unclosed " + strconv.Quote(string(p.input[open.Offset])),
	}
}

// Character classification

func isIdentChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNameChar(r rune) bool {
	return r == ' ' || isIdentChar(r)
}
