package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax               = NewError("syntax error")
	ErrUndefinedSubtemplate = NewError("undefined subtemplate")
	ErrRecursionLimit       = NewError("recursion limit exceeded")
	ErrBudgetExceeded       = NewError("generation budget exceeded")
	ErrReadInput            = NewError("failed to read input")
	ErrInvalidOption        = NewError("invalid option")
	ErrInvalidPattern       = NewError("template produced an invalid pattern")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg>: <err>", "<msg>", "<err>", or "" depending on which are set.
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message, so that an
// Error derived from a sentinel with With or Wrap still matches it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// SyntaxError reports the first production the parser could not match.
type SyntaxError struct {
	Pos      Position
	Expected []string // Descriptions of the tokens that would have been accepted
	Found    string   // The offending input, or "end of input"
	Reason   string   // Optional free-form detail (e.g. nesting limit)
	Source   string   // The complete source text, used for snippets
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var buf strings.Builder

	buf.WriteString("syntax error at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))
	buf.WriteString(" (offset ")
	buf.WriteString(strconv.Itoa(e.Pos.Offset))
	buf.WriteString(")")

	if e.Reason != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Reason)
	}

	if len(e.Expected) > 0 {
		buf.WriteString(": expected ")
		buf.WriteString(strings.Join(e.expected(), ", "))
	}

	if e.Found != "" {
		buf.WriteString(", found ")
		buf.WriteString(e.Found)
	}

	return buf.String()
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrSyntax.msg),
		slog.Int("offset", e.Pos.Offset),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
	}

	if len(e.Expected) > 0 {
		attrs = append(attrs, slog.String("expected", strings.Join(e.expected(), ", ")))
	}

	if e.Found != "" {
		attrs = append(attrs, slog.String("found", e.Found))
	}

	if e.Reason != "" {
		attrs = append(attrs, slog.String("reason", e.Reason))
	}

	return slog.GroupValue(attrs...)
}

// Snippet renders the offending source line with a caret under the error
// column. It returns an empty string if the source is unknown.
func (e *SyntaxError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Source == "" || e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	num := strconv.Itoa(e.Pos.Line)

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(lines[e.Pos.Line-1])
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if e.Pos.Column > 0 {
		padding += strings.Repeat(" ", e.Pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

func (e *SyntaxError) expected() []string {
	exp := make([]string, 0, len(e.Expected))
	for _, s := range e.Expected {
		exp = append(exp, strconv.Quote(s))
	}

	slices.Sort(exp)

	return slices.Compact(exp)
}

// UndefinedSubtemplateError reports a subtemplate call whose name is not
// present in the registry.
type UndefinedSubtemplateError struct {
	Name string
	Pos  Position // Position of the call in its template source
}

// Error implements the error interface.
func (e *UndefinedSubtemplateError) Error() string {
	return ErrUndefinedSubtemplate.msg + ": " + strconv.Quote(e.Name)
}

// Unwrap returns ErrUndefinedSubtemplate.
func (e *UndefinedSubtemplateError) Unwrap() error {
	return ErrUndefinedSubtemplate
}

// LogValue implements slog.LogValuer.
func (e *UndefinedSubtemplateError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrUndefinedSubtemplate.msg),
		slog.String("name", e.Name),
		slog.Int("offset", e.Pos.Offset),
	)
}

// RecursionLimitError reports that nested groups or subtemplate calls went
// deeper than the configured maximum.
type RecursionLimitError struct {
	Depth int
	Max   int
	Chain []string // Subtemplate names on the call stack, outermost first
}

// Error implements the error interface.
func (e *RecursionLimitError) Error() string {
	msg := ErrRecursionLimit.msg + ": depth " + strconv.Itoa(e.Depth) +
		" > " + strconv.Itoa(e.Max)
	if len(e.Chain) > 0 {
		msg += " (" + strings.Join(e.Chain, " → ") + ")"
	}

	return msg
}

// Unwrap returns ErrRecursionLimit.
func (e *RecursionLimitError) Unwrap() error { return ErrRecursionLimit }

// LogValue implements slog.LogValuer.
func (e *RecursionLimitError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrRecursionLimit.msg),
		slog.Int("depth", e.Depth),
		slog.Int("max_depth", e.Max),
		slog.String("chain", strings.Join(e.Chain, " → ")),
	)
}

// BudgetExceededError reports that the generated text grew beyond the
// configured output limit.
type BudgetExceededError struct {
	Limit  int
	Length int // Length the output would have reached
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return ErrBudgetExceeded.msg + ": " + strconv.Itoa(e.Length) +
		" > " + strconv.Itoa(e.Limit) + " bytes"
}

// Unwrap returns ErrBudgetExceeded.
func (e *BudgetExceededError) Unwrap() error { return ErrBudgetExceeded }

// LogValue implements slog.LogValuer.
func (e *BudgetExceededError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrBudgetExceeded.msg),
		slog.Int("limit", e.Limit),
		slog.Int("length", e.Length),
	)
}
