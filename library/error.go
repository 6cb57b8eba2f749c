package library

import (
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrIllegalLine       = NewError("illegal line")
	ErrUnexpectedEOF     = NewError("unexpected end of input")
	ErrMissingName       = NewError("missing definition name")
	ErrInvalidDefinition = NewError("invalid definition")
	ErrUndefinedTemplate = NewError("undefined template")
	ErrNotFound          = NewError("library not found")
	ErrUnknownFormat     = NewError("unknown library format")
	ErrReadLibrary       = NewError("failed to read library")
	ErrCycle             = NewError("reference cycle")
)

// Error represents a library error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

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

// CycleError reports subtemplates that reference each other in a loop.
type CycleError struct {
	Chain []string // Names in call order; the first name is repeated last
}

func (e *CycleError) Error() string {
	return ErrCycle.msg + ": " + strings.Join(e.Chain, " → ")
}

// Unwrap returns ErrCycle.
func (e *CycleError) Unwrap() error { return ErrCycle }

func (e *CycleError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrCycle.msg),
		slog.String("chain", strings.Join(e.Chain, " → ")),
	)
}
