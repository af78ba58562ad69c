package pystructs

import (
	"fmt"
	"strings"
)

// Kind categorizes an encoding or decoding failure.
type Kind string

const (
	KindValueMismatch  Kind = "value mismatch"
	KindOutOfRange     Kind = "value out of range"
	KindOverflow       Kind = "overflow"
	KindShortBuffer    Kind = "short buffer"
	KindInvalidPointer Kind = "invalid pointer"
	KindTypeMismatch   Kind = "type mismatch"
	KindInvalidValue   Kind = "invalid value"
	KindMissingField   Kind = "missing field"
)

// Sentinels for errors.Is. Any *Error matches the sentinel of the same Kind.
var (
	// ErrValueMismatch is returned when a value does not equal an expected constant.
	ErrValueMismatch = &Error{Kind: KindValueMismatch}
	// ErrOutOfRange is returned when an integer falls outside its codec's min/max.
	ErrOutOfRange = &Error{Kind: KindOutOfRange}
	// ErrOverflow is returned when a length exceeds a fixed capacity.
	ErrOverflow = &Error{Kind: KindOverflow}
	// ErrShortBuffer is returned when decoding needs more bytes than remain.
	ErrShortBuffer = &Error{Kind: KindShortBuffer}
	// ErrInvalidPointer is returned when a domain pointer references an unknown offset.
	ErrInvalidPointer = &Error{Kind: KindInvalidPointer}
	// ErrTypeMismatch is returned when a value's Go type is not accepted by a codec.
	ErrTypeMismatch = &Error{Kind: KindTypeMismatch}
	// ErrInvalidValue is returned when a value has the right type but cannot be parsed.
	ErrInvalidValue = &Error{Kind: KindInvalidValue}
	// ErrMissingField is returned when a struct field has neither a value nor a default.
	ErrMissingField = &Error{Kind: KindMissingField}
)

// Error is the structured error returned by every codec.
// Path accumulates qualified locations as the error travels outward,
// outermost first, e.g. ["Header.flags"] or ["Packet.items", "[2]", "Item.id"].
type Error struct {
	Value  any
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements error
func (e *Error) Error() string {
	var b strings.Builder
	for _, p := range e.Path {
		b.WriteString(p)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func newError(kind Kind, value any, format string, args ...any) *Error {
	return &Error{Kind: kind, Value: value, Detail: fmt.Sprintf(format, args...)}
}

// withPath prepends seg to err's path. Foreign errors are converted
// into an InvalidValue *Error so the path is never lost.
func withPath(err error, seg string) error {
	e, ok := err.(*Error)
	if !ok {
		e = &Error{Kind: KindInvalidValue, Detail: err.Error()}
	} else {
		cp := *e
		e = &cp
	}
	e.Path = append([]string{seg}, e.Path...)
	return e
}

func shortBuffer(name string, want, got int) *Error {
	return newError(KindShortBuffer, nil, "%s needs %d bytes, %d remain", name, want, got)
}
