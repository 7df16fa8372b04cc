// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson

import (
	"fmt"
	"strings"
)

// Kind classifies the errors reported by this package.
type Kind byte

// Constants defining the valid Kind values.
const (
	IO             Kind = iota + 1 // a read or write on the underlying stream failed
	Syntax                         // the input violates the SJSON grammar
	UnexpectedEOF                  // the input ended in the middle of a production
	InvalidType                    // the target shape does not match the next value
	InvalidValue                   // a value is out of range or malformed for its shape
	MissingField                   // a required record field was absent
	UnknownField                   // a key does not belong to the target record
	DuplicateField                 // a key appeared twice in the same object
	Custom                         // an error raised by the host value itself
)

var kindStr = [...]string{
	IO:             "I/O error",
	Syntax:         "syntax error",
	UnexpectedEOF:  "unexpected end of input",
	InvalidType:    "invalid type",
	InvalidValue:   "invalid value",
	MissingField:   "missing field",
	UnknownField:   "unknown field",
	DuplicateField: "duplicate field",
	Custom:         "error",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) && kindStr[k] != "" {
		return kindStr[k]
	}
	return "unknown error"
}

// Error is the concrete type of all errors reported by this package.
//
// Decode errors carry the byte offset of the offending input, the line and
// column derived from it, and the path of keys and indices leading from the
// document root to the value being decoded. Encode errors carry a path only.
type Error struct {
	Kind    Kind
	Message string
	Offset  int      // byte offset into the input, -1 if not applicable
	Line    int      // 1-based line derived from Offset, 0 if not applicable
	Column  int      // 1-based column derived from Offset, 0 if not applicable
	Path    []string // keys and "[n]" indices from the document root

	err error
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d column %d", e.Line, e.Column)
	}
	if len(e.Path) != 0 {
		fmt.Fprintf(&sb, " (at %s)", renderPath(e.Path))
	}
	return sb.String()
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.err }

// newError constructs an Error without source location information.
func newError(kind Kind, msg string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(msg, args...),
		Offset:  -1,
	}
}

// newErrorAt constructs an Error located at the given byte offset of input.
func newErrorAt(kind Kind, input []byte, offset int, msg string, args ...any) *Error {
	lc := lineColAt(input, offset)
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(msg, args...),
		Offset:  offset,
		Line:    lc.Line,
		Column:  lc.Column,
	}
}

// renderPath joins path elements into a dotted form, e.g. "a.b[2].c".
func renderPath(path []string) string {
	var sb strings.Builder
	for i, p := range path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(p)
	}
	return sb.String()
}
