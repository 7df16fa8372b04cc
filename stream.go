// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// An Anchor represents a location in source text. The methods of an Anchor
// will report the location, token type, and contents of the anchor.
type Anchor interface {
	Token() Token       // Returns the token type of the anchor
	Text() []byte       // Returns a view of the raw (undecoded) text of the anchor
	Copy() []byte       // Returns a copy of the raw text of the anchor
	Span() Span         // Returns the offset span of the anchor
	Location() Location // Returns the full location of the anchor
}

// A Handler handles events from parsing an input document. If a method
// reports an error, parsing stops and that error is returned to the caller.
// The parser ensures objects and arrays are correctly balanced.
//
// The top level of an SJSON document is an implicit object: the parser
// reports BeginObject before the first key and EndObject at the end of the
// input, so a handler sees the same shape for the document as for any
// nested object. The anchors of these two synthesized events carry
// zero-width spans.
type Handler interface {
	// Begin a new object, whose open brace is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose close brace is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose open bracket is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose close bracket is at loc.
	EndArray(loc Anchor) error

	// Begin a new object member, whose key is at loc. The key is either a
	// bare identifier or a quoted string; quoted keys are still quoted (see
	// Unquote).
	BeginMember(loc Anchor) error

	// End the current object member. Because separators between members are
	// optional in SJSON, loc reports the last token of the member's value
	// rather than a terminator.
	EndMember(loc Anchor) error

	// Report a data value at the given location. The type of the value can
	// be recovered from the token. String tokens are quoted.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// CommentHandler is an optional interface that a Handler may implement to
// handle comment tokens. If a handler implements this method, Comment will
// be called for each comment token that occurs in the input. If the handler
// does not provide this method, comments are silently discarded.
type CommentHandler interface {
	// Process the line or block comment at the specified location.
	// Line comments include their leading "//" but not the trailing newline.
	// Block comments include their leading "/*" and trailing "*/".
	Comment(loc Anchor)
}

// Stream is a stream parser that consumes an SJSON document and delivers
// events to a Handler corresponding with the structure of the input.
type Stream struct {
	s     *Scanner
	depth int
}

// maxNestingDepth bounds the recursion of the parser so that adversarial
// inputs produce a syntax error instead of exhausting the stack.
const maxNestingDepth = 5000

// NewStream constructs a new Stream that consumes the given input.
func NewStream(input []byte) *Stream { return &Stream{s: NewScanner(input)} }

func (st *Stream) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case *Error:
			*errp = err
		case handlerError:
			*errp = err.error
		default:
			panic(serr)
		}
	}
}

// Parse parses the input document and delivers events to h until either an
// error occurs or the input is exhausted. In case of a grammar violation,
// the returned error has concrete type [*Error].
func (st *Stream) Parse(h Handler) (err error) {
	defer st.recoverParseError(&err)

	st.checkError(h.BeginObject(synthAnchor{tok: LBrace, input: st.s.input}))
	st.parseMembers(h, true)
	end := Span{Pos: len(st.s.input), End: len(st.s.input)}
	st.checkError(h.EndObject(synthAnchor{tok: RBrace, span: end, input: st.s.input}))
	h.EndOfInput(st.s)
	return nil
}

// parseMembers consumes zero or more key-value members. At the top level
// the members run to the end of the input; otherwise the opening brace has
// been consumed and parsing stops at the matching close brace.
func (st *Stream) parseMembers(h Handler, top bool) {
	for {
		err := st.nextToken(h)
		if err == io.EOF {
			if top {
				return
			}
			st.failEOF("unterminated object")
		} else if err != nil {
			st.fail(err)
		}

		switch tok := st.s.Token(); tok {
		case Comma:
			continue // separators between members are optional noise
		case RBrace:
			if top {
				st.syntaxError(nil, "unexpected %v", tok)
			}
			return
		case Ident, String, True, False, Null:
			st.parseMember(h)
		default:
			st.syntaxError(nil, "expected key, got %v", tok)
		}
	}
}

// parseMember consumes a single member: key ("="|":") value.
// Precondition: the current token is the key.
func (st *Stream) parseMember(h Handler) {
	st.checkError(h.BeginMember(st.s))
	st.advance(h, Equal, Colon)
	st.advance(h)
	st.parseValue(h)
	st.checkError(h.EndMember(st.s))
}

// parseValue consumes a single value of any type.
// Precondition: the current token is the first token of the value.
func (st *Stream) parseValue(h Handler) {
	st.depth++
	if st.depth > maxNestingDepth {
		st.syntaxError(nil, "exceeded maximum nesting depth")
	}
	defer func() { st.depth-- }()

	switch tok := st.s.Token(); tok {
	case LBrace:
		st.checkError(h.BeginObject(st.s))
		st.parseMembers(h, false)
		st.checkError(h.EndObject(st.s))
	case LSquare:
		st.checkError(h.BeginArray(st.s))
		st.parseElements(h)
		st.checkError(h.EndArray(st.s))
	case Integer, Number, String, LitString, Ident, True, False, Null:
		st.checkError(h.Value(st.s))
	default:
		st.syntaxError(nil, "unexpected %v", tok)
	}
}

// parseElements consumes zero or more array values.
// Precondition: the opening bracket has been consumed.
// Postcondition: the current token is the closing bracket.
func (st *Stream) parseElements(h Handler) {
	for {
		if err := st.nextToken(h); err == io.EOF {
			st.failEOF("unterminated array")
		} else if err != nil {
			st.fail(err)
		}
		switch st.s.Token() {
		case Comma:
			continue // separators between elements are optional noise
		case RSquare:
			return
		default:
			st.parseValue(h)
		}
	}
}

func (st *Stream) nextToken(h Handler) error {
	for {
		if err := st.s.Next(); err != nil {
			return err
		}
		// Comments are equivalent to whitespace. Pass them to the handler if
		// it implements CommentHandler, then skip to the next token.
		if tok := st.s.Token(); tok == LineComment || tok == BlockComment {
			if ch, ok := h.(CommentHandler); ok {
				ch.Comment(st.s)
			}
			continue
		}
		return nil
	}
}

func (st *Stream) advance(h Handler, tokens ...Token) Token {
	if err := st.nextToken(h); err == io.EOF {
		st.failEOF("%v", tokLabel(tokens, "end of input"))
	} else if err != nil {
		st.fail(err)
	}
	tok := st.s.Token()
	if len(tokens) != 0 && !slices.Contains(tokens, tok) {
		st.syntaxError(nil, "%v", tokLabel(tokens, tok))
	}
	return tok
}

func (st *Stream) syntaxError(err error, msg string, args ...any) {
	e := newErrorAt(Syntax, st.s.input, st.s.Span().Pos, msg, args...)
	e.err = err
	panic(e)
}

func (st *Stream) failEOF(msg string, args ...any) {
	panic(newErrorAt(UnexpectedEOF, st.s.input, len(st.s.input), msg, args...))
}

func (st *Stream) fail(err error) {
	if e, ok := err.(*Error); ok {
		panic(e)
	}
	st.syntaxError(err, "%v", err)
}

func (st *Stream) checkError(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got any) string {
	if len(tokens) == 0 {
		return fmt.Sprint(got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, len(tokens)-1)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}

// A synthAnchor is the anchor of the implicit braces around the top level
// of a document. Its span is empty.
type synthAnchor struct {
	tok   Token
	span  Span
	input []byte
}

func (a synthAnchor) Token() Token { return a.tok }
func (a synthAnchor) Text() []byte { return nil }
func (a synthAnchor) Copy() []byte { return nil }
func (a synthAnchor) Span() Span   { return a.span }

func (a synthAnchor) Location() Location {
	lc := lineColAt(a.input, a.span.Pos)
	return Location{Span: a.span, First: lc, Last: lc}
}
