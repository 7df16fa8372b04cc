// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"
)

// Token is the type of a lexical token in the SJSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid   Token = iota // invalid token
	LBrace                 // left brace "{"
	RBrace                 // right brace "}"
	LSquare                // left square bracket "["
	RSquare                // right square bracket "]"
	Comma                  // comma ","
	Colon                  // colon ":"
	Equal                  // equal sign "="
	Integer                // number: integer with no fraction or exponent
	Number                 // number with fraction and/or exponent
	String                 // quoted string
	LitString              // literal string delimited by triple quotes
	Ident                  // bare identifier
	True                   // constant: true
	False                  // constant: false
	Null                   // constant: null

	BlockComment // comment: /* ... */
	LineComment  // comment: // ... <LF>
)

var tokenStr = [...]string{
	Invalid:   "invalid token",
	LBrace:    `"{"`,
	RBrace:    `"}"`,
	LSquare:   `"["`,
	RSquare:   `"]"`,
	Comma:     `","`,
	Colon:     `":"`,
	Equal:     `"="`,
	Integer:   "integer",
	Number:    "number",
	String:    "string",
	LitString: "literal string",
	Ident:     "identifier",
	True:      "true",
	False:     "false",
	Null:      "null",

	BlockComment: "block comment",
	LineComment:  "line comment",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// A Scanner reads lexical tokens from an SJSON input. Each call to Next
// advances the scanner to the next token, or reports an error.
//
// The scanner borrows the input slice it was constructed from; token text is
// returned as subslices of the input without copying.
type Scanner struct {
	input []byte
	pos   int // start offset of the current token
	cur   int // read cursor; end offset of the current token
	tok   Token
	err   error
}

// NewScanner constructs a new lexical scanner that consumes the given input.
// The scanner retains the slice but does not modify it.
func NewScanner(input []byte) *Scanner { return &Scanner{input: input} }

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF. Comments are reported as
// ordinary tokens; whitespace is skipped.
func (s *Scanner) Next() error {
	s.err = nil
	s.tok = Invalid
	s.skipSpace()
	s.pos = s.cur
	if s.cur >= len(s.input) {
		return s.setErr(io.EOF)
	}

	ch := s.input[s.cur]

	// Handle punctuation.
	if t, ok := selfDelim(ch); ok {
		s.cur++
		s.tok = t
		return nil
	}

	// Handle numbers. A leading digit or minus sign commits to the number
	// production; bare words cannot begin with either.
	if ch == '-' || isDigit(ch) {
		return s.scanNumber()
	}

	// Handle quoted and literal string values.
	if ch == '"' {
		return s.scanString()
	}

	// Handle comments.
	if ch == '/' {
		return s.scanComment()
	}

	// Handle bare identifiers, including the reserved constants
	// true, false, and null.
	r, n := utf8.DecodeRune(s.input[s.cur:])
	if isIdentStart(r) {
		if r == utf8.RuneError && n == 1 {
			return s.errf(Syntax, "invalid UTF-8 in identifier")
		}
		s.cur += n
		return s.scanIdent()
	}
	return s.errf(Syntax, "unexpected %q", r)
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns the raw text of the current token as a subslice of the input.
// String tokens include their delimiters. The slice remains valid for the
// lifetime of the input buffer; the caller must not modify it.
func (s *Scanner) Text() []byte { return s.input[s.pos:s.cur] }

// Copy returns a copy of the raw text of the current token.
func (s *Scanner) Copy() []byte { return append([]byte(nil), s.Text()...) }

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.cur} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: lineColAt(s.input, s.pos),
		Last:  lineColAt(s.input, s.cur),
	}
}

func (s *Scanner) skipSpace() {
	for s.cur < len(s.input) {
		switch s.input[s.cur] {
		case ' ', '\t', '\r', '\n':
			s.cur++
		default:
			return
		}
	}
}

func (s *Scanner) scanNumber() error {
	if s.input[s.cur] == '-' {
		s.cur++
		if s.cur >= len(s.input) {
			return s.errf(UnexpectedEOF, "want digit after minus sign")
		} else if !isDigit(s.input[s.cur]) {
			return s.errf(Syntax, "want digit after minus sign, got %q", s.input[s.cur])
		}
	}

	// Consume the integer part. Redundant leading zeroes are accepted.
	s.digits()
	s.tok = Integer

	// If a decimal point follows, consume a fractional part.
	if s.cur < len(s.input) && s.input[s.cur] == '.' {
		s.cur++
		if n := s.digits(); n == 0 {
			return s.errf(Syntax, "no digits after decimal point")
		}
		s.tok = Number
	}

	// If an exponent follows, consume it.
	if s.cur < len(s.input) && (s.input[s.cur] == 'e' || s.input[s.cur] == 'E') {
		s.cur++
		if s.cur < len(s.input) && (s.input[s.cur] == '-' || s.input[s.cur] == '+') {
			s.cur++
		}
		if n := s.digits(); n == 0 {
			return s.errf(Syntax, "missing exponent digits")
		}
		s.tok = Number
	}

	// A word with a leading digit is a number, never an identifier, so
	// trailing identifier characters invalidate the whole token.
	if s.cur < len(s.input) {
		if r, _ := utf8.DecodeRune(s.input[s.cur:]); isIdentCont(r) {
			return s.errf(Syntax, "invalid %q in number", r)
		}
	}
	return nil
}

// digits consumes a run of decimal digits and reports how many were found.
func (s *Scanner) digits() (n int) {
	for s.cur < len(s.input) && isDigit(s.input[s.cur]) {
		s.cur++
		n++
	}
	return
}

func (s *Scanner) scanString() error {
	if bytes.HasPrefix(s.input[s.cur:], []byte(`"""`)) {
		return s.scanLitString()
	}
	s.cur++ // opening quote
	for s.cur < len(s.input) {
		switch ch := s.input[s.cur]; {
		case ch == '"':
			s.cur++
			s.tok = String
			return nil
		case ch == '\\':
			if err := s.scanEscape(); err != nil {
				return err
			}
		case ch < ' ':
			return s.errf(Syntax, "unescaped control %q in string", ch)
		case ch < utf8.RuneSelf:
			s.cur++
		default:
			r, n := utf8.DecodeRune(s.input[s.cur:])
			if r == utf8.RuneError && n == 1 {
				return s.errf(InvalidValue, "invalid UTF-8 in string")
			}
			s.cur += n
		}
	}
	return s.errf(UnexpectedEOF, "unterminated string")
}

// scanEscape validates a single \-escape. The cursor is on the backslash.
// The escaped text is left undecoded; see Unquote.
func (s *Scanner) scanEscape() error {
	s.cur++
	if s.cur >= len(s.input) {
		return s.errf(UnexpectedEOF, "incomplete escape sequence")
	}
	switch ch := s.input[s.cur]; ch {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		s.cur++
	case 'u':
		s.cur++
		for i := 0; i < 4; i++ {
			if s.cur >= len(s.input) {
				return s.errf(UnexpectedEOF, "incomplete Unicode escape")
			} else if !isHexDigit(s.input[s.cur]) {
				return s.errf(Syntax, "not a hex digit: %q", s.input[s.cur])
			}
			s.cur++
		}
	default:
		return s.errf(Syntax, "invalid %q after escape", ch)
	}
	return nil
}

// scanLitString consumes a triple-quoted literal string. The contents are
// taken verbatim up to the first closing delimiter; there is no escape for
// `"""` inside.
func (s *Scanner) scanLitString() error {
	s.cur += 3
	i := bytes.Index(s.input[s.cur:], []byte(`"""`))
	if i < 0 {
		s.cur = len(s.input)
		return s.errf(UnexpectedEOF, "unterminated literal string")
	}
	s.cur += i + 3
	s.tok = LitString
	return nil
}

func (s *Scanner) scanComment() error {
	s.cur++
	if s.cur >= len(s.input) {
		return s.errf(UnexpectedEOF, "unterminated comment")
	}
	switch ch := s.input[s.cur]; ch {
	case '/': // line comment to LF
		s.cur++
		for s.cur < len(s.input) && s.input[s.cur] != '\n' {
			s.cur++
		}
		s.tok = LineComment
		return nil

	case '*': // block comment, non-nesting
		s.cur++
		i := bytes.Index(s.input[s.cur:], []byte("*/"))
		if i < 0 {
			s.cur = len(s.input)
			return s.errf(UnexpectedEOF, "unterminated block comment")
		}
		s.cur += i + 2
		s.tok = BlockComment
		return nil

	default:
		return s.errf(Syntax, "invalid %q in comment", ch)
	}
}

// scanIdent consumes the remainder of a bare identifier. The first rune has
// already been consumed.
func (s *Scanner) scanIdent() error {
	for s.cur < len(s.input) {
		r, n := utf8.DecodeRune(s.input[s.cur:])
		if !isIdentCont(r) {
			break
		} else if r == utf8.RuneError && n == 1 {
			return s.errf(Syntax, "invalid UTF-8 in identifier")
		}
		s.cur += n
	}

	// Reserved literals produce constant tokens, not identifiers.
	switch string(s.Text()) {
	case "true":
		s.tok = True
	case "false":
		s.tok = False
	case "null":
		s.tok = Null
	default:
		s.tok = Ident
	}
	return nil
}

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

func (s *Scanner) errf(kind Kind, msg string, args ...any) error {
	return s.setErr(newErrorAt(kind, s.input, s.cur, msg, args...))
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// isIdentStart reports whether r may begin a bare identifier: a letter, an
// underscore, or any rune beyond the ASCII range.
func isIdentStart(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r >= utf8.RuneSelf
}

// isIdentCont reports whether r may continue a bare identifier.
func isIdentCont(r rune) bool {
	switch r {
	case '.', '-', '/', '\\', '+':
		return true
	}
	return isIdentStart(r) || ('0' <= r && r <= '9')
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon, Equal}

func selfDelim(ch byte) (Token, bool) {
	i := strings.IndexByte("{}[],:=", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
