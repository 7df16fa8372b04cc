// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson

import (
	"bytes"
	"encoding"
	"io"
	"reflect"
	"strconv"

	"github.com/sclu1034/sjson/internal/escape"

	"github.com/creachadair/mds/mapset"
	"go4.org/mem"
)

// A Decoder reads and decodes a single SJSON document from an input stream.
// The entire input is read before decoding begins: SJSON is a configuration
// format and documents are expected to fit in memory.
type Decoder struct {
	r            io.Reader
	allowUnknown bool
}

// NewDecoder constructs a new Decoder that consumes input from r.
func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: r} }

// AllowUnknownFields configures the decoder to skip (true) or reject
// (false) object keys that do not match any field of the target record.
// By default unknown keys are an error.
func (d *Decoder) AllowUnknownFields(ok bool) { d.allowUnknown = ok }

// Decode reads the remainder of the input and decodes the document into v.
func (d *Decoder) Decode(v any) error {
	data, err := io.ReadAll(d.r)
	if err != nil {
		e := newError(IO, "read input: %v", err)
		e.err = err
		return e
	}
	return unmarshal(data, v, d.allowUnknown)
}

// Unmarshal decodes the SJSON document in data into v, which must be a
// non-nil pointer to a record-shaped value: a struct, a string-keyed map,
// or an empty interface. The input is borrowed for the duration of the
// call and not retained.
//
// All errors have concrete type [*Error] and carry the byte offset, line,
// and column of the offending input.
func Unmarshal(data []byte, v any) error { return unmarshal(data, v, false) }

// UnmarshalString decodes the SJSON document in s into v.
// See [Unmarshal] for details.
func UnmarshalString(s string, v any) error { return unmarshal([]byte(s), v, false) }

func unmarshal(data []byte, v any, allowUnknown bool) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newError(InvalidType, "target must be a non-nil pointer, got %T", v)
	}
	d := &decodeState{s: NewScanner(data), input: data, allowUnknown: allowUnknown}
	return d.document(rv.Elem())
}

// decodeState is the pull-mode bridge between the scanner and a reflected
// target value. It holds one token of lookahead; the grammar needs no more.
type decodeState struct {
	s       *Scanner
	input   []byte
	peeked  bool
	tok     Token
	scanErr error

	allowUnknown bool
	depth        int
	path         []string
}

// document decodes the top-level key-value list into rv. The bridge is
// pre-primed at the root: it behaves as if an object had just been opened,
// so record targets see the top-level pairs without outer braces.
func (d *decodeState) document(rv reflect.Value) error {
	rv = indirect(rv)
	switch rv.Kind() {
	case reflect.Struct:
		return d.structObject(rv, true)
	case reflect.Map:
		return d.mapObject(rv, true)
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return newError(InvalidType, "cannot decode into non-empty interface %s", rv.Type())
		}
		m, err := d.anyObject(true)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(m))
		return nil
	default:
		return newError(InvalidType, "expected a record-shaped target at the top level, got %s", rv.Type())
	}
}

// next advances to the next non-comment token.
// At the end of the input it returns io.EOF.
func (d *decodeState) next() (Token, error) {
	if d.peeked {
		d.peeked = false
		return d.tok, d.scanErr
	}
	return d.scan()
}

// peek reports the next non-comment token without consuming it.
func (d *decodeState) peek() (Token, error) {
	if !d.peeked {
		d.tok, d.scanErr = d.scan()
		d.peeked = true
	}
	return d.tok, d.scanErr
}

func (d *decodeState) scan() (Token, error) {
	for {
		if err := d.s.Next(); err != nil {
			if err == io.EOF {
				return Invalid, io.EOF
			}
			return Invalid, d.located(err)
		}
		if tok := d.s.Token(); tok != LineComment && tok != BlockComment {
			return tok, nil
		}
	}
}

// objectMembers drives the member loop of a single object, invoking member
// for each key after consuming the key and its "=" or ":" separator; the
// callback must consume the value. If top is set, the loop is primed at the
// document root: no opening brace was consumed and end of input closes the
// object. Otherwise the opening brace has been consumed and the loop
// consumes through the matching close brace.
func (d *decodeState) objectMembers(top bool, member func(key string, keyOff int) error) error {
	seen := mapset.New[string]()
	for {
		tok, err := d.next()
		if err == io.EOF {
			if top {
				return nil
			}
			return d.eof("unterminated object")
		} else if err != nil {
			return err
		}

		switch tok {
		case Comma:
			continue // separators between members are optional noise
		case RBrace:
			if top {
				return d.errf(Syntax, "unexpected %v", tok)
			}
			return nil
		case Ident, String, True, False, Null:
		default:
			return d.errf(Syntax, "expected key, got %v", tok)
		}

		keyOff := d.s.Span().Pos
		key, err := d.tokenString(tok)
		if err != nil {
			return err
		}
		if seen.Has(key) {
			return d.errf(DuplicateField, "duplicate key %q", key)
		}
		seen.Add(key)

		tok, err = d.next()
		if err == io.EOF {
			return d.eof("missing value for key %q", key)
		} else if err != nil {
			return err
		} else if tok != Equal && tok != Colon {
			return d.errf(Syntax, `expected "=" or ":" after key, got %v`, tok)
		}

		d.path = append(d.path, key)
		if err := member(key, keyOff); err != nil {
			return err
		}
		d.path = d.path[:len(d.path)-1]
	}
}

// value decodes the next value from the input into rv.
func (d *decodeState) value(rv reflect.Value) error {
	// A null input makes a pointer target nil without recursing.
	if tok, err := d.peek(); err == nil && tok == Null && rv.Kind() == reflect.Pointer {
		d.next()
		rv.SetZero()
		return nil
	}
	rv = indirect(rv)

	if rv.Type() == variantType {
		return d.variant(rv)
	}
	if u, ok := asTextUnmarshaler(rv); ok {
		return d.textValue(u)
	}

	tok, err := d.next()
	if err == io.EOF {
		return d.eof("missing value")
	} else if err != nil {
		return err
	}

	switch rv.Kind() {
	case reflect.Bool:
		switch tok {
		case True:
			rv.SetBool(true)
		case False:
			rv.SetBool(false)
		default:
			return d.mismatch("a boolean", tok)
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if tok != Integer {
			return d.mismatch("an integer", tok)
		}
		n, err := strconv.ParseInt(string(d.s.Text()), 10, rv.Type().Bits())
		if err != nil {
			return d.errf(InvalidValue, "integer %s out of range for %s", d.s.Text(), rv.Type())
		}
		rv.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if tok != Integer {
			return d.mismatch("an integer", tok)
		}
		n, err := strconv.ParseUint(string(d.s.Text()), 10, rv.Type().Bits())
		if err != nil {
			return d.errf(InvalidValue, "integer %s out of range for %s", d.s.Text(), rv.Type())
		}
		rv.SetUint(n)

	case reflect.Float32, reflect.Float64:
		// An integer fits a float target; the reverse does not hold.
		if tok != Integer && tok != Number {
			return d.mismatch("a number", tok)
		}
		f, err := strconv.ParseFloat(string(d.s.Text()), rv.Type().Bits())
		if err != nil {
			return d.errf(InvalidValue, "number %s out of range for %s", d.s.Text(), rv.Type())
		}
		rv.SetFloat(f)

	case reflect.String:
		// Bare identifiers and literal strings are strings like any other.
		// The reserved literals count as strings only because the target
		// explicitly asks for one.
		switch tok {
		case String, LitString, Ident, True, False, Null:
			s, err := d.tokenString(tok)
			if err != nil {
				return err
			}
			rv.SetString(s)
		default:
			return d.mismatch("a string", tok)
		}

	case reflect.Slice:
		if tok == Null {
			rv.SetZero()
			return nil
		}
		if tok != LSquare {
			return d.mismatch("an array", tok)
		}
		return d.sequence(rv)

	case reflect.Array:
		if tok != LSquare {
			return d.mismatch("an array", tok)
		}
		return d.fixedSequence(rv)

	case reflect.Map:
		if tok == Null {
			rv.SetZero()
			return nil
		}
		if tok != LBrace {
			return d.mismatch("an object", tok)
		}
		return d.mapObject(rv, false)

	case reflect.Struct:
		if tok != LBrace {
			return d.mismatch("an object", tok)
		}
		return d.structObject(rv, false)

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return d.errf(InvalidType, "cannot decode into non-empty interface %s", rv.Type())
		}
		v, err := d.anyValue(tok)
		if err != nil {
			return err
		}
		if v == nil {
			rv.SetZero()
		} else {
			rv.Set(reflect.ValueOf(v))
		}

	default:
		return d.errf(InvalidType, "cannot decode into %s", rv.Type())
	}
	return nil
}

// structObject decodes an object into a struct. Field names match keys
// case-sensitively. Unknown keys are an error unless the decoder allows
// them; required fields that never appear are an error.
func (d *decodeState) structObject(rv reflect.Value, top bool) error {
	info := structFields(rv.Type())
	found := mapset.New[string]()

	err := d.objectMembers(top, func(key string, keyOff int) error {
		f, ok := info.byName[key]
		if !ok {
			if d.allowUnknown {
				return d.skipValue()
			}
			return d.errAt(UnknownField, keyOff, "unknown field %q in %s", key, rv.Type())
		}
		found.Add(key)
		return d.value(rv.Field(f.index))
	})
	if err != nil {
		return err
	}

	for _, f := range info.list {
		if f.required && !found.Has(f.name) {
			return d.errf(MissingField, "missing required field %q in %s", f.name, rv.Type())
		}
	}
	return nil
}

// mapObject decodes an object into a string-keyed map.
func (d *decodeState) mapObject(rv reflect.Value, top bool) error {
	t := rv.Type()
	if t.Key().Kind() != reflect.String {
		return d.errf(InvalidType, "cannot decode into map with key type %s", t.Key())
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(t))
	}
	return d.objectMembers(top, func(key string, _ int) error {
		elem := reflect.New(t.Elem()).Elem()
		if err := d.value(elem); err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), elem)
		return nil
	})
}

// anyObject decodes an object with no target shape into a map[string]any.
func (d *decodeState) anyObject(top bool) (map[string]any, error) {
	m := make(map[string]any)
	err := d.objectMembers(top, func(key string, _ int) error {
		tok, err := d.next()
		if err == io.EOF {
			return d.eof("missing value for key %q", key)
		} else if err != nil {
			return err
		}
		v, err := d.anyValue(tok)
		if err != nil {
			return err
		}
		m[key] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// anyValue infers a value's shape from its first token, already consumed by
// the caller. Objects become map[string]any, arrays []any, integers int64,
// floats float64, and strings of any spelling string.
func (d *decodeState) anyValue(tok Token) (any, error) {
	switch tok {
	case LBrace:
		return d.anyObject(false)
	case LSquare:
		if err := d.push(); err != nil {
			return nil, err
		}
		defer d.pop()
		vs := []any{}
		for {
			tok, err := d.next()
			if err == io.EOF {
				return nil, d.eof("unterminated array")
			} else if err != nil {
				return nil, err
			}
			switch tok {
			case Comma:
				continue
			case RSquare:
				return vs, nil
			}
			d.path = append(d.path, "["+strconv.Itoa(len(vs))+"]")
			v, err := d.anyValue(tok)
			if err != nil {
				return nil, err
			}
			d.path = d.path[:len(d.path)-1]
			vs = append(vs, v)
		}
	case Integer:
		n, err := strconv.ParseInt(string(d.s.Text()), 10, 64)
		if err != nil {
			return nil, d.errf(InvalidValue, "integer %s out of range", d.s.Text())
		}
		return n, nil
	case Number:
		f, err := strconv.ParseFloat(string(d.s.Text()), 64)
		if err != nil {
			return nil, d.errf(InvalidValue, "number %s out of range", d.s.Text())
		}
		return f, nil
	case String, LitString, Ident:
		return d.tokenString(tok)
	case True:
		return true, nil
	case False:
		return false, nil
	case Null:
		return nil, nil
	default:
		return nil, d.errf(Syntax, "unexpected %v", tok)
	}
}

// sequence decodes array elements into a slice. The opening bracket has
// been consumed.
func (d *decodeState) sequence(rv reflect.Value) error {
	if err := d.push(); err != nil {
		return err
	}
	defer d.pop()

	out := reflect.MakeSlice(rv.Type(), 0, 0)
	for {
		tok, err := d.peek()
		if err == io.EOF {
			return d.eof("unterminated array")
		} else if err != nil {
			return err
		}
		switch tok {
		case Comma:
			d.next()
			continue
		case RSquare:
			d.next()
			rv.Set(out)
			return nil
		}

		elem := reflect.New(rv.Type().Elem()).Elem()
		d.path = append(d.path, "["+strconv.Itoa(out.Len())+"]")
		if err := d.value(elem); err != nil {
			return err
		}
		d.path = d.path[:len(d.path)-1]
		out = reflect.Append(out, elem)
	}
}

// fixedSequence decodes array elements into a fixed-length Go array.
// Surplus input elements are an error; surplus target elements are zeroed.
func (d *decodeState) fixedSequence(rv reflect.Value) error {
	if err := d.push(); err != nil {
		return err
	}
	defer d.pop()

	n := 0
	for {
		tok, err := d.peek()
		if err == io.EOF {
			return d.eof("unterminated array")
		} else if err != nil {
			return err
		}
		switch tok {
		case Comma:
			d.next()
			continue
		case RSquare:
			d.next()
			for i := n; i < rv.Len(); i++ {
				rv.Index(i).SetZero()
			}
			return nil
		}

		if n >= rv.Len() {
			return d.errf(InvalidValue, "too many elements for %s", rv.Type())
		}
		d.path = append(d.path, "["+strconv.Itoa(n)+"]")
		if err := d.value(rv.Index(n)); err != nil {
			return err
		}
		d.path = d.path[:len(d.path)-1]
		n++
	}
}

// variant decodes a tagged sum value: a bare identifier or quoted string
// for the unit case, or a single-member object for the data case.
func (d *decodeState) variant(rv reflect.Value) error {
	tok, err := d.next()
	if err == io.EOF {
		return d.eof("missing value")
	} else if err != nil {
		return err
	}

	switch tok {
	case Ident, String:
		tag, err := d.tokenString(tok)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(Variant{Tag: tag}))
		return nil

	case LBrace:
		var v Variant
		n := 0
		err := d.objectMembers(false, func(key string, keyOff int) error {
			if n++; n > 1 {
				return d.errAt(InvalidValue, keyOff, "variant object must have exactly one member")
			}
			v.Tag = key
			tok, err := d.next()
			if err == io.EOF {
				return d.eof("missing value for key %q", key)
			} else if err != nil {
				return err
			}
			val, err := d.anyValue(tok)
			if err != nil {
				return err
			}
			v.Value = val
			return nil
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return d.errf(InvalidValue, "variant object must have exactly one member")
		}
		rv.Set(reflect.ValueOf(v))
		return nil

	default:
		return d.mismatch("a variant", tok)
	}
}

// textValue decodes a string-shaped value through encoding.TextUnmarshaler.
func (d *decodeState) textValue(u encoding.TextUnmarshaler) error {
	tok, err := d.next()
	if err == io.EOF {
		return d.eof("missing value")
	} else if err != nil {
		return err
	}
	switch tok {
	case String, LitString, Ident, True, False, Null:
	default:
		return d.mismatch("a string", tok)
	}
	s, err := d.tokenString(tok)
	if err != nil {
		return err
	}
	if err := u.UnmarshalText([]byte(s)); err != nil {
		e := d.errf(Custom, "%v", err)
		e.err = err
		return e
	}
	return nil
}

// skipValue consumes a single value of any shape without materializing it.
func (d *decodeState) skipValue() error {
	tok, err := d.next()
	if err == io.EOF {
		return d.eof("missing value")
	} else if err != nil {
		return err
	}
	switch tok {
	case LBrace:
		return d.objectMembers(false, func(string, int) error { return d.skipValue() })
	case LSquare:
		if err := d.push(); err != nil {
			return err
		}
		defer d.pop()
		for {
			tok, err := d.peek()
			if err == io.EOF {
				return d.eof("unterminated array")
			} else if err != nil {
				return err
			}
			switch tok {
			case Comma:
				d.next()
			case RSquare:
				d.next()
				return nil
			default:
				if err := d.skipValue(); err != nil {
					return err
				}
			}
		}
	case Integer, Number, String, LitString, Ident, True, False, Null:
		return nil
	default:
		return d.errf(Syntax, "unexpected %v", tok)
	}
}

// tokenString decodes the current token's text as a string value.
func (d *decodeState) tokenString(tok Token) (string, error) {
	text := d.s.Text()
	switch tok {
	case String:
		content := text[1 : len(text)-1]
		if bytes.IndexByte(content, '\\') < 0 {
			return string(content), nil
		}
		dec, err := escape.Unquote(mem.B(content))
		if err != nil {
			e := d.errf(InvalidValue, "%v", err)
			e.err = err
			return "", e
		}
		return string(dec), nil
	case LitString:
		return string(normalizeCRLF(text[3 : len(text)-3])), nil
	default: // Ident, True, False, Null
		return string(text), nil
	}
}

func (d *decodeState) push() error {
	d.depth++
	if d.depth > maxNestingDepth {
		return d.errf(Syntax, "exceeded maximum nesting depth")
	}
	return nil
}

func (d *decodeState) pop() { d.depth-- }

func (d *decodeState) mismatch(want string, got Token) *Error {
	return d.errf(InvalidType, "expected %s value, got %v", want, got)
}

// errf constructs an error at the current token's start offset.
func (d *decodeState) errf(kind Kind, msg string, args ...any) *Error {
	return d.errAt(kind, d.s.Span().Pos, msg, args...)
}

func (d *decodeState) errAt(kind Kind, offset int, msg string, args ...any) *Error {
	e := newErrorAt(kind, d.input, offset, msg, args...)
	e.Path = append([]string(nil), d.path...)
	return e
}

func (d *decodeState) eof(msg string, args ...any) *Error {
	return d.errAt(UnexpectedEOF, len(d.input), msg, args...)
}

// located attaches the current decode path to a scanner error.
func (d *decodeState) located(err error) error {
	if e, ok := err.(*Error); ok && len(e.Path) == 0 {
		e.Path = append([]string(nil), d.path...)
	}
	return err
}

// indirect follows pointers to the value they address, allocating as
// needed.
func indirect(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}
	return rv
}

// asTextUnmarshaler reports whether rv's address implements
// encoding.TextUnmarshaler.
func asTextUnmarshaler(rv reflect.Value) (encoding.TextUnmarshaler, bool) {
	if !rv.CanAddr() {
		return nil, false
	}
	u, ok := rv.Addr().Interface().(encoding.TextUnmarshaler)
	return u, ok
}
