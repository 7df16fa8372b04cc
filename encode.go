// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson

import (
	"bufio"
	"bytes"
	"encoding"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/sclu1034/sjson/internal/escape"

	"go4.org/mem"
)

// An Encoder writes SJSON documents to an output stream.
type Encoder struct {
	w         io.Writer
	indent    string
	quoteKeys bool
}

// NewEncoder constructs a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w, indent: "  "} }

// SetIndent sets the string used for one level of indentation.
// The default is two spaces.
func (e *Encoder) SetIndent(indent string) { e.indent = indent }

// QuoteKeys configures the encoder to quote every object key (true) or only
// keys that are not valid bare identifiers (false, the default).
func (e *Encoder) QuoteKeys(ok bool) { e.quoteKeys = ok }

// Encode writes the SJSON encoding of v to the underlying stream.
// See [Marshal] for the rules of encoding.
func (e *Encoder) Encode(v any) error {
	w := bufio.NewWriter(e.w)
	es := &encodeState{w: w, indent: e.indent, quoteKeys: e.quoteKeys}
	if err := es.document(reflect.ValueOf(v)); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		ioe := newError(IO, "write output: %v", err)
		ioe.err = err
		return ioe
	}
	return nil
}

// Marshal encodes v as an SJSON document. The value must be record-shaped:
// a struct or a string-keyed map, possibly behind pointers. Its members are
// written at the top level without surrounding braces, one per line:
//
//	name = value
//
// Struct fields are written in declaration order; map entries are sorted by
// key. Nested objects and arrays are indented by one level per depth.
// Strings always encode as quoted string values; keys are written bare when
// they are valid identifiers. Errors have concrete type [*Error].
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	es := &encodeState{w: &buf, indent: "  "}
	if err := es.document(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeState renders values into a buffered writer. Intermediate write
// errors are not checked; a bytes.Buffer cannot fail and a bufio.Writer
// latches its first error, which Encode reports from the final Flush.
type encodeState struct {
	w interface {
		WriteString(string) (int, error)
	}
	indent    string
	quoteKeys bool
	path      []string
}

// A member is one key-value pair of an object, with the value still
// reflected.
type member struct {
	name string
	val  reflect.Value
}

// document writes the top-level members of v without surrounding braces.
func (es *encodeState) document(rv reflect.Value) error {
	rv, isNil := deref(rv)
	if isNil {
		return newError(InvalidType, "cannot encode nil at the top level")
	}
	ms, err := es.members(rv)
	if err != nil {
		return err
	}
	for _, m := range ms {
		es.writeKey(m.name)
		es.print(" = ")
		es.path = append(es.path, m.name)
		if err := es.value(m.val, 0); err != nil {
			return err
		}
		es.path = es.path[:len(es.path)-1]
		es.print("\n")
	}
	return nil
}

// members collects the key-value pairs of a record value. Structs
// contribute exported fields in declaration order, minus empty fields
// tagged omitempty; maps contribute entries sorted by key.
func (es *encodeState) members(rv reflect.Value) ([]member, error) {
	switch rv.Kind() {
	case reflect.Struct:
		if rv.Type() == variantType || isTextMarshaler(rv) {
			break
		}
		info := structFields(rv.Type())
		ms := make([]member, 0, len(info.list))
		for _, f := range info.list {
			fv := rv.Field(f.index)
			if f.omitEmpty && isEmptyValue(fv) {
				continue
			}
			ms = append(ms, member{name: f.name, val: fv})
		}
		return ms, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, es.errf(InvalidType, "cannot encode map with key type %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		ms := make([]member, 0, len(keys))
		for _, k := range keys {
			ms = append(ms, member{name: k, val: rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))})
		}
		return ms, nil
	}
	return nil, es.errf(InvalidType, "expected an object at the top level, got %s", rv.Type())
}

// value writes a single value nested at the given depth.
func (es *encodeState) value(rv reflect.Value, depth int) error {
	rv, isNil := deref(rv)
	if isNil {
		es.print("null")
		return nil
	}
	if rv.Type() == variantType {
		return es.variantValue(rv.Interface().(Variant), depth)
	}
	if m, ok := asTextMarshaler(rv); ok {
		text, err := m.MarshalText()
		if err != nil {
			e := es.errf(Custom, "%v", err)
			e.err = err
			return e
		}
		es.writeQuoted(string(text))
		return nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		es.print(strconv.FormatBool(rv.Bool()))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		es.print(strconv.FormatInt(rv.Int(), 10))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		es.print(strconv.FormatUint(rv.Uint(), 10))

	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return es.errf(InvalidValue, "cannot encode %v", f)
		}
		es.print(strconv.FormatFloat(f, 'g', -1, rv.Type().Bits()))

	case reflect.String:
		es.writeQuoted(rv.String())

	case reflect.Struct:
		return es.object(rv, depth)

	case reflect.Map:
		if rv.IsNil() {
			es.print("null")
			return nil
		}
		return es.object(rv, depth)

	case reflect.Slice:
		if rv.IsNil() {
			es.print("null")
			return nil
		}
		return es.sequence(rv, depth)

	case reflect.Array:
		return es.sequence(rv, depth)

	default:
		return es.errf(InvalidType, "cannot encode %s", rv.Type())
	}
	return nil
}

// object writes a nested record value with braces.
func (es *encodeState) object(rv reflect.Value, depth int) error {
	ms, err := es.members(rv)
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		es.print("{}")
		return nil
	}
	es.print("{\n")
	for _, m := range ms {
		es.pad(depth + 1)
		es.writeKey(m.name)
		es.print(" = ")
		es.path = append(es.path, m.name)
		if err := es.value(m.val, depth+1); err != nil {
			return err
		}
		es.path = es.path[:len(es.path)-1]
		es.print("\n")
	}
	es.pad(depth)
	es.print("}")
	return nil
}

// sequence writes an array value with brackets, one element per line.
func (es *encodeState) sequence(rv reflect.Value, depth int) error {
	n := rv.Len()
	if n == 0 {
		es.print("[]")
		return nil
	}
	es.print("[\n")
	for i := 0; i < n; i++ {
		es.pad(depth + 1)
		es.path = append(es.path, "["+strconv.Itoa(i)+"]")
		if err := es.value(rv.Index(i), depth+1); err != nil {
			return err
		}
		es.path = es.path[:len(es.path)-1]
		es.print("\n")
	}
	es.pad(depth)
	es.print("]")
	return nil
}

// variantValue writes a tagged sum value. The unit case is a bare
// identifier when the tag permits, otherwise a quoted string; the data case
// is an object with the tag as its only key.
func (es *encodeState) variantValue(v Variant, depth int) error {
	if v.Value == nil {
		switch v.Tag {
		case "true", "false", "null":
			es.writeQuoted(v.Tag)
		default:
			if IsIdent(v.Tag) {
				es.print(v.Tag)
			} else {
				es.writeQuoted(v.Tag)
			}
		}
		return nil
	}
	es.print("{\n")
	es.pad(depth + 1)
	es.writeKey(v.Tag)
	es.print(" = ")
	es.path = append(es.path, v.Tag)
	if err := es.value(reflect.ValueOf(v.Value), depth+1); err != nil {
		return err
	}
	es.path = es.path[:len(es.path)-1]
	es.print("\n")
	es.pad(depth)
	es.print("}")
	return nil
}

// writeKey writes an object key, bare when it is a valid identifier and the
// encoder is not configured to quote all keys.
func (es *encodeState) writeKey(name string) {
	if es.quoteKeys || !IsIdent(name) {
		es.writeQuoted(name)
	} else {
		es.print(name)
	}
}

func (es *encodeState) writeQuoted(s string) {
	es.print(`"`)
	es.print(string(escape.Quote(mem.S(s))))
	es.print(`"`)
}

func (es *encodeState) pad(depth int) {
	for i := 0; i < depth; i++ {
		es.print(es.indent)
	}
}

func (es *encodeState) print(s string) { es.w.WriteString(s) }

func (es *encodeState) errf(kind Kind, msg string, args ...any) *Error {
	e := newError(kind, msg, args...)
	e.Path = append([]string(nil), es.path...)
	return e
}

// deref follows pointers and interfaces to the concrete value, reporting
// whether a nil was reached along the way.
func deref(rv reflect.Value) (reflect.Value, bool) {
	for {
		switch rv.Kind() {
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				return rv, true
			}
			rv = rv.Elem()
		case reflect.Invalid:
			return rv, true
		default:
			return rv, false
		}
	}
}

// isTextMarshaler reports whether rv or its address implements
// encoding.TextMarshaler. Records that do encode as strings, not objects.
func isTextMarshaler(rv reflect.Value) bool {
	if rv.Type().Implements(textMarshalerType) {
		return true
	}
	return rv.CanAddr() && reflect.PointerTo(rv.Type()).Implements(textMarshalerType)
}

func asTextMarshaler(rv reflect.Value) (encoding.TextMarshaler, bool) {
	if rv.Type().Implements(textMarshalerType) {
		return rv.Interface().(encoding.TextMarshaler), true
	}
	if rv.CanAddr() && reflect.PointerTo(rv.Type()).Implements(textMarshalerType) {
		return rv.Addr().Interface().(encoding.TextMarshaler), true
	}
	return nil, false
}

var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
