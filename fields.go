// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson

import (
	"reflect"
	"strings"
)

// A field describes one encodable/decodable field of a record type.
type field struct {
	name      string
	index     int
	omitEmpty bool

	// A field is required when decoding unless it is optional-shaped (a
	// pointer, slice, map, or interface) or tagged omitempty.
	required bool
}

type structInfo struct {
	byName map[string]*field
	list   []*field // in declaration order
}

// structFields computes the field set of a record type. Field names match
// SJSON keys case-sensitively; use an `sjson:"name"` tag to bind a field to
// a key that is not a valid exported Go identifier. A tag of "-" excludes
// the field, and the "omitempty" option elides zero values on output and
// makes the field optional on input.
func structFields(t reflect.Type) *structInfo {
	info := &structInfo{byName: make(map[string]*field)}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		var omit bool
		if tag, ok := sf.Tag.Lookup("sjson"); ok {
			base, opts, _ := strings.Cut(tag, ",")
			if base == "-" && opts == "" {
				continue
			}
			if base != "" {
				name = base
			}
			for _, opt := range strings.Split(opts, ",") {
				if opt == "omitempty" {
					omit = true
				}
			}
		}
		f := &field{name: name, index: i, omitEmpty: omit}
		switch sf.Type.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			// optional-shaped
		default:
			f.required = !omit
		}
		info.byName[name] = f
		info.list = append(info.list, f)
	}
	return info
}

// isEmptyValue reports whether v is the kind of value elided by the
// omitempty tag option.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}
