// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson

import "reflect"

// A Variant is a tagged sum value. SJSON encodes a unit case as a bare
// identifier and a data case as an object with exactly one member:
//
//	kind = Circle
//	kind = { Square = { side = 3 } }
//
// A Variant with a nil Value is the unit case. When decoding a data case,
// Value is populated the same way as an untyped (any) target: objects
// become map[string]any, arrays []any, integers int64, and so on.
type Variant struct {
	Tag   string
	Value any
}

var variantType = reflect.TypeOf(Variant{})
