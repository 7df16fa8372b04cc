// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson

import (
	gojson "github.com/goccy/go-json"
	"github.com/tailscale/hujson"
)

// ToJSON converts an SJSON document into a JSON object. Comments are
// discarded and the implicit top-level braces become explicit. Strings of
// every SJSON spelling (quoted, literal, bare identifier) become JSON
// strings; member order is not preserved.
func ToJSON(data []byte) ([]byte, error) {
	var m map[string]any
	if err := Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return gojson.Marshal(m)
}

// FromJSON converts a JSON object into an SJSON document. The input must
// have an object at the top level. JWCC extensions (comments, trailing
// commas) in the input are accepted and stripped.
func FromJSON(data []byte) ([]byte, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		e := newError(Syntax, "invalid JSON: %v", err)
		e.err = err
		return nil, e
	}
	var m map[string]any
	if err := gojson.Unmarshal(std, &m); err != nil {
		e := newError(Syntax, "invalid JSON: %v", err)
		e.err = err
		return nil, e
	}
	return Marshal(m)
}
