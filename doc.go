// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

// Package sjson implements Simplified JSON (SJSON), the configuration
// dialect of the Bitsquid and Stingray engines.
//
// An SJSON document is always an object, written without its outermost
// braces. Keys may be bare identifiers, "=" may replace ":", separators
// between members and elements are optional, and comments and
// triple-quoted literal strings are allowed:
//
//	// A render configuration.
//	win32 = {
//	    query_vsync = true
//	    resolution = [1280 720]
//	}
//
// # Decoding
//
// Use [Unmarshal] or a [Decoder] to decode a document into a struct, a
// string-keyed map, or an untyped map[string]any:
//
//	var cfg struct {
//	    Name string
//	    Age  int
//	}
//	err := sjson.Unmarshal(data, &cfg)
//
// Struct fields match keys case-sensitively and may be renamed or made
// optional with an `sjson:"name,omitempty"` tag. All errors have concrete
// type [*Error] and locate the offending input by offset, line, and column.
//
// # Encoding
//
// Use [Marshal] or an [Encoder] to write a record-shaped value as a
// document. Top-level members are written one per line without braces;
// nested values are indented.
//
// # Scanning and streaming
//
// The [Scanner] yields the lexical tokens of an input, and a [Stream]
// delivers grammar events to a [Handler]. These are the layers the
// decoder is built on, exposed for tools that need token-level access.
// The ast subpackage builds a document tree on top of them.
package sjson
