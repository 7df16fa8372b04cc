// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

// Package ast defines an abstract syntax tree for SJSON documents, and a
// parser that constructs trees from source text.
package ast

import (
	"strconv"
	"strings"

	"github.com/sclu1034/sjson"
)

// A Value is an arbitrary value in the SJSON syntax tree.
type Value interface {
	// Span reports the location of the value in source text. The span of an
	// object covers its braces; the span of the top-level object is the
	// whole input, as its braces are implicit.
	Span() sjson.Span

	// JSON renders the value as compact JSON. Keys and strings of every
	// SJSON spelling render as ordinary JSON strings.
	JSON() string
}

type pos struct{ span sjson.Span }

func (p pos) Span() sjson.Span { return p.span }

// An Object is a collection of key-value members. Duplicate keys are
// preserved in source order.
type Object struct {
	pos
	Members []*Member
}

// Find returns the first member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	for _, m := range o.Members {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Len reports the number of members of o.
func (o *Object) Len() int { return len(o.Members) }

func (o *Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o.Members {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

// A Member is a single key-value pair of an object. The key is stored in
// decoded form regardless of how it was spelled in the source.
type Member struct {
	pos
	Key   string
	Value Value
}

func (m *Member) JSON() string {
	return sjson.Quote(m.Key) + ":" + m.Value.JSON()
}

// An Array is a sequence of values.
type Array struct {
	pos
	Values []Value
}

// Len reports the number of elements of a.
func (a *Array) Len() int { return len(a.Values) }

func (a *Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.Values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

// A String is a string value. Text holds the decoded content, whether the
// source spelled it quoted, triple-quoted, or as a bare identifier.
type String struct {
	pos
	Text string
}

func (s *String) JSON() string { return sjson.Quote(s.Text) }

// An Integer is a whole number without fraction or exponent.
type Integer struct {
	pos
	text string
}

// Int64 returns the value of z as an int64.
func (z *Integer) Int64() int64 {
	v, err := strconv.ParseInt(z.text, 10, 64)
	if err != nil {
		panic(err)
	}
	return v
}

func (z *Integer) JSON() string { return strconv.FormatInt(z.Int64(), 10) }

// A Number is a number with a fraction and/or an exponent.
type Number struct {
	pos
	text string
}

// Float64 returns the value of n as a float64.
func (n *Number) Float64() float64 {
	v, err := strconv.ParseFloat(n.text, 64)
	if err != nil {
		panic(err)
	}
	return v
}

func (n *Number) JSON() string {
	return strconv.FormatFloat(n.Float64(), 'g', -1, 64)
}

// A Bool is a Boolean constant.
type Bool struct {
	pos
	Value bool
}

func (b *Bool) JSON() string { return strconv.FormatBool(b.Value) }

// A Null is the null constant.
type Null struct{ pos }

func (Null) JSON() string { return "null" }
