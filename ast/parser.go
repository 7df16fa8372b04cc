// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package ast

import "github.com/sclu1034/sjson"

// Parse parses data as an SJSON document and returns its syntax tree. The
// root is always an object, per the grammar. In case of error, the
// returned error has concrete type [*sjson.Error].
func Parse(data []byte) (*Object, error) {
	h := &parseHandler{}
	if err := sjson.NewStream(data).Parse(h); err != nil {
		return nil, err
	}
	return h.root, nil
}

// parseHandler builds the tree bottom-up from stream events. Containers
// and members under construction live on a stack; a completed value is
// reduced into whatever is on top of it.
type parseHandler struct {
	stack []Value
	root  *Object
}

func (h *parseHandler) BeginObject(loc sjson.Anchor) error {
	h.push(&Object{pos: pos{span: loc.Span()}})
	return nil
}

func (h *parseHandler) EndObject(loc sjson.Anchor) error {
	o := h.pop().(*Object)
	o.span.End = loc.Span().End
	if len(h.stack) == 0 {
		h.root = o
		return nil
	}
	h.reduce(o)
	return nil
}

func (h *parseHandler) BeginArray(loc sjson.Anchor) error {
	h.push(&Array{pos: pos{span: loc.Span()}})
	return nil
}

func (h *parseHandler) EndArray(loc sjson.Anchor) error {
	a := h.pop().(*Array)
	a.span.End = loc.Span().End
	h.reduce(a)
	return nil
}

func (h *parseHandler) BeginMember(loc sjson.Anchor) error {
	key := string(loc.Text())
	if loc.Token() == sjson.String {
		dec, err := sjson.Unquote(key)
		if err != nil {
			return err
		}
		key = dec
	}
	h.push(&Member{pos: pos{span: loc.Span()}, Key: key})
	return nil
}

func (h *parseHandler) EndMember(loc sjson.Anchor) error {
	m := h.pop().(*Member)
	m.span.End = loc.Span().End
	h.top().(*Object).Members = append(h.top().(*Object).Members, m)
	return nil
}

func (h *parseHandler) Value(loc sjson.Anchor) error {
	span := pos{span: loc.Span()}
	switch loc.Token() {
	case sjson.Integer:
		h.reduce(&Integer{pos: span, text: string(loc.Text())})
	case sjson.Number:
		h.reduce(&Number{pos: span, text: string(loc.Text())})
	case sjson.String, sjson.LitString:
		dec, err := sjson.Unquote(string(loc.Text()))
		if err != nil {
			return err
		}
		h.reduce(&String{pos: span, Text: dec})
	case sjson.Ident:
		h.reduce(&String{pos: span, Text: string(loc.Text())})
	case sjson.True:
		h.reduce(&Bool{pos: span, Value: true})
	case sjson.False:
		h.reduce(&Bool{pos: span})
	case sjson.Null:
		h.reduce(&Null{pos: span})
	}
	return nil
}

func (h *parseHandler) EndOfInput(sjson.Anchor) {}

func (h *parseHandler) push(v Value) { h.stack = append(h.stack, v) }

func (h *parseHandler) top() Value { return h.stack[len(h.stack)-1] }

func (h *parseHandler) pop() Value {
	v := h.top()
	h.stack = h.stack[:len(h.stack)-1]
	return v
}

// reduce attaches a completed value to the construction on top of the
// stack: the pending member awaiting its value, or the enclosing array.
func (h *parseHandler) reduce(v Value) {
	switch t := h.top().(type) {
	case *Member:
		t.Value = v
	case *Array:
		t.Values = append(t.Values, v)
	}
}
