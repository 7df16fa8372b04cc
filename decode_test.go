// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sclu1034/sjson"
)

func mustUnmarshal(t *testing.T, input string, v any) {
	t.Helper()
	if err := sjson.Unmarshal([]byte(input), v); err != nil {
		t.Fatalf("Unmarshal %#q: unexpected error: %v", input, err)
	}
}

// checkKind verifies that err is a *sjson.Error of the given kind.
func checkKind(t *testing.T, err error, kind sjson.Kind) *sjson.Error {
	t.Helper()
	var e *sjson.Error
	if !errors.As(err, &e) {
		t.Fatalf("Got error %v, want *Error", err)
	}
	if e.Kind != kind {
		t.Errorf("Got kind %v, want %v", e.Kind, kind)
	}
	return e
}

type person struct {
	Name string
	Age  int
}

func TestUnmarshalStruct(t *testing.T) {
	var tagged struct {
		Name string `sjson:"name"`
		Age  int    `sjson:"age"`
	}
	mustUnmarshal(t, "name = Marc\nage = 21", &tagged)
	if tagged.Name != "Marc" || tagged.Age != 21 {
		t.Errorf("Got %+v, want {Marc 21}", tagged)
	}

	// Untagged fields bind under their Go names, case-sensitively.
	var got person
	mustUnmarshal(t, "Name = Marc\nAge = 21", &got)
	if want := (person{Name: "Marc", Age: 21}); got != want {
		t.Errorf("Got %+v, want %+v", got, want)
	}
}

func TestUnmarshalNested(t *testing.T) {
	type child struct {
		Name string `sjson:"name"`
	}
	type family struct {
		Mother   string  `sjson:"mother"`
		Children []child `sjson:"children"`
	}
	const input = `
mother = "Jessica"
children = [
    { name = Paul }
    { name = "Deborah" }
]`
	var got family
	mustUnmarshal(t, input, &got)
	want := family{
		Mother:   "Jessica",
		Children: []child{{Name: "Paul"}, {Name: "Deborah"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Family (-want, +got):\n%s", diff)
	}
}

func TestUnmarshalSeparators(t *testing.T) {
	// "=" and ":" bind keys identically, and commas are optional.
	for _, input := range []string{
		"a = 1 b = 2",
		"a: 1, b: 2",
		"a=1\nb=2",
		"a : 1 b = 2,",
		"a = 1\r\nb = 2\r\n",
	} {
		var got map[string]int
		mustUnmarshal(t, input, &got)
		want := map[string]int{"a": 1, "b": 2}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Input %#q: (-want, +got):\n%s", input, diff)
		}
	}
}

func TestUnmarshalStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`s = "a:b"`, "a:b"},
		{`s = "café"`, "café"},
		{`s = "tab\there"`, "tab\there"},
		{`s = "😀"`, "😀"},
		{`s = "caf\u00e9"`, "café"},
		{`s = "\ud83d\ude00"`, "😀"},
		{`s = "a\\b\/c\"d"`, `a\b/c"d`},
		{`s = bare-word/path.ext`, "bare-word/path.ext"},
		{`s = true`, "true"},
		{`s = null`, "null"},
		{"s = \"\"\"no \\escape \"here\" at all\"\"\"", "no \\escape \"here\" at all"},
		{"s = \"\"\"multi\nline\"\"\"", "multi\nline"},
		{"s = \"\"\"a\r\nb\"\"\"", "a\nb"},
	}
	for _, tc := range tests {
		var got struct {
			S string `sjson:"s"`
		}
		mustUnmarshal(t, tc.input, &got)
		if got.S != tc.want {
			t.Errorf("Input %#q: got %q, want %q", tc.input, got.S, tc.want)
		}
	}
}

func TestUnmarshalNumbers(t *testing.T) {
	var got struct {
		I8  int8    `sjson:"i8"`
		U16 uint16  `sjson:"u16"`
		I64 int64   `sjson:"i64"`
		U64 uint64  `sjson:"u64"`
		F   float64 `sjson:"f"`
		G   float32 `sjson:"g"`
	}
	const input = `
i8 = -128
u16 = 65535
i64 = -9223372036854775808
u64 = 18446744073709551615
f = 2.5e10
g = 42
`
	mustUnmarshal(t, input, &got)
	if got.I8 != math.MinInt8 || got.U16 != math.MaxUint16 {
		t.Errorf("Got i8=%d u16=%d", got.I8, got.U16)
	}
	if got.I64 != math.MinInt64 || got.U64 != math.MaxUint64 {
		t.Errorf("Got i64=%d u64=%d", got.I64, got.U64)
	}
	if got.F != 2.5e10 || got.G != 42 {
		t.Errorf("Got f=%v g=%v", got.F, got.G)
	}
}

func TestUnmarshalNumberRange(t *testing.T) {
	for _, input := range []string{
		"v = 9223372036854775808",  // MaxInt64 + 1
		"v = -9223372036854775809", // MinInt64 - 1
	} {
		var got struct {
			V int64 `sjson:"v"`
		}
		err := sjson.Unmarshal([]byte(input), &got)
		checkKind(t, err, sjson.InvalidValue)
	}
	var got struct {
		V uint `sjson:"v"`
	}
	err := sjson.Unmarshal([]byte("v = -1"), &got)
	checkKind(t, err, sjson.InvalidValue)
}

func TestUnmarshalComments(t *testing.T) {
	const input = `
// Header comment.
a = 1 // trailing
/* block
   spanning lines */
b = /* inline */ 2
`
	var got map[string]int
	mustUnmarshal(t, input, &got)
	want := map[string]int{"a": 1, "b": 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Map (-want, +got):\n%s", diff)
	}
}

func TestUnmarshalAny(t *testing.T) {
	const input = `
title = "example"
count = 3
ratio = 0.5
ok = true
none = null
tags = [a b]
meta = { depth = 2 }
`
	var got map[string]any
	mustUnmarshal(t, input, &got)
	want := map[string]any{
		"title": "example",
		"count": int64(3),
		"ratio": 0.5,
		"ok":    true,
		"none":  nil,
		"tags":  []any{"a", "b"},
		"meta":  map[string]any{"depth": int64(2)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Document (-want, +got):\n%s", diff)
	}
}

func TestUnmarshalEmpty(t *testing.T) {
	for _, input := range []string{"", "   \n\t", "// only comments\n/* here */"} {
		got := map[string]any{}
		mustUnmarshal(t, input, &got)
		if len(got) != 0 {
			t.Errorf("Input %#q: got %v, want empty", input, got)
		}
	}
}

func TestUnmarshalPointersAndNull(t *testing.T) {
	var got struct {
		A *int           `sjson:"a"`
		B *int           `sjson:"b"`
		C []int          `sjson:"c"`
		D map[string]int `sjson:"d"`
	}
	mustUnmarshal(t, "a = 5 b = null c = null d = null", &got)
	if got.A == nil || *got.A != 5 {
		t.Errorf("a: got %v, want 5", got.A)
	}
	if got.B != nil || got.C != nil || got.D != nil {
		t.Errorf("Null targets: got b=%v c=%v d=%v, want all nil", got.B, got.C, got.D)
	}
}

func TestUnmarshalStringSlice(t *testing.T) {
	var got struct {
		Friends []string `sjson:"friends"`
	}
	mustUnmarshal(t, "friends = [\n  Jessica\n  Paul\n]", &got)
	want := []string{"Jessica", "Paul"}
	if diff := cmp.Diff(want, got.Friends); diff != "" {
		t.Errorf("Friends (-want, +got):\n%s", diff)
	}
}

func TestUnmarshalDeep(t *testing.T) {
	// Eight levels of alternating objects and arrays.
	const input = "a = { b = [ { c = [ { d = [ { e = [1] } ] } ] } ] }"
	var got map[string]any
	mustUnmarshal(t, input, &got)
	v := got["a"].(map[string]any)["b"].([]any)[0].(map[string]any)["c"].([]any)[0].(map[string]any)["d"].([]any)[0].(map[string]any)["e"].([]any)[0]
	if v != int64(1) {
		t.Errorf("Got %v, want 1", v)
	}
}

func TestUnmarshalArrays(t *testing.T) {
	var got struct {
		Fixed [4]int `sjson:"fixed"`
	}
	mustUnmarshal(t, "fixed = [1 2]", &got)
	if want := [4]int{1, 2, 0, 0}; got.Fixed != want {
		t.Errorf("Got %v, want %v", got.Fixed, want)
	}

	err := sjson.Unmarshal([]byte("fixed = [1 2 3 4 5]"), &got)
	checkKind(t, err, sjson.InvalidValue)
}

func TestUnmarshalVariant(t *testing.T) {
	var got struct {
		Shape sjson.Variant `sjson:"shape"`
	}
	mustUnmarshal(t, "shape = Circle", &got)
	if want := (sjson.Variant{Tag: "Circle"}); got.Shape.Tag != want.Tag || got.Shape.Value != nil {
		t.Errorf("Got %+v, want %+v", got.Shape, want)
	}

	mustUnmarshal(t, "shape = { Square = { side = 3 } }", &got)
	want := sjson.Variant{Tag: "Square", Value: map[string]any{"side": int64(3)}}
	if diff := cmp.Diff(want, got.Shape); diff != "" {
		t.Errorf("Variant (-want, +got):\n%s", diff)
	}

	err := sjson.Unmarshal([]byte("shape = { A = 1 B = 2 }"), &got)
	checkKind(t, err, sjson.InvalidValue)

	err = sjson.Unmarshal([]byte("shape = {}"), &got)
	checkKind(t, err, sjson.InvalidValue)
}

func TestUnmarshalTextUnmarshaler(t *testing.T) {
	var got struct {
		When time.Time `sjson:"when"`
	}
	mustUnmarshal(t, `when = "2024-05-01T12:00:00Z"`, &got)
	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if !got.When.Equal(want) {
		t.Errorf("Got %v, want %v", got.When, want)
	}

	err := sjson.Unmarshal([]byte(`when = "not a time"`), &got)
	e := checkKind(t, err, sjson.Custom)
	if e.Unwrap() == nil {
		t.Error("Custom error does not wrap its cause")
	}
}

func TestUnmarshalFieldErrors(t *testing.T) {
	type target struct {
		Name string `sjson:"name"`
		Age  int    `sjson:"age,omitempty"`
	}

	t.Run("Unknown", func(t *testing.T) {
		var got target
		err := sjson.Unmarshal([]byte("name = x extra = 1"), &got)
		e := checkKind(t, err, sjson.UnknownField)
		if !strings.Contains(e.Message, `"extra"`) {
			t.Errorf("Message %q does not name the field", e.Message)
		}
	})

	t.Run("UnknownAllowed", func(t *testing.T) {
		d := sjson.NewDecoder(strings.NewReader("name = x extra = { deep = [1 2] } age = 3"))
		d.AllowUnknownFields(true)
		var got target
		if err := d.Decode(&got); err != nil {
			t.Fatalf("Decode: unexpected error: %v", err)
		}
		if got.Name != "x" || got.Age != 3 {
			t.Errorf("Got %+v", got)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		var got target
		err := sjson.Unmarshal([]byte("age = 3"), &got)
		e := checkKind(t, err, sjson.MissingField)
		if !strings.Contains(e.Message, `"name"`) {
			t.Errorf("Message %q does not name the field", e.Message)
		}
	})

	t.Run("MissingOptional", func(t *testing.T) {
		var got target
		mustUnmarshal(t, "name = x", &got)
		if got.Age != 0 {
			t.Errorf("Got age %d, want 0", got.Age)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		var got target
		err := sjson.Unmarshal([]byte("name = x\nname = y"), &got)
		e := checkKind(t, err, sjson.DuplicateField)
		if e.Line != 2 {
			t.Errorf("Got line %d, want 2 (the second occurrence)", e.Line)
		}
	})
}

func TestUnmarshalTypeMismatch(t *testing.T) {
	tests := []struct {
		input  string
		target any
	}{
		{"v = true", &struct {
			V int `sjson:"v"`
		}{}},
		{"v = 1.5", &struct {
			V int `sjson:"v"`
		}{}},
		{`v = "s"`, &struct {
			V float64 `sjson:"v"`
		}{}},
		{"v = [1]", &struct {
			V string `sjson:"v"`
		}{}},
		{"v = { a = 1 }", &struct {
			V []int `sjson:"v"`
		}{}},
		{"v = 1", &struct {
			V map[string]int `sjson:"v"`
		}{}},
	}
	for _, tc := range tests {
		err := sjson.Unmarshal([]byte(tc.input), tc.target)
		var e *sjson.Error
		if !errors.As(err, &e) || e.Kind != sjson.InvalidType {
			t.Errorf("Input %#q: got %v, want invalid type error", tc.input, err)
		}
	}
}

func TestUnmarshalTopLevel(t *testing.T) {
	var n int
	err := sjson.Unmarshal([]byte("a = 1"), &n)
	checkKind(t, err, sjson.InvalidType)

	err = sjson.Unmarshal([]byte("a = 1"), person{})
	checkKind(t, err, sjson.InvalidType)

	var nilp *person
	err = sjson.Unmarshal([]byte("a = 1"), nilp)
	checkKind(t, err, sjson.InvalidType)
}

func TestErrorLocation(t *testing.T) {
	var got map[string]any
	err := sjson.Unmarshal([]byte("a = 1\nb = [1 }\n"), &got)
	e := checkKind(t, err, sjson.Syntax)
	if e.Line != 2 || e.Column != 8 {
		t.Errorf("Got %d:%d, want 2:8", e.Line, e.Column)
	}
	if got := e.Error(); !strings.Contains(got, "at line 2 column 8") {
		t.Errorf("Error() = %q does not render the location", got)
	}
}

func TestErrorPath(t *testing.T) {
	type inner struct {
		N int `sjson:"n"`
	}
	var got struct {
		List []inner `sjson:"list"`
	}
	err := sjson.Unmarshal([]byte(`list = [{ n = 1 } { n = "x" }]`), &got)
	var e *sjson.Error
	if !errors.As(err, &e) {
		t.Fatalf("Got error %v, want *Error", err)
	}
	want := []string{"list", "[1]", "n"}
	if diff := cmp.Diff(want, e.Path); diff != "" {
		t.Errorf("Path (-want, +got):\n%s", diff)
	}
	if !strings.Contains(e.Error(), "list[1].n") {
		t.Errorf("Error() = %q does not render the path", e.Error())
	}
}

func TestRoundTrip(t *testing.T) {
	type config struct {
		Name     string         `sjson:"name"`
		Size     int            `sjson:"size"`
		Ratio    float64        `sjson:"ratio"`
		Active   bool           `sjson:"active"`
		Tags     []string       `sjson:"tags"`
		Settings map[string]int `sjson:"settings,omitempty"`
	}
	orig := config{
		Name:   "render config",
		Size:   1280,
		Ratio:  1.75,
		Active: true,
		Tags:   []string{"vsync", "fullscreen mode"},
		Settings: map[string]int{
			"depth":   24,
			"samples": 4,
		},
	}
	data, err := sjson.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: unexpected error: %v", err)
	}
	var got config
	if err := sjson.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: unexpected error: %v", err)
	}
	if diff := cmp.Diff(orig, got); diff != "" {
		t.Errorf("Round trip (-want, +got):\n%s", diff)
	}

	// A second encode of the decoded value reproduces the first output.
	again, err := sjson.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal: unexpected error: %v", err)
	}
	if string(again) != string(data) {
		t.Errorf("Re-encode differs:\n%s\nvs:\n%s", again, data)
	}
}
