// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sclu1034/sjson"
)

// benchDoc builds a synthetic settings document with n top-level entries.
func benchDoc(n int) []byte {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, `entry_%d = {
  name = "entry number %d" // with a comment
  index = %d
  scale = %g
  flags = [on off "quoted flag"]
}
`, i, i, i, float64(i)/3)
	}
	return []byte(sb.String())
}

func BenchmarkScanner(b *testing.B) {
	input := benchDoc(100)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := sjson.NewScanner(input)
		for s.Next() == nil {
		}
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	input := benchDoc(100)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var m map[string]any
		if err := sjson.Unmarshal(input, &m); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarshal(b *testing.B) {
	var m map[string]any
	if err := sjson.Unmarshal(benchDoc(100), &m); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sjson.Marshal(m); err != nil {
			b.Fatal(err)
		}
	}
}
