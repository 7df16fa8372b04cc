// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []byte("0123456789abcdef")

// Quote escapes the characters of src for inclusion in an SJSON quoted
// string. Backslash, double quote, and control characters are escaped;
// runes beyond the ASCII range are emitted verbatim.
func Quote(src mem.RO) []byte {
	buf := make([]byte, 0, src.Len())

	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		if r < utf8.RuneSelf {
			if r < ' ' {
				if b := controlEsc[r]; b != 0 {
					buf = append(buf, '\\', b)
				} else {
					buf = append(buf, '\\', 'u', '0', '0', hexDigit[int(r>>4)], hexDigit[int(r&15)])
				}
			} else if r == '\\' || r == '"' {
				buf = append(buf, '\\', byte(r))
			} else {
				buf = append(buf, byte(r))
			}
		} else {
			var rbuf [4]byte
			rn := utf8.EncodeRune(rbuf[:], r)
			buf = append(buf, rbuf[:rn]...)
		}
		src = src.SliceFrom(n)
	}
	return buf
}
