// Copyright (C) 2024 Lucas Schwiderski. All Rights Reserved.

package sjson

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sclu1034/sjson/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as an SJSON quoted string value. The contents are
// escaped and double quotation marks are added.
func Quote(src string) string {
	buf := make([]byte, 0, len(src)+2)
	buf = append(buf, '"')
	buf = append(buf, escape.Quote(mem.S(src))...)
	buf = append(buf, '"')
	return string(buf)
}

// Unquote decodes an SJSON string token with its delimiters still present.
// For a quoted string, escape sequences are replaced with their unescaped
// equivalents. For a triple-quoted literal string, the contents are taken
// verbatim except that CRLF line endings are normalized to LF.
func Unquote(src string) (string, error) {
	if strings.HasPrefix(src, `"""`) {
		if len(src) < 6 || !strings.HasSuffix(src, `"""`) {
			return "", errors.New("missing literal string quotations")
		}
		return string(normalizeCRLF([]byte(src[3 : len(src)-3]))), nil
	}
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return "", errors.New("missing quotations")
	}
	dec, err := escape.Unquote(mem.S(src[1 : len(src)-1]))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}

// IsIdent reports whether s is a valid bare identifier: nonempty, beginning
// with a letter, underscore, or non-ASCII rune, and continuing with the
// same set plus digits and the characters ".", "-", "/", "\", and "+".
//
// IsIdent does not exclude the reserved literals true, false, and null;
// those are valid bare keys, though not bare string values.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == utf8.RuneError {
			return false
		}
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
		} else if !isIdentCont(r) {
			return false
		}
	}
	return true
}

// normalizeCRLF rewrites CRLF line endings in b to LF. If b contains no
// carriage returns it is returned unmodified, without copying.
func normalizeCRLF(b []byte) []byte {
	if bytes.IndexByte(b, '\r') < 0 {
		return b
	}
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}
