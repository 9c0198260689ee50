/*
Copyright 2023 The aurochs Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package types

import (
	"bytes"
	"strings"
	"unicode/utf16"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// ErrInvalidUTF16BE represents an error that gets raised for invalid UTF-16BE byte sequences.
var ErrInvalidUTF16BE = errors.New("aurochs: invalid UTF-16BE detected")

// NewStringSet returns a StringSet for slice.
func NewStringSet(slice []string) StringSet {
	strSet := StringSet{}
	if slice == nil {
		return strSet
	}
	for _, s := range slice {
		strSet[s] = true
	}
	return strSet
}

// ByteForOctalString returns the byte for octalBytes.
func ByteForOctalString(octalBytes string) (b byte) {
	i := strings.IndexByte("01234567", octalBytes[0])
	b = byte(i)
	for _, c := range octalBytes[1:] {
		b = b<<3 + byte(strings.IndexRune("01234567", c))
	}
	return b
}

func escaped(c byte) (bool, byte) {
	switch c {
	case 'n':
		c = 0x0A
	case 'r':
		c = 0x0D
	case 't':
		c = 0x09
	case 'b':
		c = 0x08
	case 'f':
		c = 0x0C
	case '(', ')', '\\':
	default:
		if c < '0' || c > '7' {
			// Ignore '\' for undefined escape sequences.
			return true, c
		}
		return false, c
	}
	return true, c
}

// Unescape resolves all escape sequences of s.
func Unescape(s string) ([]byte, error) {
	var esc bool
	var longEol bool
	var octalCode string
	var b bytes.Buffer

	for i := 0; i < len(s); i++ {
		c := s[i]

		if longEol {
			longEol = false
			// c is the second char of a 2-char eol.
			if c == 0x0A {
				continue
			}
		}

		if esc {
			esc = false

			// Split line by \eol.
			if c == 0x0A || c == 0x0D {
				if c == 0x0D {
					longEol = true
				}
				continue
			}

			var done bool
			done, c = escaped(c)
			if done {
				b.WriteByte(c)
				continue
			}

			// Begin octal code sequence.
			octalCode = string(c)
			for len(octalCode) < 3 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7' {
				i++
				octalCode += string(s[i])
			}
			b.WriteByte(ByteForOctalString(octalCode))
			continue
		}

		if c == '\\' {
			esc = true
			continue
		}

		b.WriteByte(c)
	}

	return b.Bytes(), nil
}

// Latin1String returns the latin-1 shadow text for raw bytes b.
// The shadow is used for operator matching only, the raw bytes stay authoritative.
func Latin1String(b []byte) string {
	dec := charmap.ISO8859_1.NewDecoder()
	s, err := dec.Bytes(b)
	if err != nil {
		// latin-1 decoding cannot fail for 8-bit input, keep the raw bytes.
		return string(b)
	}
	return string(s)
}

// IsUTF16BE checks for Big Endian byte order mark and valid length.
func IsUTF16BE(b []byte) bool {
	if len(b) == 0 || len(b)%2 != 0 {
		return false
	}
	return b[0] == 0xFE && b[1] == 0xFF
}

// DecodeUTF16String decodes a UTF16BE byte sequence into a string.
func DecodeUTF16String(b []byte) (string, error) {
	if !IsUTF16BE(b) {
		return "", ErrInvalidUTF16BE
	}

	// Strip BOM.
	b = b[2:]

	u16 := make([]uint16, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		u16 = append(u16, uint16(b[i])<<8+uint16(b[i+1]))
	}

	return string(utf16.Decode(u16)), nil
}

// TextString decodes a PDF text string: UTF-16BE when a BOM is present,
// latin-1 shadow otherwise.
func TextString(b []byte) string {
	if IsUTF16BE(b) {
		s, err := DecodeUTF16String(b)
		if err == nil {
			return s
		}
	}
	return Latin1String(b)
}

// StringLiteralToBytes unescapes a string literal into its raw bytes.
func StringLiteralToBytes(sl StringLiteral) ([]byte, error) {
	return Unescape(sl.Value())
}

// StringOrHexLiteralBytes returns the raw bytes of a string or hex literal object.
func StringOrHexLiteralBytes(obj Object) ([]byte, error) {
	switch o := obj.(type) {
	case StringLiteral:
		return StringLiteralToBytes(o)
	case HexLiteral:
		return o.Bytes()
	}
	return nil, errors.New("aurochs: expected string literal or hex literal")
}

func needsHexSequence(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%', '#':
		return true
	}
	return c < '!' || c > '~'
}

// EncodeName applies name encoding according to PDF spec.
func EncodeName(s string) string {
	replaced := false
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		// TODO: add check for character validity
		if needsHexSequence(ch) {
			sb.WriteByte('#')
			sb.WriteString(hexDigits[ch>>4 : ch>>4+1])
			sb.WriteString(hexDigits[ch&0x0F : ch&0x0F+1])
			replaced = true
		} else {
			sb.WriteByte(ch)
		}
	}
	if !replaced {
		return s
	}
	return sb.String()
}

const hexDigits = "0123456789ABCDEF"

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// DecodeName applies name decoding according to PDF spec.
func DecodeName(s string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == 0 {
			return "", errors.New("aurochs: a name may not contain a null byte")
		}
		if c != '#' {
			sb.WriteByte(c)
			continue
		}

		// # escapes the next two hex digits.
		if i > len(s)-3 {
			return "", errors.New("aurochs: corrupt name escape sequence")
		}
		hi, ok := hexVal(s[i+1])
		if !ok {
			return "", errors.New("aurochs: corrupt name escape sequence")
		}
		lo, ok := hexVal(s[i+2])
		if !ok {
			return "", errors.New("aurochs: corrupt name escape sequence")
		}
		sb.WriteByte(byte(hi<<4 | lo))
		i += 2
	}
	return sb.String(), nil
}
