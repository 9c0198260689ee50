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

// Package font implements PDF font dictionary extraction, ToUnicode CMap
// decoding and embedded font table repair.
package font

import (
	"encoding/hex"
	"strings"
	"unicode/utf16"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/trkbt10/aurochs/pkg/log"
)

// bfrange expansion is clamped, producers rarely exceed this bound.
const maxBFRangeExpansion = 256

// ToUnicodeMap maps character codes to NFC normalized unicode strings.
type ToUnicodeMap map[uint32]string

// CMap is the decoded form of a ToUnicode CMap stream.
type CMap struct {
	// CodeByteWidth is determined by the maximum source hex length observed.
	CodeByteWidth int
	Map           ToUnicodeMap
}

var errCMapCorrupt = errors.New("aurochs: font: corrupt ToUnicode CMap")

// ParseToUnicode decodes any number of bfchar and bfrange sections of a
// ToUnicode CMap stream. Section order is irrelevant for the resulting map.
func ParseToUnicode(bb []byte) (*CMap, error) {
	cm := &CMap{CodeByteWidth: 1, Map: ToUnicodeMap{}}

	s := string(bb)
	maxSrcLen := 0

	for {
		i := strings.Index(s, "beginbfchar")
		j := strings.Index(s, "beginbfrange")

		if i < 0 && j < 0 {
			break
		}

		if j < 0 || (i >= 0 && i < j) {
			body, rest, err := sectionBody(s[i+len("beginbfchar"):], "endbfchar")
			if err != nil {
				return nil, err
			}
			if err := cm.parseBFChar(body, &maxSrcLen); err != nil {
				return nil, err
			}
			s = rest
			continue
		}

		body, rest, err := sectionBody(s[j+len("beginbfrange"):], "endbfrange")
		if err != nil {
			return nil, err
		}
		if err := cm.parseBFRange(body, &maxSrcLen); err != nil {
			return nil, err
		}
		s = rest
	}

	if maxSrcLen > 2 {
		maxSrcLen = 2
	}
	if maxSrcLen > 0 {
		cm.CodeByteWidth = maxSrcLen
	}

	return cm, nil
}

func sectionBody(s, endKeyword string) (body, rest string, err error) {
	i := strings.Index(s, endKeyword)
	if i < 0 {
		return "", "", errCMapCorrupt
	}
	return s[:i], s[i+len(endKeyword):], nil
}

// token scanning over hex literals and array brackets.
type cmapScanner struct {
	s string
}

type cmapToken struct {
	hex   []byte // non nil for <...>
	open  bool   // [
	close bool   // ]
}

func (sc *cmapScanner) next() (*cmapToken, error) {
	sc.s = strings.TrimLeft(sc.s, " \t\r\n\f\x00")
	if len(sc.s) == 0 {
		return nil, nil
	}

	switch sc.s[0] {

	case '<':
		j := strings.IndexByte(sc.s, '>')
		if j < 0 {
			return nil, errCMapCorrupt
		}
		h := strings.Map(dropSpace, sc.s[1:j])
		if len(h)%2 == 1 {
			h += "0"
		}
		bb, err := hex.DecodeString(h)
		if err != nil {
			return nil, errCMapCorrupt
		}
		sc.s = sc.s[j+1:]
		return &cmapToken{hex: bb}, nil

	case '[':
		sc.s = sc.s[1:]
		return &cmapToken{open: true}, nil

	case ']':
		sc.s = sc.s[1:]
		return &cmapToken{close: true}, nil
	}

	return nil, errCMapCorrupt
}

func dropSpace(r rune) rune {
	if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
		return -1
	}
	return r
}

func codeForBytes(bb []byte) uint32 {
	var v uint32
	for _, b := range bb {
		v = v<<8 | uint32(b)
	}
	return v
}

// unicodeForBytes interprets bb as big-endian UTF-16 code units and
// returns the NFC normalized string.
func unicodeForBytes(bb []byte) string {
	if len(bb)%2 == 1 {
		bb = append(bb, 0)
	}
	u16 := make([]uint16, 0, len(bb)/2)
	for i := 0; i < len(bb); i += 2 {
		u16 = append(u16, uint16(bb[i])<<8|uint16(bb[i+1]))
	}
	return norm.NFC.String(string(utf16.Decode(u16)))
}

func (cm *CMap) parseBFChar(body string, maxSrcLen *int) error {
	sc := &cmapScanner{s: body}

	for {
		src, err := sc.next()
		if err != nil {
			return err
		}
		if src == nil {
			return nil
		}
		if src.hex == nil {
			return errCMapCorrupt
		}

		dst, err := sc.next()
		if err != nil {
			return err
		}
		if dst == nil || dst.hex == nil {
			return errCMapCorrupt
		}

		if len(src.hex) > *maxSrcLen {
			*maxSrcLen = len(src.hex)
		}

		cm.Map[codeForBytes(src.hex)] = unicodeForBytes(dst.hex)
	}
}

func incrementLast(bb []byte, delta uint32) []byte {
	// The increment applies to the last code unit per the CMap spec.
	out := append([]byte(nil), bb...)
	if len(out) < 2 {
		v := uint32(out[0]) + delta
		out[0] = byte(v)
		return out
	}
	i := len(out) - 2
	v := uint32(out[i])<<8 | uint32(out[i+1])
	v += delta
	out[i] = byte(v >> 8)
	out[i+1] = byte(v)
	return out
}

func (cm *CMap) parseBFRange(body string, maxSrcLen *int) error {
	sc := &cmapScanner{s: body}

	for {
		start, err := sc.next()
		if err != nil {
			return err
		}
		if start == nil {
			return nil
		}
		if start.hex == nil {
			return errCMapCorrupt
		}

		end, err := sc.next()
		if err != nil {
			return err
		}
		if end == nil || end.hex == nil {
			return errCMapCorrupt
		}

		if len(start.hex) > *maxSrcLen {
			*maxSrcLen = len(start.hex)
		}

		lo := codeForBytes(start.hex)
		hi := codeForBytes(end.hex)
		if hi < lo {
			return errCMapCorrupt
		}

		count := hi - lo + 1
		if count > maxBFRangeExpansion {
			if log.InfoEnabled() {
				log.Info.Printf("bfrange %x..%x clamped to %d entries\n", lo, hi, maxBFRangeExpansion)
			}
			count = maxBFRangeExpansion
		}

		dst, err := sc.next()
		if err != nil {
			return err
		}
		if dst == nil {
			return errCMapCorrupt
		}

		if dst.hex != nil {
			// <start> <end> <dstStart> with incrementing destination.
			for k := uint32(0); k < count; k++ {
				cm.Map[lo+k] = unicodeForBytes(incrementLast(dst.hex, k))
			}
			continue
		}

		if !dst.open {
			return errCMapCorrupt
		}

		// <start> <end> [ <d0> <d1> ... ]
		k := uint32(0)
		for {
			t, err := sc.next()
			if err != nil {
				return err
			}
			if t == nil {
				return errCMapCorrupt
			}
			if t.close {
				break
			}
			if t.hex == nil {
				return errCMapCorrupt
			}
			if k < count {
				cm.Map[lo+k] = unicodeForBytes(t.hex)
			}
			k++
		}
	}
}
