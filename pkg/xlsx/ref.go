/*
Copyright 2024 The aurochs Authors.

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

// Package xlsx implements the spreadsheet domain model, the build spec
// resolver, the modification apply engine and the part serializers.
package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxColumns is the highest addressable column (XFD).
const MaxColumns = 16384

// MaxRows is the highest addressable row.
const MaxRows = 1048576

// ErrInvalidCellRef gets raised for malformed A1 references.
var ErrInvalidCellRef = errors.New("aurochs: xlsx: invalid cell reference")

// ErrInvalidRange gets raised for ranges whose start exceeds their end.
var ErrInvalidRange = errors.New("aurochs: xlsx: invalid range")

// CellRef addresses a cell, 1-based.
type CellRef struct {
	Col int
	Row int
}

// Range is a rectangular cell region.
type Range struct {
	Start CellRef
	End   CellRef
}

// ColumnLetters converts a 1-based column index into its letters.
// The derivation is recursive base-26 with a 1 offset: 1=A, 26=Z, 27=AA.
func ColumnLetters(col int) string {
	if col <= 0 {
		return ""
	}
	if col <= 26 {
		return string(rune('A' + col - 1))
	}
	return ColumnLetters((col-1)/26) + string(rune('A'+(col-1)%26))
}

// ColumnIndex converts column letters into the 1-based column index.
func ColumnIndex(letters string) (int, error) {
	if letters == "" {
		return 0, ErrInvalidCellRef
	}
	col := 0
	for _, c := range strings.ToUpper(letters) {
		if c < 'A' || c > 'Z' {
			return 0, ErrInvalidCellRef
		}
		col = col*26 + int(c-'A') + 1
	}
	if col > MaxColumns {
		return 0, ErrInvalidCellRef
	}
	return col, nil
}

// ParseCellRef parses an A1 style reference. Absolute markers ($A$1) are
// tolerated and canonicalized away.
func ParseCellRef(ref string) (CellRef, error) {
	s := strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	if s == "" {
		return CellRef{}, ErrInvalidCellRef
	}

	i := 0
	for i < len(s) && ((s[i] >= 'A' && s[i] <= 'Z') || (s[i] >= 'a' && s[i] <= 'z')) {
		i++
	}
	if i == 0 || i == len(s) {
		return CellRef{}, ErrInvalidCellRef
	}

	col, err := ColumnIndex(s[:i])
	if err != nil {
		return CellRef{}, err
	}

	row, err := strconv.Atoi(s[i:])
	if err != nil || row <= 0 || row > MaxRows {
		return CellRef{}, ErrInvalidCellRef
	}

	return CellRef{Col: col, Row: row}, nil
}

// String returns the canonical A1 form.
func (r CellRef) String() string {
	return ColumnLetters(r.Col) + strconv.Itoa(r.Row)
}

// ParseRange parses an "A1:B2" range. A single cell reference is a
// degenerate range. Start must not exceed end in either dimension.
func ParseRange(s string) (Range, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")

	switch len(parts) {

	case 1:
		ref, err := ParseCellRef(parts[0])
		if err != nil {
			return Range{}, err
		}
		return Range{Start: ref, End: ref}, nil

	case 2:
		start, err := ParseCellRef(parts[0])
		if err != nil {
			return Range{}, err
		}
		end, err := ParseCellRef(parts[1])
		if err != nil {
			return Range{}, err
		}
		if end.Col < start.Col || end.Row < start.Row {
			return Range{}, errors.Wrapf(ErrInvalidRange, "%s", s)
		}
		return Range{Start: start, End: end}, nil
	}

	return Range{}, ErrInvalidCellRef
}

// String returns the canonical "A1:B2" form.
func (r Range) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	return fmt.Sprintf("%s:%s", r.Start.String(), r.End.String())
}
