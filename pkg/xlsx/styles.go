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

package xlsx

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/nfp"
)

// ErrInvalidColor gets raised for malformed color specs.
var ErrInvalidColor = errors.New("aurochs: xlsx: invalid color")

// Color is a resolved style color: either an ARGB value or a theme slot.
type Color struct {
	RGB   string
	Theme *int
	Tint  *float64
	Auto  bool
}

// Font is one font table entry.
type Font struct {
	Name      string
	Size      float64
	Bold      bool
	Italic    bool
	Underline string
	Strike    bool
	Color     *Color
	Family    *int
	Scheme    string
}

// FillPattern names the fill pattern type.
type FillPattern string

// The fill pattern types in use.
const (
	FillNone    FillPattern = "none"
	FillGray125 FillPattern = "gray125"
	FillSolid   FillPattern = "solid"
)

// Fill is one fill table entry.
type Fill struct {
	Pattern FillPattern
	FgColor *Color
	BgColor *Color
}

// BorderEdge is one edge of a border.
type BorderEdge struct {
	Style string
	Color *Color
}

// Border is one border table entry.
type Border struct {
	Left     *BorderEdge
	Right    *BorderEdge
	Top      *BorderEdge
	Bottom   *BorderEdge
	Diagonal *BorderEdge
}

// NumberFormat is a custom number format entry.
// Built-in formats stay implicit, custom ids start at 164.
type NumberFormat struct {
	ID   int
	Code string
}

// Alignment carries cell alignment settings.
type Alignment struct {
	Horizontal   string
	Vertical     string
	WrapText     bool
	TextRotation int
	Indent       int
	ShrinkToFit  bool
}

// CellXf is one cell format record combining the table indices.
type CellXf struct {
	FontID    int
	FillID    int
	BorderID  int
	NumFmtID  int
	Alignment *Alignment
	ApplyFont         bool
	ApplyFill         bool
	ApplyBorder       bool
	ApplyNumberFormat bool
	ApplyAlignment    bool
}

// Styles is the workbook style part.
// The OOXML mandated default slots hold: fonts[0] is the default font,
// fills[0] is none, fills[1] is gray125, borders[0] is empty and
// cellXfs[0] is the identity format.
type Styles struct {
	Fonts         []Font
	Fills         []Fill
	Borders       []Border
	NumberFormats []NumberFormat
	CellXfs       []CellXf
}

// firstCustomNumFmtID is where custom number format ids start.
const firstCustomNumFmtID = 164

// NewDefaultStyles seeds the style tables with the mandated defaults.
func NewDefaultStyles() Styles {
	return Styles{
		Fonts: []Font{
			{Name: "Calibri", Size: 11, Family: intPtr(2), Scheme: "minor"},
		},
		Fills: []Fill{
			{Pattern: FillNone},
			{Pattern: FillGray125},
		},
		Borders: []Border{
			{},
		},
		CellXfs: []CellXf{
			{},
		},
	}
}

func intPtr(i int) *int { return &i }

// ResolveColor normalizes a hex color spec:
// "#RRGGBB" becomes "FFRRGGBB" uppercase, 8-hex input is preserved,
// anything else is rejected. Theme colors never reach it: the spec
// resolvers keep them as theme slots without calling it.
func ResolveColor(spec string) (string, error) {
	s := strings.TrimSpace(spec)
	if strings.HasPrefix(s, "#") {
		s = s[1:]
	}
	s = strings.ToUpper(s)

	switch len(s) {
	case 6:
		s = "FF" + s
	case 8:
	default:
		return "", errors.Wrapf(ErrInvalidColor, "%q", spec)
	}

	for _, c := range s {
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			return "", errors.Wrapf(ErrInvalidColor, "%q", spec)
		}
	}

	return s, nil
}

// IsDateFormat reports whether a number format code renders date or time.
// Classification runs over the parsed token stream.
func IsDateFormat(code string) bool {
	ps := nfp.NumberFormatParser()
	for _, section := range ps.Parse(code) {
		for _, token := range section.Items {
			switch token.TType {
			case nfp.TokenTypeDateTimes, nfp.TokenTypeElapsedDateTimes:
				return true
			}
		}
	}
	return false
}

// AddNumberFormat appends a custom number format and returns its id.
// An existing entry with the same code is reused.
func (s *Styles) AddNumberFormat(code string) int {
	for _, nf := range s.NumberFormats {
		if nf.Code == code {
			return nf.ID
		}
	}

	id := firstCustomNumFmtID
	for _, nf := range s.NumberFormats {
		if nf.ID >= id {
			id = nf.ID + 1
		}
	}

	s.NumberFormats = append(s.NumberFormats, NumberFormat{ID: id, Code: code})
	return id
}
