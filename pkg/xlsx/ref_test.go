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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetters(t *testing.T) {
	assert.Equal(t, "A", ColumnLetters(1))
	assert.Equal(t, "Z", ColumnLetters(26))
	assert.Equal(t, "AA", ColumnLetters(27))
	assert.Equal(t, "AZ", ColumnLetters(52))
	assert.Equal(t, "BA", ColumnLetters(53))
	assert.Equal(t, "XFD", ColumnLetters(16384))
}

func TestColumnIndex(t *testing.T) {
	for _, tc := range []struct {
		letters string
		col     int
	}{
		{"A", 1}, {"Z", 26}, {"AA", 27}, {"XFD", 16384},
	} {
		col, err := ColumnIndex(tc.letters)
		require.NoError(t, err)
		assert.Equal(t, tc.col, col)
	}

	_, err := ColumnIndex("")
	assert.Error(t, err)
	_, err = ColumnIndex("A1")
	assert.Error(t, err)
	_, err = ColumnIndex("XFE")
	assert.Error(t, err)
}

func TestColumnRoundTrip(t *testing.T) {
	// colLetter(colIndex(letters)) is the identity for every column.
	for col := 1; col <= MaxColumns; col++ {
		letters := ColumnLetters(col)
		back, err := ColumnIndex(letters)
		require.NoError(t, err)
		require.Equal(t, col, back)
	}
}

func TestParseCellRef(t *testing.T) {
	ref, err := ParseCellRef("B3")
	require.NoError(t, err)
	assert.Equal(t, CellRef{Col: 2, Row: 3}, ref)

	// Absolute markers canonicalize away.
	ref, err = ParseCellRef("$AA$10")
	require.NoError(t, err)
	assert.Equal(t, CellRef{Col: 27, Row: 10}, ref)
	assert.Equal(t, "AA10", ref.String())

	for _, bad := range []string{"", "12", "AB", "A0", "0A", "A-1"} {
		_, err := ParseCellRef(bad)
		assert.ErrorIs(t, err, ErrInvalidCellRef, "ref %q", bad)
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("A1:B2")
	require.NoError(t, err)
	assert.Equal(t, CellRef{1, 1}, r.Start)
	assert.Equal(t, CellRef{2, 2}, r.End)
	assert.Equal(t, "A1:B2", r.String())

	// Single cell degenerates.
	r, err = ParseRange("C3")
	require.NoError(t, err)
	assert.Equal(t, r.Start, r.End)

	// Start beyond end is invalid.
	_, err = ParseRange("B2:A1")
	assert.ErrorIs(t, err, ErrInvalidRange)
}
