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
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseWorkbook(t *testing.T) *Workbook {
	t.Helper()

	wb, err := ResolveWorkbook(&WorkbookSpec{
		Sheets: []SheetSpec{
			{
				Name: "Sheet1",
				Rows: []RowSpec{
					{Row: 1, Cells: []CellSpec{
						{Ref: "A1", Value: "keep"},
						{Ref: "B1", Value: "drop"},
					}},
					{Row: 3, Cells: []CellSpec{
						{Ref: "A3", Value: 7},
					}},
				},
				MergeCells: []string{"A1:B1"},
			},
			{Name: "Sheet2"},
		},
	})
	require.NoError(t, err)
	return wb
}

func TestApplyEmptySpecIsNoOp(t *testing.T) {
	wb := baseWorkbook(t)

	out, err := Apply(wb, &ModSpec{})
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(wb, out))

	// The result is a fresh value, mutating it leaves the input intact.
	out.Sheets[0].Name = "Renamed"
	assert.Equal(t, "Sheet1", wb.Sheets[0].Name)
}

func TestApplyNilSpecIsNoOp(t *testing.T) {
	wb := baseWorkbook(t)
	out, err := Apply(wb, nil)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(wb, out))
}

func TestApplySheetRemoval(t *testing.T) {
	wb := baseWorkbook(t)

	out, err := Apply(wb, &ModSpec{RemoveSheets: []string{"Sheet2"}})
	require.NoError(t, err)
	require.Len(t, out.Sheets, 1)
	assert.Equal(t, "Sheet1", out.Sheets[0].Name)

	_, err = Apply(wb, &ModSpec{RemoveSheets: []string{"Nope"}})
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestApplyCellMerge(t *testing.T) {
	wb := baseWorkbook(t)

	out, err := Apply(wb, &ModSpec{
		Sheets: []SheetMod{{
			Name: "Sheet1",
			Cells: []CellSpec{
				{Ref: "B1", Value: "replaced"}, // colocated replace
				{Ref: "C2", Value: "new"},      // new row 2
			},
		}},
	})
	require.NoError(t, err)

	s := out.SheetByName("Sheet1")
	require.NotNil(t, s)

	// New rows insert sorted by row number.
	require.Len(t, s.Rows, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{s.Rows[0].Number, s.Rows[1].Number, s.Rows[2].Number})

	assert.Equal(t, "replaced", s.Rows[0].Cells[1].Value.String)
	assert.Equal(t, "new", s.Rows[1].Cells[0].Value.String)

	// Shared strings rebuilt over the final sheet set: "drop" is gone.
	assert.Equal(t, []string{"keep", "replaced", "new"}, out.SharedStrings)
}

func TestApplyRowRemoval(t *testing.T) {
	wb := baseWorkbook(t)

	out, err := Apply(wb, &ModSpec{
		Sheets: []SheetMod{{Name: "Sheet1", RemoveRows: []int{1}}},
	})
	require.NoError(t, err)

	s := out.SheetByName("Sheet1")
	require.Len(t, s.Rows, 1)
	assert.Equal(t, 3, s.Rows[0].Number)
	assert.Empty(t, out.SharedStrings)
}

func TestApplyRename(t *testing.T) {
	wb := baseWorkbook(t)

	rename := "First"
	out, err := Apply(wb, &ModSpec{
		Sheets: []SheetMod{{Name: "Sheet1", Rename: &rename}},
	})
	require.NoError(t, err)

	assert.Nil(t, out.SheetByName("Sheet1"))
	assert.NotNil(t, out.SheetByName("First"))
}

func TestApplyMergeRanges(t *testing.T) {
	wb := baseWorkbook(t)

	out, err := Apply(wb, &ModSpec{
		Sheets: []SheetMod{{
			Name:         "Sheet1",
			AddMerges:    []string{"C3:D4"},
			RemoveMerges: []string{"A1:B1"},
		}},
	})
	require.NoError(t, err)

	s := out.SheetByName("Sheet1")
	require.Len(t, s.MergeCells, 1)
	assert.Equal(t, "C3:D4", s.MergeCells[0].String())
}

func TestApplyColumns(t *testing.T) {
	wb := baseWorkbook(t)

	width := 24.0
	out, err := Apply(wb, &ModSpec{
		Sheets: []SheetMod{{
			Name:    "Sheet1",
			Columns: []ColumnSpec{{Min: 2, Width: &width}},
		}},
	})
	require.NoError(t, err)

	s := out.SheetByName("Sheet1")
	require.Len(t, s.Columns, 1)
	assert.Equal(t, 2, s.Columns[0].Min)

	// Replace by min, then remove.
	out2, err := Apply(out, &ModSpec{
		Sheets: []SheetMod{{Name: "Sheet1", RemoveColumns: []int{2}}},
	})
	require.NoError(t, err)
	assert.Empty(t, out2.SheetByName("Sheet1").Columns)
}

func TestApplyFeatureTriState(t *testing.T) {
	wb := baseWorkbook(t)

	// Set.
	out, err := Apply(wb, &ModSpec{
		Sheets: []SheetMod{{
			Name:       "Sheet1",
			AutoFilter: &Update[AutoFilter]{Value: &AutoFilter{Ref: "A1:B9"}},
		}},
	})
	require.NoError(t, err)
	require.NotNil(t, out.SheetByName("Sheet1").AutoFilter)

	// Absent preserves.
	out2, err := Apply(out, &ModSpec{Sheets: []SheetMod{{Name: "Sheet1"}}})
	require.NoError(t, err)
	assert.NotNil(t, out2.SheetByName("Sheet1").AutoFilter)

	// Clear removes.
	out3, err := Apply(out2, &ModSpec{
		Sheets: []SheetMod{{Name: "Sheet1", AutoFilter: &Update[AutoFilter]{Clear: true}}},
	})
	require.NoError(t, err)
	assert.Nil(t, out3.SheetByName("Sheet1").AutoFilter)
}

func TestApplyAddSheets(t *testing.T) {
	wb := baseWorkbook(t)

	out, err := Apply(wb, &ModSpec{
		AddSheets: []SheetSpec{{Name: "Sheet3"}},
	})
	require.NoError(t, err)

	require.Len(t, out.Sheets, 3)
	added := out.Sheets[2]
	assert.Equal(t, 3, added.SheetID)
	assert.Equal(t, "xl/worksheets/sheet3.xml", added.XMLPath)

	_, err = Apply(wb, &ModSpec{AddSheets: []SheetSpec{{Name: "Sheet1"}}})
	assert.ErrorIs(t, err, ErrDuplicateSheetName)
}

func TestApplyDefinedNameUpsert(t *testing.T) {
	wb := baseWorkbook(t)

	out, err := Apply(wb, &ModSpec{
		DefinedNames: []DefinedNameSpec{{Name: "Data", RefersTo: "Sheet1!$A$1"}},
	})
	require.NoError(t, err)
	require.Len(t, out.DefinedNames, 1)

	out2, err := Apply(out, &ModSpec{
		DefinedNames: []DefinedNameSpec{{Name: "Data", RefersTo: "Sheet1!$B$1"}},
	})
	require.NoError(t, err)
	require.Len(t, out2.DefinedNames, 1)
	assert.Equal(t, "Sheet1!$B$1", out2.DefinedNames[0].RefersTo)
}

func TestApplyHyperlinkRelIDs(t *testing.T) {
	wb := baseWorkbook(t)

	links := []Hyperlink{
		{Ref: "A1", Target: "https://example.com"},
		{Ref: "A2", Target: "#internal"},
		{Ref: "A3", Target: "mailto:x@example.com"},
	}
	out, err := Apply(wb, &ModSpec{
		Sheets: []SheetMod{{
			Name:       "Sheet1",
			Hyperlinks: &Update[[]Hyperlink]{Value: &links},
		}},
	})
	require.NoError(t, err)

	got := out.SheetByName("Sheet1").Hyperlinks
	require.Len(t, got, 3)
	// External targets receive monotonically numbered sheet scoped rIds.
	assert.Equal(t, "rId1", got[0].RelID)
	assert.Equal(t, "", got[1].RelID)
	assert.Equal(t, "rId2", got[2].RelID)
}

func TestApplyStyleAdditionsPreserveIndices(t *testing.T) {
	wb := baseWorkbook(t)
	baseFonts := len(wb.Styles.Fonts)

	out, err := Apply(wb, &ModSpec{
		Styles: &StylesSpec{
			Fonts: []Font{{Name: "Arial", Size: 10, Bold: true}},
		},
	})
	require.NoError(t, err)

	require.Len(t, out.Styles.Fonts, baseFonts+1)
	assert.Equal(t, wb.Styles.Fonts[0], out.Styles.Fonts[0])
	assert.Equal(t, "Arial", out.Styles.Fonts[baseFonts].Name)
}

func TestApplySheetNotFound(t *testing.T) {
	wb := baseWorkbook(t)
	_, err := Apply(wb, &ModSpec{Sheets: []SheetMod{{Name: "Missing"}}})
	assert.ErrorIs(t, err, ErrSheetNotFound)
}
