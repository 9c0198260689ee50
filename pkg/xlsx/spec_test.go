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

func TestResolveWorkbookBasic(t *testing.T) {
	spec := &WorkbookSpec{
		Sheets: []SheetSpec{
			{
				Name: "Sheet1",
				Rows: []RowSpec{
					{Row: 1, Cells: []CellSpec{
						{Ref: "A1", Value: "Hello"},
						{Ref: "B1", Value: 42},
					}},
				},
			},
		},
	}

	wb, err := ResolveWorkbook(spec)
	require.NoError(t, err)

	assert.Equal(t, DateSystem1900, wb.DateSystem)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "Sheet1", wb.Sheets[0].Name)
	assert.Equal(t, 1, wb.Sheets[0].SheetID)
	assert.Equal(t, "xl/worksheets/sheet1.xml", wb.Sheets[0].XMLPath)
	assert.Equal(t, []string{"Hello"}, wb.SharedStrings)

	cells := wb.Sheets[0].Rows[0].Cells
	require.Len(t, cells, 2)
	assert.Equal(t, CellValue{Type: CellString, String: "Hello"}, cells[0].Value)
	assert.Equal(t, CellValue{Type: CellNumber, Number: 42}, cells[1].Value)
}

func TestResolveErrorValueValidation(t *testing.T) {
	spec := &WorkbookSpec{
		Sheets: []SheetSpec{
			{Name: "S", Rows: []RowSpec{
				{Row: 1, Cells: []CellSpec{
					{Ref: "A1", Value: map[string]any{"type": "error", "value": "#INVALID!"}},
				}},
			}},
		},
	}
	_, err := ResolveWorkbook(spec)
	assert.ErrorIs(t, err, ErrInvalidErrorValue)

	spec.Sheets[0].Rows[0].Cells[0].Value = map[string]any{"type": "error", "value": "#DIV/0!"}
	wb, err := ResolveWorkbook(spec)
	require.NoError(t, err)
	assert.Equal(t, "#DIV/0!", wb.Sheets[0].Rows[0].Cells[0].Value.Error)
}

func TestResolveDuplicateSheetName(t *testing.T) {
	spec := &WorkbookSpec{
		Sheets: []SheetSpec{{Name: "S"}, {Name: "S"}},
	}
	_, err := ResolveWorkbook(spec)
	assert.ErrorIs(t, err, ErrDuplicateSheetName)

	// Sheet names compare case sensitive.
	spec = &WorkbookSpec{Sheets: []SheetSpec{{Name: "S"}, {Name: "s"}}}
	_, err = ResolveWorkbook(spec)
	assert.NoError(t, err)
}

func TestResolveInvalidCellRef(t *testing.T) {
	spec := &WorkbookSpec{
		Sheets: []SheetSpec{
			{Name: "S", Rows: []RowSpec{
				{Row: 1, Cells: []CellSpec{{Ref: "!!", Value: 1}}},
			}},
		},
	}
	_, err := ResolveWorkbook(spec)
	assert.ErrorIs(t, err, ErrInvalidCellRef)
}

func TestResolveMergeRanges(t *testing.T) {
	spec := &WorkbookSpec{
		Sheets: []SheetSpec{
			{Name: "S", MergeCells: []string{"A1:B2"}},
		},
	}
	wb, err := ResolveWorkbook(spec)
	require.NoError(t, err)
	require.Len(t, wb.Sheets[0].MergeCells, 1)
	assert.Equal(t, CellRef{1, 1}, wb.Sheets[0].MergeCells[0].Start)

	spec.Sheets[0].MergeCells = []string{"B2:A1"}
	_, err = ResolveWorkbook(spec)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestResolveColors(t *testing.T) {
	rgb, err := ResolveColor("#ff8800")
	require.NoError(t, err)
	assert.Equal(t, "FFFF8800", rgb)

	// 8-hex input is preserved.
	rgb, err = ResolveColor("80FF8800")
	require.NoError(t, err)
	assert.Equal(t, "80FF8800", rgb)

	_, err = ResolveColor("#xyz")
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestResolveDateValue(t *testing.T) {
	spec := &WorkbookSpec{
		Sheets: []SheetSpec{
			{Name: "S", Rows: []RowSpec{
				{Row: 1, Cells: []CellSpec{
					{Ref: "A1", Value: map[string]any{"type": "date", "value": "2024-03-01T12:00:00+09:00"}},
				}},
			}},
		},
	}
	wb, err := ResolveWorkbook(spec)
	require.NoError(t, err)

	v := wb.Sheets[0].Rows[0].Cells[0].Value
	assert.Equal(t, CellDate, v.Type)
	// Normalized to the UTC instant.
	assert.Equal(t, "2024-03-01T03:00:00Z", v.Date.Format("2006-01-02T15:04:05Z07:00"))
}

func TestResolveFormula(t *testing.T) {
	spec := &WorkbookSpec{
		Sheets: []SheetSpec{
			{Name: "S", Rows: []RowSpec{
				{Row: 1, Cells: []CellSpec{
					{Ref: "A1", Formula: &FormulaSpec{Expression: "SUM(B1:B9)"}},
				}},
			}},
		},
	}
	wb, err := ResolveWorkbook(spec)
	require.NoError(t, err)

	f := wb.Sheets[0].Rows[0].Cells[0].Formula
	require.NotNil(t, f)
	// The type defaults to normal.
	assert.Equal(t, FormulaNormal, f.Type)
	assert.Equal(t, "SUM(B1:B9)", f.Expression)
}

func TestResolveFreezePane(t *testing.T) {
	row, col := 2, 1
	pane := ResolveFreeze(&Freeze{Row: &row, Col: &col})

	assert.Equal(t, 1, pane.XSplit)
	assert.Equal(t, 2, pane.YSplit)
	assert.Equal(t, "B3", pane.TopLeftCell)
	assert.Equal(t, "bottomRight", pane.ActivePane)
	assert.Equal(t, "frozen", pane.State)
}

func TestDefaultStyleSlots(t *testing.T) {
	s := NewDefaultStyles()

	// The OOXML mandated defaults.
	require.NotEmpty(t, s.Fonts)
	assert.Equal(t, "Calibri", s.Fonts[0].Name)
	require.Len(t, s.Fills, 2)
	assert.Equal(t, FillNone, s.Fills[0].Pattern)
	assert.Equal(t, FillGray125, s.Fills[1].Pattern)
	require.Len(t, s.Borders, 1)
	require.Len(t, s.CellXfs, 1)
	assert.Equal(t, CellXf{}, s.CellXfs[0])
}

func TestSharedStringsDedupOrder(t *testing.T) {
	spec := &WorkbookSpec{
		Sheets: []SheetSpec{
			{Name: "A", Rows: []RowSpec{
				{Row: 1, Cells: []CellSpec{
					{Ref: "A1", Value: "x"},
					{Ref: "B1", Value: "y"},
				}},
			}},
			{Name: "B", Rows: []RowSpec{
				{Row: 1, Cells: []CellSpec{
					{Ref: "A1", Value: "y"},
					{Ref: "B1", Value: "z"},
				}},
			}},
		},
	}
	wb, err := ResolveWorkbook(spec)
	require.NoError(t, err)

	// Deduped union in first encounter order.
	assert.Equal(t, []string{"x", "y", "z"}, wb.SharedStrings)
}

func TestIsDateFormat(t *testing.T) {
	assert.True(t, IsDateFormat("yyyy-mm-dd"))
	assert.True(t, IsDateFormat("hh:mm:ss"))
	assert.False(t, IsDateFormat("0.00%"))
	assert.False(t, IsDateFormat("#,##0"))
}
