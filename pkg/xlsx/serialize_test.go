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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeWorkbook(t *testing.T) {
	wb, err := ResolveWorkbook(&WorkbookSpec{
		Sheets: []SheetSpec{
			{Name: "One"},
			{Name: "Two", State: "hidden"},
		},
	})
	require.NoError(t, err)

	bb, err := SerializeWorkbook(wb)
	require.NoError(t, err)
	s := string(bb)

	assert.Contains(t, s, `xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"`)
	assert.Contains(t, s, `<sheet name="One" sheetId="1" r:id="rId1">`)
	assert.Contains(t, s, `state="hidden"`)
	// Visible sheets omit the state attribute.
	assert.NotContains(t, s, `state="visible"`)
}

func TestSerializeWorkbook1904(t *testing.T) {
	wb, err := ResolveWorkbook(&WorkbookSpec{
		DateSystem: "1904",
		Sheets:     []SheetSpec{{Name: "S"}},
	})
	require.NoError(t, err)

	bb, err := SerializeWorkbook(wb)
	require.NoError(t, err)
	assert.Contains(t, string(bb), `date1904="true"`)
}

func TestSerializeWorksheetCells(t *testing.T) {
	wb, err := ResolveWorkbook(&WorkbookSpec{
		Sheets: []SheetSpec{
			{
				Name: "S",
				Rows: []RowSpec{
					{Row: 1, Cells: []CellSpec{
						{Ref: "A1", Value: "Hello"},
						{Ref: "B1", Value: 42},
						{Ref: "C1", Value: true},
						{Ref: "D1", Value: map[string]any{"type": "error", "value": "#N/A"}},
						{Ref: "E1"},
					}},
				},
			},
		},
	})
	require.NoError(t, err)

	bb, err := SerializeWorksheet(wb, 0)
	require.NoError(t, err)
	s := string(bb)

	// Shared string reference by index.
	assert.Contains(t, s, `<c r="A1" t="s"><v>0</v></c>`)
	assert.Contains(t, s, `<c r="B1"><v>42</v></c>`)
	assert.Contains(t, s, `<c r="C1" t="b"><v>1</v></c>`)
	assert.Contains(t, s, `<c r="D1" t="e"><v>#N/A</v></c>`)
	// Empty cells serialize bare.
	assert.Contains(t, s, `<c r="E1">`)
}

func TestSerializeWorksheetMergesAndFilter(t *testing.T) {
	wb, err := ResolveWorkbook(&WorkbookSpec{
		Sheets: []SheetSpec{
			{
				Name:       "S",
				MergeCells: []string{"A1:B2"},
				AutoFilter: &AutoFilter{Ref: "A1:B9"},
			},
		},
	})
	require.NoError(t, err)

	bb, err := SerializeWorksheet(wb, 0)
	require.NoError(t, err)
	s := string(bb)

	assert.Contains(t, s, `<mergeCells count="1"><mergeCell ref="A1:B2"></mergeCell></mergeCells>`)
	assert.Contains(t, s, `<autoFilter ref="A1:B9">`)
}

func TestSerializeFreezePane(t *testing.T) {
	row := 1
	wb, err := ResolveWorkbook(&WorkbookSpec{
		Sheets: []SheetSpec{
			{
				Name:      "S",
				SheetView: &SheetViewSpec{Freeze: &Freeze{Row: &row}},
			},
		},
	})
	require.NoError(t, err)

	bb, err := SerializeWorksheet(wb, 0)
	require.NoError(t, err)
	s := string(bb)

	assert.Contains(t, s, `ySplit="1"`)
	assert.Contains(t, s, `topLeftCell="A2"`)
	assert.Contains(t, s, `state="frozen"`)
}

func TestSerializeStylesDefaults(t *testing.T) {
	styles := NewDefaultStyles()

	bb, err := SerializeStyles(&styles)
	require.NoError(t, err)
	s := string(bb)

	assert.Contains(t, s, `<fonts count="1">`)
	assert.Contains(t, s, `<fills count="2">`)
	assert.Contains(t, s, `<patternFill patternType="none">`)
	assert.Contains(t, s, `<patternFill patternType="gray125">`)
	assert.Contains(t, s, `<borders count="1">`)
	assert.Contains(t, s, `<cellXfs count="1">`)
}

func TestSerializeSharedStringsCounts(t *testing.T) {
	wb, err := ResolveWorkbook(&WorkbookSpec{
		Sheets: []SheetSpec{
			{Name: "S", Rows: []RowSpec{
				{Row: 1, Cells: []CellSpec{
					{Ref: "A1", Value: "dup"},
					{Ref: "B1", Value: "dup"},
					{Ref: "C1", Value: "solo"},
				}},
			}},
		},
	})
	require.NoError(t, err)

	bb, err := SerializeSharedStrings(wb)
	require.NoError(t, err)
	s := string(bb)

	assert.Contains(t, s, `count="3"`)
	assert.Contains(t, s, `uniqueCount="2"`)
}

func TestSerializeWorksheetRels(t *testing.T) {
	wb := baseWorkbook(t)

	links := []Hyperlink{{Ref: "A1", Target: "https://example.com", Tooltip: "site"}}
	out, err := Apply(wb, &ModSpec{
		Sheets: []SheetMod{{Name: "Sheet1", Hyperlinks: &Update[[]Hyperlink]{Value: &links}}},
	})
	require.NoError(t, err)

	s := out.SheetByName("Sheet1")

	bb, err := SerializeWorksheetRels(s)
	require.NoError(t, err)
	require.NotNil(t, bb)

	rels := string(bb)
	assert.Contains(t, rels, `Id="rId1"`)
	assert.Contains(t, rels, `Target="https://example.com"`)
	assert.Contains(t, rels, `TargetMode="External"`)

	// Sheets without external links produce no rels part.
	bb, err = SerializeWorksheetRels(out.SheetByName("Sheet2"))
	require.NoError(t, err)
	assert.Nil(t, bb)
}

func TestDateSerial(t *testing.T) {
	// 1900-01-01 is serial 2 under the 1900 epoch convention in use.
	d := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	serial := dateToSerial(d, DateSystem1900)
	assert.InDelta(t, 45352, serial, 0.001)

	serial1904 := dateToSerial(d, DateSystem1904)
	assert.InDelta(t, 43890, serial1904, 0.001)
}
