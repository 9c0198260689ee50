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
	"fmt"
	"strings"

	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ErrSheetNotFound gets raised when a modification addresses a missing sheet.
var ErrSheetNotFound = errors.New("aurochs: xlsx: sheet not found")

// Update is the tri-state for feature replacement: an absent update
// preserves the property, Clear removes it, otherwise Value replaces it.
type Update[T any] struct {
	Clear bool `json:"clear,omitempty"`
	Value *T   `json:"value,omitempty"`
}

func applyUpdate[T any](dst **T, u *Update[T]) {
	if u == nil {
		return
	}
	if u.Clear {
		*dst = nil
		return
	}
	*dst = u.Value
}

// RowMod merges row level properties into an existing row.
type RowMod struct {
	Row     int      `json:"row"`
	Height  *float64 `json:"height,omitempty"`
	Hidden  *bool    `json:"hidden,omitempty"`
	StyleID *int     `json:"styleId,omitempty"`
}

// SheetMod describes the mutation of one sheet, addressed by current name.
type SheetMod struct {
	Name string `json:"name"`

	Rename   *string    `json:"rename,omitempty"`
	State    *string    `json:"state,omitempty"`
	TabColor *ColorSpec `json:"tabColor,omitempty"`

	Cells []CellSpec `json:"cells,omitempty"`
	Rows  []RowMod   `json:"rows,omitempty"`

	RemoveRows []int `json:"removeRows,omitempty"`

	Columns       []ColumnSpec `json:"columns,omitempty"`
	RemoveColumns []int        `json:"removeColumns,omitempty"`

	AddMerges    []string `json:"addMerges,omitempty"`
	RemoveMerges []string `json:"removeMerges,omitempty"`

	ConditionalFormattings *Update[[]ConditionalFormatting] `json:"conditionalFormattings,omitempty"`
	DataValidations        *Update[[]DataValidation]        `json:"dataValidations,omitempty"`
	Hyperlinks             *Update[[]Hyperlink]             `json:"hyperlinks,omitempty"`
	AutoFilter             *Update[AutoFilter]              `json:"autoFilter,omitempty"`
	PageSetup              *Update[PageSetup]               `json:"pageSetup,omitempty"`
	PageMargins            *Update[PageMargins]             `json:"pageMargins,omitempty"`
	HeaderFooter           *Update[HeaderFooter]            `json:"headerFooter,omitempty"`
	PrintOptions           *Update[PrintOptions]            `json:"printOptions,omitempty"`
	SheetProtection        *Update[SheetProtection]         `json:"sheetProtection,omitempty"`
	SheetFormatPr          *Update[SheetFormatPr]           `json:"sheetFormatPr,omitempty"`
	SheetView              *Update[SheetViewSpec]           `json:"sheetView,omitempty"`
	PageBreaks             *Update[PageBreaks]              `json:"pageBreaks,omitempty"`
}

// ModSpec is the declarative modification specification.
type ModSpec struct {
	Styles       *StylesSpec       `json:"styles,omitempty"`
	RemoveSheets []string          `json:"removeSheets,omitempty"`
	Sheets       []SheetMod        `json:"sheets,omitempty"`
	AddSheets    []SheetSpec       `json:"addSheets,omitempty"`
	DefinedNames []DefinedNameSpec `json:"definedNames,omitempty"`
}

// Apply rewrites the workbook according to the modification spec and
// returns a new value. The phase order is fixed: style additions, sheet
// removal, per sheet mutation, sheet addition, defined name upsert and
// the shared string rebuild.
func Apply(wb *Workbook, mod *ModSpec) (*Workbook, error) {
	out := deepcopy.Copy(wb).(*Workbook)

	if mod == nil {
		return out, nil
	}

	// Phase 1: append-only style additions preserve existing indices.
	if mod.Styles != nil {
		styles, err := appendStyles(out.Styles, mod.Styles)
		if err != nil {
			return nil, err
		}
		out.Styles = styles
	}

	// Phase 2: sheet removal by name.
	for _, name := range mod.RemoveSheets {
		i := slices.IndexFunc(out.Sheets, func(s Sheet) bool { return s.Name == name })
		if i < 0 {
			return nil, errors.Wrapf(ErrSheetNotFound, "%q", name)
		}
		out.Sheets = slices.Delete(out.Sheets, i, i+1)
	}

	// Phase 3: per sheet mutation, addressed by current name.
	for i := range mod.Sheets {
		sm := &mod.Sheets[i]
		idx := slices.IndexFunc(out.Sheets, func(s Sheet) bool { return s.Name == sm.Name })
		if idx < 0 {
			return nil, errors.Wrapf(ErrSheetNotFound, "%q", sm.Name)
		}

		sheet, err := applySheetMod(&out.Sheets[idx], sm)
		if err != nil {
			return nil, err
		}
		out.Sheets[idx] = *sheet
	}

	// Phase 4: new sheets appended with positional ids.
	existing := len(out.Sheets)
	names := map[string]bool{}
	for _, s := range out.Sheets {
		names[s.Name] = true
	}
	for i, ss := range mod.AddSheets {
		if names[ss.Name] {
			return nil, errors.Wrapf(ErrDuplicateSheetName, "%q", ss.Name)
		}
		names[ss.Name] = true

		sheet, err := resolveSheet(&ss, existing+i, out.DateSystem)
		if err != nil {
			return nil, err
		}
		out.Sheets = append(out.Sheets, *sheet)
	}

	// Phase 5: defined name upsert by name.
	for _, dn := range mod.DefinedNames {
		i := slices.IndexFunc(out.DefinedNames, func(d DefinedName) bool { return d.Name == dn.Name })
		entry := DefinedName{Name: dn.Name, RefersTo: dn.RefersTo, Comment: dn.Comment}
		if i < 0 {
			out.DefinedNames = append(out.DefinedNames, entry)
		} else {
			out.DefinedNames[i] = entry
		}
	}

	// Phase 6: the shared string table is rebuilt from scratch over the
	// final sheet set.
	out.SharedStrings = collectSharedStrings(out.Sheets)

	return out, nil
}

func appendStyles(s Styles, add *StylesSpec) (Styles, error) {
	appended, err := resolveStyles(add)
	if err != nil {
		return s, err
	}

	// resolveStyles seeds defaults, everything beyond them is the addition.
	defaults := NewDefaultStyles()
	s.Fonts = append(s.Fonts, appended.Fonts[len(defaults.Fonts):]...)
	s.Fills = append(s.Fills, appended.Fills[len(defaults.Fills):]...)
	s.Borders = append(s.Borders, appended.Borders[len(defaults.Borders):]...)
	s.CellXfs = append(s.CellXfs, appended.CellXfs[len(defaults.CellXfs):]...)

	for _, nf := range appended.NumberFormats {
		s.AddNumberFormat(nf.Code)
	}

	return s, nil
}

func applySheetMod(sheet *Sheet, sm *SheetMod) (*Sheet, error) {
	out := *sheet

	if sm.Rename != nil {
		out.Name = *sm.Rename
	}

	if sm.State != nil {
		switch *sm.State {
		case "visible":
			out.State = SheetVisible
		case "hidden":
			out.State = SheetHidden
		case "veryHidden":
			out.State = SheetVeryHidden
		default:
			return nil, errors.Errorf("aurochs: xlsx: unknown sheet state %q", *sm.State)
		}
	}

	if sm.TabColor != nil {
		tc, err := resolveTabColor(sm.TabColor)
		if err != nil {
			return nil, err
		}
		out.TabColor = tc
	}

	// Cell merges: colocated cells are replaced, rows for new row numbers
	// are appended sorted by row number.
	if len(sm.Cells) > 0 {
		if err := mergeCells(&out, sm.Cells); err != nil {
			return nil, err
		}
	}

	// Row property merge.
	for _, rm := range sm.Rows {
		for i := range out.Rows {
			if out.Rows[i].Number != rm.Row {
				continue
			}
			if rm.Height != nil {
				out.Rows[i].Height = rm.Height
			}
			if rm.Hidden != nil {
				out.Rows[i].Hidden = *rm.Hidden
			}
			if rm.StyleID != nil {
				out.Rows[i].StyleID = rm.StyleID
			}
		}
	}

	// Row removal by row number set.
	if len(sm.RemoveRows) > 0 {
		drop := map[int]bool{}
		for _, r := range sm.RemoveRows {
			drop[r] = true
		}
		kept := out.Rows[:0:0]
		for _, row := range out.Rows {
			if !drop[row.Number] {
				kept = append(kept, row)
			}
		}
		out.Rows = kept
	}

	// Column add/replace keyed by Min.
	for _, cs := range sm.Columns {
		max := cs.Min
		if cs.Max != nil {
			max = *cs.Max
		}
		col := Column{Min: cs.Min, Max: max, Width: cs.Width, Hidden: cs.Hidden, StyleID: cs.StyleID, BestFit: cs.BestFit}

		i := slices.IndexFunc(out.Columns, func(c Column) bool { return c.Min == cs.Min })
		if i < 0 {
			out.Columns = append(out.Columns, col)
		} else {
			out.Columns[i] = col
		}
	}

	// Column removal by Min.
	if len(sm.RemoveColumns) > 0 {
		drop := map[int]bool{}
		for _, c := range sm.RemoveColumns {
			drop[c] = true
		}
		kept := out.Columns[:0:0]
		for _, col := range out.Columns {
			if !drop[col.Min] {
				kept = append(kept, col)
			}
		}
		out.Columns = kept
	}

	// Merge range add, then remove. Removal compares the canonical form.
	for _, m := range sm.AddMerges {
		r, err := ParseRange(m)
		if err != nil {
			return nil, err
		}
		out.MergeCells = append(out.MergeCells, r)
	}
	for _, m := range sm.RemoveMerges {
		r, err := ParseRange(m)
		if err != nil {
			return nil, err
		}
		canon := r.String()
		kept := out.MergeCells[:0:0]
		for _, mc := range out.MergeCells {
			if mc.String() != canon {
				kept = append(kept, mc)
			}
		}
		out.MergeCells = kept
	}

	// Feature replacements: set, clear or preserve.
	applySliceUpdate(&out.ConditionalFormattings, sm.ConditionalFormattings)
	applySliceUpdate(&out.DataValidations, sm.DataValidations)
	applySliceUpdate(&out.Hyperlinks, sm.Hyperlinks)
	applyUpdate(&out.AutoFilter, sm.AutoFilter)
	applyUpdate(&out.PageSetup, sm.PageSetup)
	applyUpdate(&out.PageMargins, sm.PageMargins)
	applyUpdate(&out.HeaderFooter, sm.HeaderFooter)
	applyUpdate(&out.PrintOptions, sm.PrintOptions)
	applyUpdate(&out.SheetProtection, sm.SheetProtection)
	applyUpdate(&out.SheetFormatPr, sm.SheetFormatPr)
	applyUpdate(&out.PageBreaks, sm.PageBreaks)

	if sm.SheetView != nil {
		if sm.SheetView.Clear {
			out.SheetView = nil
		} else if sm.SheetView.Value != nil {
			sv, err := resolveSheetView(sm.SheetView.Value)
			if err != nil {
				return nil, err
			}
			out.SheetView = sv
		}
	}

	assignHyperlinkRelIDs(&out)

	return &out, nil
}

func applySliceUpdate[T any](dst *[]T, u *Update[[]T]) {
	if u == nil {
		return
	}
	if u.Clear {
		*dst = nil
		return
	}
	if u.Value != nil {
		*dst = *u.Value
	}
}

// mergeCells replaces colocated cells by (col, row) and appends rows for
// new row numbers, keeping the row list sorted by row number.
func mergeCells(sheet *Sheet, specs []CellSpec) error {
	for _, cs := range specs {
		cell, err := ResolveCell(&cs)
		if err != nil {
			return err
		}

		rowIdx := slices.IndexFunc(sheet.Rows, func(r Row) bool { return r.Number == cell.Address.Row })
		if rowIdx < 0 {
			row := Row{Number: cell.Address.Row, Cells: []Cell{*cell}}
			// Insert sorted by row number.
			pos := len(sheet.Rows)
			for i := range sheet.Rows {
				if sheet.Rows[i].Number > row.Number {
					pos = i
					break
				}
			}
			sheet.Rows = slices.Insert(sheet.Rows, pos, row)
			continue
		}

		row := &sheet.Rows[rowIdx]
		cellIdx := slices.IndexFunc(row.Cells, func(c Cell) bool { return c.Address == cell.Address })
		if cellIdx < 0 {
			row.Cells = append(row.Cells, *cell)
		} else {
			row.Cells[cellIdx] = *cell
		}
	}

	return nil
}

// assignHyperlinkRelIDs numbers the external hyperlink relationships
// rId<k>, monotonically and scoped to the sheet.
func assignHyperlinkRelIDs(sheet *Sheet) {
	k := 0
	for i := range sheet.Hyperlinks {
		t := sheet.Hyperlinks[i].Target
		if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") || strings.HasPrefix(t, "mailto:") {
			k++
			sheet.Hyperlinks[i].RelID = fmt.Sprintf("rId%d", k)
		}
	}
}
