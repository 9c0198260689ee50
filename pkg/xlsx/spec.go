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
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/efp"
)

// Build spec types. These mirror the JSON shaped input tree, shorthand
// scalar cell values are accepted alongside the tagged form.

var (
	// ErrInvalidErrorValue gets raised for error literals outside the enum.
	ErrInvalidErrorValue = errors.New("aurochs: xlsx: invalid error value")

	// ErrDuplicateSheetName gets raised for case sensitively equal sheet names.
	ErrDuplicateSheetName = errors.New("aurochs: xlsx: duplicate sheet name")

	// ErrInvalidFormula gets raised for formulas that tokenize empty.
	ErrInvalidFormula = errors.New("aurochs: xlsx: invalid formula")
)

// WorkbookSpec describes a workbook to build.
type WorkbookSpec struct {
	DateSystem   string            `json:"dateSystem,omitempty"`
	Sheets       []SheetSpec       `json:"sheets"`
	Styles       *StylesSpec       `json:"styles,omitempty"`
	DefinedNames []DefinedNameSpec `json:"definedNames,omitempty"`
}

// SheetSpec describes one sheet.
type SheetSpec struct {
	Name    string       `json:"name"`
	State   string       `json:"state,omitempty"`
	Rows    []RowSpec    `json:"rows,omitempty"`
	Columns []ColumnSpec `json:"columns,omitempty"`

	MergeCells []string `json:"mergeCells,omitempty"`

	Hyperlinks             []Hyperlink             `json:"hyperlinks,omitempty"`
	ConditionalFormattings []ConditionalFormatting `json:"conditionalFormattings,omitempty"`
	DataValidations        []DataValidation        `json:"dataValidations,omitempty"`
	AutoFilter             *AutoFilter             `json:"autoFilter,omitempty"`
	PageSetup              *PageSetup              `json:"pageSetup,omitempty"`
	PageMargins            *PageMargins            `json:"pageMargins,omitempty"`
	HeaderFooter           *HeaderFooter           `json:"headerFooter,omitempty"`
	PrintOptions           *PrintOptions           `json:"printOptions,omitempty"`
	SheetProtection        *SheetProtection        `json:"sheetProtection,omitempty"`
	SheetView              *SheetViewSpec          `json:"sheetView,omitempty"`
	SheetFormatPr          *SheetFormatPr          `json:"sheetFormatPr,omitempty"`
	PageBreaks             *PageBreaks             `json:"pageBreaks,omitempty"`
	TabColor               *ColorSpec              `json:"tabColor,omitempty"`
}

// RowSpec describes one row.
type RowSpec struct {
	Row     int        `json:"row"`
	Height  *float64   `json:"height,omitempty"`
	Hidden  bool       `json:"hidden,omitempty"`
	StyleID *int       `json:"styleId,omitempty"`
	Cells   []CellSpec `json:"cells,omitempty"`
}

// CellSpec describes one cell. Value accepts the scalar shorthand
// (string, number, boolean) or the tagged form.
type CellSpec struct {
	Ref     string       `json:"ref"`
	Value   any          `json:"value,omitempty"`
	Formula *FormulaSpec `json:"formula,omitempty"`
	StyleID *int         `json:"styleId,omitempty"`
}

// FormulaSpec describes a cell formula.
type FormulaSpec struct {
	Expression string `json:"expression"`
	Type       string `json:"type,omitempty"`
	Ref        string `json:"ref,omitempty"`
}

// ColumnSpec describes a column range.
type ColumnSpec struct {
	Min     int      `json:"min"`
	Max     *int     `json:"max,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Hidden  bool     `json:"hidden,omitempty"`
	StyleID *int     `json:"styleId,omitempty"`
	BestFit bool     `json:"bestFit,omitempty"`
}

// SheetViewSpec describes the sheet view including the freeze shorthand.
type SheetViewSpec struct {
	ShowGridLines     *bool   `json:"showGridLines,omitempty"`
	ShowRowColHeaders *bool   `json:"showRowColHeaders,omitempty"`
	ZoomScale         *int    `json:"zoomScale,omitempty"`
	TabSelected       bool    `json:"tabSelected,omitempty"`
	Freeze            *Freeze `json:"freeze,omitempty"`
}

// Freeze is the freeze pane shorthand: rows above and columns left of the
// split stay fixed.
type Freeze struct {
	Row *int `json:"row,omitempty"`
	Col *int `json:"col,omitempty"`
}

// ColorSpec is either an RGB hex string or a theme slot reference.
type ColorSpec struct {
	Type  string   `json:"type,omitempty"`
	Value string   `json:"value,omitempty"`
	Theme *int     `json:"theme,omitempty"`
	Tint  *float64 `json:"tint,omitempty"`
}

// DefinedNameSpec describes a defined name.
type DefinedNameSpec struct {
	Name     string `json:"name"`
	RefersTo string `json:"refersTo"`
	Comment  string `json:"comment,omitempty"`
}

// StylesSpec appends custom style entries on top of the defaults.
type StylesSpec struct {
	Fonts         []Font     `json:"fonts,omitempty"`
	Fills         []FillSpec `json:"fills,omitempty"`
	Borders       []Border   `json:"borders,omitempty"`
	NumberFormats []string   `json:"numberFormats,omitempty"`
	CellXfs       []CellXf   `json:"cellXfs,omitempty"`
}

// FillSpec is a solid fill shorthand with color spec resolution.
type FillSpec struct {
	Pattern string     `json:"pattern,omitempty"`
	FgColor *ColorSpec `json:"fgColor,omitempty"`
	BgColor *ColorSpec `json:"bgColor,omitempty"`
}

// ResolveWorkbook converts a build spec into the workbook domain value.
func ResolveWorkbook(spec *WorkbookSpec) (*Workbook, error) {
	wb := &Workbook{DateSystem: DateSystem1900}

	switch spec.DateSystem {
	case "", "1900":
	case "1904":
		wb.DateSystem = DateSystem1904
	default:
		return nil, errors.Errorf("aurochs: xlsx: unknown date system %q", spec.DateSystem)
	}

	styles, err := resolveStyles(spec.Styles)
	if err != nil {
		return nil, err
	}
	wb.Styles = styles

	names := map[string]bool{}

	for i, ss := range spec.Sheets {
		if names[ss.Name] {
			return nil, errors.Wrapf(ErrDuplicateSheetName, "%q", ss.Name)
		}
		names[ss.Name] = true

		sheet, err := resolveSheet(&ss, i, wb.DateSystem)
		if err != nil {
			return nil, err
		}
		wb.Sheets = append(wb.Sheets, *sheet)
	}

	for _, dn := range spec.DefinedNames {
		wb.DefinedNames = append(wb.DefinedNames, DefinedName{
			Name:     dn.Name,
			RefersTo: dn.RefersTo,
			Comment:  dn.Comment,
		})
	}

	wb.SharedStrings = collectSharedStrings(wb.Sheets)

	return wb, nil
}

func resolveSheet(ss *SheetSpec, index int, ds DateSystem) (*Sheet, error) {
	sheet := &Sheet{
		Name:       ss.Name,
		SheetID:    index + 1,
		State:      SheetVisible,
		XMLPath:    fmt.Sprintf("xl/worksheets/sheet%d.xml", index+1),
		DateSystem: ds,
	}

	switch ss.State {
	case "", "visible":
	case "hidden":
		sheet.State = SheetHidden
	case "veryHidden":
		sheet.State = SheetVeryHidden
	default:
		return nil, errors.Errorf("aurochs: xlsx: unknown sheet state %q", ss.State)
	}

	// Rows and cells preserve their given order.
	for _, rs := range ss.Rows {
		row := Row{Number: rs.Row, Height: rs.Height, Hidden: rs.Hidden, StyleID: rs.StyleID}
		for _, cs := range rs.Cells {
			cell, err := ResolveCell(&cs)
			if err != nil {
				return nil, err
			}
			row.Cells = append(row.Cells, *cell)
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	for _, cs := range ss.Columns {
		max := cs.Min
		if cs.Max != nil {
			max = *cs.Max
		}
		sheet.Columns = append(sheet.Columns, Column{
			Min:     cs.Min,
			Max:     max,
			Width:   cs.Width,
			Hidden:  cs.Hidden,
			StyleID: cs.StyleID,
			BestFit: cs.BestFit,
		})
	}

	for _, m := range ss.MergeCells {
		r, err := ParseRange(m)
		if err != nil {
			return nil, err
		}
		sheet.MergeCells = append(sheet.MergeCells, r)
	}

	sheet.Hyperlinks = append(sheet.Hyperlinks, ss.Hyperlinks...)
	sheet.ConditionalFormattings = append(sheet.ConditionalFormattings, ss.ConditionalFormattings...)
	sheet.DataValidations = append(sheet.DataValidations, ss.DataValidations...)
	sheet.AutoFilter = ss.AutoFilter
	sheet.PageSetup = ss.PageSetup
	sheet.PageMargins = ss.PageMargins
	sheet.HeaderFooter = ss.HeaderFooter
	sheet.PrintOptions = ss.PrintOptions
	sheet.SheetProtection = ss.SheetProtection
	sheet.SheetFormatPr = ss.SheetFormatPr
	sheet.PageBreaks = ss.PageBreaks

	if ss.SheetView != nil {
		sv, err := resolveSheetView(ss.SheetView)
		if err != nil {
			return nil, err
		}
		sheet.SheetView = sv
	}

	if ss.TabColor != nil {
		tc, err := resolveTabColor(ss.TabColor)
		if err != nil {
			return nil, err
		}
		sheet.TabColor = tc
	}

	return sheet, nil
}

// resolveSheetView expands the freeze shorthand into a pane definition.
func resolveSheetView(sv *SheetViewSpec) (*SheetView, error) {
	out := &SheetView{
		ShowGridLines:     sv.ShowGridLines,
		ShowRowColHeaders: sv.ShowRowColHeaders,
		ZoomScale:         sv.ZoomScale,
		TabSelected:       sv.TabSelected,
	}

	if sv.Freeze != nil {
		out.Pane = ResolveFreeze(sv.Freeze)
	}

	return out, nil
}

// ResolveFreeze maps {row, col} onto the pane definition:
// xSplit=col, ySplit=row, topLeftCell below/right of the split.
func ResolveFreeze(f *Freeze) *Pane {
	col, row := 0, 0
	if f.Col != nil {
		col = *f.Col
	}
	if f.Row != nil {
		row = *f.Row
	}

	return &Pane{
		XSplit:      col,
		YSplit:      row,
		TopLeftCell: ColumnLetters(col+1) + fmt.Sprintf("%d", row+1),
		ActivePane:  "bottomRight",
		State:       "frozen",
	}
}

func resolveTabColor(cs *ColorSpec) (*TabColor, error) {
	if cs.Type == "theme" || cs.Theme != nil {
		return &TabColor{Theme: cs.Theme, Tint: cs.Tint}, nil
	}

	rgb, err := ResolveColor(cs.Value)
	if err != nil {
		return nil, err
	}
	return &TabColor{RGB: rgb}, nil
}

// ResolveCell converts a cell spec, accepting scalar shorthands and the
// tagged value form.
func ResolveCell(cs *CellSpec) (*Cell, error) {
	ref, err := ParseCellRef(cs.Ref)
	if err != nil {
		return nil, err
	}

	cell := &Cell{Address: ref, StyleID: cs.StyleID}

	v, err := resolveCellValue(cs.Value)
	if err != nil {
		return nil, err
	}
	cell.Value = v

	if cs.Formula != nil {
		f, err := resolveFormula(cs.Formula)
		if err != nil {
			return nil, err
		}
		cell.Formula = f
	}

	return cell, nil
}

func resolveCellValue(v any) (CellValue, error) {
	switch val := v.(type) {

	case nil:
		return NewEmptyValue(), nil

	case string:
		return NewStringValue(val), nil

	case bool:
		return NewBooleanValue(val), nil

	case int:
		return NewNumberValue(float64(val)), nil
	case int64:
		return NewNumberValue(float64(val)), nil
	case float64:
		return NewNumberValue(val), nil

	case map[string]any:
		return resolveTaggedValue(val)

	case CellValue:
		if val.Type == CellError {
			if !memberOf(val.Error, ErrorValues) {
				return CellValue{}, errors.Wrapf(ErrInvalidErrorValue, "%q", val.Error)
			}
		}
		return val, nil
	}

	return CellValue{}, errors.Errorf("aurochs: xlsx: unsupported cell value %T", v)
}

func resolveTaggedValue(m map[string]any) (CellValue, error) {
	t, _ := m["type"].(string)

	switch CellValueType(t) {

	case CellString:
		s, _ := m["value"].(string)
		return NewStringValue(s), nil

	case CellNumber:
		switch n := m["value"].(type) {
		case float64:
			return NewNumberValue(n), nil
		case int:
			return NewNumberValue(float64(n)), nil
		}
		return CellValue{}, errors.New("aurochs: xlsx: number value expected")

	case CellBoolean:
		b, _ := m["value"].(bool)
		return NewBooleanValue(b), nil

	case CellDate:
		s, _ := m["value"].(string)
		// ISO 8601 input, normalized to a UTC instant.
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			ts, err = time.Parse("2006-01-02", s)
			if err != nil {
				return CellValue{}, errors.Errorf("aurochs: xlsx: invalid date %q", s)
			}
		}
		return CellValue{Type: CellDate, Date: ts.UTC()}, nil

	case CellError:
		s, _ := m["value"].(string)
		if !memberOf(s, ErrorValues) {
			return CellValue{}, errors.Wrapf(ErrInvalidErrorValue, "%q", s)
		}
		return CellValue{Type: CellError, Error: s}, nil

	case CellEmpty, "":
		return NewEmptyValue(), nil
	}

	return CellValue{}, errors.Errorf("aurochs: xlsx: unknown value type %q", t)
}

func resolveFormula(fs *FormulaSpec) (*Formula, error) {
	// A formula must tokenize to something.
	parser := efp.ExcelParser()
	tokens := parser.Parse(fs.Expression)
	if len(tokens) == 0 {
		return nil, errors.Wrapf(ErrInvalidFormula, "%q", fs.Expression)
	}

	f := &Formula{Expression: fs.Expression, Type: FormulaNormal, Ref: fs.Ref}

	switch fs.Type {
	case "", "normal":
	case "array":
		f.Type = FormulaArray
	case "shared":
		f.Type = FormulaShared
	default:
		return nil, errors.Errorf("aurochs: xlsx: unknown formula type %q", fs.Type)
	}

	return f, nil
}

func resolveStyles(ss *StylesSpec) (Styles, error) {
	styles := NewDefaultStyles()

	if ss == nil {
		return styles, nil
	}

	for _, f := range ss.Fonts {
		if f.Color != nil && f.Color.RGB != "" {
			rgb, err := ResolveColor(f.Color.RGB)
			if err != nil {
				return styles, err
			}
			f.Color = &Color{RGB: rgb, Theme: f.Color.Theme, Tint: f.Color.Tint}
		}
		styles.Fonts = append(styles.Fonts, f)
	}

	for _, fs := range ss.Fills {
		fill := Fill{Pattern: FillSolid}
		if fs.Pattern != "" {
			fill.Pattern = FillPattern(fs.Pattern)
		}
		var err error
		if fill.FgColor, err = resolveStyleColor(fs.FgColor); err != nil {
			return styles, err
		}
		if fill.BgColor, err = resolveStyleColor(fs.BgColor); err != nil {
			return styles, err
		}
		styles.Fills = append(styles.Fills, fill)
	}

	styles.Borders = append(styles.Borders, ss.Borders...)

	for _, code := range ss.NumberFormats {
		styles.AddNumberFormat(code)
	}

	styles.CellXfs = append(styles.CellXfs, ss.CellXfs...)

	return styles, nil
}

func resolveStyleColor(cs *ColorSpec) (*Color, error) {
	if cs == nil {
		return nil, nil
	}

	if cs.Type == "theme" || cs.Theme != nil {
		return &Color{Theme: cs.Theme, Tint: cs.Tint}, nil
	}

	rgb, err := ResolveColor(cs.Value)
	if err != nil {
		return nil, err
	}
	return &Color{RGB: rgb}, nil
}

func memberOf(s string, list []string) bool {
	for _, v := range list {
		if s == v {
			return true
		}
	}
	return false
}
