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
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// marshalPart renders an element tree as a UTF-8 part with the XML header.
func marshalPart(v any) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(xml.Header)

	enc := xml.NewEncoder(&b)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "aurochs: xlsx: marshal")
	}

	return b.Bytes(), nil
}

// SerializeWorkbook produces xl/workbook.xml.
// Sheet r:id values are rId<position> matching the workbook rels part.
func SerializeWorkbook(wb *Workbook) ([]byte, error) {
	x := &xlsxWorkbook{
		Xmlns:  NameSpaceSpreadSheet,
		XmlnsR: NameSpaceRelationships,
	}

	if wb.DateSystem == DateSystem1904 {
		x.WorkbookPr = &xlsxWorkbookPr{Date1904: true}
	}

	for i, s := range wb.Sheets {
		state := ""
		if s.State != SheetVisible {
			state = string(s.State)
		}
		x.Sheets.Sheet = append(x.Sheets.Sheet, xlsxSheet{
			Name:    s.Name,
			SheetID: s.SheetID,
			State:   state,
			RID:     fmt.Sprintf("rId%d", i+1),
		})
	}

	if len(wb.DefinedNames) > 0 {
		dn := &xlsxDefinedNames{}
		for _, d := range wb.DefinedNames {
			dn.DefinedName = append(dn.DefinedName, xlsxDefinedName{
				Name:         d.Name,
				Comment:      d.Comment,
				LocalSheetID: d.SheetID,
				Data:         d.RefersTo,
			})
		}
		x.DefinedNames = dn
	}

	return marshalPart(x)
}

// SerializeWorkbookRels produces xl/_rels/workbook.xml.rels.
func SerializeWorkbookRels(wb *Workbook) ([]byte, error) {
	rels := &xlsxRelationships{Xmlns: NameSpacePackageRels}

	for i := range wb.Sheets {
		rels.Relationship = append(rels.Relationship, xlsxRelationship{
			ID:     fmt.Sprintf("rId%d", i+1),
			Type:   RelTypeWorksheet,
			Target: fmt.Sprintf("worksheets/sheet%d.xml", i+1),
		})
	}

	rels.Relationship = append(rels.Relationship,
		xlsxRelationship{
			ID:     fmt.Sprintf("rId%d", len(wb.Sheets)+1),
			Type:   RelTypeStyles,
			Target: "styles.xml",
		},
		xlsxRelationship{
			ID:     fmt.Sprintf("rId%d", len(wb.Sheets)+2),
			Type:   RelTypeSharedStrings,
			Target: "sharedStrings.xml",
		},
	)

	return marshalPart(rels)
}

// SerializeSharedStrings produces xl/sharedStrings.xml.
func SerializeSharedStrings(wb *Workbook) ([]byte, error) {
	total := 0
	for i := range wb.Sheets {
		for j := range wb.Sheets[i].Rows {
			for k := range wb.Sheets[i].Rows[j].Cells {
				if wb.Sheets[i].Rows[j].Cells[k].Value.Type == CellString {
					total++
				}
			}
		}
	}

	sst := &xlsxSST{
		Xmlns:       NameSpaceSpreadSheet,
		Count:       total,
		UniqueCount: len(wb.SharedStrings),
	}

	for _, s := range wb.SharedStrings {
		si := xlsxSI{T: xlsxT{Data: s}}
		if needsSpacePreserve(s) {
			si.T.Space = "preserve"
		}
		sst.SI = append(sst.SI, si)
	}

	return marshalPart(sst)
}

func needsSpacePreserve(s string) bool {
	if s == "" {
		return false
	}
	return s[0] == ' ' || s[len(s)-1] == ' ' || s[0] == '\t' || s[len(s)-1] == '\t' ||
		s[0] == '\n' || s[len(s)-1] == '\n'
}

// SerializeStyles produces xl/styles.xml.
func SerializeStyles(s *Styles) ([]byte, error) {
	x := &xlsxStyleSheet{Xmlns: NameSpaceSpreadSheet}

	if len(s.NumberFormats) > 0 {
		nf := &xlsxNumFmts{Count: len(s.NumberFormats)}
		for _, n := range s.NumberFormats {
			nf.NumFmt = append(nf.NumFmt, xlsxNumFmt{NumFmtID: n.ID, FormatCode: n.Code})
		}
		x.NumFmts = nf
	}

	x.Fonts.Count = len(s.Fonts)
	for _, f := range s.Fonts {
		x.Fonts.Font = append(x.Fonts.Font, fontXML(f))
	}

	x.Fills.Count = len(s.Fills)
	for _, f := range s.Fills {
		x.Fills.Fill = append(x.Fills.Fill, fillXML(f))
	}

	x.Borders.Count = len(s.Borders)
	for _, b := range s.Borders {
		x.Borders.Border = append(x.Borders.Border, borderXML(b))
	}

	// The single mandatory cell style xf.
	x.CellStyleXfs = xlsxCellStyleXfs{Count: 1, Xf: []xlsxXf{{}}}

	x.CellXfs.Count = len(s.CellXfs)
	zero := 0
	for _, xf := range s.CellXfs {
		entry := xlsxXf{
			NumFmtID:          xf.NumFmtID,
			FontID:            xf.FontID,
			FillID:            xf.FillID,
			BorderID:          xf.BorderID,
			XfID:              &zero,
			ApplyNumberFormat: xf.ApplyNumberFormat,
			ApplyFont:         xf.ApplyFont,
			ApplyFill:         xf.ApplyFill,
			ApplyBorder:       xf.ApplyBorder,
			ApplyAlignment:    xf.ApplyAlignment,
		}
		if xf.Alignment != nil {
			entry.Alignment = &xlsxAlignment{
				Horizontal:   xf.Alignment.Horizontal,
				Vertical:     xf.Alignment.Vertical,
				TextRotation: xf.Alignment.TextRotation,
				WrapText:     xf.Alignment.WrapText,
				Indent:       xf.Alignment.Indent,
				ShrinkToFit:  xf.Alignment.ShrinkToFit,
			}
		}
		x.CellXfs.Xf = append(x.CellXfs.Xf, entry)
	}

	return marshalPart(x)
}

func colorXML(c *Color) *xlsxColor {
	if c == nil {
		return nil
	}
	return &xlsxColor{RGB: c.RGB, Theme: c.Theme, Tint: c.Tint, Auto: c.Auto}
}

func fontXML(f Font) xlsxFont {
	out := xlsxFont{}
	if f.Bold {
		out.B = &xlsxEmpty{}
	}
	if f.Italic {
		out.I = &xlsxEmpty{}
	}
	if f.Strike {
		out.Strike = &xlsxEmpty{}
	}
	if f.Underline != "" {
		out.U = &xlsxValAttr{Val: f.Underline}
	}
	if f.Size > 0 {
		out.Sz = &xlsxFloatVal{Val: f.Size}
	}
	out.Color = colorXML(f.Color)
	if f.Name != "" {
		out.Name = &xlsxValAttr{Val: f.Name}
	}
	if f.Family != nil {
		out.Family = &xlsxIntVal{Val: *f.Family}
	}
	if f.Scheme != "" {
		out.Scheme = &xlsxValAttr{Val: f.Scheme}
	}
	return out
}

func fillXML(f Fill) xlsxFill {
	return xlsxFill{
		PatternFill: xlsxPatternFill{
			PatternType: string(f.Pattern),
			FgColor:     colorXML(f.FgColor),
			BgColor:     colorXML(f.BgColor),
		},
	}
}

func borderXML(b Border) xlsxBorder {
	edge := func(e *BorderEdge) xlsxBorderEdge {
		if e == nil {
			return xlsxBorderEdge{}
		}
		return xlsxBorderEdge{Style: e.Style, Color: colorXML(e.Color)}
	}
	return xlsxBorder{
		Left:     edge(b.Left),
		Right:    edge(b.Right),
		Top:      edge(b.Top),
		Bottom:   edge(b.Bottom),
		Diagonal: edge(b.Diagonal),
	}
}

// excel serial date epochs.
var (
	epoch1900 = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// dateToSerial converts a UTC instant into the workbook's serial number.
func dateToSerial(t time.Time, ds DateSystem) float64 {
	epoch := epoch1900
	if ds == DateSystem1904 {
		epoch = epoch1904
	}
	return t.Sub(epoch).Hours() / 24
}

// SerializeWorksheet produces xl/worksheets/sheet<N>.xml for the given sheet.
func SerializeWorksheet(wb *Workbook, sheetIndex int) ([]byte, error) {
	if sheetIndex < 0 || sheetIndex >= len(wb.Sheets) {
		return nil, errors.Errorf("aurochs: xlsx: sheet index %d out of range", sheetIndex)
	}
	s := &wb.Sheets[sheetIndex]

	sharedIndex := map[string]int{}
	for i, str := range wb.SharedStrings {
		sharedIndex[str] = i
	}

	x := &xlsxWorksheet{
		Xmlns:  NameSpaceSpreadSheet,
		XmlnsR: NameSpaceRelationships,
	}

	if s.TabColor != nil {
		x.SheetPr = &xlsxSheetPr{TabColor: &xlsxColor{RGB: s.TabColor.RGB, Theme: s.TabColor.Theme, Tint: s.TabColor.Tint}}
	}

	if s.SheetView != nil {
		sv := xlsxSheetView{
			ShowGridLines:     s.SheetView.ShowGridLines,
			ShowRowColHeaders: s.SheetView.ShowRowColHeaders,
			TabSelected:       s.SheetView.TabSelected,
			ZoomScale:         s.SheetView.ZoomScale,
		}
		if s.SheetView.Pane != nil {
			p := s.SheetView.Pane
			sv.Pane = &xlsxPane{
				XSplit:      p.XSplit,
				YSplit:      p.YSplit,
				TopLeftCell: p.TopLeftCell,
				ActivePane:  p.ActivePane,
				State:       p.State,
			}
		}
		x.SheetViews = &xlsxSheetViews{SheetView: []xlsxSheetView{sv}}
	}

	if s.SheetFormatPr != nil {
		x.SheetFormatPr = &xlsxSheetFormatPr{
			BaseColWidth:     s.SheetFormatPr.BaseColWidth,
			DefaultColWidth:  s.SheetFormatPr.DefaultColWidth,
			DefaultRowHeight: s.SheetFormatPr.DefaultRowHeight,
		}
	}

	if len(s.Columns) > 0 {
		cols := &xlsxCols{}
		for _, c := range s.Columns {
			cols.Col = append(cols.Col, xlsxCol{
				Min:         c.Min,
				Max:         c.Max,
				Width:       c.Width,
				Style:       c.StyleID,
				Hidden:      c.Hidden,
				BestFit:     c.BestFit,
				CustomWidth: c.Width != nil,
			})
		}
		x.Cols = cols
	}

	for _, row := range s.Rows {
		r := xlsxRow{
			R:            row.Number,
			Ht:           row.Height,
			CustomHeight: row.Height != nil,
			Hidden:       row.Hidden,
			S:            row.StyleID,
			CustomFormat: row.StyleID != nil,
		}
		for _, cell := range row.Cells {
			c, err := cellXML(&cell, s.DateSystem, sharedIndex)
			if err != nil {
				return nil, err
			}
			r.C = append(r.C, *c)
		}
		x.SheetData.Row = append(x.SheetData.Row, r)
	}

	if s.SheetProtection != nil {
		sp := s.SheetProtection
		x.SheetProtection = &xlsxSheetProtection{
			Sheet:               sp.Sheet,
			Objects:             sp.Objects,
			Scenarios:           sp.Scenarios,
			FormatCells:         sp.FormatCells,
			FormatColumns:       sp.FormatColumns,
			FormatRows:          sp.FormatRows,
			InsertColumns:       sp.InsertColumns,
			InsertRows:          sp.InsertRows,
			InsertHyperlinks:    sp.InsertHyperlinks,
			DeleteColumns:       sp.DeleteColumns,
			DeleteRows:          sp.DeleteRows,
			Sort:                sp.Sort,
			AutoFilter:          sp.AutoFilter,
			PivotTables:         sp.PivotTables,
			SelectLockedCells:   sp.SelectLockedCells,
			SelectUnlockedCells: sp.SelectUnlockedCells,
			Password:            sp.PasswordHash,
		}
	}

	if s.AutoFilter != nil {
		x.AutoFilter = &xlsxAutoFilter{Ref: s.AutoFilter.Ref}
	}

	if len(s.MergeCells) > 0 {
		mc := &xlsxMergeCells{Count: len(s.MergeCells)}
		for _, m := range s.MergeCells {
			mc.MergeCell = append(mc.MergeCell, xlsxMergeCell{Ref: m.String()})
		}
		x.MergeCells = mc
	}

	for _, cf := range s.ConditionalFormattings {
		entry := xlsxConditionalFormatting{Sqref: cf.Ref}
		for _, rule := range cf.Rules {
			entry.CfRule = append(entry.CfRule, xlsxCfRule{
				Type:     rule.Type,
				DxfID:    rule.DxfID,
				Priority: rule.Priority,
				Operator: rule.Operator,
				Text:     rule.Text,
				Formula:  rule.Formulas,
			})
		}
		x.ConditionalFormatting = append(x.ConditionalFormatting, entry)
	}

	if len(s.DataValidations) > 0 {
		dv := &xlsxDataValidations{Count: len(s.DataValidations)}
		for _, d := range s.DataValidations {
			dv.DataValidation = append(dv.DataValidation, xlsxDataValidation{
				Type:             d.Type,
				Operator:         d.Operator,
				AllowBlank:       d.AllowBlank,
				ShowInputMessage: d.ShowInputMessage,
				ShowErrorMessage: d.ShowErrorMessage,
				ErrorTitle:       d.ErrorTitle,
				Error:            d.ErrorMessage,
				PromptTitle:      d.PromptTitle,
				Prompt:           d.Prompt,
				Sqref:            d.Ref,
				Formula1:         d.Formula1,
				Formula2:         d.Formula2,
			})
		}
		x.DataValidations = dv
	}

	if len(s.Hyperlinks) > 0 {
		hl := &xlsxHyperlinks{}
		for _, h := range s.Hyperlinks {
			entry := xlsxHyperlink{Ref: h.Ref, Tooltip: h.Tooltip, Display: h.Display}
			if h.RelID != "" {
				entry.RID = h.RelID
			} else {
				// Internal targets address a location within the workbook.
				entry.Location = h.Target
			}
			hl.Hyperlink = append(hl.Hyperlink, entry)
		}
		x.Hyperlinks = hl
	}

	if s.PrintOptions != nil {
		x.PrintOptions = &xlsxPrintOptions{
			GridLines:          s.PrintOptions.GridLines,
			Headings:           s.PrintOptions.Headings,
			HorizontalCentered: s.PrintOptions.HorizontalCentered,
			VerticalCentered:   s.PrintOptions.VerticalCentered,
		}
	}

	if s.PageMargins != nil {
		x.PageMargins = &xlsxPageMargins{
			Left:   s.PageMargins.Left,
			Right:  s.PageMargins.Right,
			Top:    s.PageMargins.Top,
			Bottom: s.PageMargins.Bottom,
			Header: s.PageMargins.Header,
			Footer: s.PageMargins.Footer,
		}
	}

	if s.PageSetup != nil {
		x.PageSetup = &xlsxPageSetup{
			PaperSize:       s.PageSetup.PaperSize,
			Scale:           s.PageSetup.Scale,
			FirstPageNumber: s.PageSetup.FirstPageNumber,
			FitToWidth:      s.PageSetup.FitToWidth,
			FitToHeight:     s.PageSetup.FitToHeight,
			Orientation:     s.PageSetup.Orientation,
		}
	}

	if s.HeaderFooter != nil {
		x.HeaderFooter = &xlsxHeaderFooter{
			DifferentFirst:   s.HeaderFooter.DifferentFirst,
			DifferentOddEven: s.HeaderFooter.DifferentOddEven,
			OddHeader:        s.HeaderFooter.OddHeader,
			OddFooter:        s.HeaderFooter.OddFooter,
			EvenHeader:       s.HeaderFooter.EvenHeader,
			EvenFooter:       s.HeaderFooter.EvenFooter,
			FirstHeader:      s.HeaderFooter.FirstHeader,
			FirstFooter:      s.HeaderFooter.FirstFooter,
		}
	}

	if s.PageBreaks != nil {
		if len(s.PageBreaks.Rows) > 0 {
			rb := &xlsxBreaks{Count: len(s.PageBreaks.Rows), ManualBreakCount: len(s.PageBreaks.Rows)}
			for _, id := range s.PageBreaks.Rows {
				rb.Brk = append(rb.Brk, xlsxBrk{ID: id, Max: MaxColumns - 1, Man: true})
			}
			x.RowBreaks = rb
		}
		if len(s.PageBreaks.Columns) > 0 {
			cb := &xlsxBreaks{Count: len(s.PageBreaks.Columns), ManualBreakCount: len(s.PageBreaks.Columns)}
			for _, id := range s.PageBreaks.Columns {
				cb.Brk = append(cb.Brk, xlsxBrk{ID: id, Max: MaxRows - 1, Man: true})
			}
			x.ColBreaks = cb
		}
	}

	return marshalPart(x)
}

func cellXML(cell *Cell, ds DateSystem, sharedIndex map[string]int) (*xlsxC, error) {
	c := &xlsxC{R: cell.Address.String(), S: cell.StyleID}

	switch cell.Value.Type {

	case CellString:
		idx, ok := sharedIndex[cell.Value.String]
		if !ok {
			return nil, errors.Errorf("aurochs: xlsx: string %q missing from shared table", cell.Value.String)
		}
		c.T = "s"
		c.V = strconv.Itoa(idx)

	case CellNumber:
		c.V = strconv.FormatFloat(cell.Value.Number, 'g', -1, 64)

	case CellBoolean:
		c.T = "b"
		if cell.Value.Boolean {
			c.V = "1"
		} else {
			c.V = "0"
		}

	case CellDate:
		c.V = strconv.FormatFloat(dateToSerial(cell.Value.Date, ds), 'g', -1, 64)

	case CellError:
		c.T = "e"
		c.V = cell.Value.Error

	case CellEmpty:
		// Cells without value serialize bare.

	default:
		return nil, errors.Errorf("aurochs: xlsx: unknown cell value type %q", cell.Value.Type)
	}

	if cell.Formula != nil {
		f := &xlsxF{Data: cell.Formula.Expression, Ref: cell.Formula.Ref, Si: cell.Formula.SharedIndex}
		if cell.Formula.Type != FormulaNormal {
			f.T = string(cell.Formula.Type)
		}
		c.F = f
	}

	return c, nil
}

// SerializeWorksheetRels produces xl/worksheets/_rels/sheet<N>.xml.rels.
// Only sheets with external hyperlinks need a rels part, nil means none.
func SerializeWorksheetRels(s *Sheet) ([]byte, error) {
	var rels []xlsxRelationship

	for _, h := range s.Hyperlinks {
		if h.RelID == "" {
			continue
		}
		rels = append(rels, xlsxRelationship{
			ID:         h.RelID,
			Type:       RelTypeHyperlink,
			Target:     h.Target,
			TargetMode: "External",
		})
	}

	if len(rels) == 0 {
		return nil, nil
	}

	return marshalPart(&xlsxRelationships{Xmlns: NameSpacePackageRels, Relationship: rels})
}
