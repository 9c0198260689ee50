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

package pptx

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrBlipFillUnsupported gets raised for data: URI blip fills.
	ErrBlipFillUnsupported = errors.New("aurochs: pptx: data URI blip fills are unsupported")

	// ErrBlipFillMode gets raised when neither or both of stretch and tile are set.
	ErrBlipFillMode = errors.New("aurochs: pptx: blip fill requires exactly one of stretch or tile")

	// ErrUnsupportedGraphicFrame gets raised for graphic frame content other
	// than tables and OLE objects.
	ErrUnsupportedGraphicFrame = errors.New("aurochs: pptx: unsupported graphic frame content")

	// ErrContentPartUnsupported gets raised for content part shapes.
	ErrContentPartUnsupported = errors.New("aurochs: pptx: content part shapes are unsupported")

	// ErrFontRefFill gets raised for font references with non solid fill overrides.
	ErrFontRefFill = errors.New("aurochs: pptx: font reference accepts solid fill overrides only")

	// ErrMissingProgID gets raised for OLE objects without a progId.
	ErrMissingProgID = errors.New("aurochs: pptx: ole object requires progId")

	// ErrMissingResourceID gets raised where a relationship id is mandatory.
	ErrMissingResourceID = errors.New("aurochs: pptx: missing resourceId")
)

func emu(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func boolAttr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// SerializeShape is a total function from the shape domain to an XML
// element tree.
func SerializeShape(s Shape) (*Node, error) {
	switch v := s.(type) {
	case *SP:
		return serializeSP(v)
	case *GrpSP:
		return serializeGrpSP(v)
	case *Pic:
		return serializePic(v)
	case *CxnSP:
		return serializeCxnSP(v)
	case *GraphicFrame:
		return serializeGraphicFrame(v)
	case *ContentPart:
		return nil, ErrContentPartUnsupported
	}
	return nil, errors.Errorf("aurochs: pptx: unknown shape kind %T", s)
}

// cNvPr emits the common non visual properties element.
func cNvPr(nv *NonVisual) (*Node, error) {
	n := NewNode("p:cNvPr",
		Attr{"id", nv.ID},
		Attr{"name", nv.Name},
	)

	if nv.Description != "" {
		n.SetAttr("descr", nv.Description)
	}
	if nv.Title != "" {
		n.SetAttr("title", nv.Title)
	}
	if nv.Hidden != nil {
		n.SetAttr("hidden", boolAttr(*nv.Hidden))
	}

	if nv.Hyperlink != nil {
		h, err := hlinkNode("a:hlinkClick", nv.Hyperlink)
		if err != nil {
			return nil, err
		}
		n.Add(h)
	}
	if nv.HyperlinkHover != nil {
		h, err := hlinkNode("a:hlinkHover", nv.HyperlinkHover)
		if err != nil {
			return nil, err
		}
		n.Add(h)
	}

	return n, nil
}

func hlinkNode(name string, h *Hyperlink) (*Node, error) {
	n := NewNode(name, Attr{"r:id", h.ResourceID})
	if h.Tooltip != "" {
		n.SetAttr("tooltip", h.Tooltip)
	}
	if h.Action != "" {
		n.SetAttr("action", h.Action)
	}
	if h.Sound != nil {
		if h.Sound.ResourceID == "" {
			return nil, ErrMissingResourceID
		}
		n.Add(NewNode("a:snd", Attr{"r:embed", h.Sound.ResourceID}, Attr{"name", h.Sound.Name}))
	}
	return n, nil
}

func locksNode(name string, l *Locks) *Node {
	if l == nil {
		return nil
	}
	n := NewNode(name)
	set := func(attr string, v bool) {
		if v {
			n.SetAttr(attr, "1")
		}
	}
	set("noGrp", l.NoGrp)
	set("noSelect", l.NoSelect)
	set("noRot", l.NoRot)
	set("noChangeAspect", l.NoChangeAspect)
	set("noMove", l.NoMove)
	set("noResize", l.NoResize)
	set("noEditPoints", l.NoEditPoints)
	set("noTextEdit", l.NoTextEdit)
	return n
}

// xfrmNode emits a:xfrm. Rotation and flips appear only when non default.
func xfrmNode(t *Transform, group bool) *Node {
	if t == nil {
		return nil
	}

	n := NewNode("a:xfrm")
	if t.Rot != 0 {
		n.SetAttr("rot", itoa(t.Rot))
	}
	if t.FlipH != nil && *t.FlipH {
		n.SetAttr("flipH", "1")
	}
	if t.FlipV != nil && *t.FlipV {
		n.SetAttr("flipV", "1")
	}

	n.Add(
		NewNode("a:off", Attr{"x", emu(t.X)}, Attr{"y", emu(t.Y)}),
		NewNode("a:ext", Attr{"cx", emu(t.CX)}, Attr{"cy", emu(t.CY)}),
	)

	if group {
		chOffX, chOffY := t.X, t.Y
		if t.ChOffX != nil {
			chOffX = *t.ChOffX
		}
		if t.ChOffY != nil {
			chOffY = *t.ChOffY
		}
		chExtCX, chExtCY := t.CX, t.CY
		if t.ChExtCX != nil {
			chExtCX = *t.ChExtCX
		}
		if t.ChExtCY != nil {
			chExtCY = *t.ChExtCY
		}
		n.Add(
			NewNode("a:chOff", Attr{"x", emu(chOffX)}, Attr{"y", emu(chOffY)}),
			NewNode("a:chExt", Attr{"cx", emu(chExtCX)}, Attr{"cy", emu(chExtCY)}),
		)
	}

	return n
}

func avLstNode(values []AdjustValue) *Node {
	n := NewNode("a:avLst")
	for _, av := range values {
		n.Add(NewNode("a:gd",
			Attr{"name", av.Name},
			Attr{"fmla", fmt.Sprintf("val %d", av.Value)},
		))
	}
	return n
}

func geometryNode(g *Geometry) (*Node, error) {
	if g == nil {
		return NewNode("a:prstGeom", Attr{"prst", "rect"}).Add(NewNode("a:avLst")), nil
	}

	if g.Preset != nil {
		return NewNode("a:prstGeom", Attr{"prst", g.Preset.Name}).
			Add(avLstNode(g.Preset.AdjustValues)), nil
	}

	if g.Custom == nil {
		return nil, errors.New("aurochs: pptx: geometry requires preset or custom form")
	}

	c := g.Custom
	n := NewNode("a:custGeom")

	n.Add(avLstNode(c.AdjustValues))

	gdLst := NewNode("a:gdLst")
	for _, gd := range c.Guides {
		gdLst.Add(NewNode("a:gd", Attr{"name", gd.Name}, Attr{"fmla", gd.Formula}))
	}
	n.Add(gdLst)

	if len(c.ConnectionSites) > 0 {
		cxnLst := NewNode("a:cxnLst")
		for _, cs := range c.ConnectionSites {
			cxn := NewNode("a:cxn", Attr{"ang", itoa(cs.Angle)})
			cxn.Add(NewNode("a:pos", Attr{"x", emu(cs.X)}, Attr{"y", emu(cs.Y)}))
			cxnLst.Add(cxn)
		}
		n.Add(cxnLst)
	}

	if c.TextRect != nil {
		n.Add(NewNode("a:rect",
			Attr{"l", c.TextRect.Left},
			Attr{"t", c.TextRect.Top},
			Attr{"r", c.TextRect.Right},
			Attr{"b", c.TextRect.Bottom},
		))
	}

	pathLst := NewNode("a:pathLst")
	for _, p := range c.Paths {
		pn := NewNode("a:path", Attr{"w", emu(p.Width)}, Attr{"h", emu(p.Height)})
		if p.Fill != "" {
			pn.SetAttr("fill", p.Fill)
		}
		if p.Stroke != nil {
			pn.SetAttr("stroke", boolAttr(*p.Stroke))
		}
		for _, cmd := range p.Commands {
			cn, err := pathCommandNode(cmd)
			if err != nil {
				return nil, err
			}
			pn.Add(cn)
		}
		pathLst.Add(pn)
	}
	n.Add(pathLst)

	return n, nil
}

func ptNode(p PathPoint) *Node {
	return NewNode("a:pt", Attr{"x", emu(p.X)}, Attr{"y", emu(p.Y)})
}

func pathCommandNode(cmd PathCommand) (*Node, error) {
	switch cmd.Type {

	case PathMoveTo:
		if len(cmd.Points) != 1 {
			return nil, errors.New("aurochs: pptx: moveTo requires one point")
		}
		return NewNode("a:moveTo").Add(ptNode(cmd.Points[0])), nil

	case PathLineTo:
		if len(cmd.Points) != 1 {
			return nil, errors.New("aurochs: pptx: lineTo requires one point")
		}
		return NewNode("a:lnTo").Add(ptNode(cmd.Points[0])), nil

	case PathArcTo:
		// Arc angles are in 60000ths of a degree.
		return NewNode("a:arcTo",
			Attr{"wR", emu(cmd.WidthRadius)},
			Attr{"hR", emu(cmd.HeightRadius)},
			Attr{"stAng", itoa(cmd.StartAngle)},
			Attr{"swAng", itoa(cmd.SwingAngle)},
		), nil

	case PathQuadBez:
		if len(cmd.Points) != 2 {
			return nil, errors.New("aurochs: pptx: quadBezierTo requires two points")
		}
		return NewNode("a:quadBezTo").Add(ptNode(cmd.Points[0]), ptNode(cmd.Points[1])), nil

	case PathCubicBez:
		if len(cmd.Points) != 3 {
			return nil, errors.New("aurochs: pptx: cubicBezierTo requires three points")
		}
		return NewNode("a:cubicBezTo").Add(ptNode(cmd.Points[0]), ptNode(cmd.Points[1]), ptNode(cmd.Points[2])), nil

	case PathClose:
		return NewNode("a:close"), nil
	}

	return nil, errors.Errorf("aurochs: pptx: unknown path command %q", cmd.Type)
}

func solidFillNode(color string, alpha *int) *Node {
	clr := NewNode("a:srgbClr", Attr{"val", strings.ToUpper(color)})
	if alpha != nil {
		clr.Add(NewNode("a:alpha", Attr{"val", itoa(*alpha)}))
	}
	return NewNode("a:solidFill").Add(clr)
}

func fillNode(f *Fill) (*Node, error) {
	if f == nil {
		return nil, nil
	}
	if f.NoFill {
		return NewNode("a:noFill"), nil
	}
	if f.Solid != nil {
		return solidFillNode(f.Solid.Color, f.Solid.Alpha), nil
	}
	if f.Blip != nil {
		return blipFillNode(f.Blip, "a:blipFill")
	}
	return nil, nil
}

func blipFillNode(bf *BlipFill, elementName string) (*Node, error) {
	if bf.ResourceID == "" {
		return nil, ErrMissingResourceID
	}
	if strings.HasPrefix(bf.ResourceID, "data:") {
		return nil, ErrBlipFillUnsupported
	}
	if bf.Stretch == bf.Tile {
		return nil, ErrBlipFillMode
	}

	n := NewNode(elementName)
	n.Add(NewNode("a:blip", Attr{"r:embed", bf.ResourceID}))

	if bf.SourceRect != nil {
		sr := NewNode("a:srcRect")
		// Coordinates are in percent times 1000.
		if bf.SourceRect.Left != 0 {
			sr.SetAttr("l", itoa(bf.SourceRect.Left))
		}
		if bf.SourceRect.Top != 0 {
			sr.SetAttr("t", itoa(bf.SourceRect.Top))
		}
		if bf.SourceRect.Right != 0 {
			sr.SetAttr("r", itoa(bf.SourceRect.Right))
		}
		if bf.SourceRect.Bottom != 0 {
			sr.SetAttr("b", itoa(bf.SourceRect.Bottom))
		}
		n.Add(sr)
	}

	if bf.Stretch {
		n.Add(NewNode("a:stretch").Add(NewNode("a:fillRect")))
	} else {
		n.Add(NewNode("a:tile"))
	}

	return n, nil
}

func lineNode(l *LineStyle) *Node {
	if l == nil {
		return nil
	}
	n := NewNode("a:ln")
	if l.Width != nil {
		n.SetAttr("w", emu(*l.Width))
	}
	if l.Color != "" {
		n.Add(solidFillNode(l.Color, nil))
	}
	if l.Dash != "" {
		n.Add(NewNode("a:prstDash", Attr{"val", l.Dash}))
	}
	return n
}

// styleNode emits p:style only when at least one reference is present.
func styleNode(st *ShapeStyle) (*Node, error) {
	if st == nil {
		return nil, nil
	}
	if st.LineRef == nil && st.FillRef == nil && st.EffectRef == nil && st.FontRef == nil {
		return nil, nil
	}

	n := NewNode("p:style")

	ref := func(name string, r *StyleRef, fontRef bool) error {
		if r == nil {
			return nil
		}
		rn := NewNode(name, Attr{"idx", itoa(r.Index)})
		if r.Fill != nil {
			if fontRef && r.Fill.Solid == nil {
				return ErrFontRefFill
			}
			fn, err := fillNode(r.Fill)
			if err != nil {
				return err
			}
			rn.Add(fn)
		} else if r.Color != "" {
			rn.Add(NewNode("a:srgbClr", Attr{"val", strings.ToUpper(r.Color)}))
		}
		n.Add(rn)
		return nil
	}

	if err := ref("a:lnRef", st.LineRef, false); err != nil {
		return nil, err
	}
	if err := ref("a:fillRef", st.FillRef, false); err != nil {
		return nil, err
	}
	if err := ref("a:effectRef", st.EffectRef, false); err != nil {
		return nil, err
	}
	if err := ref("a:fontRef", st.FontRef, true); err != nil {
		return nil, err
	}

	return n, nil
}

func textBodyNode(tb *TextBody) *Node {
	if tb == nil {
		return nil
	}

	n := NewNode("p:txBody")

	bodyPr := NewNode("a:bodyPr")
	if tb.Wrap != "" {
		bodyPr.SetAttr("wrap", tb.Wrap)
	}
	if tb.Anchor != "" {
		bodyPr.SetAttr("anchor", tb.Anchor)
	}
	switch tb.AutoFit {
	case "normAutofit":
		bodyPr.Add(NewNode("a:normAutofit"))
	case "spAutoFit":
		bodyPr.Add(NewNode("a:spAutoFit"))
	case "noAutofit":
		bodyPr.Add(NewNode("a:noAutofit"))
	}
	n.Add(bodyPr)
	n.Add(NewNode("a:lstStyle"))

	if len(tb.Paragraphs) == 0 {
		n.Add(NewNode("a:p"))
		return n
	}

	for _, para := range tb.Paragraphs {
		p := NewNode("a:p")

		pPr := NewNode("a:pPr")
		hasPPr := false
		if para.Level > 0 {
			pPr.SetAttr("lvl", itoa(para.Level))
			hasPPr = true
		}
		if para.Alignment != "" {
			pPr.SetAttr("algn", para.Alignment)
			hasPPr = true
		}
		if para.Bullet != nil {
			hasPPr = true
			switch {
			case para.Bullet.None:
				pPr.Add(NewNode("a:buNone"))
			case para.Bullet.AutoNum != "":
				pPr.Add(NewNode("a:buAutoNum", Attr{"type", para.Bullet.AutoNum}))
			case para.Bullet.Char != "":
				pPr.Add(NewNode("a:buChar", Attr{"char", para.Bullet.Char}))
			}
		}
		if hasPPr {
			p.Add(pPr)
		}

		for _, run := range para.Runs {
			r := NewNode("a:r")

			rPr := NewNode("a:rPr", Attr{"lang", "en-US"})
			if run.Size != nil {
				rPr.SetAttr("sz", itoa(*run.Size))
			}
			if run.Bold {
				rPr.SetAttr("b", "1")
			}
			if run.Italic {
				rPr.SetAttr("i", "1")
			}
			if run.Underline != "" {
				rPr.SetAttr("u", run.Underline)
			}
			if run.Color != "" {
				rPr.Add(solidFillNode(run.Color, nil))
			}
			if run.FontFace != "" {
				rPr.Add(NewNode("a:latin", Attr{"typeface", run.FontFace}))
			}
			r.Add(rPr)

			t := NewNode("a:t")
			t.AddText(run.Text)
			r.Add(t)

			p.Add(r)
		}

		n.Add(p)
	}

	return n
}

func serializeSP(s *SP) (*Node, error) {
	n := NewNode("p:sp")

	nvSpPr := NewNode("p:nvSpPr")
	pr, err := cNvPr(&s.NonVisual)
	if err != nil {
		return nil, err
	}
	cNvSpPr := NewNode("p:cNvSpPr")
	if l := locksNode("a:spLocks", s.NonVisual.Locks); l != nil {
		cNvSpPr.Add(l)
	}
	nvSpPr.Add(pr, cNvSpPr, NewNode("p:nvPr"))
	n.Add(nvSpPr)

	spPr := NewNode("p:spPr")
	spPr.Add(xfrmNode(s.Transform, false))

	geom, err := geometryNode(s.Geometry)
	if err != nil {
		return nil, err
	}
	spPr.Add(geom)

	fill, err := fillNode(s.Fill)
	if err != nil {
		return nil, err
	}
	spPr.Add(fill)
	spPr.Add(lineNode(s.Line))
	n.Add(spPr)

	style, err := styleNode(s.Style)
	if err != nil {
		return nil, err
	}
	n.Add(style)

	n.Add(textBodyNode(s.TextBody))

	return n, nil
}

func serializeGrpSP(s *GrpSP) (*Node, error) {
	n := NewNode("p:grpSp")

	nv := NewNode("p:nvGrpSpPr")
	pr, err := cNvPr(&s.NonVisual)
	if err != nil {
		return nil, err
	}
	nv.Add(pr, NewNode("p:cNvGrpSpPr"), NewNode("p:nvPr"))
	n.Add(nv)

	grpSpPr := NewNode("p:grpSpPr")
	grpSpPr.Add(xfrmNode(s.Transform, true))
	n.Add(grpSpPr)

	for _, child := range s.Children {
		cn, err := SerializeShape(child)
		if err != nil {
			return nil, err
		}
		n.Add(cn)
	}

	return n, nil
}

func serializePic(s *Pic) (*Node, error) {
	n := NewNode("p:pic")

	nv := NewNode("p:nvPicPr")
	pr, err := cNvPr(&s.NonVisual)
	if err != nil {
		return nil, err
	}

	cNvPicPr := NewNode("p:cNvPicPr")
	if l := locksNode("a:picLocks", s.NonVisual.Locks); l != nil {
		cNvPicPr.Add(l)
	}

	nvPr := NewNode("p:nvPr")
	if s.Media != nil {
		if s.Media.ResourceID == "" {
			return nil, ErrMissingResourceID
		}
		m := NewNode("a:"+string(s.Media.Kind), Attr{"r:link", s.Media.ResourceID})
		if s.Media.Kind == MediaWavAudio {
			// Embedded wav audio uses r:embed with an optional name.
			m = NewNode("a:wavAudioFile", Attr{"r:embed", s.Media.ResourceID})
			if s.Media.Name != "" {
				m.SetAttr("name", s.Media.Name)
			}
		}
		nvPr.Add(m)
	}

	nv.Add(pr, cNvPicPr, nvPr)
	n.Add(nv)

	bf, err := blipFillNode(&s.BlipFill, "p:blipFill")
	if err != nil {
		return nil, err
	}
	n.Add(bf)

	spPr := NewNode("p:spPr")
	spPr.Add(xfrmNode(s.Transform, false))

	geom, err := geometryNode(s.Geometry)
	if err != nil {
		return nil, err
	}
	spPr.Add(geom)
	spPr.Add(lineNode(s.Line))
	n.Add(spPr)

	return n, nil
}

func serializeCxnSP(s *CxnSP) (*Node, error) {
	n := NewNode("p:cxnSp")

	nv := NewNode("p:nvCxnSpPr")
	pr, err := cNvPr(&s.NonVisual)
	if err != nil {
		return nil, err
	}

	cNvCxnSpPr := NewNode("p:cNvCxnSpPr")
	if s.StartConnection != nil {
		cNvCxnSpPr.Add(NewNode("a:stCxn",
			Attr{"id", s.StartConnection.ShapeID},
			Attr{"idx", itoa(s.StartConnection.SiteIndex)},
		))
	}
	if s.EndConnection != nil {
		cNvCxnSpPr.Add(NewNode("a:endCxn",
			Attr{"id", s.EndConnection.ShapeID},
			Attr{"idx", itoa(s.EndConnection.SiteIndex)},
		))
	}

	nv.Add(pr, cNvCxnSpPr, NewNode("p:nvPr"))
	n.Add(nv)

	spPr := NewNode("p:spPr")
	spPr.Add(xfrmNode(s.Transform, false))

	geom, err := geometryNode(s.Geometry)
	if err != nil {
		return nil, err
	}
	spPr.Add(geom)
	spPr.Add(lineNode(s.Line))
	n.Add(spPr)

	return n, nil
}

func serializeGraphicFrame(s *GraphicFrame) (*Node, error) {
	if s.Content.Table == nil && s.Content.OLE == nil {
		return nil, ErrUnsupportedGraphicFrame
	}

	n := NewNode("p:graphicFrame")

	nv := NewNode("p:nvGraphicFramePr")
	pr, err := cNvPr(&s.NonVisual)
	if err != nil {
		return nil, err
	}
	nv.Add(pr, NewNode("p:cNvGraphicFramePr"), NewNode("p:nvPr"))
	n.Add(nv)

	if s.Transform != nil {
		x := NewNode("p:xfrm")
		x.Add(
			NewNode("a:off", Attr{"x", emu(s.Transform.X)}, Attr{"y", emu(s.Transform.Y)}),
			NewNode("a:ext", Attr{"cx", emu(s.Transform.CX)}, Attr{"cy", emu(s.Transform.CY)}),
		)
		n.Add(x)
	}

	graphic := NewNode("a:graphic")

	if s.Content.Table != nil {
		gd := NewNode("a:graphicData",
			Attr{"uri", "http://schemas.openxmlformats.org/drawingml/2006/table"})
		tbl, err := tableNode(s.Content.Table)
		if err != nil {
			return nil, err
		}
		gd.Add(tbl)
		graphic.Add(gd)
	} else {
		ole, err := oleNode(s.Content.OLE)
		if err != nil {
			return nil, err
		}
		gd := NewNode("a:graphicData", Attr{"uri", OLEObjectURI})
		gd.Add(ole)
		graphic.Add(gd)
	}

	n.Add(graphic)

	return n, nil
}

func tableNode(t *Table) (*Node, error) {
	n := NewNode("a:tbl")

	tblPr := NewNode("a:tblPr")
	if t.FirstRow {
		tblPr.SetAttr("firstRow", "1")
	}
	if t.BandRow {
		tblPr.SetAttr("bandRow", "1")
	}
	n.Add(tblPr)

	grid := NewNode("a:tblGrid")
	for _, w := range t.ColumnWidths {
		grid.Add(NewNode("a:gridCol", Attr{"w", emu(w)}))
	}
	n.Add(grid)

	for _, row := range t.Rows {
		tr := NewNode("a:tr", Attr{"h", emu(row.Height)})
		for _, cell := range row.Cells {
			tc := NewNode("a:tc")
			if cell.GridSpan > 1 {
				tc.SetAttr("gridSpan", itoa(cell.GridSpan))
			}
			if cell.RowSpan > 1 {
				tc.SetAttr("rowSpan", itoa(cell.RowSpan))
			}

			if cell.TextBody != nil {
				// Table cells carry a:txBody with the same shape as p:txBody.
				tb := textBodyNode(cell.TextBody)
				tb.Name = "a:txBody"
				tc.Add(tb)
			} else {
				tc.Add(NewNode("a:txBody").Add(NewNode("a:bodyPr"), NewNode("a:lstStyle"), NewNode("a:p")))
			}

			tcPr := NewNode("a:tcPr")
			if cell.Fill != nil {
				fn, err := fillNode(cell.Fill)
				if err != nil {
					return nil, err
				}
				tcPr.Add(fn)
			}
			tc.Add(tcPr)

			tr.Add(tc)
		}
		n.Add(tr)
	}

	return n, nil
}

func oleNode(o *OLEObject) (*Node, error) {
	if o.ProgID == "" {
		return nil, ErrMissingProgID
	}
	if o.ResourceID == "" {
		return nil, ErrMissingResourceID
	}

	n := NewNode("p:oleObj",
		Attr{"progId", o.ProgID},
		Attr{"r:id", o.ResourceID},
	)
	if o.ShowAsIcon {
		n.SetAttr("showAsIcon", "1")
	}

	embed := NewNode("p:embed")
	n.Add(embed)

	if o.ImageResourceID != "" {
		pic := NewNode("p:pic")
		bf := NewNode("p:blipFill").Add(
			NewNode("a:blip", Attr{"r:embed", o.ImageResourceID}),
			NewNode("a:stretch").Add(NewNode("a:fillRect")),
		)
		pic.Add(bf)
		n.Add(pic)
	}

	return n, nil
}
