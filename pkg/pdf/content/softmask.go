/*
Copyright 2023 The aurochs Authors.

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

package content

import (
	"github.com/trkbt10/aurochs/pkg/log"
	"github.com/trkbt10/aurochs/pkg/matrix"
	"github.com/trkbt10/aurochs/pkg/pdf/pdfimage"
	"github.com/trkbt10/aurochs/pkg/types"
)

// defaultMaskGridSize bounds the sampling grid when the mask form carries
// no content image defining its resolution.
const defaultMaskGridSize = 64

// extractSoftMask evaluates a /SMask dict of type Luminosity or Alpha over
// a Form XObject. A form reducing to a single full bbox rectangle paint
// yields a constant alpha, everything else is sampled on a discrete grid.
func (ip *Interpreter) extractSoftMask(d types.Dict) (*SoftMask, *float64, error) {
	s := d.NameEntry("S")
	if s == nil || (*s != "Luminosity" && *s != "Alpha") {
		// Exotic mask subtypes fall back to no mask with a warning.
		if log.InfoEnabled() {
			log.Info.Println("content: unsupported soft mask subtype, mask dropped")
		}
		return nil, nil, nil
	}
	luminosity := *s == "Luminosity"

	o, found := d.Find("G")
	if !found {
		if log.InfoEnabled() {
			log.Info.Println("content: soft mask without group, mask dropped")
		}
		return nil, nil, nil
	}

	sd, err := ip.ctx.DereferenceStreamDict(o)
	if err != nil || sd == nil {
		if log.InfoEnabled() {
			log.Info.Println("content: soft mask group unresolvable, mask dropped")
		}
		return nil, nil, nil
	}

	if f := sd.Subtype(); f == nil || *f != "Form" {
		if log.InfoEnabled() {
			log.Info.Println("content: soft mask over non form XObject unsupported, mask dropped")
		}
		return nil, nil, nil
	}

	bbox := types.NewRectangle(0, 0, 1, 1)
	if a := sd.ArrayEntry("BBox"); a != nil {
		if r := types.RectForArray(a); r != nil {
			bbox = r
		}
	}

	formMatrix := matrix.IdentMatrix
	if a := sd.ArrayEntry("Matrix"); len(a) == 6 {
		var f [6]float64
		for i := 0; i < 6; i++ {
			f[i], _ = a.FloatValue(i)
		}
		formMatrix = matrix.New(f[0], f[1], f[2], f[3], f[4], f[5])
	}

	content, err := ip.ctx.DereferenceStreamContent(*sd)
	if err != nil {
		if log.InfoEnabled() {
			log.Info.Printf("content: soft mask content undecodable (%v), mask dropped\n", err)
		}
		return nil, nil, nil
	}

	resources := ip.resources
	if res := sd.DictEntry("Resources"); res != nil {
		resources = res
	} else if o, found := sd.Find("Resources"); found {
		if res, err := ip.ctx.DereferenceDict(o); err == nil && res != nil {
			resources = res
		}
	}

	// The form is evaluated on its own interpreter run, not by re-entering
	// the outer evaluation.
	elements, err := Interpret(ip.ctx, content, resources)
	if err != nil {
		if log.InfoEnabled() {
			log.Info.Printf("content: soft mask interpretation failed (%v), mask dropped\n", err)
		}
		return nil, nil, nil
	}

	// A single full bbox rectangle paint reduces to a constant alpha.
	if c, ok := constantMaskAlpha(elements, bbox, luminosity); ok {
		return nil, &c, nil
	}

	return ip.sampleMask(elements, resources, bbox, formMatrix, luminosity)
}

func constantMaskAlpha(elements []Element, bbox *types.Rectangle, luminosity bool) (float64, bool) {
	if len(elements) != 1 {
		return 0, false
	}

	p, ok := elements[0].(*Path)
	if !ok || len(p.Segments) != 1 || p.Segments[0].Op != SegRect {
		return 0, false
	}
	if p.Paint != PaintFill && p.Paint != PaintFillEvenOdd {
		return 0, false
	}

	origin := p.Segments[0].Points[0]
	dims := p.Segments[0].Points[1]
	r := types.NewRectangle(origin.X, origin.Y, origin.X+dims.X, origin.Y+dims.Y)

	if !r.Contains(bbox.LL) || !r.Contains(bbox.UR) {
		return 0, false
	}

	if luminosity {
		return p.State.FillColor.Luma() * p.State.FillAlpha, true
	}
	return p.State.FillAlpha, true
}

// sampleMask rasterizes the form's elements on a grid aligned to the bbox.
// Grid dimensions come from the form's content image if present.
func (ip *Interpreter) sampleMask(elements []Element, resources types.Dict, bbox *types.Rectangle, formMatrix matrix.Matrix, luminosity bool) (*SoftMask, *float64, error) {
	w, h := defaultMaskGridSize, defaultMaskGridSize

	var img *pdfimage.RGBA
	var imgState *State

	for _, el := range elements {
		ie, ok := el.(*Image)
		if !ok {
			continue
		}

		var decoded *pdfimage.RGBA
		var err error
		if ie.Inline != nil {
			decoded, err = pdfimage.DecodeInline(ip.ctx, ie.Inline.Dict, ie.Inline.Data)
		} else {
			decoded, err = pdfimage.DecodeByName(ip.ctx, resources, ie.ResourceName)
		}
		if err != nil {
			if log.InfoEnabled() {
				log.Info.Printf("content: soft mask image sampling failed (%v), constant alpha used\n", err)
			}
			c := 1.0
			return nil, &c, nil
		}

		img = decoded
		st := ie.State
		imgState = &st
		w, h = decoded.Width, decoded.Height
		break
	}

	grid := make([]uint8, w*h)

	// Paths sample first, imagery overlays.
	for _, el := range elements {
		p, ok := el.(*Path)
		if !ok || (p.Paint != PaintFill && p.Paint != PaintFillEvenOdd && p.Paint != PaintFillStroke && p.Paint != PaintFillStrokeEvenOdd) {
			continue
		}

		alpha := p.State.FillAlpha
		if luminosity {
			alpha = p.State.FillColor.Luma() * p.State.FillAlpha
		}
		v := uint8(clamp01(alpha) * 255)

		for gy := 0; gy < h; gy++ {
			for gx := 0; gx < w; gx++ {
				// Cell centers map into the bbox, then through the segment test.
				px := bbox.LL.X + (float64(gx)+0.5)/float64(w)*bbox.Width()
				py := bbox.UR.Y - (float64(gy)+0.5)/float64(h)*bbox.Height()
				if pathContains(p, types.Point{X: px, Y: py}) {
					grid[gy*w+gx] = v
				}
			}
		}
	}

	if img != nil {
		for gy := 0; gy < h; gy++ {
			for gx := 0; gx < w; gx++ {
				r, g, b, a := img.At(gx, gy)
				var v float64
				if luminosity {
					// Rec.601 luma.
					v = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
					v *= float64(a) / 255
				} else {
					v = float64(a) / 255
				}
				if imgState != nil {
					v *= imgState.FillAlpha
				}
				grid[gy*w+gx] = uint8(clamp01(v) * 255)
			}
		}
	}

	return &SoftMask{
		Grid:   grid,
		W:      w,
		H:      h,
		BBox:   *bbox,
		Matrix: formMatrix.Multiply(ip.state.CTM),
	}, nil, nil
}

// pathContains tests rectangle segments only. Free form paths sample as
// their bounding box.
func pathContains(p *Path, pt types.Point) bool {
	var cur types.Point
	minX, minY := 1e18, 1e18
	maxX, maxY := -1e18, -1e18
	sawFreeform := false

	for _, seg := range p.Segments {
		switch seg.Op {
		case SegRect:
			origin := seg.Points[0]
			dims := seg.Points[1]
			r := types.NewRectangle(origin.X, origin.Y, origin.X+dims.X, origin.Y+dims.Y)
			if r.Contains(pt) {
				return true
			}
		case SegMoveTo, SegLineTo:
			cur = seg.Points[0]
			sawFreeform = true
			minX, minY = minF(minX, cur.X), minF(minY, cur.Y)
			maxX, maxY = maxF(maxX, cur.X), maxF(maxY, cur.Y)
		case SegCurveTo:
			sawFreeform = true
			for _, q := range seg.Points {
				minX, minY = minF(minX, q.X), minF(minY, q.Y)
				maxX, maxY = maxF(maxX, q.X), maxF(maxY, q.Y)
			}
			cur = seg.Points[len(seg.Points)-1]
		}
	}

	if sawFreeform {
		return pt.X >= minX && pt.X <= maxX && pt.Y >= minY && pt.Y <= maxY
	}
	return false
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
