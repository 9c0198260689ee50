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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestSerializeSPBasics(t *testing.T) {
	sp := &SP{
		NonVisual: NonVisual{ID: "2", Name: "Shape 1"},
		Transform: &Transform{X: 95250, Y: 190500, CX: 952500, CY: 476250},
		Geometry: &Geometry{Preset: &PresetGeometry{
			Name:         "roundRect",
			AdjustValues: []AdjustValue{{Name: "adj", Value: 16667}},
		}},
		Fill: &Fill{Solid: &SolidFill{Color: "ff0000"}},
	}

	n, err := SerializeShape(sp)
	require.NoError(t, err)
	s := string(n.Bytes())

	assert.Contains(t, s, `<p:cNvPr id="2" name="Shape 1"/>`)
	assert.Contains(t, s, `<a:off x="95250" y="190500"/>`)
	assert.Contains(t, s, `<a:ext cx="952500" cy="476250"/>`)
	assert.Contains(t, s, `<a:prstGeom prst="roundRect">`)
	assert.Contains(t, s, `<a:gd name="adj" fmla="val 16667"/>`)
	assert.Contains(t, s, `<a:srgbClr val="FF0000"/>`)

	// Rotation and flips stay absent when default.
	assert.NotContains(t, s, "rot=")
	assert.NotContains(t, s, "flipH=")
}

func TestSerializeHiddenTriState(t *testing.T) {
	sp := &SP{NonVisual: NonVisual{ID: "2", Name: "S", Hidden: boolPtr(true)}}
	n, err := SerializeShape(sp)
	require.NoError(t, err)
	assert.Contains(t, string(n.Bytes()), `hidden="1"`)

	sp.NonVisual.Hidden = boolPtr(false)
	n, err = SerializeShape(sp)
	require.NoError(t, err)
	assert.Contains(t, string(n.Bytes()), `hidden="0"`)

	// Undefined hidden is omitted entirely.
	sp.NonVisual.Hidden = nil
	n, err = SerializeShape(sp)
	require.NoError(t, err)
	assert.NotContains(t, string(n.Bytes()), "hidden=")
}

func TestSerializeRotationAndFlip(t *testing.T) {
	sp := &SP{
		NonVisual: NonVisual{ID: "2", Name: "S"},
		Transform: &Transform{X: 0, Y: 0, CX: 100, CY: 100, Rot: 45 * DegreeUnits, FlipH: boolPtr(true)},
	}

	n, err := SerializeShape(sp)
	require.NoError(t, err)
	s := string(n.Bytes())

	assert.Contains(t, s, `rot="2700000"`)
	assert.Contains(t, s, `flipH="1"`)
}

func TestSerializeHyperlink(t *testing.T) {
	sp := &SP{
		NonVisual: NonVisual{
			ID: "2", Name: "S",
			Hyperlink: &Hyperlink{ResourceID: "rId7", Tooltip: "go"},
		},
	}

	n, err := SerializeShape(sp)
	require.NoError(t, err)
	s := string(n.Bytes())

	assert.Contains(t, s, `<a:hlinkClick r:id="rId7" tooltip="go"/>`)
}

func TestSerializeCustomGeometry(t *testing.T) {
	sp := &SP{
		NonVisual: NonVisual{ID: "2", Name: "S"},
		Geometry: &Geometry{Custom: &CustomGeometry{
			Paths: []GeomPath{{
				Width:  100,
				Height: 100,
				Commands: []PathCommand{
					{Type: PathMoveTo, Points: []PathPoint{{0, 0}}},
					{Type: PathLineTo, Points: []PathPoint{{100, 0}}},
					{Type: PathQuadBez, Points: []PathPoint{{100, 100}, {0, 100}}},
					{Type: PathCubicBez, Points: []PathPoint{{0, 50}, {50, 50}, {50, 0}}},
					{Type: PathArcTo, WidthRadius: 50, HeightRadius: 50, StartAngle: 0, SwingAngle: 90 * DegreeUnits},
					{Type: PathClose},
				},
			}},
		}},
	}

	n, err := SerializeShape(sp)
	require.NoError(t, err)
	s := string(n.Bytes())

	assert.Contains(t, s, "<a:custGeom>")
	assert.Contains(t, s, "<a:moveTo>")
	assert.Contains(t, s, "<a:lnTo>")
	assert.Contains(t, s, "<a:quadBezTo>")
	assert.Contains(t, s, "<a:cubicBezTo>")
	assert.Contains(t, s, `<a:arcTo wR="50" hR="50" stAng="0" swAng="5400000"/>`)
	assert.Contains(t, s, "<a:close/>")
}

func TestSerializePicBlipFillRules(t *testing.T) {
	pic := &Pic{
		NonVisual: NonVisual{ID: "3", Name: "Picture 1"},
		BlipFill:  BlipFill{ResourceID: "rId2", Stretch: true},
	}

	n, err := SerializeShape(pic)
	require.NoError(t, err)
	s := string(n.Bytes())
	assert.Contains(t, s, `<a:blip r:embed="rId2"/>`)
	assert.Contains(t, s, "<a:stretch>")

	// data: URIs are rejected.
	pic.BlipFill.ResourceID = "data:image/png;base64,AAAA"
	_, err = SerializeShape(pic)
	assert.ErrorIs(t, err, ErrBlipFillUnsupported)

	// Neither tile nor stretch is rejected.
	pic.BlipFill = BlipFill{ResourceID: "rId2"}
	_, err = SerializeShape(pic)
	assert.ErrorIs(t, err, ErrBlipFillMode)

	// Both is rejected as well.
	pic.BlipFill = BlipFill{ResourceID: "rId2", Stretch: true, Tile: true}
	_, err = SerializeShape(pic)
	assert.ErrorIs(t, err, ErrBlipFillMode)
}

func TestSerializeSourceRect(t *testing.T) {
	pic := &Pic{
		NonVisual: NonVisual{ID: "3", Name: "P"},
		BlipFill: BlipFill{
			ResourceID: "rId2",
			Tile:       true,
			SourceRect: &SourceRect{Left: 10000, Top: 5000},
		},
	}

	n, err := SerializeShape(pic)
	require.NoError(t, err)
	s := string(n.Bytes())

	assert.Contains(t, s, `<a:srcRect l="10000" t="5000"/>`)
	assert.Contains(t, s, "<a:tile/>")
}

func TestSerializeMedia(t *testing.T) {
	pic := &Pic{
		NonVisual: NonVisual{ID: "4", Name: "Media 1"},
		BlipFill:  BlipFill{ResourceID: "rId3", Stretch: true},
		Media:     &Media{Kind: MediaVideo, ResourceID: "rId4"},
	}

	n, err := SerializeShape(pic)
	require.NoError(t, err)
	s := string(n.Bytes())

	assert.Contains(t, s, `<a:videoFile r:link="rId4"/>`)
	assert.True(t, strings.Index(s, "<p:nvPr>") < strings.Index(s, "videoFile"))
}

func TestSerializeStyleRefs(t *testing.T) {
	sp := &SP{
		NonVisual: NonVisual{ID: "2", Name: "S"},
		Style: &ShapeStyle{
			FillRef: &StyleRef{Index: 1, Color: "aabbcc"},
			FontRef: &StyleRef{Index: 1, Fill: &Fill{Solid: &SolidFill{Color: "112233"}}},
		},
	}

	n, err := SerializeShape(sp)
	require.NoError(t, err)
	s := string(n.Bytes())
	assert.Contains(t, s, "<p:style>")
	assert.Contains(t, s, `<a:fillRef idx="1">`)
	assert.Contains(t, s, `<a:fontRef idx="1">`)

	// Empty style blocks are omitted entirely.
	sp.Style = &ShapeStyle{}
	n, err = SerializeShape(sp)
	require.NoError(t, err)
	assert.NotContains(t, string(n.Bytes()), "<p:style>")

	// Non solid font reference fills are rejected.
	sp.Style = &ShapeStyle{FontRef: &StyleRef{Index: 1, Fill: &Fill{NoFill: true}}}
	_, err = SerializeShape(sp)
	assert.ErrorIs(t, err, ErrFontRefFill)
}

func TestSerializeGroupTransforms(t *testing.T) {
	grp := &GrpSP{
		NonVisual: NonVisual{ID: "5", Name: "Group 1"},
		Transform: &Transform{X: 0, Y: 0, CX: 200, CY: 200},
		Children: []Shape{
			&SP{NonVisual: NonVisual{ID: "6", Name: "Shape 1"}},
		},
	}

	n, err := SerializeShape(grp)
	require.NoError(t, err)
	s := string(n.Bytes())

	// Group transforms additionally emit child offsets and extents.
	assert.Contains(t, s, "<a:chOff")
	assert.Contains(t, s, "<a:chExt")
	assert.Contains(t, s, "<p:sp>")
}

func TestSerializeTableFrame(t *testing.T) {
	frame := &GraphicFrame{
		NonVisual: NonVisual{ID: "7", Name: "Table 1"},
		Transform: &Transform{X: 0, Y: 0, CX: 100, CY: 100},
		Content: GraphicFrameContent{Table: &Table{
			ColumnWidths: []float64{914400, 914400},
			Rows: []TableRow{
				{Height: 370840, Cells: []TableCell{{}, {}}},
			},
		}},
	}

	n, err := SerializeShape(frame)
	require.NoError(t, err)
	s := string(n.Bytes())

	assert.Contains(t, s, "<a:tbl>")
	assert.Contains(t, s, `<a:gridCol w="914400"/>`)
	assert.Contains(t, s, `<a:tr h="370840">`)
}

func TestSerializeOLEFrame(t *testing.T) {
	frame := &GraphicFrame{
		NonVisual: NonVisual{ID: "8", Name: "Object 1"},
		Content: GraphicFrameContent{OLE: &OLEObject{
			ProgID:     "Excel.Sheet.12",
			ResourceID: "rId5",
		}},
	}

	n, err := SerializeShape(frame)
	require.NoError(t, err)
	s := string(n.Bytes())

	assert.Contains(t, s, `uri="`+OLEObjectURI+`"`)
	assert.Contains(t, s, `<p:oleObj progId="Excel.Sheet.12" r:id="rId5">`)

	// Missing progId is rejected.
	frame.Content.OLE.ProgID = ""
	_, err = SerializeShape(frame)
	assert.ErrorIs(t, err, ErrMissingProgID)
}

func TestSerializeEmptyGraphicFrameRejected(t *testing.T) {
	frame := &GraphicFrame{NonVisual: NonVisual{ID: "9", Name: "X"}}
	_, err := SerializeShape(frame)
	assert.ErrorIs(t, err, ErrUnsupportedGraphicFrame)
}

func TestSerializeContentPartRejected(t *testing.T) {
	_, err := SerializeShape(&ContentPart{NonVisual: NonVisual{ID: "10", Name: "CP"}})
	assert.ErrorIs(t, err, ErrContentPartUnsupported)
}

func TestEMURounding(t *testing.T) {
	sp := &SP{
		NonVisual: NonVisual{ID: "2", Name: "S"},
		Transform: &Transform{X: 10.6, Y: 10.4, CX: 1.5, CY: 2.5},
	}

	n, err := SerializeShape(sp)
	require.NoError(t, err)
	s := string(n.Bytes())

	assert.Contains(t, s, `<a:off x="11" y="10"/>`)
	assert.Contains(t, s, `<a:ext cx="2" cy="3"/>`)
}
