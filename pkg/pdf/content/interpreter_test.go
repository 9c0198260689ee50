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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trkbt10/aurochs/pkg/pdf/model"
	"github.com/trkbt10/aurochs/pkg/types"
)

func pt(x, y float64) types.Point {
	return types.Point{X: x, Y: y}
}

func interpret(t *testing.T, s string) []Element {
	t.Helper()
	ctx := model.NewContext(nil, nil)
	elements, err := Interpret(ctx, []byte(s), nil)
	require.NoError(t, err)
	return elements
}

func TestRectanglePath(t *testing.T) {
	elements := interpret(t, "1 0 0 rg 10 20 100 50 re f")
	require.Len(t, elements, 1)

	p, ok := elements[0].(*Path)
	require.True(t, ok)
	assert.Equal(t, PaintFill, p.Paint)
	require.Len(t, p.Segments, 1)
	assert.Equal(t, SegRect, p.Segments[0].Op)
	assert.Equal(t, 10.0, p.Segments[0].Points[0].X)
	assert.Equal(t, 20.0, p.Segments[0].Points[0].Y)

	// The captured snapshot carries the fill color at paint time.
	assert.Equal(t, ColorSpaceRGB, p.State.FillColor.Space)
	assert.Equal(t, []float64{1, 0, 0}, p.State.FillColor.Components)
}

func TestGraphicsStateStack(t *testing.T) {
	elements := interpret(t, "q 0 0 1 rg 0 0 5 5 re f Q 0 0 5 5 re f")
	require.Len(t, elements, 2)

	first := elements[0].(*Path)
	second := elements[1].(*Path)

	assert.Equal(t, []float64{0, 0, 1}, first.State.FillColor.Components)
	// Q restored the initial gray fill.
	assert.Equal(t, ColorSpaceGray, second.State.FillColor.Space)
}

func TestQWithoutMatchingQIsFatal(t *testing.T) {
	ctx := model.NewContext(nil, nil)
	_, err := Interpret(ctx, []byte("Q"), nil)
	assert.ErrorIs(t, err, errStackUnderflow)
}

func TestCTMConcatenation(t *testing.T) {
	elements := interpret(t, "2 0 0 2 0 0 cm 1 0 0 1 5 5 cm 0 0 10 10 re f")
	require.Len(t, elements, 1)

	p := elements[0].(*Path)
	// translate(5,5) pre-multiplied onto scale(2): origin maps to (10,10).
	origin := p.State.CTM.Transform(pt(0, 0))
	assert.Equal(t, 10.0, origin.X)
	assert.Equal(t, 10.0, origin.Y)
}

func TestCurveShorthands(t *testing.T) {
	elements := interpret(t, "0 0 m 1 1 2 2 v 3 3 4 4 y 5 5 6 6 7 7 c S")
	require.Len(t, elements, 1)

	p := elements[0].(*Path)
	require.Len(t, p.Segments, 4)

	// v doubles the current point as first control point.
	v := p.Segments[1]
	assert.Equal(t, SegCurveTo, v.Op)
	assert.Equal(t, 0.0, v.Points[0].X)

	// y doubles the end point as second control point.
	y := p.Segments[2]
	assert.Equal(t, y.Points[1], y.Points[2])
}

func TestClippingMark(t *testing.T) {
	elements := interpret(t, "0 0 10 10 re W n 0 0 5 5 re f")
	require.Len(t, elements, 2)

	clip := elements[0].(*Path)
	assert.True(t, clip.Clip)
	assert.Equal(t, PaintNone, clip.Paint)

	fill := elements[1].(*Path)
	assert.False(t, fill.Clip)
}

func TestTextShow(t *testing.T) {
	elements := interpret(t, "BT /F1 12 Tf 100 700 Td (Hello) Tj ET")
	require.Len(t, elements, 1)

	txt, ok := elements[0].(*Text)
	require.True(t, ok)
	assert.Equal(t, "Hello", txt.Text)
	assert.Equal(t, "F1", txt.FontName)
	assert.Equal(t, 100.0, txt.X)
	assert.Equal(t, 700.0, txt.Y)
	assert.Equal(t, 12.0, txt.State.Text.FontSize)
}

func TestTJAdjacencyGroups(t *testing.T) {
	elements := interpret(t, "BT /F1 10 Tf [(A) -120 (B)] TJ ET")
	require.Len(t, elements, 2)

	a := elements[0].(*Text)
	b := elements[1].(*Text)
	assert.Equal(t, "A", a.Text)
	assert.Equal(t, "B", b.Text)

	// The kern adjustment moved the second group.
	assert.Greater(t, b.X, a.X)
}

func TestUnbalancedTextBlock(t *testing.T) {
	ctx := model.NewContext(nil, nil)
	_, err := Interpret(ctx, []byte("BT (x) Tj"), nil)
	assert.ErrorIs(t, err, errUnbalancedTextBlock)
}

func TestElementOrderIsContentOrder(t *testing.T) {
	elements := interpret(t, "0 0 1 1 re f BT (t) Tj ET 2 2 3 3 re S")
	require.Len(t, elements, 3)

	_, ok := elements[0].(*Path)
	assert.True(t, ok)
	_, ok = elements[1].(*Text)
	assert.True(t, ok)
	_, ok = elements[2].(*Path)
	assert.True(t, ok)
}

func TestInlineImage(t *testing.T) {
	elements := interpret(t, "BI /W 2 /H 2 /BPC 8 /CS /G ID \x01\x02\x03\x04 EI")
	require.Len(t, elements, 1)

	img, ok := elements[0].(*Image)
	require.True(t, ok)
	require.NotNil(t, img.Inline)

	w := img.Inline.Dict.IntEntry("Width")
	require.NotNil(t, w)
	assert.Equal(t, 2, *w)
	assert.Equal(t, []byte{1, 2, 3, 4}, img.Inline.Data)
}

func TestUnknownXObjectRecovers(t *testing.T) {
	// Unknown names emit no element and no error.
	elements := interpret(t, "/X0 Do 0 0 1 1 re f")
	require.Len(t, elements, 1)
}

func TestLineParameters(t *testing.T) {
	elements := interpret(t, "4 w 1 J 2 j 8 M [2 1] 0 d 0 0 1 1 re S")
	require.Len(t, elements, 1)

	p := elements[0].(*Path)
	assert.Equal(t, 4.0, p.State.Line.Width)
	assert.Equal(t, 1, p.State.Line.Cap)
	assert.Equal(t, 2, p.State.Line.Join)
	assert.Equal(t, 8.0, p.State.Line.MiterLimit)
	assert.Equal(t, []float64{2, 1}, p.State.Line.DashArray)
}

func TestCMYKColor(t *testing.T) {
	elements := interpret(t, "0 0 0 1 k 0 0 1 1 re f")
	p := elements[0].(*Path)
	assert.Equal(t, ColorSpaceCMYK, p.State.FillColor.Space)
	assert.Equal(t, []float64{0, 0, 0, 1}, p.State.FillColor.Components)
}
