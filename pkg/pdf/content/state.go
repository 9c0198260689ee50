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

// Package content implements the content stream interpreter producing a
// graphics state annotated element stream.
package content

import (
	"github.com/trkbt10/aurochs/pkg/matrix"
	"github.com/trkbt10/aurochs/pkg/types"
)

// ColorSpaceKind tags a color value with its originating color space.
type ColorSpaceKind string

// The color spaces tracked by the interpreter.
const (
	ColorSpaceGray     ColorSpaceKind = "DeviceGray"
	ColorSpaceRGB      ColorSpaceKind = "DeviceRGB"
	ColorSpaceCMYK     ColorSpaceKind = "DeviceCMYK"
	ColorSpacePattern  ColorSpaceKind = "Pattern"
	ColorSpaceICCBased ColorSpaceKind = "ICCBased"
)

// Color is a color value tagged by its color space.
type Color struct {
	Space      ColorSpaceKind
	Components []float64
}

// NewGray returns a DeviceGray color.
func NewGray(g float64) Color {
	return Color{Space: ColorSpaceGray, Components: []float64{g}}
}

// NewRGB returns a DeviceRGB color.
func NewRGB(r, g, b float64) Color {
	return Color{Space: ColorSpaceRGB, Components: []float64{r, g, b}}
}

// NewCMYK returns a DeviceCMYK color.
func NewCMYK(c, m, y, k float64) Color {
	return Color{Space: ColorSpaceCMYK, Components: []float64{c, m, y, k}}
}

func (c Color) clone() Color {
	c2 := c
	c2.Components = append([]float64(nil), c.Components...)
	return c2
}

// Luma returns the Rec.601 luma of the color mapped into gray.
func (c Color) Luma() float64 {
	switch c.Space {
	case ColorSpaceGray:
		if len(c.Components) > 0 {
			return c.Components[0]
		}
	case ColorSpaceRGB, ColorSpaceICCBased:
		if len(c.Components) >= 3 {
			return 0.299*c.Components[0] + 0.587*c.Components[1] + 0.114*c.Components[2]
		}
	case ColorSpaceCMYK:
		if len(c.Components) >= 4 {
			r := (1 - c.Components[0]) * (1 - c.Components[3])
			g := (1 - c.Components[1]) * (1 - c.Components[3])
			b := (1 - c.Components[2]) * (1 - c.Components[3])
			return 0.299*r + 0.587*g + 0.114*b
		}
	}
	return 0
}

// TextState carries the text related graphics parameters.
type TextState struct {
	FontName      string
	FontSize      float64
	CharSpacing   float64
	WordSpacing   float64
	HorizScaling  float64 // percent, default 100
	Leading       float64
	Rise          float64
	RenderMode    int
}

// LineState carries the stroke related graphics parameters.
type LineState struct {
	Width      float64
	Cap        int
	Join       int
	MiterLimit float64
	DashArray  []float64
	DashPhase  float64
}

// SoftMask is a per pixel alpha mask aligned to its bbox.
type SoftMask struct {
	// Grid holds W*H alpha samples, 0 transparent, 255 opaque.
	Grid []uint8
	W, H int
	BBox types.Rectangle
	// Matrix places the mask in user space.
	Matrix matrix.Matrix
}

// State is the graphics state live during painting.
// Emitted elements own snapshots, not references into the live stack.
type State struct {
	CTM matrix.Matrix

	FillColor   Color
	StrokeColor Color

	Text TextState
	Line LineState

	FillAlpha     float64
	StrokeAlpha   float64
	SoftMaskAlpha float64
	BlendMode     string

	SoftMask *SoftMask
}

// NewState returns the initial identity graphics state pushed on page parse.
func NewState() State {
	return State{
		CTM:           matrix.IdentMatrix,
		FillColor:     NewGray(0),
		StrokeColor:   NewGray(0),
		Text:          TextState{HorizScaling: 100},
		Line:          LineState{Width: 1, MiterLimit: 10},
		FillAlpha:     1,
		StrokeAlpha:   1,
		SoftMaskAlpha: 1,
		BlendMode:     "Normal",
	}
}

// Clone returns a deep copy snapshot of s.
func (s State) Clone() State {
	s2 := s
	s2.FillColor = s.FillColor.clone()
	s2.StrokeColor = s.StrokeColor.clone()
	s2.Line.DashArray = append([]float64(nil), s.Line.DashArray...)
	if s.SoftMask != nil {
		sm := *s.SoftMask
		sm.Grid = append([]uint8(nil), s.SoftMask.Grid...)
		s2.SoftMask = &sm
	}
	return s2
}
