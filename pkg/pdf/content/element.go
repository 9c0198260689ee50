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
	"github.com/trkbt10/aurochs/pkg/types"
)

// Element is one parsed content stream element.
// The emitted element order matches content stream order.
type Element interface {
	element()
}

// SegmentOp identifies a path construction command.
type SegmentOp string

// The path construction commands.
const (
	SegMoveTo  SegmentOp = "m"
	SegLineTo  SegmentOp = "l"
	SegCurveTo SegmentOp = "c"
	SegRect    SegmentOp = "re"
	SegClose   SegmentOp = "h"
)

// Segment is one path construction step in user space coordinates.
type Segment struct {
	Op SegmentOp
	// Points: m/l carry 1 point, c carries 3, re carries origin plus (w,h)
	// as a point, h carries none.
	Points []types.Point
}

// PaintOp identifies a path painting operator.
type PaintOp string

// The path painting operators.
const (
	PaintStroke            PaintOp = "S"
	PaintCloseStroke       PaintOp = "s"
	PaintFill              PaintOp = "f"
	PaintFillEvenOdd       PaintOp = "f*"
	PaintFillStroke        PaintOp = "B"
	PaintFillStrokeEvenOdd PaintOp = "B*"
	PaintCloseFillStroke   PaintOp = "b"
	PaintCloseFillStrokeEO PaintOp = "b*"
	PaintNone              PaintOp = "n"
)

// Path is a painted path with its captured graphics snapshot.
type Path struct {
	Segments []Segment
	Paint    PaintOp
	// Clip is set when the preceding W or W* marked this path as clipping.
	Clip         bool
	ClipEvenOdd  bool
	State        State
}

func (*Path) element() {}

// Text is one shown text adjacency group.
type Text struct {
	// Raw carries the original string bytes of the show operator.
	Raw []byte
	// Text is the ToUnicode decoded form.
	Text string
	// Codes are the character codes in show order.
	Codes []uint32
	// X, Y anchor the glyph origin in user space.
	X, Y float64
	// Width is the advance of the group in user space units.
	Width    float64
	FontName string
	State    State
}

func (*Text) element() {}

// InlineImage carries a BI..ID..EI image synthesized as an image XObject.
type InlineImage struct {
	Dict types.Dict
	Data []byte
}

// Image references an image XObject painted via Do, or an inline image.
type Image struct {
	ResourceName string
	Inline       *InlineImage
	State        State
}

func (*Image) element() {}
