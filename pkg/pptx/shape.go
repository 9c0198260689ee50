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

// XML namespaces and constants of the produced parts.
const (
	NSDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
	NSRelationships  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSPackageRels    = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSDiagram        = "http://schemas.openxmlformats.org/drawingml/2006/diagram"

	// OLEObjectURI is the a:graphicData uri of embedded OLE objects.
	OLEObjectURI = "http://schemas.openxmlformats.org/presentationml/2006/ole"

	RelTypeDiagramData = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramData"
)

// EMUPerPixel converts 96 dpi pixels into English Metric Units.
const EMUPerPixel = 9525

// DegreeUnits is the rotation unit: 60000ths of a degree.
const DegreeUnits = 60000

// Hyperlink attaches to non visual shape properties.
type Hyperlink struct {
	ResourceID string
	Tooltip    string
	Action     string
	// Sound references an embedded audio resource.
	Sound     *Sound
}

// Sound is an a:snd child of a hyperlink.
type Sound struct {
	ResourceID string
	Name       string
}

// Locks mirrors the a:spLocks/a:picLocks flag set.
type Locks struct {
	NoGrp        bool
	NoSelect     bool
	NoRot        bool
	NoChangeAspect bool
	NoMove       bool
	NoResize     bool
	NoEditPoints bool
	NoTextEdit   bool
}

// NonVisual carries the cNvPr content shared by every shape kind.
type NonVisual struct {
	ID          string
	Name        string
	Description string
	Title       string
	// Hidden serializes as "1"/"0" when set, omitted when undefined.
	Hidden         *bool
	Hyperlink      *Hyperlink
	HyperlinkHover *Hyperlink
	Locks          *Locks
}

// Transform places a shape, offsets and extents in EMU, rotation in
// 60000ths of a degree.
type Transform struct {
	X, Y   float64
	CX, CY float64
	Rot    int
	FlipH  *bool
	FlipV  *bool
	// Child offsets apply to group shapes only.
	ChOffX, ChOffY *float64
	ChExtCX, ChExtCY *float64
}

// AdjustValue is one a:gd entry of an adjust value list.
type AdjustValue struct {
	Name  string
	Value int
}

// PathCommandType tags custom geometry path commands.
type PathCommandType string

// The custom path command variants.
const (
	PathMoveTo    PathCommandType = "moveTo"
	PathLineTo    PathCommandType = "lineTo"
	PathArcTo     PathCommandType = "arcTo"
	PathQuadBez   PathCommandType = "quadBezierTo"
	PathCubicBez  PathCommandType = "cubicBezierTo"
	PathClose     PathCommandType = "close"
)

// PathPoint is an EMU coordinate pair.
type PathPoint struct {
	X, Y float64
}

// PathCommand is one command of a custom geometry path.
type PathCommand struct {
	Type   PathCommandType
	Points []PathPoint
	// Arc parameters, angles in 60000ths of a degree.
	WidthRadius  float64
	HeightRadius float64
	StartAngle   int
	SwingAngle   int
}

// GeomPath is one a:path of a custom geometry.
type GeomPath struct {
	Width    float64
	Height   float64
	Commands []PathCommand
	Fill     string
	Stroke   *bool
}

// Guide is one a:gd formula of a guide list.
type Guide struct {
	Name    string
	Formula string
}

// ConnectionSite is one a:cxn entry.
type ConnectionSite struct {
	Angle int
	X, Y  float64
}

// TextRect bounds the text area of a custom geometry.
type TextRect struct {
	Left, Top, Right, Bottom string
}

// Geometry is either preset or custom.
type Geometry struct {
	Preset *PresetGeometry
	Custom *CustomGeometry
}

// PresetGeometry references a preset by name with adjust values.
type PresetGeometry struct {
	Name         string
	AdjustValues []AdjustValue
}

// CustomGeometry carries explicit paths.
type CustomGeometry struct {
	Paths           []GeomPath
	Guides          []Guide
	TextRect        *TextRect
	ConnectionSites []ConnectionSite
	AdjustValues    []AdjustValue
}

// SourceRect crops a blip fill, coordinates in percent times 1000.
type SourceRect struct {
	Left, Top, Right, Bottom int
}

// BlipFill is an image fill referencing an image resource.
type BlipFill struct {
	ResourceID string
	// Exactly one of Stretch or Tile must be set.
	Stretch    bool
	Tile       bool
	SourceRect *SourceRect
}

// SolidFill is a flat color fill, RGB as RRGGBB hex.
type SolidFill struct {
	Color string
	Alpha *int // percent times 1000
}

// Fill is the shape fill sum: at most one member set.
type Fill struct {
	Solid  *SolidFill
	Blip   *BlipFill
	NoFill bool
}

// LineStyle strokes the shape outline.
type LineStyle struct {
	Width *float64 // EMU
	Color string
	Dash  string
}

// TextRun is one a:r run.
type TextRun struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline string
	Size      *int // hundredths of a point
	Color     string
	FontFace  string
}

// Paragraph is one a:p paragraph.
type Paragraph struct {
	Runs      []TextRun
	Alignment string
	Level     int
	Bullet    *Bullet
}

// Bullet configures paragraph bulleting.
type Bullet struct {
	Char    string
	None    bool
	AutoNum string
}

// TextBody is a p:txBody.
type TextBody struct {
	Paragraphs []Paragraph
	Wrap       string
	Anchor     string
	AutoFit    string
}

// Media attaches under p:nvPr.
type Media struct {
	Kind       MediaKind
	ResourceID string
	Name       string
}

// MediaKind names the media element variants.
type MediaKind string

// The media element variants.
const (
	MediaVideo     MediaKind = "videoFile"
	MediaAudio     MediaKind = "audioFile"
	MediaWavAudio  MediaKind = "wavAudioFile"
	MediaQuickTime MediaKind = "quickTimeFile"
)

// StyleRef is one reference of a p:style block.
type StyleRef struct {
	Index int
	// Color override, solid fill only.
	Color string
	// Fill override: font references accept solid fills only.
	Fill *Fill
}

// ShapeStyle is the optional p:style block.
type ShapeStyle struct {
	LineRef   *StyleRef
	FillRef   *StyleRef
	EffectRef *StyleRef
	FontRef   *StyleRef
}

// Shape is the sum of slide shape kinds.
type Shape interface {
	shapeNode()
	NonVisualProps() *NonVisual
}

// SP is a regular shape (p:sp).
type SP struct {
	NonVisual NonVisual
	Transform *Transform
	Geometry  *Geometry
	Fill      *Fill
	Line      *LineStyle
	Style     *ShapeStyle
	TextBody  *TextBody
}

func (*SP) shapeNode() {}

// NonVisualProps returns the shared non visual properties.
func (s *SP) NonVisualProps() *NonVisual { return &s.NonVisual }

// GrpSP is a group shape (p:grpSp).
type GrpSP struct {
	NonVisual NonVisual
	Transform *Transform
	Children  []Shape
}

func (*GrpSP) shapeNode() {}

// NonVisualProps returns the shared non visual properties.
func (s *GrpSP) NonVisualProps() *NonVisual { return &s.NonVisual }

// Pic is a picture shape (p:pic).
type Pic struct {
	NonVisual NonVisual
	Transform *Transform
	BlipFill  BlipFill
	Geometry  *Geometry
	Line      *LineStyle
	Media     *Media
}

func (*Pic) shapeNode() {}

// NonVisualProps returns the shared non visual properties.
func (s *Pic) NonVisualProps() *NonVisual { return &s.NonVisual }

// CxnSP is a connector shape (p:cxnSp).
type CxnSP struct {
	NonVisual NonVisual
	Transform *Transform
	Geometry  *Geometry
	Line      *LineStyle
	StartConnection *Connection
	EndConnection   *Connection
}

func (*CxnSP) shapeNode() {}

// NonVisualProps returns the shared non visual properties.
func (s *CxnSP) NonVisualProps() *NonVisual { return &s.NonVisual }

// Connection binds a connector end to a shape connection site.
type Connection struct {
	ShapeID string
	SiteIndex int
}

// Table is an a:tbl within a graphic frame.
type Table struct {
	// ColumnWidths in EMU define the grid.
	ColumnWidths []float64
	Rows         []TableRow
	FirstRow     bool
	BandRow      bool
}

// TableRow is one a:tr.
type TableRow struct {
	Height float64
	Cells  []TableCell
}

// TableCell is one a:tc.
type TableCell struct {
	TextBody *TextBody
	GridSpan int
	RowSpan  int
	Fill     *Fill
}

// OLEObject is an embedded object within a graphic frame.
type OLEObject struct {
	ProgID     string
	ResourceID string
	ShowAsIcon bool
	ImageResourceID string
}

// GraphicFrameContent is the sum of supported frame payloads.
type GraphicFrameContent struct {
	Table *Table
	OLE   *OLEObject
}

// GraphicFrame hosts tables and OLE objects (p:graphicFrame).
type GraphicFrame struct {
	NonVisual NonVisual
	Transform *Transform
	Content   GraphicFrameContent
}

func (*GraphicFrame) shapeNode() {}

// NonVisualProps returns the shared non visual properties.
func (s *GraphicFrame) NonVisualProps() *NonVisual { return &s.NonVisual }

// ContentPart references external content, unsupported by the serializer.
type ContentPart struct {
	NonVisual  NonVisual
	ResourceID string
}

func (*ContentPart) shapeNode() {}

// NonVisualProps returns the shared non visual properties.
func (s *ContentPart) NonVisualProps() *NonVisual { return &s.NonVisual }
