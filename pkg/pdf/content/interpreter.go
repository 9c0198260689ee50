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
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/log"
	"github.com/trkbt10/aurochs/pkg/matrix"
	"github.com/trkbt10/aurochs/pkg/pdf/font"
	"github.com/trkbt10/aurochs/pkg/pdf/model"
	"github.com/trkbt10/aurochs/pkg/types"
)

var (
	errPageContentCorrupt  = errors.New("aurochs: content: corrupt page content")
	errStackUnderflow      = errors.New("aurochs: content: Q without matching q")
	errUnbalancedTextBlock = errors.New("aurochs: content: unbalanced BT/ET")
)

// frame is one entry of the explicit evaluation stack used for nested
// content streams (Form XObjects). Nested evaluation never recurses on
// the host stack.
type frame struct {
	buf       string
	resources types.Dict
	fonts     map[string]*font.Info
	// stackDepth records the graphics stack depth to restore on frame exit.
	stackDepth int
}

// Interpreter applies content stream operators against a graphics state stack.
type Interpreter struct {
	ctx       *model.Context
	resources types.Dict
	fonts     map[string]*font.Info

	state State
	stack []State

	elements []Element

	// current path construction state
	path    []Segment
	current types.Point
	start   types.Point

	clipNext   bool
	clipEvenOdd bool

	// text object state
	inText bool
	tm     matrix.Matrix
	tlm    matrix.Matrix

	frames []frame
}

// InterpretPage interprets the page's content stream and returns the
// ordered element stream (painter's algorithm preserved).
func InterpretPage(ctx *model.Context, page *model.Page) ([]Element, error) {
	bb, err := ctx.PageContent(page)
	if err != nil {
		return nil, err
	}

	fonts, err := font.ExtractFonts(ctx, page.Resources)
	if err != nil {
		return nil, err
	}

	ip := &Interpreter{
		ctx:       ctx,
		resources: page.Resources,
		fonts:     fonts,
		state:     NewState(),
	}

	if err := ip.run(string(bb)); err != nil {
		return nil, err
	}

	return ip.elements, nil
}

// Interpret interprets raw content against the given resources.
func Interpret(ctx *model.Context, bb []byte, resources types.Dict) ([]Element, error) {
	fonts, err := font.ExtractFonts(ctx, resources)
	if err != nil {
		return nil, err
	}

	ip := &Interpreter{
		ctx:       ctx,
		resources: resources,
		fonts:     fonts,
		state:     NewState(),
	}

	if err := ip.run(string(bb)); err != nil {
		return nil, err
	}

	return ip.elements, nil
}

func isOperatorChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '\'' || c == '"' || c == '*' || c == '0' || c == '1'
}

func (ip *Interpreter) run(buf string) error {
	var operands []types.Object

	for {
		buf = strings.TrimLeftFunc(buf, func(r rune) bool { return unicode.IsSpace(r) || r == 0 })

		if len(buf) == 0 {
			if len(ip.frames) > 0 {
				// Frame exhausted: return to the enclosing stream.
				f := ip.frames[len(ip.frames)-1]
				ip.frames = ip.frames[:len(ip.frames)-1]
				if len(ip.stack) <= f.stackDepth {
					return errStackUnderflow
				}
				ip.state = ip.stack[f.stackDepth]
				ip.stack = ip.stack[:f.stackDepth]
				buf = f.buf
				ip.resources = f.resources
				ip.fonts = f.fonts
				operands = operands[:0]
				continue
			}
			if ip.inText {
				return errUnbalancedTextBlock
			}
			return nil
		}

		c := buf[0]

		if c == '%' {
			// comment up to eol
			i := strings.IndexAny(buf, "\r\n")
			if i < 0 {
				buf = ""
			} else {
				buf = buf[i:]
			}
			continue
		}

		// Operand?
		if c == '[' || c == '<' || c == '(' || c == '/' || c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			// Distinguish the two operators starting with a digit: none do.
			o, err := model.ParseObject(&buf)
			if err != nil {
				return errors.Wrap(errPageContentCorrupt, err.Error())
			}
			operands = append(operands, o)
			continue
		}

		// Operator token.
		i := 0
		for i < len(buf) && isOperatorChar(buf[i]) {
			i++
		}
		if i == 0 {
			return errPageContentCorrupt
		}
		op := buf[:i]
		buf = buf[i:]

		if op == "BI" {
			rest, err := ip.inlineImage(buf)
			if err != nil {
				return err
			}
			buf = rest
			operands = operands[:0]
			continue
		}

		rest, err := ip.apply(op, operands, buf)
		if err != nil {
			return err
		}
		buf = rest
		operands = operands[:0]
	}
}

func popFloats(operands []types.Object, n int) ([]float64, error) {
	if len(operands) < n {
		return nil, errPageContentCorrupt
	}
	out := make([]float64, n)
	for i, o := range operands[len(operands)-n:] {
		switch v := o.(type) {
		case types.Integer:
			out[i] = float64(v.Value())
		case types.Float:
			out[i] = v.Value()
		default:
			return nil, errPageContentCorrupt
		}
	}
	return out, nil
}

func lastName(operands []types.Object) (string, error) {
	if len(operands) == 0 {
		return "", errPageContentCorrupt
	}
	n, ok := operands[len(operands)-1].(types.Name)
	if !ok {
		return "", errPageContentCorrupt
	}
	return n.Value(), nil
}

// apply dispatches one operator. It may swap the evaluation buffer
// (form invocation), hence it returns the continuation buffer.
func (ip *Interpreter) apply(op string, operands []types.Object, buf string) (string, error) {
	switch op {

	// Graphics state.
	case "q":
		ip.stack = append(ip.stack, ip.state.Clone())
	case "Q":
		if len(ip.stack) == 0 {
			return "", errStackUnderflow
		}
		ip.state = ip.stack[len(ip.stack)-1]
		ip.stack = ip.stack[:len(ip.stack)-1]
	case "cm":
		f, err := popFloats(operands, 6)
		if err != nil {
			return "", err
		}
		ip.state.CTM = matrix.New(f[0], f[1], f[2], f[3], f[4], f[5]).Multiply(ip.state.CTM)
	case "w":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Line.Width = f[0]
	case "J":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Line.Cap = int(f[0])
	case "j":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Line.Join = int(f[0])
	case "M":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Line.MiterLimit = f[0]
	case "d":
		if len(operands) < 2 {
			return "", errPageContentCorrupt
		}
		arr, ok := operands[len(operands)-2].(types.Array)
		if !ok {
			return "", errPageContentCorrupt
		}
		dash := make([]float64, 0, len(arr))
		for i := range arr {
			v, ok := arr.FloatValue(i)
			if !ok {
				return "", errPageContentCorrupt
			}
			dash = append(dash, v)
		}
		phase, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Line.DashArray = dash
		ip.state.Line.DashPhase = phase[0]
	case "i", "ri":
		// flatness, rendering intent: tracked nowhere, consumed silently.
	case "gs":
		name, err := lastName(operands)
		if err != nil {
			return "", err
		}
		if err := ip.applyExtGState(name); err != nil {
			return "", err
		}

	// Color.
	case "G":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.StrokeColor = NewGray(f[0])
	case "g":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.FillColor = NewGray(f[0])
	case "RG":
		f, err := popFloats(operands, 3)
		if err != nil {
			return "", err
		}
		ip.state.StrokeColor = NewRGB(f[0], f[1], f[2])
	case "rg":
		f, err := popFloats(operands, 3)
		if err != nil {
			return "", err
		}
		ip.state.FillColor = NewRGB(f[0], f[1], f[2])
	case "K":
		f, err := popFloats(operands, 4)
		if err != nil {
			return "", err
		}
		ip.state.StrokeColor = NewCMYK(f[0], f[1], f[2], f[3])
	case "k":
		f, err := popFloats(operands, 4)
		if err != nil {
			return "", err
		}
		ip.state.FillColor = NewCMYK(f[0], f[1], f[2], f[3])
	case "CS":
		name, err := lastName(operands)
		if err != nil {
			return "", err
		}
		ip.state.StrokeColor = ip.colorForSpace(name)
	case "cs":
		name, err := lastName(operands)
		if err != nil {
			return "", err
		}
		ip.state.FillColor = ip.colorForSpace(name)
	case "SC", "SCN":
		ip.state.StrokeColor = ip.colorWithComponents(ip.state.StrokeColor, operands)
	case "sc", "scn":
		ip.state.FillColor = ip.colorWithComponents(ip.state.FillColor, operands)

	// Path construction.
	case "m":
		f, err := popFloats(operands, 2)
		if err != nil {
			return "", err
		}
		ip.current = types.Point{X: f[0], Y: f[1]}
		ip.start = ip.current
		ip.path = append(ip.path, Segment{Op: SegMoveTo, Points: []types.Point{ip.current}})
	case "l":
		f, err := popFloats(operands, 2)
		if err != nil {
			return "", err
		}
		ip.current = types.Point{X: f[0], Y: f[1]}
		ip.path = append(ip.path, Segment{Op: SegLineTo, Points: []types.Point{ip.current}})
	case "c":
		f, err := popFloats(operands, 6)
		if err != nil {
			return "", err
		}
		ip.path = append(ip.path, Segment{Op: SegCurveTo, Points: []types.Point{
			{X: f[0], Y: f[1]}, {X: f[2], Y: f[3]}, {X: f[4], Y: f[5]}}})
		ip.current = types.Point{X: f[4], Y: f[5]}
	case "v":
		// The current point doubles as the first control point.
		f, err := popFloats(operands, 4)
		if err != nil {
			return "", err
		}
		ip.path = append(ip.path, Segment{Op: SegCurveTo, Points: []types.Point{
			ip.current, {X: f[0], Y: f[1]}, {X: f[2], Y: f[3]}}})
		ip.current = types.Point{X: f[2], Y: f[3]}
	case "y":
		// The end point doubles as the second control point.
		f, err := popFloats(operands, 4)
		if err != nil {
			return "", err
		}
		end := types.Point{X: f[2], Y: f[3]}
		ip.path = append(ip.path, Segment{Op: SegCurveTo, Points: []types.Point{
			{X: f[0], Y: f[1]}, end, end}})
		ip.current = end
	case "re":
		f, err := popFloats(operands, 4)
		if err != nil {
			return "", err
		}
		ip.path = append(ip.path, Segment{Op: SegRect, Points: []types.Point{
			{X: f[0], Y: f[1]}, {X: f[2], Y: f[3]}}})
		ip.current = types.Point{X: f[0], Y: f[1]}
		ip.start = ip.current
	case "h":
		ip.path = append(ip.path, Segment{Op: SegClose})
		ip.current = ip.start

	// Path painting.
	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n":
		ip.paintPath(PaintOp(op))

	// Clipping.
	case "W":
		ip.clipNext = true
		ip.clipEvenOdd = false
	case "W*":
		ip.clipNext = true
		ip.clipEvenOdd = true

	// Text objects.
	case "BT":
		ip.inText = true
		ip.tm = matrix.IdentMatrix
		ip.tlm = matrix.IdentMatrix
	case "ET":
		if !ip.inText {
			return "", errUnbalancedTextBlock
		}
		ip.inText = false
	case "Tf":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		if len(operands) < 2 {
			return "", errPageContentCorrupt
		}
		n, ok := operands[len(operands)-2].(types.Name)
		if !ok {
			return "", errPageContentCorrupt
		}
		ip.state.Text.FontName = n.Value()
		ip.state.Text.FontSize = f[0]
	case "Td":
		f, err := popFloats(operands, 2)
		if err != nil {
			return "", err
		}
		ip.textMove(f[0], f[1])
	case "TD":
		f, err := popFloats(operands, 2)
		if err != nil {
			return "", err
		}
		ip.state.Text.Leading = -f[1]
		ip.textMove(f[0], f[1])
	case "Tm":
		f, err := popFloats(operands, 6)
		if err != nil {
			return "", err
		}
		ip.tm = matrix.New(f[0], f[1], f[2], f[3], f[4], f[5])
		ip.tlm = ip.tm
	case "T*":
		ip.textMove(0, -ip.state.Text.Leading)
	case "Tc":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Text.CharSpacing = f[0]
	case "Tw":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Text.WordSpacing = f[0]
	case "Tz":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Text.HorizScaling = f[0]
	case "TL":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Text.Leading = f[0]
	case "Ts":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Text.Rise = f[0]
	case "Tr":
		f, err := popFloats(operands, 1)
		if err != nil {
			return "", err
		}
		ip.state.Text.RenderMode = int(f[0])

	// Text showing.
	case "Tj":
		if len(operands) == 0 {
			return "", errPageContentCorrupt
		}
		if err := ip.showText(operands[len(operands)-1]); err != nil {
			return "", err
		}
	case "'":
		if len(operands) == 0 {
			return "", errPageContentCorrupt
		}
		ip.textMove(0, -ip.state.Text.Leading)
		if err := ip.showText(operands[len(operands)-1]); err != nil {
			return "", err
		}
	case "\"":
		if len(operands) < 3 {
			return "", errPageContentCorrupt
		}
		f, err := popFloats(operands[:len(operands)-1], 2)
		if err != nil {
			return "", err
		}
		ip.state.Text.WordSpacing = f[0]
		ip.state.Text.CharSpacing = f[1]
		ip.textMove(0, -ip.state.Text.Leading)
		if err := ip.showText(operands[len(operands)-1]); err != nil {
			return "", err
		}
	case "TJ":
		if len(operands) == 0 {
			return "", errPageContentCorrupt
		}
		arr, ok := operands[len(operands)-1].(types.Array)
		if !ok {
			return "", errPageContentCorrupt
		}
		for _, entry := range arr {
			switch v := entry.(type) {
			case types.StringLiteral, types.HexLiteral:
				if err := ip.showText(v); err != nil {
					return "", err
				}
			case types.Integer:
				ip.textAdjust(float64(v.Value()))
			case types.Float:
				ip.textAdjust(v.Value())
			default:
				return "", errPageContentCorrupt
			}
		}

	// XObjects.
	case "Do":
		name, err := lastName(operands)
		if err != nil {
			return "", err
		}
		return ip.invokeXObject(name, buf)

	// Marked content and shading are consumed without effect.
	case "sh":
		if log.InfoEnabled() {
			log.Info.Println("content: sh operator ignored")
		}
	case "BMC", "BDC", "EMC", "MP", "DP", "d0", "d1":

	default:
		if log.DebugEnabled() {
			log.Debug.Printf("content: skipping unknown operator %q\n", op)
		}
	}

	return buf, nil
}

func (ip *Interpreter) colorForSpace(name string) Color {
	switch name {
	case "DeviceGray":
		return NewGray(0)
	case "DeviceRGB":
		return NewRGB(0, 0, 0)
	case "DeviceCMYK":
		return NewCMYK(0, 0, 0, 1)
	case "Pattern":
		return Color{Space: ColorSpacePattern}
	}

	// Resource based color space: ICCBased alternates are inferred from /N.
	if ip.resources != nil {
		if csDict := ip.resources.DictEntry("ColorSpace"); csDict != nil {
			if o, found := csDict.Find(name); found {
				if a, err := ip.ctx.DereferenceArray(o); err == nil && len(a) > 0 {
					if fam, ok := a[0].(types.Name); ok && fam.Value() == "ICCBased" && len(a) > 1 {
						if sd, err := ip.ctx.DereferenceStreamDict(a[1]); err == nil && sd != nil {
							if n := sd.IntEntry("N"); n != nil {
								return Color{Space: ColorSpaceICCBased, Components: make([]float64, *n)}
							}
						}
					}
				}
			}
		}
	}

	return NewGray(0)
}

func (ip *Interpreter) colorWithComponents(cur Color, operands []types.Object) Color {
	var comps []float64
	for _, o := range operands {
		switch v := o.(type) {
		case types.Integer:
			comps = append(comps, float64(v.Value()))
		case types.Float:
			comps = append(comps, v.Value())
		case types.Name:
			// Pattern name operand, the pattern itself is not resolved.
		}
	}

	c := cur.clone()
	c.Components = comps

	// Without a preceding cs the space is inferred from the component count.
	if c.Space == "" || (c.Space != ColorSpacePattern && len(comps) > 0 && len(comps) != len(cur.Components)) {
		switch len(comps) {
		case 1:
			c.Space = ColorSpaceGray
		case 3:
			c.Space = ColorSpaceRGB
		case 4:
			c.Space = ColorSpaceCMYK
		}
	}

	return c
}

func (ip *Interpreter) paintPath(op PaintOp) {
	defer func() {
		ip.path = nil
		ip.clipNext = false
		ip.clipEvenOdd = false
	}()

	// n produces nothing except its clipping effect.
	if op == PaintNone && !ip.clipNext {
		return
	}

	segs := make([]Segment, len(ip.path))
	for i, s := range ip.path {
		segs[i] = Segment{Op: s.Op, Points: append([]types.Point(nil), s.Points...)}
	}

	ip.elements = append(ip.elements, &Path{
		Segments:    segs,
		Paint:       op,
		Clip:        ip.clipNext,
		ClipEvenOdd: ip.clipEvenOdd,
		State:       ip.state.Clone(),
	})
}

func (ip *Interpreter) textMove(tx, ty float64) {
	ip.tlm = matrix.NewTranslateMatrix(tx, ty).Multiply(ip.tlm)
	ip.tm = ip.tlm
}

// textAdjust applies a TJ kern adjustment expressed in thousandths of a unit.
func (ip *Interpreter) textAdjust(amount float64) {
	ts := ip.state.Text
	tx := -amount / 1000 * ts.FontSize * ts.HorizScaling / 100
	ip.tm = matrix.NewTranslateMatrix(tx, 0).Multiply(ip.tm)
}

// showText emits one ParsedText per adjacency group and advances the text matrix.
func (ip *Interpreter) showText(o types.Object) error {
	bb, err := types.StringOrHexLiteralBytes(o)
	if err != nil {
		return errors.Wrap(errPageContentCorrupt, err.Error())
	}

	ts := ip.state.Text
	fi := ip.fonts[ts.FontName]

	byteWidth := 1
	if fi != nil {
		byteWidth = fi.CodeByteWidth
	}

	var codes []uint32
	for i := 0; i+byteWidth <= len(bb); i += byteWidth {
		var code uint32
		for j := 0; j < byteWidth; j++ {
			code = code<<8 | uint32(bb[i+j])
		}
		codes = append(codes, code)
	}

	var sb strings.Builder

	// Glyph widths accumulate in integer 1/1000 em units to avoid float
	// drift over long runs, spacing accumulates separately.
	var milliEm int64
	var spacing float64

	for _, code := range codes {
		if fi != nil {
			milliEm += int64(fi.Width(code))
			sb.WriteString(fi.Decode(code))
		} else if code >= 0x20 && code <= 0xFFFF {
			sb.WriteRune(rune(code))
		}

		spacing += ts.CharSpacing
		// Per PDF, word spacing applies to single byte code 0x20 only.
		if code == 0x20 && byteWidth == 1 {
			spacing += ts.WordSpacing
		}
	}

	advance := (float64(milliEm)/1000*ts.FontSize + spacing) * ts.HorizScaling / 100

	// Anchor in user space: text space origin through Tm and CTM.
	trm := ip.tm.Multiply(ip.state.CTM)
	origin := trm.Transform(types.Point{X: 0, Y: ts.Rise})

	ip.elements = append(ip.elements, &Text{
		Raw:      bb,
		Text:     sb.String(),
		Codes:    codes,
		X:        origin.X,
		Y:        origin.Y,
		Width:    advance,
		FontName: ts.FontName,
		State:    ip.state.Clone(),
	})

	ip.tm = matrix.NewTranslateMatrix(advance, 0).Multiply(ip.tm)

	return nil
}

// invokeXObject handles Do: images emit elements, forms are evaluated in
// their own graphics scope on the explicit frame stack.
func (ip *Interpreter) invokeXObject(name, buf string) (string, error) {
	sd, err := ip.xObject(name)
	if err != nil {
		return "", err
	}
	if sd == nil {
		// Unknown XObject names are recovered locally, no element is emitted.
		if log.InfoEnabled() {
			log.Info.Printf("content: unknown XObject %q\n", name)
		}
		return buf, nil
	}

	st := sd.Subtype()
	if st == nil {
		return buf, nil
	}

	switch *st {

	case "Image":
		ip.elements = append(ip.elements, &Image{
			ResourceName: name,
			State:        ip.state.Clone(),
		})
		return buf, nil

	case "Form":
		content, err := ip.ctx.DereferenceStreamContent(*sd)
		if err != nil {
			return "", err
		}

		// Save the current stream as a frame and descend.
		ip.frames = append(ip.frames, frame{
			buf:        buf,
			resources:  ip.resources,
			fonts:      ip.fonts,
			stackDepth: len(ip.stack),
		})
		ip.stack = append(ip.stack, ip.state.Clone())

		if a := sd.ArrayEntry("Matrix"); len(a) == 6 {
			var f [6]float64
			for i := 0; i < 6; i++ {
				v, _ := a.FloatValue(i)
				f[i] = v
			}
			ip.state.CTM = matrix.New(f[0], f[1], f[2], f[3], f[4], f[5]).Multiply(ip.state.CTM)
		}

		formRes := ip.resources
		if res := sd.DictEntry("Resources"); res != nil {
			formRes = res
		} else if o, found := sd.Find("Resources"); found {
			if res, err := ip.ctx.DereferenceDict(o); err == nil && res != nil {
				formRes = res
			}
		}

		fonts, err := font.ExtractFonts(ip.ctx, formRes)
		if err != nil {
			return "", err
		}
		ip.resources = formRes
		ip.fonts = fonts

		return string(content), nil
	}

	return buf, nil
}

func (ip *Interpreter) xObject(name string) (*types.StreamDict, error) {
	if ip.resources == nil {
		return nil, nil
	}

	o, found := ip.resources.Find("XObject")
	if !found {
		return nil, nil
	}

	xd, err := ip.ctx.DereferenceDict(o)
	if err != nil || xd == nil {
		return nil, err
	}

	entry, found := xd.Find(name)
	if !found {
		return nil, nil
	}

	return ip.ctx.DereferenceStreamDict(entry)
}

// inlineImage parses BI ... ID <binary> EI and emits a synthesized image XObject.
func (ip *Interpreter) inlineImage(buf string) (string, error) {
	d := types.NewDict()

	for {
		buf = strings.TrimLeftFunc(buf, func(r rune) bool { return unicode.IsSpace(r) || r == 0 })
		if len(buf) == 0 {
			return "", errPageContentCorrupt
		}

		if strings.HasPrefix(buf, "ID") {
			buf = buf[2:]
			break
		}

		if buf[0] != '/' {
			return "", errPageContentCorrupt
		}

		key, err := model.ParseObject(&buf)
		if err != nil {
			return "", errors.Wrap(errPageContentCorrupt, err.Error())
		}
		name, ok := key.(types.Name)
		if !ok {
			return "", errPageContentCorrupt
		}

		val, err := model.ParseObject(&buf)
		if err != nil {
			return "", errors.Wrap(errPageContentCorrupt, err.Error())
		}

		d[inlineImageKey(name.Value())] = val
	}

	// A single whitespace separates ID from the binary data.
	if len(buf) > 0 && (buf[0] == ' ' || buf[0] == '\n' || buf[0] == '\r') {
		buf = buf[1:]
	}

	i := strings.Index(buf, "EI")
	for i >= 0 {
		// EI must be framed by whitespace or end the stream.
		after := i + 2
		if (i == 0 || isPDFSpace(buf[i-1])) && (after >= len(buf) || isPDFSpace(buf[after])) {
			break
		}
		j := strings.Index(buf[i+1:], "EI")
		if j < 0 {
			i = -1
			break
		}
		i = i + 1 + j
	}
	if i < 0 {
		return "", errPageContentCorrupt
	}

	data := strings.TrimRight(buf[:i], " \r\n")

	ip.elements = append(ip.elements, &Image{
		Inline: &InlineImage{Dict: d, Data: []byte(data)},
		State:  ip.state.Clone(),
	})

	return buf[i+2:], nil
}

func isPDFSpace(c byte) bool {
	return c == ' ' || c == '\r' || c == '\n' || c == '\t' || c == '\f' || c == 0
}

// inlineImageKey expands the abbreviated inline image keys.
func inlineImageKey(k string) string {
	switch k {
	case "BPC":
		return "BitsPerComponent"
	case "CS":
		return "ColorSpace"
	case "D":
		return "Decode"
	case "DP":
		return "DecodeParms"
	case "F":
		return "Filter"
	case "H":
		return "Height"
	case "IM":
		return "ImageMask"
	case "I":
		return "Interpolate"
	case "W":
		return "Width"
	}
	return k
}
