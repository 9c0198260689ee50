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

// Package pdfimage implements the image XObject decode pipeline producing RGBA.
package pdfimage

import (
	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/filter"
	"github.com/trkbt10/aurochs/pkg/log"
	"github.com/trkbt10/aurochs/pkg/pdf/model"
	"github.com/trkbt10/aurochs/pkg/types"
)

var (
	// ErrImageTooLarge gets raised when width or height exceed the configured cap.
	ErrImageTooLarge = errors.New("aurochs: image: dimension exceeds cap")

	errImageCorrupt = errors.New("aurochs: image: corrupt image dict")
)

// RGBA is a decoded image with 8 bit per channel interleaved samples.
type RGBA struct {
	Width  int
	Height int
	// Pix holds Width*Height*4 bytes.
	Pix []byte
}

// At returns the RGBA tuple at (x, y).
func (img *RGBA) At(x, y int) (r, g, b, a byte) {
	i := (y*img.Width + x) * 4
	return img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
}

// DecodeByName resolves the image XObject name through the page resources
// and decodes it.
func DecodeByName(ctx *model.Context, resources types.Dict, name string) (*RGBA, error) {
	if resources == nil {
		return nil, errors.Errorf("aurochs: image: missing resources for %q", name)
	}

	o, found := resources.Find("XObject")
	if !found {
		return nil, errors.Errorf("aurochs: image: unknown XObject %q", name)
	}

	xd, err := ctx.DereferenceDict(o)
	if err != nil || xd == nil {
		return nil, errors.Errorf("aurochs: image: unknown XObject %q", name)
	}

	entry, found := xd.Find(name)
	if !found {
		return nil, errors.Errorf("aurochs: image: unknown XObject %q", name)
	}

	sd, err := ctx.DereferenceStreamDict(entry)
	if err != nil || sd == nil {
		return nil, errImageCorrupt
	}

	return Decode(ctx, sd)
}

// DecodeInline decodes an inline image synthesized by the interpreter.
func DecodeInline(ctx *model.Context, d types.Dict, data []byte) (*RGBA, error) {
	sd := types.NewStreamDict(d, 0, nil, nil, nil)
	sd.Raw = data

	fpl, err := inlineFilterPipeline(d)
	if err != nil {
		return nil, err
	}
	sd.FilterPipeline = fpl

	return Decode(ctx, &sd)
}

func inlineFilterPipeline(d types.Dict) ([]types.PDFFilter, error) {
	o, found := d.Find("Filter")
	if !found {
		return nil, nil
	}

	var fpl []types.PDFFilter
	parms, _ := d.Find("DecodeParms")

	switch obj := o.(type) {
	case types.Name:
		dp, _ := parms.(types.Dict)
		fpl = append(fpl, types.PDFFilter{Name: expandFilterName(obj.Value()), DecodeParms: dp})
	case types.Array:
		pa, _ := parms.(types.Array)
		for i, f := range obj {
			name, ok := f.(types.Name)
			if !ok {
				return nil, errImageCorrupt
			}
			var dp types.Dict
			if pa != nil && i < len(pa) {
				dp, _ = pa[i].(types.Dict)
			}
			fpl = append(fpl, types.PDFFilter{Name: expandFilterName(name.Value()), DecodeParms: dp})
		}
	default:
		return nil, errImageCorrupt
	}

	return fpl, nil
}

// expandFilterName expands the abbreviated inline image filter names.
func expandFilterName(n string) string {
	switch n {
	case "AHx":
		return filter.ASCIIHex
	case "A85":
		return filter.ASCII85
	case "LZW":
		return filter.LZW
	case "Fl":
		return filter.Flate
	case "RL":
		return filter.RunLength
	case "CCF":
		return filter.CCITTFax
	case "DCT":
		return filter.DCT
	}
	return n
}

type imageParams struct {
	width, height int
	bpc           int
	colorSpace    string
	csComponents  int
	imageMask     bool
	decodeInvert  bool
	isDCT         bool
	isCCITT       bool
}

// Decode runs the full image pipeline: filter decode, color conversion to
// RGBA and soft mask alpha merge.
func Decode(ctx *model.Context, sd *types.StreamDict) (*RGBA, error) {
	p, err := params(ctx, sd)
	if err != nil {
		return nil, err
	}

	maxDim := model.DefaultMaxImageDimension
	if ctx.Configuration != nil && ctx.MaxImageDimension > 0 {
		maxDim = ctx.MaxImageDimension
	}
	if p.width <= 0 || p.height <= 0 || p.width > maxDim || p.height > maxDim {
		return nil, ErrImageTooLarge
	}

	data, err := decodeStream(ctx, sd, p)
	if err != nil {
		return nil, err
	}

	img, err := toRGBA(data, p)
	if err != nil {
		return nil, err
	}

	if o, found := sd.Find("SMask"); found {
		if err := mergeSoftMask(ctx, o, img); err != nil {
			return nil, err
		}
	}

	return img, nil
}

func params(ctx *model.Context, sd *types.StreamDict) (*imageParams, error) {
	p := &imageParams{bpc: 8, csComponents: 1}

	if w := sd.IntEntry("Width"); w != nil {
		p.width = *w
	} else if o, found := sd.Find("Width"); found {
		if i, err := ctx.DereferenceInteger(o); err == nil && i != nil {
			p.width = i.Value()
		}
	}
	if h := sd.IntEntry("Height"); h != nil {
		p.height = *h
	} else if o, found := sd.Find("Height"); found {
		if i, err := ctx.DereferenceInteger(o); err == nil && i != nil {
			p.height = i.Value()
		}
	}

	if b := sd.IntEntry("BitsPerComponent"); b != nil {
		p.bpc = *b
	}

	if im := sd.BooleanEntry("ImageMask"); im != nil && *im {
		p.imageMask = true
		p.bpc = 1
	}

	cs, comps, err := resolveColorSpace(ctx, sd)
	if err != nil {
		return nil, err
	}
	p.colorSpace = cs
	p.csComponents = comps

	// Decode array [1 0] inverts gray samples.
	if a := sd.ArrayEntry("Decode"); len(a) >= 2 {
		lo, ok1 := a.FloatValue(0)
		hi, ok2 := a.FloatValue(1)
		if ok1 && ok2 && lo == 1 && hi == 0 {
			p.decodeInvert = true
		}
	}

	for _, f := range sd.FilterPipeline {
		switch f.Name {
		case filter.DCT:
			p.isDCT = true
		case filter.CCITTFax:
			p.isCCITT = true
		}
	}

	return p, nil
}

func resolveColorSpace(ctx *model.Context, sd *types.StreamDict) (string, int, error) {
	o, found := sd.Find("ColorSpace")
	if !found {
		return "DeviceGray", 1, nil
	}

	o, err := ctx.Dereference(o)
	if err != nil {
		return "", 0, err
	}

	switch cs := o.(type) {

	case types.Name:
		switch cs.Value() {
		case "DeviceGray":
			return "DeviceGray", 1, nil
		case "DeviceRGB":
			return "DeviceRGB", 3, nil
		case "DeviceCMYK":
			return "DeviceCMYK", 4, nil
		case "Pattern":
			return "Pattern", 0, nil
		}
		return cs.Value(), 1, nil

	case types.Array:
		if len(cs) == 0 {
			return "", 0, errImageCorrupt
		}
		fam, ok := cs[0].(types.Name)
		if !ok {
			return "", 0, errImageCorrupt
		}
		if fam.Value() == "ICCBased" && len(cs) > 1 {
			// The alternate is inferred from /N.
			iccSD, err := ctx.DereferenceStreamDict(cs[1])
			if err == nil && iccSD != nil {
				if n := iccSD.IntEntry("N"); n != nil {
					return "ICCBased", *n, nil
				}
			}
			return "ICCBased", 3, nil
		}
		return fam.Value(), 1, nil
	}

	return "DeviceGray", 1, nil
}

func decodeStream(ctx *model.Context, sd *types.StreamDict, p *imageParams) ([]byte, error) {
	chain := make([]filter.Spec, 0, len(sd.FilterPipeline))

	for _, f := range sd.FilterPipeline {
		parms := map[string]int{}
		for k, v := range filterParms(f.DecodeParms) {
			parms[k] = v
		}

		// CCITT parameters default from the image dict.
		if f.Name == filter.CCITTFax {
			if _, ok := parms["Columns"]; !ok {
				parms["Columns"] = p.width
			}
			if _, ok := parms["Rows"]; !ok {
				parms["Rows"] = p.height
			}
		}

		chain = append(chain, filter.Spec{Name: f.Name, Parms: parms})
	}

	return filter.DecodeChain(sd.Raw, chain)
}

func filterParms(d types.Dict) map[string]int {
	m := map[string]int{}
	if d == nil {
		return m
	}
	for k, v := range d {
		switch val := v.(type) {
		case types.Integer:
			m[k] = val.Value()
		case types.Boolean:
			if val.Value() {
				m[k] = 1
			} else {
				m[k] = 0
			}
		}
	}
	return m
}

// unpackSamples expands packed samples of the given bit depth into
// normalized 8 bit values, row aligned.
func unpackSamples(data []byte, width, height, comps, bpc int) ([]byte, error) {
	if bpc == 8 {
		need := width * height * comps
		if len(data) < need {
			return nil, errImageCorrupt
		}
		return data[:need], nil
	}

	out := make([]byte, width*height*comps)

	switch bpc {

	case 16:
		need := width * height * comps * 2
		if len(data) < need {
			return nil, errImageCorrupt
		}
		for i := 0; i < width*height*comps; i++ {
			out[i] = data[i*2]
		}

	case 1, 2, 4:
		rowBits := width * comps * bpc
		rowBytes := (rowBits + 7) / 8
		if len(data) < rowBytes*height {
			return nil, errImageCorrupt
		}
		maxVal := (1 << bpc) - 1
		for y := 0; y < height; y++ {
			row := data[y*rowBytes:]
			for i := 0; i < width*comps; i++ {
				bit := i * bpc
				b := row[bit/8]
				shift := 8 - bpc - bit%8
				v := int(b>>shift) & maxVal
				out[y*width*comps+i] = byte(v * 255 / maxVal)
			}
		}

	default:
		return nil, errors.Errorf("aurochs: image: unsupported bits per component %d", bpc)
	}

	return out, nil
}

func toRGBA(data []byte, p *imageParams) (*RGBA, error) {
	w, h := p.width, p.height
	img := &RGBA{Width: w, Height: h, Pix: make([]byte, w*h*4)}

	cs := p.colorSpace
	comps := p.csComponents

	// DCT output always arrives as RGB regardless of the declared space.
	if p.isDCT {
		cs = "DeviceRGB"
		comps = 3
		p.bpc = 8
	}

	// CCITT output is packed 1 bpp gray.
	if p.isCCITT || p.imageMask {
		cs = "DeviceGray"
		comps = 1
		p.bpc = 1
	}

	if cs == "Pattern" {
		// Unsupported: transparent output.
		if log.InfoEnabled() {
			log.Info.Println("image: pattern color space unsupported, emitting transparent image")
		}
		return img, nil
	}

	if cs == "ICCBased" {
		switch comps {
		case 1:
			cs = "DeviceGray"
		case 3:
			cs = "DeviceRGB"
		case 4:
			cs = "DeviceCMYK"
		default:
			return nil, errImageCorrupt
		}
	}

	samples, err := unpackSamples(data, w, h, comps, p.bpc)
	if err != nil {
		// Color space length mismatch: auto-detect by component count.
		detected := autoDetectComponents(data, w, h, p.bpc)
		if detected == 0 {
			return nil, err
		}
		if log.InfoEnabled() {
			log.Info.Printf("image: color space mismatch, auto-detected %d components\n", detected)
		}
		comps = detected
		switch comps {
		case 1:
			cs = "DeviceGray"
		case 3:
			cs = "DeviceRGB"
		case 4:
			cs = "DeviceCMYK"
		}
		samples, err = unpackSamples(data, w, h, comps, p.bpc)
		if err != nil {
			return nil, err
		}
	}

	for i := 0; i < w*h; i++ {
		var r, g, b byte

		switch cs {

		case "DeviceGray":
			v := samples[i]
			if p.decodeInvert {
				v = 255 - v
			}
			r, g, b = v, v, v

		case "DeviceRGB":
			r = samples[i*3]
			g = samples[i*3+1]
			b = samples[i*3+2]

		case "DeviceCMYK":
			c := float64(samples[i*4]) / 255
			m := float64(samples[i*4+1]) / 255
			y := float64(samples[i*4+2]) / 255
			k := float64(samples[i*4+3]) / 255
			r = byte(255 * (1 - c) * (1 - k))
			g = byte(255 * (1 - m) * (1 - k))
			b = byte(255 * (1 - y) * (1 - k))

		default:
			return nil, errors.Errorf("aurochs: image: unsupported color space %q", cs)
		}

		img.Pix[i*4] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = 255
	}

	return img, nil
}

func autoDetectComponents(data []byte, w, h, bpc int) int {
	if w*h == 0 {
		return 0
	}
	for _, comps := range []int{4, 3, 1} {
		var need int
		if bpc == 8 {
			need = w * h * comps
		} else if bpc == 16 {
			need = w * h * comps * 2
		} else {
			need = ((w*comps*bpc + 7) / 8) * h
		}
		if len(data) >= need {
			return comps
		}
	}
	return 0
}

// mergeSoftMask decodes the /SMask gray image and merges it as alpha.
func mergeSoftMask(ctx *model.Context, o types.Object, img *RGBA) error {
	sd, err := ctx.DereferenceStreamDict(o)
	if err != nil || sd == nil {
		return err
	}

	mask, err := Decode(ctx, sd)
	if err != nil {
		if log.InfoEnabled() {
			log.Info.Printf("image: soft mask decode failed: %v\n", err)
		}
		return nil
	}

	for y := 0; y < img.Height; y++ {
		// Nearest neighbour mapping tolerates dimension mismatches.
		my := y * mask.Height / img.Height
		for x := 0; x < img.Width; x++ {
			mx := x * mask.Width / img.Width
			// The mask's decoded gray value becomes the alpha channel.
			a := mask.Pix[(my*mask.Width+mx)*4]
			img.Pix[(y*img.Width+x)*4+3] = a
		}
	}

	return nil
}
