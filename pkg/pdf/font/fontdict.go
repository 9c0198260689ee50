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

package font

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/log"
	"github.com/trkbt10/aurochs/pkg/pdf/model"
	"github.com/trkbt10/aurochs/pkg/types"
)

// Ordering identifies the CID collection of a composite font.
type Ordering string

// The CID orderings of the predefined registries.
const (
	OrderingNone   Ordering = ""
	OrderingJapan1 Ordering = "Adobe-Japan1"
	OrderingGB1    Ordering = "Adobe-GB1"
	OrderingCNS1   Ordering = "Adobe-CNS1"
	OrderingKorea1 Ordering = "Adobe-Korea1"
)

// Descriptor flag bits, see table 123.
const (
	flagItalic    = 1 << 6
	flagForceBold = 1 << 18
)

// Info describes one font resource of a page.
type Info struct {
	ResourceName string
	BaseFont     string
	Subtype      string
	IsBold       bool
	IsItalic     bool
	Ordering     Ordering

	// CodeByteWidth is 2 for Type0 fonts, 1 otherwise, raised to 2 when the
	// ToUnicode CMap carries 2 byte source codes.
	CodeByteWidth int

	// Widths maps character codes to widths in 1/1000 em.
	Widths       map[uint32]float64
	DefaultWidth float64

	Ascender  float64
	Descender float64

	// ToUnicode is optional, absent means pass through.
	ToUnicode ToUnicodeMap

	// FontFile carries the embedded font program if present.
	FontFile []byte
}

// cidDefaultWidth is the /DW default for composite fonts.
const cidDefaultWidth = 1000

// ExtractFonts resolves every entry of the page's /Resources/Font dict.
func ExtractFonts(ctx *model.Context, resources types.Dict) (map[string]*Info, error) {
	fonts := map[string]*Info{}

	if resources == nil {
		return fonts, nil
	}

	o, found := resources.Find("Font")
	if !found {
		return fonts, nil
	}

	fontDict, err := ctx.DereferenceDict(o)
	if err != nil || fontDict == nil {
		return fonts, err
	}

	for name, entry := range fontDict {
		d, err := ctx.DereferenceDict(entry)
		if err != nil || d == nil {
			if log.InfoEnabled() {
				log.Info.Printf("skipping corrupt font resource %s\n", name)
			}
			continue
		}

		fi, err := fontInfo(ctx, name, d)
		if err != nil {
			return nil, err
		}
		fonts[name] = fi
	}

	return fonts, nil
}

func fontInfo(ctx *model.Context, resourceName string, d types.Dict) (*Info, error) {
	fi := &Info{
		ResourceName:  resourceName,
		CodeByteWidth: 1,
		DefaultWidth:  0,
		Widths:        map[uint32]float64{},
	}

	if st := d.Subtype(); st != nil {
		fi.Subtype = *st
	}

	if bf := d.NameEntry("BaseFont"); bf != nil {
		fi.BaseFont = *bf
	}

	fi.IsBold = strings.Contains(strings.ToLower(fi.BaseFont), "bold")
	fi.IsItalic = strings.Contains(strings.ToLower(fi.BaseFont), "italic") ||
		strings.Contains(strings.ToLower(fi.BaseFont), "oblique")

	metricsDict := d

	if fi.Subtype == "Type0" {
		fi.CodeByteWidth = 2

		// Metrics and widths live in the first descendant font.
		df, err := descendantFont(ctx, d)
		if err != nil {
			return nil, err
		}
		if df != nil {
			metricsDict = df

			if csi := df.DictEntry("CIDSystemInfo"); csi != nil {
				fi.Ordering = orderingForCSI(ctx, csi)
			} else if o, found := df.Find("CIDSystemInfo"); found {
				if csi, err := ctx.DereferenceDict(o); err == nil && csi != nil {
					fi.Ordering = orderingForCSI(ctx, csi)
				}
			}

			fi.DefaultWidth = cidDefaultWidth
			if dw := df.IntEntry("DW"); dw != nil {
				fi.DefaultWidth = float64(*dw)
			}

			if o, found := df.Find("W"); found {
				w, err := ctx.DereferenceArray(o)
				if err != nil {
					return nil, err
				}
				if err := cidWidths(ctx, w, fi.Widths); err != nil {
					return nil, err
				}
			}
		}
	} else {
		if err := simpleWidths(ctx, d, fi); err != nil {
			return nil, err
		}
	}

	if err := applyDescriptor(ctx, metricsDict, fi); err != nil {
		return nil, err
	}

	if o, found := d.Find("ToUnicode"); found {
		content, err := ctx.DereferenceStreamContent(o)
		if err != nil {
			return nil, err
		}
		if content != nil {
			cm, err := ParseToUnicode(content)
			if err != nil {
				return nil, err
			}
			fi.ToUnicode = cm.Map
			// The maximum source hex length in the whole map determines the
			// code byte width. A Type0 font keeps its 2 byte codes, 1 byte
			// sources still parse correctly as high zero pairs.
			if cm.CodeByteWidth > fi.CodeByteWidth {
				fi.CodeByteWidth = cm.CodeByteWidth
			}
		}
	}

	return fi, nil
}

func descendantFont(ctx *model.Context, d types.Dict) (types.Dict, error) {
	o, found := d.Find("DescendantFonts")
	if !found {
		return nil, nil
	}

	a, err := ctx.DereferenceArray(o)
	if err != nil {
		return nil, err
	}
	if len(a) == 0 {
		return nil, errors.New("aurochs: font: empty DescendantFonts")
	}

	return ctx.DereferenceDict(a[0])
}

func orderingForCSI(ctx *model.Context, csi types.Dict) Ordering {
	var reg, ord string
	if s := csi.StringEntry("Registry"); s != nil {
		reg = *s
	}
	if s := csi.StringEntry("Ordering"); s != nil {
		ord = *s
	}

	switch reg + "-" + ord {
	case "Adobe-Japan1":
		return OrderingJapan1
	case "Adobe-GB1":
		return OrderingGB1
	case "Adobe-CNS1":
		return OrderingCNS1
	case "Adobe-Korea1":
		return OrderingKorea1
	}
	return OrderingNone
}

func simpleWidths(ctx *model.Context, d types.Dict, fi *Info) error {
	o, found := d.Find("Widths")
	if !found {
		return nil
	}

	a, err := ctx.DereferenceArray(o)
	if err != nil {
		return err
	}

	firstChar := 0
	if fc := d.IntEntry("FirstChar"); fc != nil {
		firstChar = *fc
	} else if o, found := d.Find("FirstChar"); found {
		if i, err := ctx.DereferenceInteger(o); err == nil && i != nil {
			firstChar = i.Value()
		}
	}

	for i := range a {
		w, err := ctx.DereferenceNumber(a[i])
		if err != nil {
			return err
		}
		fi.Widths[uint32(firstChar+i)] = w
	}

	return nil
}

// cidWidths decodes the /W array:
// c [w1 w2 ...] assigns consecutive widths starting at c,
// cFirst cLast w assigns w to the whole range.
func cidWidths(ctx *model.Context, a types.Array, widths map[uint32]float64) error {
	for i := 0; i < len(a); {
		first, err := ctx.DereferenceNumber(a[i])
		if err != nil {
			return err
		}

		if i+1 >= len(a) {
			return errors.New("aurochs: font: corrupt W array")
		}

		next, err := ctx.Dereference(a[i+1])
		if err != nil {
			return err
		}

		if wa, ok := next.(types.Array); ok {
			for j := range wa {
				w, err := ctx.DereferenceNumber(wa[j])
				if err != nil {
					return err
				}
				widths[uint32(int(first)+j)] = w
			}
			i += 2
			continue
		}

		if i+2 >= len(a) {
			return errors.New("aurochs: font: corrupt W array")
		}

		last, err := ctx.DereferenceNumber(a[i+1])
		if err != nil {
			return err
		}
		w, err := ctx.DereferenceNumber(a[i+2])
		if err != nil {
			return err
		}

		for c := int(first); c <= int(last); c++ {
			widths[uint32(c)] = w
		}
		i += 3
	}

	return nil
}

func applyDescriptor(ctx *model.Context, d types.Dict, fi *Info) error {
	o, found := d.Find("FontDescriptor")
	if !found {
		return nil
	}

	fd, err := ctx.DereferenceDict(o)
	if err != nil || fd == nil {
		return err
	}

	if v := fd.FloatEntry("Ascent"); v != nil {
		fi.Ascender = *v
	}
	if v := fd.FloatEntry("Descent"); v != nil {
		fi.Descender = *v
	}
	if v := fd.FloatEntry("MissingWidth"); v != nil {
		fi.DefaultWidth = *v
	}

	if flags := fd.IntEntry("Flags"); flags != nil {
		if *flags&flagItalic > 0 {
			fi.IsItalic = true
		}
		if *flags&flagForceBold > 0 {
			fi.IsBold = true
		}
	}

	for _, key := range []string{"FontFile2", "FontFile3"} {
		if o, found := fd.Find(key); found {
			bb, err := ctx.DereferenceStreamContent(o)
			if err != nil {
				return err
			}
			fi.FontFile = bb
			break
		}
	}

	return nil
}

// Width returns the advance width for code in 1/1000 em.
func (fi *Info) Width(code uint32) float64 {
	if w, ok := fi.Widths[code]; ok {
		return w
	}
	return fi.DefaultWidth
}

// Decode maps a character code through ToUnicode.
// Codes missing from the map pass through as a BMP character when
// printable, everything else is dropped.
func (fi *Info) Decode(code uint32) string {
	if fi.ToUnicode != nil {
		if s, ok := fi.ToUnicode[code]; ok {
			return s
		}
	}
	if code >= 0x20 && code <= 0xFFFF {
		return string(rune(code))
	}
	return ""
}
