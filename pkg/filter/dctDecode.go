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

package filter

import (
	"bytes"
	"image/jpeg"
	"io"

	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/log"
)

type dctDecode struct {
	baseFilter
}

// Encode implements encoding for a DCTDecode filter.
func (f dctDecode) Encode(r io.Reader) (io.Reader, error) {
	return nil, errors.New("aurochs: DCTDecode: encoding not supported")
}

// Decode implements decoding for a DCTDecode filter.
// The result is presented as interleaved 8-bit RGB samples regardless of
// the declared source color space.
func (f dctDecode) Decode(r io.Reader) (io.Reader, error) {
	if log.TraceEnabled() {
		log.Trace.Println("DecodeDCT begin")
	}

	img, err := jpeg.Decode(r)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	var b bytes.Buffer
	b.Grow(bounds.Dx() * bounds.Dy() * 3)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.At(x, y)
			r16, g16, b16, _ := c.RGBA()
			b.WriteByte(byte(r16 >> 8))
			b.WriteByte(byte(g16 >> 8))
			b.WriteByte(byte(b16 >> 8))
		}
	}

	return &b, nil
}
