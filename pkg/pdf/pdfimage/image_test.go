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

package pdfimage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trkbt10/aurochs/pkg/pdf/model"
	"github.com/trkbt10/aurochs/pkg/types"
)

func imageStream(d types.Dict, raw []byte) *types.StreamDict {
	sd := types.NewStreamDict(d, 0, nil, nil, nil)
	sd.Raw = raw
	return &sd
}

func newCtx() *model.Context {
	return model.NewContext(nil, nil)
}

func TestDecodeGray(t *testing.T) {
	d := types.NewDict()
	d.InsertInt("Width", 2)
	d.InsertInt("Height", 1)
	d.InsertInt("BitsPerComponent", 8)
	d.InsertName("ColorSpace", "DeviceGray")

	img, err := Decode(newCtx(), imageStream(d, []byte{0x00, 0xFF}))
	require.NoError(t, err)

	r, g, b, a := img.At(0, 0)
	assert.Equal(t, [4]byte{0, 0, 0, 255}, [4]byte{r, g, b, a})

	r, g, b, a = img.At(1, 0)
	assert.Equal(t, [4]byte{255, 255, 255, 255}, [4]byte{r, g, b, a})
}

func TestDecodeRGBPassThrough(t *testing.T) {
	d := types.NewDict()
	d.InsertInt("Width", 1)
	d.InsertInt("Height", 1)
	d.InsertInt("BitsPerComponent", 8)
	d.InsertName("ColorSpace", "DeviceRGB")

	img, err := Decode(newCtx(), imageStream(d, []byte{10, 20, 30}))
	require.NoError(t, err)

	r, g, b, a := img.At(0, 0)
	assert.Equal(t, [4]byte{10, 20, 30, 255}, [4]byte{r, g, b, a})
}

func TestDecodeCMYKWhiteBoundary(t *testing.T) {
	// CMYK (0,0,0,0) converts to opaque white.
	d := types.NewDict()
	d.InsertInt("Width", 1)
	d.InsertInt("Height", 1)
	d.InsertInt("BitsPerComponent", 8)
	d.InsertName("ColorSpace", "DeviceCMYK")

	img, err := Decode(newCtx(), imageStream(d, []byte{0, 0, 0, 0}))
	require.NoError(t, err)

	r, g, b, a := img.At(0, 0)
	assert.Equal(t, [4]byte{255, 255, 255, 255}, [4]byte{r, g, b, a})
}

func TestDecodeCMYKNaiveConversion(t *testing.T) {
	d := types.NewDict()
	d.InsertInt("Width", 1)
	d.InsertInt("Height", 1)
	d.InsertInt("BitsPerComponent", 8)
	d.InsertName("ColorSpace", "DeviceCMYK")

	// Full key is black regardless of the other components.
	img, err := Decode(newCtx(), imageStream(d, []byte{0, 0, 0, 255}))
	require.NoError(t, err)

	r, g, b, _ := img.At(0, 0)
	assert.Equal(t, [3]byte{0, 0, 0}, [3]byte{r, g, b})
}

func TestDecode1BPPDiagonal(t *testing.T) {
	// An 8x8 1 bpp diagonal: row y has its single black pixel at x=y.
	// Gray 0 is black, so the diagonal bits are 0 and the field is 1.
	raw := make([]byte, 8)
	for y := 0; y < 8; y++ {
		raw[y] = 0xFF &^ (0x80 >> y)
	}

	d := types.NewDict()
	d.InsertInt("Width", 8)
	d.InsertInt("Height", 8)
	d.InsertInt("BitsPerComponent", 1)
	d.InsertName("ColorSpace", "DeviceGray")

	img, err := Decode(newCtx(), imageStream(d, raw))
	require.NoError(t, err)

	r, _, _, a := img.At(0, 0)
	assert.Equal(t, byte(0), r)
	assert.Equal(t, byte(255), a)

	r, _, _, _ = img.At(7, 0)
	assert.Equal(t, byte(255), r)

	r, _, _, _ = img.At(0, 7)
	assert.Equal(t, byte(255), r)

	r, _, _, _ = img.At(7, 7)
	assert.Equal(t, byte(0), r)
}

func TestDecodeArrayInversion(t *testing.T) {
	// Decode [1 0] inverts gray samples.
	raw := []byte{0x80} // single row: 1 0 0 0 0 0 0 0

	d := types.NewDict()
	d.InsertInt("Width", 8)
	d.InsertInt("Height", 1)
	d.InsertInt("BitsPerComponent", 1)
	d.InsertName("ColorSpace", "DeviceGray")
	d.Insert("Decode", types.NewIntegerArray(1, 0))

	img, err := Decode(newCtx(), imageStream(d, raw))
	require.NoError(t, err)

	r, _, _, _ := img.At(0, 0)
	assert.Equal(t, byte(0), r)

	r, _, _, _ = img.At(1, 0)
	assert.Equal(t, byte(255), r)
}

func TestSizeCap(t *testing.T) {
	d := types.NewDict()
	d.InsertInt("Width", 5000)
	d.InsertInt("Height", 1)
	d.InsertName("ColorSpace", "DeviceGray")

	_, err := Decode(newCtx(), imageStream(d, nil))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestPatternColorSpaceIsTransparent(t *testing.T) {
	d := types.NewDict()
	d.InsertInt("Width", 1)
	d.InsertInt("Height", 1)
	d.InsertName("ColorSpace", "Pattern")

	img, err := Decode(newCtx(), imageStream(d, []byte{0}))
	require.NoError(t, err)

	_, _, _, a := img.At(0, 0)
	assert.Equal(t, byte(0), a)
}

func TestComponentAutoDetection(t *testing.T) {
	// Declared RGB but the data only fits one component per pixel:
	// the decoder falls back to gray.
	d := types.NewDict()
	d.InsertInt("Width", 2)
	d.InsertInt("Height", 2)
	d.InsertInt("BitsPerComponent", 8)
	d.InsertName("ColorSpace", "DeviceRGB")

	// 4 bytes only: too short for 3 components, auto-detects 1.
	img, err := Decode(newCtx(), imageStream(d, []byte{0, 85, 170, 255}))
	require.NoError(t, err)

	r, g, b, _ := img.At(1, 1)
	assert.Equal(t, [3]byte{255, 255, 255}, [3]byte{r, g, b})
}

func TestUnpack16Bit(t *testing.T) {
	d := types.NewDict()
	d.InsertInt("Width", 1)
	d.InsertInt("Height", 1)
	d.InsertInt("BitsPerComponent", 16)
	d.InsertName("ColorSpace", "DeviceGray")

	img, err := Decode(newCtx(), imageStream(d, []byte{0xAB, 0xCD}))
	require.NoError(t, err)

	r, _, _, _ := img.At(0, 0)
	assert.Equal(t, byte(0xAB), r)
}
