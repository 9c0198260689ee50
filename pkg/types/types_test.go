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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPDFStrings(t *testing.T) {
	assert.Equal(t, "true", Boolean(true).PDFString())
	assert.Equal(t, "42", Integer(42).PDFString())
	assert.Equal(t, "/Name", Name("Name").PDFString())
	assert.Equal(t, "(abc)", StringLiteral("abc").PDFString())
	assert.Equal(t, "<414243>", HexLiteral("414243").PDFString())
	assert.Equal(t, "3 0 R", NewIndirectRef(3, 0).PDFString())
}

func TestHexLiteralBytes(t *testing.T) {
	bb, err := HexLiteral("48656C6C6F").Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), bb)
}

func TestDictEntries(t *testing.T) {
	d := NewDict()
	assert.True(t, d.Insert("Type", Name("Page")))
	assert.False(t, d.Insert("Type", Name("Pages")))

	require.NotNil(t, d.Type())
	assert.Equal(t, "Page", *d.Type())

	d.InsertInt("Count", 3)
	require.NotNil(t, d.IntEntry("Count"))
	assert.Equal(t, 3, *d.IntEntry("Count"))

	assert.Nil(t, d.IntEntry("Missing"))
}

func TestDictClone(t *testing.T) {
	d := NewDict()
	d.Insert("Kids", Array{*NewIndirectRef(1, 0)})

	c := d.Clone().(Dict)
	c["Kids"] = Array{}

	assert.Len(t, d.ArrayEntry("Kids"), 1)
}

func TestNameEncodeDecode(t *testing.T) {
	assert.Equal(t, "A#20B", EncodeName("A B"))

	s, err := DecodeName("A#20B")
	require.NoError(t, err)
	assert.Equal(t, "A B", s)

	_, err = DecodeName("bad#zz")
	assert.Error(t, err)
}

func TestUnescape(t *testing.T) {
	bb, err := Unescape(`a\nb`)
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 0x0A, 'b'}, bb)

	bb, err = Unescape(`\101`)
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), bb)

	bb, err = Unescape(`\(x\)`)
	require.NoError(t, err)
	assert.Equal(t, []byte("(x)"), bb)
}

func TestTextString(t *testing.T) {
	// UTF-16BE with BOM.
	s := TextString([]byte{0xFE, 0xFF, 0x00, 0x41, 0x00, 0x42})
	assert.Equal(t, "AB", s)

	// latin-1 shadow fallback.
	s = TextString([]byte{0x41, 0xE9})
	assert.Equal(t, "Aé", s)
}

func TestRectForArray(t *testing.T) {
	r := RectForArray(NewNumberArray(0, 0, 612, 792))
	require.NotNil(t, r)
	assert.Equal(t, 612.0, r.Width())
	assert.Equal(t, 792.0, r.Height())

	assert.Nil(t, RectForArray(NewNumberArray(1, 2)))
}
