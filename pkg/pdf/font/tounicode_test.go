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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cmapBFChar = `
/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
2 beginbfchar
<41> <0041>
<42> <0042>
endbfchar
endcmap
`

func TestParseBFChar(t *testing.T) {
	cm, err := ParseToUnicode([]byte(cmapBFChar))
	require.NoError(t, err)

	assert.Equal(t, 1, cm.CodeByteWidth)
	assert.Equal(t, "A", cm.Map[0x41])
	assert.Equal(t, "B", cm.Map[0x42])
}

func TestParseBFRangeIncrementing(t *testing.T) {
	cm, err := ParseToUnicode([]byte("1 beginbfrange\n<20> <22> <0020>\nendbfrange"))
	require.NoError(t, err)

	assert.Equal(t, " ", cm.Map[0x20])
	assert.Equal(t, "!", cm.Map[0x21])
	assert.Equal(t, "\"", cm.Map[0x22])
}

func TestParseBFRangeArray(t *testing.T) {
	cm, err := ParseToUnicode([]byte("1 beginbfrange\n<61> <63> [<0078> <0079> <007A>]\nendbfrange"))
	require.NoError(t, err)

	assert.Equal(t, "x", cm.Map[0x61])
	assert.Equal(t, "y", cm.Map[0x62])
	assert.Equal(t, "z", cm.Map[0x63])
}

func TestParseTwoByteSources(t *testing.T) {
	cm, err := ParseToUnicode([]byte("1 beginbfchar\n<3042> <3042>\nendbfchar"))
	require.NoError(t, err)

	assert.Equal(t, 2, cm.CodeByteWidth)
	assert.Equal(t, "あ", cm.Map[0x3042])
}

func TestParseMultiCodeUnitDestination(t *testing.T) {
	// A destination may hold several UTF-16 code units.
	cm, err := ParseToUnicode([]byte("1 beginbfchar\n<01> <00660066>\nendbfchar"))
	require.NoError(t, err)

	assert.Equal(t, "ff", cm.Map[0x01])
}

func TestOrderInvariance(t *testing.T) {
	// Permuting bfchar/bfrange sections yields the same map.
	a := "1 beginbfchar\n<41> <0041>\nendbfchar\n1 beginbfrange\n<50> <52> <0070>\nendbfrange"
	b := "1 beginbfrange\n<50> <52> <0070>\nendbfrange\n1 beginbfchar\n<41> <0041>\nendbfchar"

	cmA, err := ParseToUnicode([]byte(a))
	require.NoError(t, err)
	cmB, err := ParseToUnicode([]byte(b))
	require.NoError(t, err)

	assert.Equal(t, cmA.Map, cmB.Map)
	assert.Equal(t, cmA.CodeByteWidth, cmB.CodeByteWidth)
}

func TestBFRangeClamp(t *testing.T) {
	// Ranges beyond 256 codes are clamped.
	cm, err := ParseToUnicode([]byte("1 beginbfrange\n<0000> <1000> <0020>\nendbfrange"))
	require.NoError(t, err)

	assert.Len(t, cm.Map, 256)
	_, ok := cm.Map[0x0100]
	assert.False(t, ok)
}

func TestUnterminatedSection(t *testing.T) {
	_, err := ParseToUnicode([]byte("1 beginbfchar\n<41> <0041>\n"))
	assert.Error(t, err)
}

func TestInfoDecode(t *testing.T) {
	fi := &Info{
		CodeByteWidth: 1,
		ToUnicode:     ToUnicodeMap{0x41: "A"},
	}

	assert.Equal(t, "A", fi.Decode(0x41))

	// Missing codes pass through as BMP characters when printable.
	assert.Equal(t, "B", fi.Decode(0x42))

	// Non printable codes are dropped.
	assert.Equal(t, "", fi.Decode(0x01))
}

func TestInfoWidth(t *testing.T) {
	fi := &Info{
		Widths:       map[uint32]float64{0x41: 600},
		DefaultWidth: 500,
	}

	assert.Equal(t, 600.0, fi.Width(0x41))
	assert.Equal(t, 500.0, fi.Width(0x42))
}
