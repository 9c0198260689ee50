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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trkbt10/aurochs/pkg/types"
)

func parse(t *testing.T, s string) types.Object {
	t.Helper()
	o, err := ParseObject(&s)
	require.NoError(t, err)
	return o
}

func TestParsePrimitives(t *testing.T) {
	assert.Equal(t, types.Boolean(true), parse(t, "true"))
	assert.Equal(t, types.Boolean(false), parse(t, "false"))
	assert.Nil(t, parse(t, "null"))
	assert.Equal(t, types.Integer(123), parse(t, "123"))
	assert.Equal(t, types.Integer(-5), parse(t, "-5"))
	assert.Equal(t, types.Float(3.14), parse(t, "3.14"))
	assert.Equal(t, types.Name("Type"), parse(t, "/Type"))
}

func TestParseStringLiterals(t *testing.T) {
	assert.Equal(t, types.StringLiteral("hello"), parse(t, "(hello)"))

	// Balanced unescaped parentheses are allowed.
	assert.Equal(t, types.StringLiteral("a(b)c"), parse(t, "(a(b)c)"))

	// Unbalanced is an error.
	s := "(abc"
	_, err := ParseObject(&s)
	assert.Error(t, err)
}

func TestParseHexLiterals(t *testing.T) {
	assert.Equal(t, types.HexLiteral("4142"), parse(t, "<4142>"))

	// Whitespace tolerated, odd nibble padded with 0.
	assert.Equal(t, types.HexLiteral("4140"), parse(t, "<41 4>"))
}

func TestParseArray(t *testing.T) {
	o := parse(t, "[1 2 /X (s) [3]]")
	a, ok := o.(types.Array)
	require.True(t, ok)
	assert.Len(t, a, 5)
	assert.Equal(t, types.Integer(1), a[0])
	assert.Equal(t, types.Name("X"), a[2])

	inner, ok := a[4].(types.Array)
	require.True(t, ok)
	assert.Equal(t, types.Integer(3), inner[0])
}

func TestParseDict(t *testing.T) {
	o := parse(t, "<< /Type /Page /Count 3 /Kids [1 0 R] >>")
	d, ok := o.(types.Dict)
	require.True(t, ok)
	assert.Equal(t, "Page", *d.Type())
	assert.Equal(t, 3, *d.IntEntry("Count"))

	kids := d.ArrayEntry("Kids")
	require.Len(t, kids, 1)
	assert.Equal(t, *types.NewIndirectRef(1, 0), kids[0])
}

func TestParseDictDuplicateKey(t *testing.T) {
	s := "<< /A 1 /A 2 >>"
	_, err := ParseObject(&s)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDictionaryDuplicateKey)
}

func TestParseIndirectRef(t *testing.T) {
	assert.Equal(t, *types.NewIndirectRef(12, 0), parse(t, "12 0 R"))

	// Two integers without R stay an integer.
	s := "12 0 obj"
	o, err := ParseObject(&s)
	require.NoError(t, err)
	assert.Equal(t, types.Integer(12), o)
}

func TestParseComments(t *testing.T) {
	assert.Equal(t, types.Integer(7), parse(t, "% comment\n 7"))
}

func TestParseObjectAttributes(t *testing.T) {
	s := "12 0 obj << /X 1 >>"
	objNr, genNr, err := ParseObjectAttributes(&s)
	require.NoError(t, err)
	assert.Equal(t, 12, *objNr)
	assert.Equal(t, 0, *genNr)
	assert.Contains(t, s, "/X")
}
