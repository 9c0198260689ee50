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

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShapeID(t *testing.T) {
	// 1 is reserved for the slide's group shape.
	assert.Equal(t, "2", GenerateShapeID(nil))
	assert.Equal(t, "2", GenerateShapeID([]string{}))
	assert.Equal(t, "11", GenerateShapeID([]string{"1", "2", "10"}))

	// Non numeric ids are ignored.
	assert.Equal(t, "4", GenerateShapeID([]string{"abc", "3", "x9"}))
}

func TestGenerateShapeIDNeverCollides(t *testing.T) {
	existing := []string{"2", "7", "5"}
	for i := 0; i < 20; i++ {
		id := GenerateShapeID(existing)
		assert.NotContains(t, existing, id)
		assert.NotEqual(t, "1", id)
		existing = append(existing, id)
	}
}

func TestGenerateShapeName(t *testing.T) {
	name, err := GenerateShapeName("text", []string{"TextBox 3"})
	require.NoError(t, err)
	assert.Equal(t, "TextBox 4", name)

	// Unknown types use the type verbatim as base.
	name, err = GenerateShapeName("chart", []string{"chart 1"})
	require.NoError(t, err)
	assert.Equal(t, "chart 2", name)

	name, err = GenerateShapeName("sp", nil)
	require.NoError(t, err)
	assert.Equal(t, "Shape 1", name)

	name, err = GenerateShapeName("picture", []string{"Picture 2", "TextBox 9"})
	require.NoError(t, err)
	assert.Equal(t, "Picture 3", name)

	_, err = GenerateShapeName("", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerateShapeNameNeverCollides(t *testing.T) {
	existing := []string{"Shape 1", "Shape 5"}
	for i := 0; i < 10; i++ {
		name, err := GenerateShapeName("shape", existing)
		require.NoError(t, err)
		assert.NotContains(t, existing, name)
		existing = append(existing, name)
	}
	assert.Contains(t, existing, fmt.Sprintf("Shape %d", 15))
}
