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

package command

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trkbt10/aurochs/pkg/pptx"
	"github.com/trkbt10/aurochs/pkg/xlsx"
)

func TestOKEnvelope(t *testing.T) {
	r := OK(42)
	assert.True(t, r.OK)
	assert.Equal(t, 42, r.Value)
	assert.Empty(t, r.Code)
}

func TestFailEnvelope(t *testing.T) {
	r := Fail[int](CodeBuildError, errors.New("boom"))
	assert.False(t, r.OK)
	assert.Equal(t, CodeBuildError, r.Code)
	assert.Equal(t, "boom", r.Message)
}

func TestCodeForError(t *testing.T) {
	assert.Equal(t, CodeSheetNotFound, CodeForError(errors.Wrap(xlsx.ErrSheetNotFound, "ctx")))
	assert.Equal(t, CodeBuildError, CodeForError(xlsx.ErrInvalidCellRef))
	assert.Equal(t, CodeBuildError, CodeForError(xlsx.ErrInvalidErrorValue))
	assert.Equal(t, CodePatchError, CodeForError(pptx.ErrDiagramNotFound))
	assert.Equal(t, CodeParseError, CodeForError(errors.New("anything else")))
}

func TestWrap(t *testing.T) {
	r := Wrap(7, nil)
	require.True(t, r.OK)
	assert.Equal(t, 7, r.Value)

	r = Wrap(0, xlsx.ErrSheetNotFound)
	assert.False(t, r.OK)
	assert.Equal(t, CodeSheetNotFound, r.Code)
}
