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
	"fmt"

	"github.com/trkbt10/aurochs/pkg/types"
)

// ReadContext carries the raw file bytes and positions relevant during reading.
type ReadContext struct {
	FileSize        int64
	HeaderVersion   string
	EolCount        int
	ObjectStreams   types.IntSet
	XRefStreams     types.IntSet
	LinearizedObjs  types.IntSet
	UsedLinearScan  bool
	BinaryTotalSize int64
}

// Enc reflects the state of the standard security handler.
type Enc struct {
	O, U       []byte
	L, P, R, V int
	Emd        bool // encrypt meta data
	ID         []byte
}

// Context represents an environment for processing PDF files.
// A Context owns its caches: the object cache lives in the xref table
// entries, the object stream cache in ObjectStreamCache.
type Context struct {
	*Configuration
	*XRefTable
	Read *ReadContext

	// The raw document bytes, owned by the caller.
	bb []byte

	// Encryption state.
	E      *Enc
	EncKey []byte // File encryption key, derived once per document.
	AES4Strings bool
	AES4Streams bool

	// ObjectStreamCache caches decompressed object streams by object number.
	ObjectStreamCache map[int]*types.ObjectStreamDict
}

// NewContext initializes a new Context for given bytes and configuration.
func NewContext(bb []byte, conf *Configuration) *Context {
	if conf == nil {
		conf = NewDefaultConfiguration()
	}

	return &Context{
		Configuration:     conf,
		XRefTable:         NewXRefTable(),
		Read:              &ReadContext{FileSize: int64(len(bb)), ObjectStreams: types.IntSet{}, XRefStreams: types.IntSet{}, LinearizedObjs: types.IntSet{}},
		bb:                bb,
		ObjectStreamCache: map[int]*types.ObjectStreamDict{},
	}
}

// Bytes returns the raw document bytes.
func (ctx *Context) Bytes() []byte {
	return ctx.bb
}

func (ctx *Context) String() string {
	return fmt.Sprintf("Context: fileSize=%d objects=%d", ctx.Read.FileSize, len(ctx.Table))
}
