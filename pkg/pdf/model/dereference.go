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
	"strings"

	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/log"
	"github.com/trkbt10/aurochs/pkg/types"
)

// GetObject returns the object for objNr, loading and caching it on first access.
// The cache guarantees referential identity for repeated calls.
func (ctx *Context) GetObject(objNr int) (types.Object, error) {
	entry, found := ctx.XRefTable.Find(objNr)
	if !found {
		return nil, errors.Errorf("aurochs: getObject: obj#%d not registered in xRefTable", objNr)
	}

	if entry.Free {
		return nil, nil
	}

	if entry.Object != nil {
		return entry.Object, nil
	}

	var (
		o   types.Object
		err error
	)

	if entry.Compressed {
		o, err = ctx.objectFromObjectStream(objNr, entry)
	} else {
		o, err = ctx.objectAtOffset(objNr, entry)
	}
	if err != nil {
		return nil, err
	}

	// Cache insertion occurs before recursion into children,
	// cycles via refs resolve against the cached instance.
	entry.Object = o

	// Objects inside object streams are covered by the object stream's
	// own encryption, their strings are not encrypted again.
	if ctx.EncKey != nil && o != nil && !entry.Compressed {
		gen := 0
		if entry.Generation != nil {
			gen = *entry.Generation
		}
		o, err = ctx.decryptObject(o, objNr, gen)
		if err != nil {
			return nil, err
		}
		entry.Object = o
	}

	return entry.Object, nil
}

func (ctx *Context) objectAtOffset(objNr int, entry *XRefTableEntry) (types.Object, error) {
	if entry.Offset == nil {
		return nil, errors.Errorf("aurochs: getObject: obj#%d missing offset", objNr)
	}

	o, parsedObjNr, err := parseIndirectObjectAt(ctx, *entry.Offset)
	if err != nil {
		return nil, err
	}

	if parsedObjNr != objNr {
		return nil, errors.Errorf("aurochs: getObject: expected obj#%d at offset %d, got obj#%d", objNr, *entry.Offset, parsedObjNr)
	}

	// Stream raw content is loaded eagerly so the payload survives caller-owned buffers.
	if sd, ok := o.(types.StreamDict); ok {
		if err := loadEncodedStreamContent(ctx, &sd); err != nil {
			return nil, err
		}
		o = sd
	}

	return o, nil
}

// objectFromObjectStream decompresses the object stream and parses the
// compressed object at its recorded index.
func (ctx *Context) objectFromObjectStream(objNr int, entry *XRefTableEntry) (types.Object, error) {
	if entry.ObjectStream == nil || entry.ObjectStreamInd == nil {
		return nil, errors.Errorf("aurochs: getObject: obj#%d corrupt compressed entry", objNr)
	}

	osd, err := ctx.objectStream(*entry.ObjectStream)
	if err != nil {
		return nil, err
	}

	ind := *entry.ObjectStreamInd
	if ind < 0 || ind >= osd.ObjCount {
		return nil, errors.Errorf("aurochs: getObject: obj#%d index %d out of object stream bounds", objNr, ind)
	}

	o, err := parseObjectStreamObject(osd, ind)
	if err != nil {
		return nil, err
	}

	return o, nil
}

// objectStream returns the decompressed object stream for objNr, cached per document.
func (ctx *Context) objectStream(objNr int) (*types.ObjectStreamDict, error) {
	if osd, ok := ctx.ObjectStreamCache[objNr]; ok {
		return osd, nil
	}

	o, err := ctx.GetObject(objNr)
	if err != nil {
		return nil, err
	}

	sd, ok := o.(types.StreamDict)
	if !ok {
		return nil, errors.Errorf("aurochs: objectStream: obj#%d is not a stream", objNr)
	}

	if !sd.IsObjStm() {
		return nil, errors.Errorf("aurochs: objectStream: obj#%d is not an object stream", objNr)
	}

	if err := loadEncodedStreamContent(ctx, &sd); err != nil {
		return nil, err
	}
	if err := saveDecodedStreamContent(&sd); err != nil {
		return nil, err
	}

	osd, err := ObjectStreamDict(&sd)
	if err != nil {
		return nil, err
	}

	ctx.Read.ObjectStreams[objNr] = true
	ctx.ObjectStreamCache[objNr] = osd

	return osd, nil
}

// parseObjectStreamObject parses the object at index ind of the object stream.
// The prolog carries ObjCount pairs of (objNr, offsetInFirst).
func parseObjectStreamObject(osd *types.ObjectStreamDict, ind int) (types.Object, error) {
	prolog := string(osd.Content[:osd.FirstObjOffset])
	fields := strings.Fields(prolog)
	if len(fields) < 2*(ind+1) {
		return nil, errors.New("aurochs: objectStream: corrupt prolog")
	}

	offset, err := atoiStrict(fields[2*ind+1])
	if err != nil {
		return nil, errors.New("aurochs: objectStream: corrupt prolog offset")
	}

	start := osd.FirstObjOffset + offset
	if start < 0 || start > len(osd.Content) {
		return nil, errors.New("aurochs: objectStream: offset out of bounds")
	}

	buf := string(osd.Content[start:])
	o, err := ParseObject(&buf)
	if err != nil {
		return nil, err
	}

	if log.ParseEnabled() {
		log.Parse.Printf("parseObjectStreamObject: ind=%d obj=%v\n", ind, o)
	}

	return o, nil
}

func atoiStrict(s string) (int, error) {
	n := 0
	if len(s) == 0 {
		return 0, errors.New("empty number")
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, errors.Errorf("invalid digit %q", c)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// Dereference resolves an indirect reference and returns the corresponding object.
// Everything else is returned unchanged.
func (ctx *Context) Dereference(o types.Object) (types.Object, error) {
	ir, ok := o.(types.IndirectRef)
	if !ok {
		// Nothing do dereference.
		return o, nil
	}

	return ctx.GetObject(ir.ObjectNumber.Value())
}

// DereferenceDict resolves and validates a dictionary object.
func (ctx *Context) DereferenceDict(o types.Object) (types.Dict, error) {
	o, err := ctx.Dereference(o)
	if err != nil || o == nil {
		return nil, err
	}

	d, ok := o.(types.Dict)
	if !ok {
		return nil, errors.Errorf("aurochs: dereferenceDict: wrong type <%v>", o)
	}

	return d, nil
}

// DereferenceArray resolves and validates an array object.
func (ctx *Context) DereferenceArray(o types.Object) (types.Array, error) {
	o, err := ctx.Dereference(o)
	if err != nil || o == nil {
		return nil, err
	}

	a, ok := o.(types.Array)
	if !ok {
		return nil, errors.Errorf("aurochs: dereferenceArray: wrong type <%v>", o)
	}

	return a, nil
}

// DereferenceInteger resolves and validates an integer object.
func (ctx *Context) DereferenceInteger(o types.Object) (*types.Integer, error) {
	o, err := ctx.Dereference(o)
	if err != nil || o == nil {
		return nil, err
	}

	i, ok := o.(types.Integer)
	if !ok {
		return nil, errors.Errorf("aurochs: dereferenceInteger: wrong type <%v>", o)
	}

	return &i, nil
}

// DereferenceName resolves and validates a name object.
func (ctx *Context) DereferenceName(o types.Object) (types.Name, error) {
	o, err := ctx.Dereference(o)
	if err != nil || o == nil {
		return "", err
	}

	n, ok := o.(types.Name)
	if !ok {
		return "", errors.Errorf("aurochs: dereferenceName: wrong type <%v>", o)
	}

	return n, nil
}

// DereferenceNumber resolves a numeric object into float64.
func (ctx *Context) DereferenceNumber(o types.Object) (float64, error) {
	o, err := ctx.Dereference(o)
	if err != nil || o == nil {
		return 0, err
	}

	switch v := o.(type) {
	case types.Integer:
		return float64(v.Value()), nil
	case types.Float:
		return v.Value(), nil
	}

	return 0, errors.Errorf("aurochs: dereferenceNumber: wrong type <%v>", o)
}

// DereferenceStreamDict resolves and validates a stream dict, loading its raw content.
func (ctx *Context) DereferenceStreamDict(o types.Object) (*types.StreamDict, error) {
	o, err := ctx.Dereference(o)
	if err != nil || o == nil {
		return nil, err
	}

	sd, ok := o.(types.StreamDict)
	if !ok {
		return nil, errors.Errorf("aurochs: dereferenceStreamDict: wrong type <%v>", o)
	}

	if err := loadEncodedStreamContent(ctx, &sd); err != nil {
		return nil, err
	}

	return &sd, nil
}

// DereferenceStreamContent returns the decoded content for a stream object.
func (ctx *Context) DereferenceStreamContent(o types.Object) ([]byte, error) {
	sd, err := ctx.DereferenceStreamDict(o)
	if err != nil || sd == nil {
		return nil, err
	}

	if err := saveDecodedStreamContent(sd); err != nil {
		return nil, err
	}

	return sd.Content, nil
}
