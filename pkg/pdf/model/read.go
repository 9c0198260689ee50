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
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/filter"
	"github.com/trkbt10/aurochs/pkg/log"
	"github.com/trkbt10/aurochs/pkg/types"
)

var (
	// ErrEncrypted gets raised for encrypted documents under the reject policy.
	ErrEncrypted = errors.New("aurochs: read: document is encrypted")

	errCorruptHeader     = errors.New("aurochs: read: no PDF header found")
	errMissingEOF        = errors.New("aurochs: read: no %%EOF marker found")
	errMissingStartxref  = errors.New("aurochs: read: no startxref offset found")
	errCorruptXref       = errors.New("aurochs: read: corrupt xref section")
	errStreamLengthError = errors.New("aurochs: read: stream length mismatch")
	errMissingKeyword    = errors.New("aurochs: read: missing keyword")
)

// the number of bytes searched backwards for the final %%EOF.
const eofScanWindow = 1024

// ReadContextFromBytes loads the xref machinery for an in-memory document
// and returns a fully initialized Context.
func ReadContextFromBytes(bb []byte, conf *Configuration) (*Context, error) {
	ctx := NewContext(bb, conf)

	if err := headerVersion(ctx); err != nil {
		return nil, err
	}

	if err := loadXRefTable(ctx); err != nil {
		if log.ReadEnabled() {
			log.Read.Printf("xref load failed (%v), falling back to linear scan\n", err)
		}
		if err := scanForObjects(ctx); err != nil {
			return nil, err
		}
	}

	ctx.EnsureValidFreeList()

	if err := checkEncryption(ctx); err != nil {
		return nil, err
	}

	return ctx, nil
}

// headerVersion validates the %PDF-x.y header.
func headerVersion(ctx *Context) error {
	prefix := []byte("%PDF-")

	// The header need not start at offset 0, some producers prepend garbage.
	i := bytes.Index(ctx.bb[:min(len(ctx.bb), 1024)], prefix)
	if i < 0 {
		return errCorruptHeader
	}

	s := string(ctx.bb[i+len(prefix):])
	if len(s) < 3 {
		return errCorruptHeader
	}

	ctx.Read.HeaderVersion = s[:3]

	if log.ReadEnabled() {
		log.Read.Printf("headerVersion: %s\n", ctx.Read.HeaderVersion)
	}

	return nil
}

// offsetLastXRefSection locates startxref near the end of file.
func offsetLastXRefSection(ctx *Context) (int64, error) {
	bb := ctx.bb

	from := len(bb) - eofScanWindow
	if from < 0 {
		from = 0
	}

	i := bytes.LastIndex(bb[from:], []byte("%%EOF"))
	if i < 0 {
		return 0, errMissingEOF
	}

	j := bytes.LastIndex(bb[from:from+i], []byte("startxref"))
	if j < 0 {
		return 0, errMissingStartxref
	}

	s := strings.TrimSpace(string(bb[from+j+len("startxref") : from+i]))
	offset, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errMissingStartxref
	}

	return offset, nil
}

func loadXRefTable(ctx *Context) error {
	offset, err := offsetLastXRefSection(ctx)
	if err != nil {
		return err
	}

	// Follow the chain of Prev entries, newest first.
	// Merging is last-write-wins per object number, which maps onto
	// first-insert-wins here because we visit the newest section first.
	visited := map[int64]bool{}

	for offset != 0 {
		if visited[offset] {
			return errors.New("aurochs: read: circular xref chain")
		}
		visited[offset] = true

		prev, xrefStmOffset, err := parseXRefSection(ctx, offset)
		if err != nil {
			return err
		}

		// A hybrid file carries an XRefStm hint pointing to a cross
		// reference stream that has to be merged before Prev.
		if xrefStmOffset != nil && !visited[*xrefStmOffset] {
			visited[*xrefStmOffset] = true
			if _, _, err := parseXRefSection(ctx, *xrefStmOffset); err != nil {
				return err
			}
		}

		if prev == nil {
			break
		}
		offset = *prev
	}

	if ctx.XRefTable.Size == nil {
		return errCorruptXref
	}

	return nil
}

// parseXRefSection parses either a classic xref section or an xref stream at offset.
// It returns the optional Prev and XRefStm offsets.
func parseXRefSection(ctx *Context, offset int64) (*int64, *int64, error) {
	if offset < 0 || offset >= int64(len(ctx.bb)) {
		return nil, nil, errCorruptXref
	}

	buf := string(ctx.bb[offset:])
	buf = trimLeftSpace(buf)

	if strings.HasPrefix(buf, "xref") {
		return parseClassicXRefSection(ctx, buf[len("xref"):])
	}

	// Must be a cross reference stream.
	return parseXRefStreamSection(ctx, offset)
}

func parseClassicXRefSection(ctx *Context, buf string) (*int64, *int64, error) {
	if log.ReadEnabled() {
		log.Read.Println("parseClassicXRefSection begin")
	}

	buf = trimLeftSpace(buf)

	for !strings.HasPrefix(buf, "trailer") {

		// Subsection header: start count
		i, _ := positionToNextWhitespace(buf)
		if i <= 0 {
			return nil, nil, errCorruptXref
		}
		start, err := strconv.Atoi(buf[:i])
		if err != nil {
			return nil, nil, errCorruptXref
		}
		buf = trimLeftSpace(buf[i:])

		i, _ = positionToNextWhitespace(buf)
		if i <= 0 {
			return nil, nil, errCorruptXref
		}
		count, err := strconv.Atoi(buf[:i])
		if err != nil {
			return nil, nil, errCorruptXref
		}
		buf = trimLeftSpace(buf[i:])

		for j := 0; j < count; j++ {
			if len(buf) < 18 {
				return nil, nil, errCorruptXref
			}

			entry := buf[:18]
			offs, err := strconv.ParseInt(strings.TrimSpace(entry[0:10]), 10, 64)
			if err != nil {
				return nil, nil, errCorruptXref
			}
			gen, err := strconv.Atoi(strings.TrimSpace(entry[11:16]))
			if err != nil {
				return nil, nil, errCorruptXref
			}
			flag := entry[17]

			objNr := start + j

			switch flag {
			case 'f':
				g := gen
				ctx.XRefTable.Insert(objNr, XRefTableEntry{Free: true, Generation: &g, Offset: &offs})
			case 'n':
				o := offs
				g := gen
				ctx.XRefTable.Insert(objNr, XRefTableEntry{Offset: &o, Generation: &g})
			default:
				return nil, nil, errCorruptXref
			}

			buf = trimLeftSpace(buf[18:])
		}
	}

	buf = buf[len("trailer"):]

	trailerDict, err := ParseDict(&buf)
	if err != nil {
		return nil, nil, err
	}

	applyTrailer(ctx, trailerDict)

	var prev *int64
	if p := trailerDict.Prev(); p != nil {
		prev = p
	}

	var xrefStm *int64
	if x := trailerDict.Int64Entry("XRefStm"); x != nil {
		xrefStm = x
	}

	if log.ReadEnabled() {
		log.Read.Println("parseClassicXRefSection end")
	}

	return prev, xrefStm, nil
}

func applyTrailer(ctx *Context, d types.Dict) {
	if ctx.XRefTable.Trailer == nil {
		ctx.XRefTable.Trailer = d
	}
	if ctx.XRefTable.Size == nil {
		ctx.XRefTable.Size = d.Size()
	}
	if ctx.XRefTable.Root == nil {
		ctx.XRefTable.Root = d.IndirectRefEntry("Root")
	}
	if ctx.XRefTable.Info == nil {
		ctx.XRefTable.Info = d.IndirectRefEntry("Info")
	}
	if ctx.XRefTable.ID == nil {
		ctx.XRefTable.ID = d.ArrayEntry("ID")
	}
	if ctx.XRefTable.Encrypt == nil {
		ctx.XRefTable.Encrypt = d.IndirectRefEntry("Encrypt")
	}
}

func parseXRefStreamSection(ctx *Context, offset int64) (*int64, *int64, error) {
	obj, objNr, err := parseIndirectObjectAt(ctx, offset)
	if err != nil {
		return nil, nil, err
	}

	sd, ok := obj.(types.StreamDict)
	if !ok {
		return nil, nil, errCorruptXref
	}

	if t := sd.Type(); t == nil || *t != "XRef" {
		return nil, nil, errCorruptXref
	}

	ctx.Read.XRefStreams[objNr] = true

	if err := loadEncodedStreamContent(ctx, &sd); err != nil {
		return nil, nil, err
	}
	if err := saveDecodedStreamContent(&sd); err != nil {
		return nil, nil, err
	}

	xsd, err := ParseXRefStreamDict(&sd)
	if err != nil {
		return nil, nil, err
	}

	if err := extractXRefTableEntriesFromXRefStream(ctx, xsd); err != nil {
		return nil, nil, err
	}

	applyTrailer(ctx, sd.Dict)

	return xsd.PreviousOffset, nil, nil
}

func extractXRefTableEntriesFromXRefStream(ctx *Context, xsd *types.XRefStreamDict) error {
	w := xsd.W
	entryLen := w[0] + w[1] + w[2]
	if entryLen == 0 {
		return errCorruptXref
	}

	buf := xsd.Content
	if len(buf) < len(xsd.Objects)*entryLen {
		return errors.Wrapf(errCorruptXref, "xref stream content too short: %d < %d", len(buf), len(xsd.Objects)*entryLen)
	}

	decode := func(b []byte) int64 {
		var v int64
		for _, x := range b {
			v = v<<8 | int64(x)
		}
		return v
	}

	for i, objNr := range xsd.Objects {
		off := i * entryLen

		// A zero width Type field defaults to type 1.
		typ := int64(1)
		if w[0] > 0 {
			typ = decode(buf[off : off+w[0]])
		}
		c2 := decode(buf[off+w[0] : off+w[0]+w[1]])
		c3 := decode(buf[off+w[0]+w[1] : off+entryLen])

		switch typ {

		case 0:
			// free object
			g := int(c3)
			o := c2
			ctx.XRefTable.Insert(objNr, XRefTableEntry{Free: true, Generation: &g, Offset: &o})

		case 1:
			// in use object at absolute offset
			o := c2
			g := int(c3)
			ctx.XRefTable.Insert(objNr, XRefTableEntry{Offset: &o, Generation: &g})

		case 2:
			// compressed object inside an object stream
			osNr := int(c2)
			ind := int(c3)
			g := 0
			ctx.XRefTable.Insert(objNr, XRefTableEntry{Compressed: true, ObjectStream: &osNr, ObjectStreamInd: &ind, Generation: &g})

		default:
			// Any other value is reserved, the entry is ignored.
			if log.ReadEnabled() {
				log.Read.Printf("xref stream: ignoring entry type %d for obj#%d\n", typ, objNr)
			}
		}
	}

	return nil
}

// parseIndirectObjectAt parses the indirect object at the given absolute offset.
func parseIndirectObjectAt(ctx *Context, offset int64) (types.Object, int, error) {
	if offset < 0 || offset >= int64(len(ctx.bb)) {
		return nil, 0, errors.Errorf("aurochs: read: offset %d out of bounds", offset)
	}

	buf := string(ctx.bb[offset:])

	objNr, _, err := ParseObjectAttributes(&buf)
	if err != nil {
		return nil, 0, err
	}

	l := trimLeftSpace(buf)

	// A dict followed by "stream" becomes a stream dict.
	if strings.HasPrefix(l, "<<") {
		d, err := ParseDict(&l)
		if err != nil {
			return nil, 0, err
		}

		l2 := trimLeftSpace(l)
		if strings.HasPrefix(l2, "stream") {
			sd, err := streamDictForDict(ctx, d, offset, l2)
			if err != nil {
				return nil, 0, err
			}
			return *sd, *objNr, nil
		}

		return d, *objNr, nil
	}

	o, err := ParseObject(&l)
	if err != nil {
		return nil, 0, err
	}

	return o, *objNr, nil
}

// streamDictForDict computes the stream body offset and length for d.
// l2 starts with the keyword "stream".
func streamDictForDict(ctx *Context, d types.Dict, objOffset int64, l2 string) (*types.StreamDict, error) {
	// The stream body starts after "stream" followed by a single LF or CRLF.
	rel := int64(len(ctx.bb)) - objOffset - int64(len(l2))
	streamOffset := objOffset + rel + int64(len("stream"))

	bb := ctx.bb
	if streamOffset < int64(len(bb)) && bb[streamOffset] == '\r' {
		streamOffset++
	}
	if streamOffset < int64(len(bb)) && bb[streamOffset] == '\n' {
		streamOffset++
	}

	streamLength, streamLengthObjNr := d.Length()

	fpl, err := filterPipeline(d)
	if err != nil {
		return nil, err
	}

	sd := types.NewStreamDict(d, streamOffset, streamLength, streamLengthObjNr, fpl)
	return &sd, nil
}

// filterPipeline extracts the filter pipeline of this stream dict.
func filterPipeline(d types.Dict) ([]types.PDFFilter, error) {
	o, found := d.Find("Filter")
	if !found {
		return nil, nil
	}

	parms, _ := d.Find("DecodeParms")

	var fpl []types.PDFFilter

	switch obj := o.(type) {

	case types.Name:
		var dp types.Dict
		if pd, ok := parms.(types.Dict); ok {
			dp = pd
		}
		fpl = append(fpl, types.PDFFilter{Name: obj.Value(), DecodeParms: dp})

	case types.Array:
		var parmsArr types.Array
		if pa, ok := parms.(types.Array); ok {
			parmsArr = pa
		}
		for i, f := range obj {
			name, ok := f.(types.Name)
			if !ok {
				return nil, errors.New("aurochs: read: corrupt filter array")
			}
			var dp types.Dict
			if parmsArr != nil && i < len(parmsArr) {
				if pd, ok := parmsArr[i].(types.Dict); ok {
					dp = pd
				}
			}
			fpl = append(fpl, types.PDFFilter{Name: name.Value(), DecodeParms: dp})
		}

	default:
		return nil, errors.New("aurochs: read: corrupt filter entry")
	}

	return fpl, nil
}

// loadEncodedStreamContent loads the raw stream bytes into sd.Raw.
func loadEncodedStreamContent(ctx *Context, sd *types.StreamDict) error {
	if sd.Raw != nil {
		return nil
	}

	bb := ctx.bb

	// Resolve an indirect stream length first.
	if sd.StreamLength == nil && sd.StreamLengthObjNr != nil {
		o, err := ctx.GetObject(*sd.StreamLengthObjNr)
		if err != nil {
			return err
		}
		i, ok := o.(types.Integer)
		if !ok {
			return errStreamLengthError
		}
		l := int64(i.Value())
		sd.StreamLength = &l
	}

	if sd.StreamLength != nil {
		from := sd.StreamOffset
		to := from + *sd.StreamLength
		if from >= 0 && to <= int64(len(bb)) {
			raw := bb[from:to]
			// The declared length is trusted when endstream follows.
			rest := string(bb[to:min(len(bb), int(to)+32)])
			if strings.HasPrefix(trimLeftSpace(rest), "endstream") {
				sd.Raw = append([]byte(nil), raw...)
				return nil
			}
		}
		if log.ReadEnabled() {
			log.Read.Println("loadEncodedStreamContent: unreliable stream length, scanning for endstream")
		}
	}

	// Missing or unreliable length: scan forward for endstream.
	i := bytes.Index(bb[sd.StreamOffset:], []byte("endstream"))
	if i < 0 {
		return errStreamLengthError
	}

	raw := bb[sd.StreamOffset : sd.StreamOffset+int64(i)]

	// Drop the eol preceding endstream.
	raw = bytes.TrimRight(raw, "\r\n")

	l := int64(len(raw))
	sd.StreamLength = &l
	sd.Raw = append([]byte(nil), raw...)

	return nil
}

// saveDecodedStreamContent decodes sd.Raw into sd.Content.
func saveDecodedStreamContent(sd *types.StreamDict) error {
	if sd.Content != nil {
		return nil
	}

	chain := make([]filter.Spec, 0, len(sd.FilterPipeline))
	for _, f := range sd.FilterPipeline {
		chain = append(chain, filter.Spec{Name: f.Name, Parms: parmsForFilter(f.DecodeParms)})
	}

	content, err := filter.DecodeChain(sd.Raw, chain)
	if err != nil {
		return err
	}

	sd.Content = content
	return nil
}

// parmsForFilter converts a DecodeParms dict into an int parameter map.
func parmsForFilter(d types.Dict) map[string]int {
	m := map[string]int{}

	if d == nil {
		return m
	}

	for k, v := range d {
		i, ok := v.(types.Integer)
		if ok {
			m[k] = i.Value()
			continue
		}
		// Boolean parms are expected to be updated to 1 or 0.
		b, ok := v.(types.Boolean)
		if !ok {
			continue
		}
		if b.Value() {
			m[k] = 1
		} else {
			m[k] = 0
		}
	}

	return m
}

// scanForObjects reconstructs the xref table from object headers.
// This is the repair fallback for corrupt or missing xref sections.
func scanForObjects(ctx *Context) error {
	ctx.Read.UsedLinearScan = true

	bb := ctx.bb
	maxObjNr := 0

	isSpace := func(c byte) bool {
		return c == ' ' || c == '\r' || c == '\n' || c == '\t'
	}
	isDigit := func(c byte) bool {
		return c >= '0' && c <= '9'
	}

	for i := 0; i < len(bb); {
		j := bytes.Index(bb[i:], []byte(" obj"))
		if j < 0 {
			break
		}
		markerPos := i + j

		// Walk backwards over "<objNr> <gen>" preceding " obj".
		k := markerPos
		for _, accept := range []func(byte) bool{isDigit, isSpace, isDigit} {
			for k > 0 && accept(bb[k-1]) {
				k--
			}
		}

		header := strings.Fields(string(bb[k:markerPos]))
		if len(header) == 2 {
			objNr, err1 := strconv.Atoi(header[0])
			gen, err2 := strconv.Atoi(header[1])
			if err1 == nil && err2 == nil {
				off := int64(k)
				g := gen
				// Later objects override earlier ones.
				ctx.XRefTable.Table[objNr] = &XRefTableEntry{Offset: &off, Generation: &g}
				if objNr > maxObjNr {
					maxObjNr = objNr
				}
			}
		}

		i = markerPos + 4
	}

	if len(ctx.XRefTable.Table) == 0 {
		return errCorruptXref
	}

	size := maxObjNr + 1
	ctx.XRefTable.Size = &size

	// Recover the trailer for Root.
	i := bytes.LastIndex(bb, []byte("trailer"))
	if i >= 0 {
		buf := string(bb[i+len("trailer"):])
		buf = trimLeftSpace(buf)
		if d, err := ParseDict(&buf); err == nil {
			applyTrailer(ctx, d)
		}
	}

	if ctx.XRefTable.Trailer == nil {
		return errCorruptXref
	}

	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
