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
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/ccitt"

	"github.com/trkbt10/aurochs/pkg/log"
)

type ccittDecode struct {
	baseFilter
}

// Encode implements encoding for a CCITTFaxDecode filter.
func (f ccittDecode) Encode(r io.Reader) (io.Reader, error) {
	return nil, errors.New("aurochs: CCITTFaxDecode: encoding not supported")
}

// Decode implements decoding for a CCITTFaxDecode filter.
// Output is packed 1 bpp rows.
func (f ccittDecode) Decode(r io.Reader) (io.Reader, error) {
	if log.TraceEnabled() {
		log.Trace.Println("DecodeCCITT begin")
	}

	// <0 : Pure two-dimensional encoding (Group 4)
	// =0 : Pure one-dimensional encoding (Group 3, 1-D)
	// >0 : Mixed one- and two-dimensional encoding (Group 3, 2-D)
	k := f.intParm("K", 0)
	if k > 0 {
		return nil, errors.New("aurochs: CCITTFaxDecode: K > 0 currently unsupported")
	}

	if f.boolParm("EndOfLine") {
		return nil, errors.New("aurochs: CCITTFaxDecode: EndOfLine=true not supported")
	}

	columns := f.intParm("Columns", 1728)
	rows := f.intParm("Rows", 0)
	if rows <= 0 {
		return nil, errors.New("aurochs: CCITTFaxDecode: missing \"Rows\"")
	}

	sf := ccitt.Group3
	if k < 0 {
		sf = ccitt.Group4
	}

	opts := &ccitt.Options{
		Invert: f.boolParm("BlackIs1"),
		Align:  f.boolParm("EncodedByteAlign"),
	}

	rc := ccitt.NewReader(r, ccitt.MSB, sf, columns, rows, opts)

	var b bytes.Buffer
	written, err := io.Copy(&b, rc)
	if err != nil {
		return nil, err
	}
	if log.TraceEnabled() {
		log.Trace.Printf("DecodeCCITT: decoded %d bytes.\n", written)
	}

	return &b, nil
}
