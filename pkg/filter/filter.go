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

// Package filter contains PDF stream filter implementations.
package filter

// See 7.4 for a list of the defined filters.

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/log"
)

// PDF defines the following filters.
const (
	ASCII85   = "ASCII85Decode"
	ASCIIHex  = "ASCIIHexDecode"
	RunLength = "RunLengthDecode"
	LZW       = "LZWDecode"
	Flate     = "FlateDecode"
	CCITTFax  = "CCITTFaxDecode"
	DCT       = "DCTDecode"
	JBIG2     = "JBIG2Decode"
	JPX       = "JPXDecode"
)

var (
	// ErrUnsupportedFilter signals an unsupported filter type.
	ErrUnsupportedFilter = errors.New("aurochs: filter not supported")

	// ErrInvalidFilterChain signals an image codec in a non terminal chain position.
	ErrInvalidFilterChain = errors.New("aurochs: filter: image codec must terminate the filter chain")
)

// DecodeError reports a decode failure together with the offending filter name.
type DecodeError struct {
	Filter string
	Err    error
}

func (e *DecodeError) Error() string {
	return "aurochs: filter " + e.Filter + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeFailure(filterName string, err error) error {
	return &DecodeError{Filter: filterName, Err: err}
}

// Filter defines an interface for encoding/decoding buffers.
type Filter interface {
	Encode(r io.Reader) (io.Reader, error)
	Decode(r io.Reader) (io.Reader, error)
}

// NewFilter returns a filter for given filterName and an optional parameter dictionary.
func NewFilter(filterName string, parms map[string]int) (filter Filter, err error) {
	switch filterName {

	case ASCII85:
		filter = ascii85Decode{baseFilter{}}

	case ASCIIHex:
		filter = asciiHexDecode{baseFilter{}}

	case RunLength:
		filter = runLengthDecode{baseFilter{parms}}

	case LZW:
		filter = lzwDecode{baseFilter{parms}}

	case Flate:
		filter = flate{baseFilter{parms}}

	case CCITTFax:
		filter = ccittDecode{baseFilter{parms}}

	case DCT:
		filter = dctDecode{baseFilter{parms}}

	// JBIG2
	// JPX

	default:
		if log.InfoEnabled() {
			log.Info.Printf("Filter not supported: <%s>", filterName)
		}
		err = ErrUnsupportedFilter
	}

	return filter, err
}

// List returns the list of all supported PDF filters.
func List() []string {
	// Exclude CCITTFax and DCT since they only make sense in the context of image processing.
	return []string{ASCII85, ASCIIHex, RunLength, LZW, Flate}
}

// ImageCodec returns true for filters whose output is image samples rather than bytes.
func ImageCodec(filterName string) bool {
	return filterName == CCITTFax || filterName == DCT || filterName == JPX || filterName == JBIG2
}

type baseFilter struct {
	parms map[string]int
}

func (f baseFilter) intParm(key string, def int) int {
	if v, ok := f.parms[key]; ok {
		return v
	}
	return def
}

func (f baseFilter) boolParm(key string) bool {
	return f.parms[key] == 1
}

func passThru(rin io.Reader) (*bytes.Buffer, error) {
	var b bytes.Buffer
	_, err := io.Copy(&b, rin)
	return &b, err
}

// Spec describes one stage of a filter chain.
type Spec struct {
	Name  string
	Parms map[string]int
}

// DecodeChain applies the given filters left to right to raw.
// Image codecs must be the terminal stage, a chain with any filter after
// them is rejected with ErrInvalidFilterChain.
func DecodeChain(raw []byte, chain []Spec) ([]byte, error) {
	for i, fs := range chain {
		if ImageCodec(fs.Name) && i != len(chain)-1 {
			return nil, ErrInvalidFilterChain
		}

		fi, err := NewFilter(fs.Name, fs.Parms)
		if err != nil {
			return nil, decodeFailure(fs.Name, err)
		}

		r, err := fi.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, decodeFailure(fs.Name, err)
		}

		buf, err := passThru(r)
		if err != nil {
			return nil, decodeFailure(fs.Name, err)
		}
		raw = buf.Bytes()
	}
	return raw, nil
}
