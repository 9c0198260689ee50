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

import "fmt"

// PDFFilter represents a PDF stream filter object.
type PDFFilter struct {
	Name        string
	DecodeParms Dict
}

// StreamDict represents a PDF stream dict object.
// Raw always carries a /Length-consistent body.
type StreamDict struct {
	Dict
	StreamOffset      int64
	StreamLength      *int64
	StreamLengthObjNr *int
	FilterPipeline    []PDFFilter
	Raw               []byte // Encoded
	Content           []byte // Decoded
	IsPageContent     bool
	CSComponents      int
}

// NewStreamDict creates a new StreamDict for given Dict, stream offset and length.
func NewStreamDict(d Dict, streamOffset int64, streamLength *int64, streamLengthObjNr *int, filterPipeline []PDFFilter) StreamDict {
	return StreamDict{
		Dict:              d,
		StreamOffset:      streamOffset,
		StreamLength:      streamLength,
		StreamLengthObjNr: streamLengthObjNr,
		FilterPipeline:    filterPipeline,
	}
}

// Clone returns a clone of sd.
func (sd StreamDict) Clone() Object {
	sd1 := sd
	sd1.Dict = sd.Dict.Clone().(Dict)
	pl := make([]PDFFilter, len(sd.FilterPipeline))
	for k, v := range sd.FilterPipeline {
		f := PDFFilter{Name: v.Name}
		if v.DecodeParms != nil {
			f.DecodeParms = v.DecodeParms.Clone().(Dict)
		}
		pl[k] = f
	}
	sd1.FilterPipeline = pl
	if sd.Raw != nil {
		sd1.Raw = append([]byte(nil), sd.Raw...)
	}
	if sd.Content != nil {
		sd1.Content = append([]byte(nil), sd.Content...)
	}
	return sd1
}

// HasSoleFilterNamed returns true if sd has a filter pipeline with 1 filter named filterName.
func (sd StreamDict) HasSoleFilterNamed(filterName string) bool {
	fpl := sd.FilterPipeline
	if len(fpl) != 1 {
		return false
	}
	return fpl[0].Name == filterName
}

// Image returns true if sd is an image XObject.
func (sd StreamDict) Image() bool {
	s := sd.Type()
	if s == nil || *s != "XObject" {
		return false
	}
	s = sd.Subtype()
	if s == nil || *s != "Image" {
		return false
	}
	return true
}

// Form returns true if sd is a form XObject.
func (sd StreamDict) Form() bool {
	s := sd.Subtype()
	return s != nil && *s == "Form"
}

func (sd StreamDict) String() string {
	return fmt.Sprintf("StreamDict: %s rawLen=%d contentLen=%d", sd.Dict, len(sd.Raw), len(sd.Content))
}

// PDFString returns a string representation as found in and written to a PDF file.
func (sd StreamDict) PDFString() string {
	return sd.Dict.PDFString()
}

// XRefStreamDict represents a cross reference stream dictionary.
type XRefStreamDict struct {
	StreamDict
	Size           int
	Objects        []int
	W              [3]int
	PreviousOffset *int64
}

// ObjectStreamDict represents an object stream dictionary.
type ObjectStreamDict struct {
	StreamDict
	Prolog         []byte
	ObjCount       int
	FirstObjOffset int
	ObjArray       Array
}

// IndexedObject returns the i-th object of this object stream.
func (osd *ObjectStreamDict) IndexedObject(index int) (Object, error) {
	if osd.ObjArray == nil {
		return nil, fmt.Errorf("aurochs: indexedObject(%d): object not available", index)
	}
	if index < 0 || index >= len(osd.ObjArray) {
		return nil, fmt.Errorf("aurochs: indexedObject(%d): out of bounds", index)
	}
	return osd.ObjArray[index], nil
}
