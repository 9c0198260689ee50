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

import (
	"fmt"
	"sort"
	"strings"
)

// Dict represents a PDF dict object.
// Insertion order is irrelevant, duplicate keys are forbidden by the parser.
type Dict map[string]Object

// NewDict returns a new Dict object.
func NewDict() Dict {
	return map[string]Object{}
}

// Len returns the length of this Dict.
func (d Dict) Len() int {
	return len(d)
}

// Clone returns a clone of d.
func (d Dict) Clone() Object {
	d1 := NewDict()
	for k, v := range d {
		if v != nil {
			v = v.Clone()
		}
		d1[k] = v
	}
	return d1
}

// Insert adds a new entry to this Dict unless the key is already present.
func (d Dict) Insert(key string, value Object) (ok bool) {
	if _, found := d.Find(key); !found {
		d[key] = value
		return true
	}
	return false
}

// InsertInt adds a new int entry to this Dict.
func (d Dict) InsertInt(key string, value int) {
	d.Insert(key, Integer(value))
}

// InsertName adds a new name entry to this Dict.
func (d Dict) InsertName(key, value string) {
	d.Insert(key, Name(value))
}

// Update modifies an existing entry of this Dict.
func (d Dict) Update(key string, value Object) {
	if value != nil {
		d[key] = value
	}
}

// Find returns the Object for given key and PDFDict.
func (d Dict) Find(key string) (Object, bool) {
	v, found := d[key]
	return v, found
}

// Delete deletes the Object for given key.
func (d Dict) Delete(key string) (value Object) {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	delete(d, key)
	return value
}

// BooleanEntry expects and returns a BooleanEntry for given key.
func (d Dict) BooleanEntry(key string) *bool {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	bb, ok := value.(Boolean)
	if ok {
		b := bb.Value()
		return &b
	}
	return nil
}

// StringEntry expects and returns a StringLiteral entry for given key.
func (d Dict) StringEntry(key string) *string {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	pdfStr, ok := value.(StringLiteral)
	if ok {
		s := string(pdfStr)
		return &s
	}
	return nil
}

// NameEntry expects and returns a Name entry for given key.
func (d Dict) NameEntry(key string) *string {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	name, ok := value.(Name)
	if ok {
		s := name.Value()
		return &s
	}
	return nil
}

// IntEntry expects and returns a Integer entry for given key.
func (d Dict) IntEntry(key string) *int {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	pdfInt, ok := value.(Integer)
	if ok {
		i := int(pdfInt)
		return &i
	}
	return nil
}

// Int64Entry expects and returns a Integer entry representing an int64 value for given key.
func (d Dict) Int64Entry(key string) *int64 {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	pdfInt, ok := value.(Integer)
	if ok {
		i := int64(pdfInt)
		return &i
	}
	return nil
}

// FloatEntry expects and returns a numeric entry for given key as float64.
func (d Dict) FloatEntry(key string) *float64 {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	switch v := value.(type) {
	case Float:
		f := v.Value()
		return &f
	case Integer:
		f := float64(v.Value())
		return &f
	}
	return nil
}

// IndirectRefEntry returns an indirectRefEntry for given key for this dictionary.
func (d Dict) IndirectRefEntry(key string) *IndirectRef {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	pdfIndRef, ok := value.(IndirectRef)
	if ok {
		return &pdfIndRef
	}
	return nil
}

// DictEntry expects and returns a PDFDict entry for given key.
func (d Dict) DictEntry(key string) Dict {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	d1, ok := value.(Dict)
	if ok {
		return d1
	}
	return nil
}

// StreamDictEntry expects and returns a StreamDict entry for given key.
func (d Dict) StreamDictEntry(key string) *StreamDict {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	sd, ok := value.(StreamDict)
	if ok {
		return &sd
	}
	return nil
}

// ArrayEntry expects and returns an Array entry for given key.
func (d Dict) ArrayEntry(key string) Array {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	array, ok := value.(Array)
	if ok {
		return array
	}
	return nil
}

// StringLiteralEntry returns a StringLiteral object for given key.
func (d Dict) StringLiteralEntry(key string) *StringLiteral {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	s, ok := value.(StringLiteral)
	if ok {
		return &s
	}
	return nil
}

// HexLiteralEntry returns a HexLiteral object for given key.
func (d Dict) HexLiteralEntry(key string) *HexLiteral {
	value, found := d.Find(key)
	if !found {
		return nil
	}
	s, ok := value.(HexLiteral)
	if ok {
		return &s
	}
	return nil
}

// Type returns the value of the name entry for key "Type".
func (d Dict) Type() *string {
	return d.NameEntry("Type")
}

// Subtype returns the value of the name entry for key "Subtype".
func (d Dict) Subtype() *string {
	return d.NameEntry("Subtype")
}

// Size returns the value of the int entry for key "Size".
func (d Dict) Size() *int {
	return d.IntEntry("Size")
}

// IsObjStm returns true if given PDFDict is an object stream.
func (d Dict) IsObjStm() bool {
	return d.Type() != nil && *d.Type() == "ObjStm"
}

// W returns a *Array for key "W".
func (d Dict) W() Array {
	return d.ArrayEntry("W")
}

// Prev returns the previous offset.
func (d Dict) Prev() *int64 {
	return d.Int64Entry("Prev")
}

// Index returns a *Array for key "Index".
func (d Dict) Index() Array {
	return d.ArrayEntry("Index")
}

// N returns a *int for key "N".
func (d Dict) N() *int {
	return d.IntEntry("N")
}

// First returns a *int for key "First".
func (d Dict) First() *int {
	return d.IntEntry("First")
}

// Length returns a *int64 for key "Length".
// Stream length may be referring to an indirect object.
func (d Dict) Length() (*int64, *int) {
	val, found := d.Find("Length")
	if !found {
		return nil, nil
	}

	i, ok := val.(Integer)
	if ok {
		i64 := int64(i.Value())
		return &i64, nil
	}

	indirectRef, ok := val.(IndirectRef)
	if !ok {
		return nil, nil
	}

	intVal := indirectRef.ObjectNumber.Value()
	return nil, &intVal
}

func (d Dict) indentedString(level int) string {
	logstr := []string{"<<\n"}
	tabstr := strings.Repeat("\t", level)

	var keys []string
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := d[k]

		if subdict, ok := v.(Dict); ok {
			dictstr := subdict.indentedString(level + 1)
			logstr = append(logstr, fmt.Sprintf("%s<%s, %s>\n", tabstr, k, dictstr))
			continue
		}

		if a, ok := v.(Array); ok {
			arrstr := a.indentedString(level + 1)
			logstr = append(logstr, fmt.Sprintf("%s<%s, %s>\n", tabstr, k, arrstr))
			continue
		}

		logstr = append(logstr, fmt.Sprintf("%s<%s, %v>\n", tabstr, k, v))
	}

	logstr = append(logstr, fmt.Sprintf("%s%s", strings.Repeat("\t", level-1), ">>"))

	return strings.Join(logstr, "")
}

func (d Dict) String() string {
	return d.indentedString(1)
}

// PDFString returns a string representation as found in and written to a PDF file.
func (d Dict) PDFString() string {
	logstr := []string{"<<"}

	var keys []string
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := d[k]
		if v == nil {
			logstr = append(logstr, fmt.Sprintf("/%s null", k))
			continue
		}
		logstr = append(logstr, fmt.Sprintf("%s%s", Name(k).PDFString(), v.PDFString()))
	}

	logstr = append(logstr, ">>")
	return strings.Join(logstr, "")
}
