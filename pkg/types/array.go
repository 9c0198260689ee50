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
	"strings"
)

// Array represents a PDF array object.
type Array []Object

// NewStringLiteralArray returns an Array with StringLiteral entries.
func NewStringLiteralArray(sVars ...string) Array {
	a := Array{}
	for _, s := range sVars {
		a = append(a, StringLiteral(s))
	}
	return a
}

// NewNameArray returns an Array with Name entries.
func NewNameArray(sVars ...string) Array {
	a := Array{}
	for _, s := range sVars {
		a = append(a, Name(s))
	}
	return a
}

// NewNumberArray returns an Array with Float entries.
func NewNumberArray(fVars ...float64) Array {
	a := Array{}
	for _, f := range fVars {
		a = append(a, Float(f))
	}
	return a
}

// NewIntegerArray returns an Array with Integer entries.
func NewIntegerArray(fVars ...int) Array {
	a := Array{}
	for _, f := range fVars {
		a = append(a, Integer(f))
	}
	return a
}

// Clone returns a clone of a.
func (a Array) Clone() Object {
	a1 := Array(make([]Object, len(a)))
	for k, v := range a {
		if v != nil {
			v = v.Clone()
		}
		a1[k] = v
	}
	return a1
}

func (a Array) indentedString(level int) string {
	logstr := []string{"["}
	tabstr := strings.Repeat("\t", level)
	first := true

	for _, entry := range a {
		sepstr := " "
		if first {
			first = false
			sepstr = ""
		}

		if subdict, ok := entry.(Dict); ok {
			dictstr := subdict.indentedString(level + 1)
			logstr = append(logstr, fmt.Sprintf("\n%[1]s%[2]s\n%[1]s", tabstr, dictstr))
			first = true
			continue
		}

		if subarr, ok := entry.(Array); ok {
			arrstr := subarr.indentedString(level + 1)
			logstr = append(logstr, fmt.Sprintf("%s%s", sepstr, arrstr))
			continue
		}

		logstr = append(logstr, fmt.Sprintf("%s%v", sepstr, entry))
	}

	logstr = append(logstr, "]")
	return strings.Join(logstr, "")
}

func (a Array) String() string {
	return a.indentedString(1)
}

// PDFString returns a string representation as found in and written to a PDF file.
func (a Array) PDFString() string {
	logstr := []string{"["}
	first := true

	for _, entry := range a {
		sepstr := " "
		if first {
			first = false
			sepstr = ""
		}
		if entry == nil {
			logstr = append(logstr, fmt.Sprintf("%snull", sepstr))
			continue
		}
		logstr = append(logstr, fmt.Sprintf("%s%s", sepstr, entry.PDFString()))
	}

	logstr = append(logstr, "]")
	return strings.Join(logstr, "")
}

// FloatValue returns the float64 at index i, converting Integer entries.
func (a Array) FloatValue(i int) (float64, bool) {
	if i < 0 || i >= len(a) {
		return 0, false
	}
	switch v := a[i].(type) {
	case Float:
		return v.Value(), true
	case Integer:
		return float64(v.Value()), true
	}
	return 0, false
}
