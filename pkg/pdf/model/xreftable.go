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
	"sort"

	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/types"
)

// XRefTableEntry represents an entry in the PDF cross reference table.
// An entry is either free, in use at an absolute offset, or located
// inside an object stream.
type XRefTableEntry struct {
	Free            bool
	Offset          *int64
	Generation      *int
	Compressed      bool
	ObjectStream    *int
	ObjectStreamInd *int
	Object          types.Object
}

// NewXRefTableEntryGen0 returns a cross reference table entry for an object with generation 0.
func NewXRefTableEntryGen0(obj types.Object) *XRefTableEntry {
	zero := 0
	return &XRefTableEntry{Generation: &zero, Object: obj}
}

// NewFreeHeadXRefTableEntry returns the xref table entry for object 0
// which is per definition the head of the free list (list of free objects).
func NewFreeHeadXRefTableEntry() *XRefTableEntry {
	freeHeadGeneration := types.FreeHeadGeneration
	zero := int64(0)

	return &XRefTableEntry{
		Free:       true,
		Generation: &freeHeadGeneration,
		Offset:     &zero,
	}
}

// XRefTable represents a PDF cross reference table.
type XRefTable struct {
	Table   map[int]*XRefTableEntry
	Size    *int
	Trailer types.Dict

	Root *types.IndirectRef // Pointer to catalog (reference to root object).
	Info *types.IndirectRef // Pointer to document info dictionary (relevant for read and export only).
	ID   types.Array        // from trailer

	Encrypt *types.IndirectRef // Encrypt dict.
}

// NewXRefTable creates a new XRefTable.
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Table: map[int]*XRefTableEntry{},
	}
}

// Exists returns true if xRefTable contains an entry for objNumber.
func (xRefTable *XRefTable) Exists(objNr int) bool {
	_, found := xRefTable.Table[objNr]
	return found
}

// Find returns the XRefTable entry for given object number.
func (xRefTable *XRefTable) Find(objNr int) (*XRefTableEntry, bool) {
	e, found := xRefTable.Table[objNr]
	if !found {
		return nil, false
	}
	return e, true
}

// FindObject returns the object of the XRefTableEntry for a specific object number.
func (xRefTable *XRefTable) FindObject(objNr int) (types.Object, error) {
	entry, ok := xRefTable.Find(objNr)
	if !ok {
		return nil, errors.Errorf("aurochs: FindObject: obj#%d not registered in xRefTable", objNr)
	}
	return entry.Object, nil
}

// Insert adds given xRefTableEntry at given object number into the cross reference table.
// The first write for an object number wins, later (older) writes are ignored.
func (xRefTable *XRefTable) Insert(objNr int, entry XRefTableEntry) bool {
	if xRefTable.Exists(objNr) {
		return false
	}
	xRefTable.Table[objNr] = &entry
	return true
}

// MissingObjects returns the ids of missing objects.
func (xRefTable *XRefTable) MissingObjects() (int, *string) {
	var missing []string

	size := 0
	if xRefTable.Size != nil {
		size = *xRefTable.Size
	}

	for i := 0; i < size; i++ {
		if !xRefTable.Exists(i) {
			missing = append(missing, fmt.Sprintf("%d", i))
		}
	}

	var s *string
	if len(missing) > 0 {
		joined := ""
		for i, m := range missing {
			if i > 0 {
				joined += ","
			}
			joined += m
		}
		s = &joined
	}

	return len(missing), s
}

// SortedKeys returns the object numbers in ascending order.
func (xRefTable *XRefTable) SortedKeys() []int {
	keys := make([]int, 0, len(xRefTable.Table))
	for k := range xRefTable.Table {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// EnsureValidFreeList ensures the xref table has object 0 as free list head.
func (xRefTable *XRefTable) EnsureValidFreeList() {
	if !xRefTable.Exists(0) {
		xRefTable.Table[0] = NewFreeHeadXRefTableEntry()
	}
}
