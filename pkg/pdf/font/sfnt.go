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

package font

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"
)

// table repair for embedded FontFile2/FontFile3 programs that get reused by
// external consumers. Missing cmap, OS/2, name and post tables are
// synthesized and the table directory is rebuilt.

var errSfntCorrupt = errors.New("aurochs: font: corrupt sfnt table directory")

type sfntTable struct {
	tag      string
	checksum uint32
	data     []byte
}

// RepairTables ensures the sfnt font program carries cmap, OS/2, name and
// post tables. The directory is rebuilt with alphabetical tag order and
// 4 byte padding, existing table checksums stay untouched.
func RepairTables(program []byte, toUnicode ToUnicodeMap) ([]byte, error) {
	if len(program) < 12 {
		return nil, errSfntCorrupt
	}

	version := binary.BigEndian.Uint32(program[0:4])
	numTables := int(binary.BigEndian.Uint16(program[4:6]))

	if len(program) < 12+numTables*16 {
		return nil, errSfntCorrupt
	}

	tables := map[string]*sfntTable{}

	for i := 0; i < numTables; i++ {
		rec := program[12+i*16 : 12+(i+1)*16]
		tag := string(rec[0:4])
		checksum := binary.BigEndian.Uint32(rec[4:8])
		offset := binary.BigEndian.Uint32(rec[8:12])
		length := binary.BigEndian.Uint32(rec[12:16])

		if int(offset)+int(length) > len(program) {
			return nil, errSfntCorrupt
		}

		tables[tag] = &sfntTable{
			tag:      tag,
			checksum: checksum,
			data:     program[offset : offset+length],
		}
	}

	if _, ok := tables["cmap"]; !ok {
		data := synthesizeCmap(toUnicode)
		tables["cmap"] = &sfntTable{tag: "cmap", checksum: tableChecksum(data), data: data}
	}
	if _, ok := tables["OS/2"]; !ok {
		data := synthesizeOS2()
		tables["OS/2"] = &sfntTable{tag: "OS/2", checksum: tableChecksum(data), data: data}
	}
	if _, ok := tables["name"]; !ok {
		data := synthesizeName()
		tables["name"] = &sfntTable{tag: "name", checksum: tableChecksum(data), data: data}
	}
	if _, ok := tables["post"]; !ok {
		data := synthesizePost()
		tables["post"] = &sfntTable{tag: "post", checksum: tableChecksum(data), data: data}
	}

	return assemble(version, tables), nil
}

func tableChecksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		var v uint32
		for j := 0; j < 4; j++ {
			v <<= 8
			if i+j < len(data) {
				v |= uint32(data[i+j])
			}
		}
		sum += v
	}
	return sum
}

func assemble(version uint32, tables map[string]*sfntTable) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	numTables := len(tags)

	// searchRange, entrySelector, rangeShift per the sfnt header definition.
	entrySelector := 0
	for 1<<(entrySelector+1) <= numTables {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 16
	rangeShift := numTables*16 - searchRange

	var out bytes.Buffer

	binary.Write(&out, binary.BigEndian, version)
	binary.Write(&out, binary.BigEndian, uint16(numTables))
	binary.Write(&out, binary.BigEndian, uint16(searchRange))
	binary.Write(&out, binary.BigEndian, uint16(entrySelector))
	binary.Write(&out, binary.BigEndian, uint16(rangeShift))

	offset := 12 + numTables*16

	for _, tag := range tags {
		t := tables[tag]
		out.WriteString(t.tag)
		binary.Write(&out, binary.BigEndian, t.checksum)
		binary.Write(&out, binary.BigEndian, uint32(offset))
		binary.Write(&out, binary.BigEndian, uint32(len(t.data)))
		offset += pad4(len(t.data))
	}

	for _, tag := range tags {
		t := tables[tag]
		out.Write(t.data)
		for i := len(t.data); i%4 != 0; i++ {
			out.WriteByte(0)
		}
	}

	return out.Bytes()
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

// synthesizeCmap builds a format 4 BMP subtable from the inverted
// ToUnicode map: unicode code point back to character code.
func synthesizeCmap(toUnicode ToUnicodeMap) []byte {
	type mapping struct {
		unicode uint16
		glyph   uint16
	}

	var mappings []mapping
	seen := map[uint16]bool{}

	for code, s := range toUnicode {
		runes := []rune(s)
		if len(runes) != 1 || runes[0] > 0xFFFF {
			continue
		}
		u := uint16(runes[0])
		if seen[u] {
			continue
		}
		seen[u] = true
		mappings = append(mappings, mapping{unicode: u, glyph: uint16(code)})
	}

	sort.Slice(mappings, func(i, j int) bool { return mappings[i].unicode < mappings[j].unicode })

	// One segment per mapping plus the required 0xFFFF terminator.
	segCount := len(mappings) + 1

	var sub bytes.Buffer
	binary.Write(&sub, binary.BigEndian, uint16(4)) // format
	length := 16 + segCount*8
	binary.Write(&sub, binary.BigEndian, uint16(length))
	binary.Write(&sub, binary.BigEndian, uint16(0)) // language
	binary.Write(&sub, binary.BigEndian, uint16(segCount*2))

	entrySelector := 0
	for 1<<(entrySelector+1) <= segCount {
		entrySelector++
	}
	searchRange := (1 << entrySelector) * 2
	binary.Write(&sub, binary.BigEndian, uint16(searchRange))
	binary.Write(&sub, binary.BigEndian, uint16(entrySelector))
	binary.Write(&sub, binary.BigEndian, uint16(segCount*2-searchRange))

	// endCode[]
	for _, m := range mappings {
		binary.Write(&sub, binary.BigEndian, m.unicode)
	}
	binary.Write(&sub, binary.BigEndian, uint16(0xFFFF))

	binary.Write(&sub, binary.BigEndian, uint16(0)) // reservedPad

	// startCode[]
	for _, m := range mappings {
		binary.Write(&sub, binary.BigEndian, m.unicode)
	}
	binary.Write(&sub, binary.BigEndian, uint16(0xFFFF))

	// idDelta[]
	for _, m := range mappings {
		binary.Write(&sub, binary.BigEndian, uint16(m.glyph-m.unicode))
	}
	binary.Write(&sub, binary.BigEndian, uint16(1))

	// idRangeOffset[]
	for range mappings {
		binary.Write(&sub, binary.BigEndian, uint16(0))
	}
	binary.Write(&sub, binary.BigEndian, uint16(0))

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint16(0)) // version
	binary.Write(&out, binary.BigEndian, uint16(1)) // numTables
	binary.Write(&out, binary.BigEndian, uint16(3)) // platform: windows
	binary.Write(&out, binary.BigEndian, uint16(1)) // encoding: unicode BMP
	binary.Write(&out, binary.BigEndian, uint32(12))
	out.Write(sub.Bytes())

	return out.Bytes()
}

func synthesizeOS2() []byte {
	// Version 1 table, zeroed metrics are acceptable for repair purposes.
	out := make([]byte, 86)
	binary.BigEndian.PutUint16(out[0:2], 1) // version
	binary.BigEndian.PutUint16(out[2:4], 500)
	copy(out[58:62], "    ") // achVendID
	return out
}

func synthesizeName() []byte {
	// Empty name table: format 0, no records.
	out := make([]byte, 6)
	binary.BigEndian.PutUint16(out[2:4], 0) // count
	binary.BigEndian.PutUint16(out[4:6], 6) // stringOffset
	return out
}

func synthesizePost() []byte {
	// Version 3.0 carries no glyph names.
	out := make([]byte, 32)
	binary.BigEndian.PutUint32(out[0:4], 0x00030000)
	return out
}
