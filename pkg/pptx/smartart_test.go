/*
Copyright 2024 The aurochs Authors.

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

package pptx

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memParts map[string][]byte

func (m memParts) ReadPart(path string) ([]byte, error) {
	bb, ok := m[path]
	if !ok {
		return nil, errors.Errorf("part %s not found", path)
	}
	return bb, nil
}

func (m memParts) WritePart(path string, data []byte) error {
	m[path] = data
	return nil
}

const slideRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramData" Target="../diagrams/data1.xml"/>
</Relationships>`

const diagramData = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<dgm:dataModel xmlns:dgm="http://schemas.openxmlformats.org/drawingml/2006/diagram" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
<dgm:ptLst>
<dgm:pt modelId="{A}"><dgm:t><a:bodyPr/><a:p><a:r><a:t>Alpha</a:t></a:r></a:p></dgm:t></dgm:pt>
<dgm:pt modelId="{B}"><dgm:t><a:bodyPr/><a:p><a:r><a:t>Beta</a:t></a:r></a:p></dgm:t></dgm:pt>
</dgm:ptLst>
<dgm:cxnLst>
<dgm:cxn modelId="{C1}" srcId="{A}" destId="{B}"/>
</dgm:cxnLst>
</dgm:dataModel>`

func newParts() memParts {
	return memParts{
		"ppt/slides/_rels/slide1.xml.rels": []byte(slideRels),
		"ppt/diagrams/data1.xml":           []byte(diagramData),
	}
}

func TestSmartArtMissingDiagram(t *testing.T) {
	parts := newParts()

	err := ApplySmartArtUpdates(parts, "ppt/slides/slide1.xml", []SmartArtUpdate{
		{Type: SmartArtNodeText, ResourceID: "rId999", NodeID: "{A}", Text: "x"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiagramNotFound)
	assert.Contains(t, err.Error(), "rId999")
}

func TestSmartArtNodeText(t *testing.T) {
	parts := newParts()

	err := ApplySmartArtUpdates(parts, "ppt/slides/slide1.xml", []SmartArtUpdate{
		{Type: SmartArtNodeText, ResourceID: "rId3", NodeID: "{A}", Text: "Replaced"},
	})
	require.NoError(t, err)

	out := string(parts["ppt/diagrams/data1.xml"])
	assert.Contains(t, out, "Replaced")
	assert.NotContains(t, out, "Alpha")
	assert.Contains(t, out, "Beta")
}

func TestSmartArtNodeAdd(t *testing.T) {
	parts := newParts()

	err := ApplySmartArtUpdates(parts, "ppt/slides/slide1.xml", []SmartArtUpdate{
		{Type: SmartArtNodeAdd, ResourceID: "rId3", ParentID: "{A}", Text: "Child"},
	})
	require.NoError(t, err)

	root, err := ParseNode(parts["ppt/diagrams/data1.xml"])
	require.NoError(t, err)

	pts := root.First("dgm:ptLst").All("dgm:pt")
	require.Len(t, pts, 3)

	// The synthesized id is collision free and connected to the parent.
	newID := pts[2].Attr("modelId")
	assert.NotEqual(t, "{A}", newID)
	assert.NotEqual(t, "{B}", newID)

	var connected bool
	for _, cxn := range root.First("dgm:cxnLst").All("dgm:cxn") {
		if cxn.Attr("srcId") == "{A}" && cxn.Attr("destId") == newID {
			connected = true
		}
	}
	assert.True(t, connected)
}

func TestSmartArtNodeRemove(t *testing.T) {
	parts := newParts()

	err := ApplySmartArtUpdates(parts, "ppt/slides/slide1.xml", []SmartArtUpdate{
		{Type: SmartArtNodeRemove, ResourceID: "rId3", NodeID: "{B}"},
	})
	require.NoError(t, err)

	root, err := ParseNode(parts["ppt/diagrams/data1.xml"])
	require.NoError(t, err)

	assert.Len(t, root.First("dgm:ptLst").All("dgm:pt"), 1)
	// Connections referencing the removed node drop as well.
	assert.Empty(t, root.First("dgm:cxnLst").All("dgm:cxn"))
}

func TestSmartArtConnection(t *testing.T) {
	parts := newParts()

	// The connection type passes through verbatim.
	err := ApplySmartArtUpdates(parts, "ppt/slides/slide1.xml", []SmartArtUpdate{
		{Type: SmartArtConnection, ResourceID: "rId3", SourceID: "{B}", TargetID: "{A}", ConnectionType: "custom-kind"},
	})
	require.NoError(t, err)

	root, err := ParseNode(parts["ppt/diagrams/data1.xml"])
	require.NoError(t, err)

	cxns := root.First("dgm:cxnLst").All("dgm:cxn")
	require.Len(t, cxns, 2)
	assert.Equal(t, "custom-kind", cxns[1].Attr("type"))

	// Removing the edge restores a single connection.
	err = ApplySmartArtUpdates(parts, "ppt/slides/slide1.xml", []SmartArtUpdate{
		{Type: SmartArtConnection, ResourceID: "rId3", SourceID: "{B}", TargetID: "{A}", Remove: true},
	})
	require.NoError(t, err)

	root, err = ParseNode(parts["ppt/diagrams/data1.xml"])
	require.NoError(t, err)
	assert.Len(t, root.First("dgm:cxnLst").All("dgm:cxn"), 1)
}

func TestSmartArtUnknownNode(t *testing.T) {
	parts := newParts()

	err := ApplySmartArtUpdates(parts, "ppt/slides/slide1.xml", []SmartArtUpdate{
		{Type: SmartArtNodeText, ResourceID: "rId3", NodeID: "{missing}", Text: "x"},
	})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestNodeRoundTrip(t *testing.T) {
	root, err := ParseNode([]byte(diagramData))
	require.NoError(t, err)

	assert.Equal(t, "dgm:dataModel", root.Name)

	ptLst := root.First("dgm:ptLst")
	require.NotNil(t, ptLst)
	assert.Len(t, ptLst.All("dgm:pt"), 2)

	out := root.Bytes()
	reparsed, err := ParseNode(out)
	require.NoError(t, err)
	assert.Len(t, reparsed.First("dgm:ptLst").All("dgm:pt"), 2)
}
