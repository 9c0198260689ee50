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
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ErrDiagramNotFound gets raised when a resource id does not resolve
// through the slide's relationships.
var ErrDiagramNotFound = errors.New("aurochs: pptx: diagram not found")

// ErrNodeNotFound gets raised when a diagram node id is unknown.
var ErrNodeNotFound = errors.New("aurochs: pptx: diagram node not found")

// PartAccessor reads and writes package parts by path. The ZIP container
// itself lives outside the core.
type PartAccessor interface {
	ReadPart(path string) ([]byte, error)
	WritePart(path string, data []byte) error
}

// SmartArtUpdateType tags the update variants.
type SmartArtUpdateType string

// The SmartArt update variants.
const (
	SmartArtNodeText   SmartArtUpdateType = "nodeText"
	SmartArtNodeAdd    SmartArtUpdateType = "nodeAdd"
	SmartArtNodeRemove SmartArtUpdateType = "nodeRemove"
	SmartArtConnection SmartArtUpdateType = "connection"
)

// SmartArtUpdate is one ordered diagram change addressed by resource id
// within a slide's relationships.
type SmartArtUpdate struct {
	Type       SmartArtUpdateType `json:"type"`
	ResourceID string             `json:"resourceId"`

	// nodeText, nodeRemove
	NodeID string `json:"nodeId,omitempty"`
	Text   string `json:"text,omitempty"`

	// nodeAdd
	ParentID string `json:"parentId,omitempty"`

	// connection
	SourceID string `json:"sourceId,omitempty"`
	TargetID string `json:"targetId,omitempty"`
	// ConnectionType is treated as opaque and passed through verbatim.
	ConnectionType string `json:"connectionType,omitempty"`
	Remove         bool   `json:"remove,omitempty"`
}

// ApplySmartArtUpdates resolves each update's resource id through the
// slide's rels part to its diagram data part and applies the ordered
// changes.
func ApplySmartArtUpdates(parts PartAccessor, slidePath string, updates []SmartArtUpdate) error {
	// Diagram parts are loaded once and written back after all updates.
	loaded := map[string]*Node{}

	for i := range updates {
		u := &updates[i]

		dataPath, err := resolveDiagramPath(parts, slidePath, u.ResourceID)
		if err != nil {
			return err
		}

		root, ok := loaded[dataPath]
		if !ok {
			bb, err := parts.ReadPart(dataPath)
			if err != nil {
				return errors.Wrapf(ErrDiagramNotFound, "%s: %v", u.ResourceID, err)
			}
			root, err = ParseNode(bb)
			if err != nil {
				return err
			}
			loaded[dataPath] = root
		}

		if err := applySmartArtUpdate(root, u); err != nil {
			return err
		}
	}

	for dataPath, root := range loaded {
		if err := parts.WritePart(dataPath, root.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

// resolveDiagramPath maps a resource id onto the diagram data part path
// through the slide's rels part.
func resolveDiagramPath(parts PartAccessor, slidePath, resourceID string) (string, error) {
	relsPath := path.Join(path.Dir(slidePath), "_rels", path.Base(slidePath)+".rels")

	bb, err := parts.ReadPart(relsPath)
	if err != nil {
		return "", errors.Wrapf(ErrDiagramNotFound, "%s: missing rels part %s", resourceID, relsPath)
	}

	rels, err := ParseNode(bb)
	if err != nil {
		return "", err
	}

	var target string
	for _, rel := range rels.Children {
		if !strings.HasSuffix(rel.Name, "Relationship") {
			continue
		}
		if rel.Attr("Id") == resourceID {
			target = rel.Attr("Target")
			break
		}
	}

	if target == "" {
		return "", errors.Wrapf(ErrDiagramNotFound, "%s", resourceID)
	}

	// Targets are relative to the slide's directory.
	return path.Clean(path.Join(path.Dir(slidePath), target)), nil
}

func applySmartArtUpdate(root *Node, u *SmartArtUpdate) error {
	switch u.Type {

	case SmartArtNodeText:
		return smartArtNodeText(root, u.NodeID, u.Text)

	case SmartArtNodeAdd:
		return smartArtNodeAdd(root, u.ParentID, u.Text)

	case SmartArtNodeRemove:
		return smartArtNodeRemove(root, u.NodeID)

	case SmartArtConnection:
		if u.Remove {
			return smartArtConnectionRemove(root, u.SourceID, u.TargetID)
		}
		return smartArtConnectionAdd(root, u.SourceID, u.TargetID, u.ConnectionType)
	}

	return errors.Errorf("aurochs: pptx: unknown SmartArt update type %q", u.Type)
}

func ptList(root *Node) *Node {
	return root.First("dgm:ptLst")
}

func cxnList(root *Node) *Node {
	return root.First("dgm:cxnLst")
}

func findPoint(root *Node, nodeID string) *Node {
	lst := ptList(root)
	if lst == nil {
		return nil
	}
	for _, pt := range lst.All("dgm:pt") {
		if pt.Attr("modelId") == nodeID {
			return pt
		}
	}
	return nil
}

// textBodyForString builds the dgm:t body holding a single run.
func textBodyForString(text string) *Node {
	t := NewNode("dgm:t")
	t.Add(NewNode("a:bodyPr"), NewNode("a:lstStyle"))

	p := NewNode("a:p")
	r := NewNode("a:r")
	r.Add(NewNode("a:rPr", Attr{"lang", "en-US"}))
	tn := NewNode("a:t")
	tn.AddText(text)
	r.Add(tn)
	p.Add(r)
	t.Add(p)

	return t
}

// smartArtNodeText replaces the text body of the identified node.
func smartArtNodeText(root *Node, nodeID, text string) error {
	pt := findPoint(root, nodeID)
	if pt == nil {
		return errors.Wrapf(ErrNodeNotFound, "%s", nodeID)
	}

	if old := pt.First("dgm:t"); old != nil {
		pt.Remove(old)
	}
	pt.Add(textBodyForString(text))

	return nil
}

// synthesizeModelID produces a collision free model id within the diagram.
func synthesizeModelID(root *Node) string {
	used := map[string]bool{}
	root.Walk(func(n *Node) bool {
		if id := n.Attr("modelId"); id != "" {
			used[id] = true
		}
		return true
	})

	for i := 1; ; i++ {
		id := fmt.Sprintf("{node-%d}", i)
		if !used[id] {
			return id
		}
	}
}

// smartArtNodeAdd inserts a child node under parentId with a synthesized id.
func smartArtNodeAdd(root *Node, parentID, text string) error {
	if findPoint(root, parentID) == nil {
		return errors.Wrapf(ErrNodeNotFound, "%s", parentID)
	}

	lst := ptList(root)
	if lst == nil {
		return errors.New("aurochs: pptx: diagram without point list")
	}

	id := synthesizeModelID(root)

	pt := NewNode("dgm:pt", Attr{"modelId", id})
	pt.Add(NewNode("dgm:prSet"), NewNode("dgm:spPr"))
	pt.Add(textBodyForString(text))
	lst.Add(pt)

	cl := cxnList(root)
	if cl == nil {
		cl = NewNode("dgm:cxnLst")
		root.Add(cl)
	}
	cxn := NewNode("dgm:cxn",
		Attr{"modelId", synthesizeModelID(root)},
		Attr{"srcId", parentID},
		Attr{"destId", id},
		Attr{"srcOrd", "0"},
		Attr{"destOrd", "0"},
	)
	cl.Add(cxn)

	return nil
}

// smartArtNodeRemove drops the node and every connection referencing it.
func smartArtNodeRemove(root *Node, nodeID string) error {
	pt := findPoint(root, nodeID)
	if pt == nil {
		return errors.Wrapf(ErrNodeNotFound, "%s", nodeID)
	}

	ptList(root).Remove(pt)

	if cl := cxnList(root); cl != nil {
		var drop []*Node
		for _, cxn := range cl.All("dgm:cxn") {
			if cxn.Attr("srcId") == nodeID || cxn.Attr("destId") == nodeID {
				drop = append(drop, cxn)
			}
		}
		for _, cxn := range drop {
			cl.Remove(cxn)
		}
	}

	return nil
}

// smartArtConnectionAdd adds a directed edge with the declared type.
func smartArtConnectionAdd(root *Node, srcID, destID, connectionType string) error {
	if findPoint(root, srcID) == nil {
		return errors.Wrapf(ErrNodeNotFound, "%s", srcID)
	}
	if findPoint(root, destID) == nil {
		return errors.Wrapf(ErrNodeNotFound, "%s", destID)
	}

	cl := cxnList(root)
	if cl == nil {
		cl = NewNode("dgm:cxnLst")
		root.Add(cl)
	}

	cxn := NewNode("dgm:cxn",
		Attr{"modelId", synthesizeModelID(root)},
		Attr{"srcId", srcID},
		Attr{"destId", destID},
	)
	if connectionType != "" {
		cxn.SetAttr("type", connectionType)
	}
	cl.Add(cxn)

	return nil
}

// smartArtConnectionRemove drops the directed edge between src and dest.
func smartArtConnectionRemove(root *Node, srcID, destID string) error {
	cl := cxnList(root)
	if cl == nil {
		return nil
	}

	var drop []*Node
	for _, cxn := range cl.All("dgm:cxn") {
		if cxn.Attr("srcId") == srcID && cxn.Attr("destId") == destID {
			drop = append(drop, cxn)
		}
	}
	for _, cxn := range drop {
		cl.Remove(cxn)
	}

	return nil
}
