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

// Package pptx implements the presentation shape domain, its XML
// serializer, shape id/name generation and the SmartArt update dispatcher.
package pptx

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Attr is one ordered XML attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is an XML element tree node with strictly ordered attributes and
// children. The serializers emit exact element trees through this type.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// NewNode returns a node for the given element name.
func NewNode(name string, attrs ...Attr) *Node {
	return &Node{Name: name, Attrs: attrs}
}

// SetAttr appends or replaces an attribute, keeping attribute order stable.
func (n *Node) SetAttr(name, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

// Attr returns the attribute value, empty when absent.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// AddText appends character data and returns n.
func (n *Node) AddText(text string) *Node {
	n.Text = text
	return n
}

// First returns the first child with the given name.
func (n *Node) First(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// All returns every child with the given name.
func (n *Node) All(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Remove drops the given child, returning true when found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Walk visits n and every descendant in document order.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

func escapeAttr(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	// EscapeText covers quotes as well.
	return b.String()
}

func (n *Node) write(b *bytes.Buffer) {
	b.WriteByte('<')
	b.WriteString(n.Name)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}

	if len(n.Children) == 0 && n.Text == "" {
		b.WriteString("/>")
		return
	}

	b.WriteByte('>')
	if n.Text != "" {
		var sb strings.Builder
		xml.EscapeText(&sb, []byte(n.Text))
		b.WriteString(sb.String())
	}
	for _, c := range n.Children {
		c.write(b)
	}
	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
}

// Bytes renders the tree as a standalone UTF-8 part.
func (n *Node) Bytes() []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\r\n")
	n.write(&b)
	return b.Bytes()
}

// ParseNode parses an XML part into a node tree, preserving element and
// attribute order including namespace prefixes.
func ParseNode(bb []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(bb))

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "aurochs: pptx: parse")
		}

		switch t := tok.(type) {

		case xml.StartElement:
			n := NewNode(qualifiedName(t.Name))
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: qualifiedName(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("aurochs: pptx: parse: unbalanced end element")
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				s := string(t)
				if strings.TrimSpace(s) != "" {
					stack[len(stack)-1].Text += s
				}
			}
		}
	}

	if root == nil {
		return nil, errors.New("aurochs: pptx: parse: empty document")
	}

	return root, nil
}

// qualifiedName rebuilds the prefixed form from the decoder's namespace
// expansion, mapping the well known OOXML namespaces back to their
// conventional prefixes. Namespace declarations and unresolved prefixes
// pass through verbatim.
func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	if name.Space == "xmlns" {
		return "xmlns:" + name.Local
	}
	if p := prefixForSpace(name.Space); p != "" {
		return p + ":" + name.Local
	}
	if !strings.Contains(name.Space, "/") {
		// The decoder leaves unbound prefixes in Space as-is.
		return name.Space + ":" + name.Local
	}
	// Unknown namespace URIs drop to the local name, callers match on
	// local names in that case.
	return name.Local
}

func prefixForSpace(space string) string {
	switch space {
	case NSDrawingML:
		return "a"
	case NSPresentationML:
		return "p"
	case NSRelationships:
		return "r"
	case NSDiagram:
		return "dgm"
	}
	return ""
}
