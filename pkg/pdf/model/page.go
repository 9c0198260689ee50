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
	"bytes"

	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/types"
)

// Page carries a page dict together with its inherited attributes resolved.
type Page struct {
	Number    int // 1-based
	Dict      types.Dict
	Resources types.Dict
	MediaBox  *types.Rectangle
}

// Catalog returns the document catalog dict.
func (ctx *Context) Catalog() (types.Dict, error) {
	if ctx.XRefTable.Root == nil {
		return nil, errors.New("aurochs: catalog: missing root entry")
	}
	return ctx.DereferenceDict(*ctx.XRefTable.Root)
}

// Pages returns all pages of the document in document order.
// Inheritable attributes (Resources, MediaBox) are resolved along the walk.
func (ctx *Context) Pages() ([]*Page, error) {
	catalog, err := ctx.Catalog()
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, errors.New("aurochs: pages: missing catalog")
	}

	o, found := catalog.Find("Pages")
	if !found {
		return nil, errors.New("aurochs: pages: missing page tree root")
	}

	var pages []*Page
	visited := types.IntSet{}

	err = ctx.walkPageTree(o, nil, nil, &pages, visited)
	if err != nil {
		return nil, err
	}

	return pages, nil
}

func (ctx *Context) walkPageTree(o types.Object, inheritedRes types.Dict, inheritedMB *types.Rectangle, pages *[]*Page, visited types.IntSet) error {
	if ir, ok := o.(types.IndirectRef); ok {
		nr := ir.ObjectNumber.Value()
		if visited[nr] {
			return errors.New("aurochs: pages: circular page tree")
		}
		visited[nr] = true
	}

	d, err := ctx.DereferenceDict(o)
	if err != nil {
		return err
	}
	if d == nil {
		return errors.New("aurochs: pages: corrupt page tree node")
	}

	if res := d.DictEntry("Resources"); res != nil {
		inheritedRes = res
	} else if o, found := d.Find("Resources"); found {
		if res, err := ctx.DereferenceDict(o); err == nil && res != nil {
			inheritedRes = res
		}
	}

	if o, found := d.Find("MediaBox"); found {
		if a, err := ctx.DereferenceArray(o); err == nil {
			if r := types.RectForArray(a); r != nil {
				inheritedMB = r
			}
		}
	}

	t := d.Type()
	if t != nil && *t == "Page" {
		*pages = append(*pages, &Page{
			Number:    len(*pages) + 1,
			Dict:      d,
			Resources: inheritedRes,
			MediaBox:  inheritedMB,
		})
		return nil
	}

	kids := d.ArrayEntry("Kids")
	if kids == nil {
		if o, found := d.Find("Kids"); found {
			kids, _ = ctx.DereferenceArray(o)
		}
	}
	if kids == nil {
		return errors.New("aurochs: pages: page tree node without kids")
	}

	for _, kid := range kids {
		if kid == nil {
			continue
		}
		if err := ctx.walkPageTree(kid, inheritedRes, inheritedMB, pages, visited); err != nil {
			return err
		}
	}

	return nil
}

// PageContent returns the decoded content stream bytes of a page.
// Multiple content streams are joined by a single space.
func (ctx *Context) PageContent(p *Page) ([]byte, error) {
	o, found := p.Dict.Find("Contents")
	if !found {
		return nil, nil
	}

	o, err := ctx.Dereference(o)
	if err != nil {
		return nil, err
	}

	switch obj := o.(type) {

	case types.StreamDict:
		return ctx.DereferenceStreamContent(obj)

	case types.Array:
		var bb bytes.Buffer
		for _, entry := range obj {
			content, err := ctx.DereferenceStreamContent(entry)
			if err != nil {
				return nil, err
			}
			if bb.Len() > 0 {
				bb.WriteByte(' ')
			}
			bb.Write(content)
		}
		return bb.Bytes(), nil
	}

	return nil, errors.New("aurochs: pageContent: corrupt Contents entry")
}
