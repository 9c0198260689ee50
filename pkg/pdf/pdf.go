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

// Package pdf ties the document model, fonts and the content stream
// interpreter into the page element pipeline.
package pdf

import (
	"github.com/trkbt10/aurochs/pkg/pdf/content"
	"github.com/trkbt10/aurochs/pkg/pdf/font"
	"github.com/trkbt10/aurochs/pkg/pdf/model"
)

// PageElements holds the parsed element stream of one page.
type PageElements struct {
	Number   int
	Elements []content.Element
	Fonts    map[string]*font.Info
}

// Read loads the document machinery for in-memory bytes.
func Read(bb []byte, conf *model.Configuration) (*model.Context, error) {
	return model.ReadContextFromBytes(bb, conf)
}

// ParseElements interprets every page of the document and returns the
// per page element streams in document order.
func ParseElements(ctx *model.Context) ([]*PageElements, error) {
	pages, err := ctx.Pages()
	if err != nil {
		return nil, err
	}

	out := make([]*PageElements, 0, len(pages))

	for _, page := range pages {
		elements, err := content.InterpretPage(ctx, page)
		if err != nil {
			return nil, err
		}

		fonts, err := font.ExtractFonts(ctx, page.Resources)
		if err != nil {
			return nil, err
		}

		out = append(out, &PageElements{
			Number:   page.Number,
			Elements: elements,
			Fonts:    fonts,
		})
	}

	return out, nil
}
