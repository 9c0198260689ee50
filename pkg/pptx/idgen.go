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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidInput gets raised for empty generator inputs.
var ErrInvalidInput = errors.New("aurochs: pptx: invalid input")

// GenerateShapeID returns the next shape id: max of the numeric existing
// ids plus one, starting from 2 since 1 is reserved for the slide's group
// shape. Non numeric ids are ignored.
func GenerateShapeID(existing []string) string {
	max := 1
	for _, id := range existing {
		n, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// shapeNameBase maps a shape type onto its generated name base.
func shapeNameBase(shapeType string) string {
	switch shapeType {
	case "sp", "shape":
		return "Shape"
	case "text", "textbox", "textBox":
		return "TextBox"
	case "pic", "picture":
		return "Picture"
	case "grpSp", "group":
		return "Group"
	case "cxnSp", "connector":
		return "Connector"
	}
	return shapeType
}

// GenerateShapeName picks the base for the shape type and appends the
// highest existing index for that base plus one, starting at 1.
func GenerateShapeName(shapeType string, existing []string) (string, error) {
	if shapeType == "" {
		return "", errors.Wrap(ErrInvalidInput, "empty shape type")
	}

	base := shapeNameBase(shapeType)

	max := 0
	for _, name := range existing {
		rest, ok := strings.CutPrefix(name, base+" ")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}

	return fmt.Sprintf("%s %d", base, max+1), nil
}
