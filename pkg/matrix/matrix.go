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

// Package matrix implements transformation matrix math for content interpretation.
package matrix

import (
	"fmt"
	"math"

	"github.com/trkbt10/aurochs/pkg/types"
)

const (
	DegToRad = math.Pi / 180
	RadToDeg = 180 / math.Pi
)

// Matrix is a PDF transformation matrix.
// The third column is always (0, 0, 1).
type Matrix [3][3]float64

// IdentMatrix represents the identity matrix.
var IdentMatrix = Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Multiply calculates the product of two matrices.
func (m Matrix) Multiply(n Matrix) Matrix {
	var p Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				p[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return p
}

// Transform applies m to p.
func (m Matrix) Transform(p types.Point) types.Point {
	x := p.X*m[0][0] + p.Y*m[1][0] + m[2][0]
	y := p.X*m[0][1] + p.Y*m[1][1] + m[2][1]
	return types.Point{X: x, Y: y}
}

// NewTranslateMatrix returns a translation matrix.
func NewTranslateMatrix(tx, ty float64) Matrix {
	m := IdentMatrix
	m[2][0] = tx
	m[2][1] = ty
	return m
}

// NewScaleMatrix returns a scale matrix.
func NewScaleMatrix(sx, sy float64) Matrix {
	m := IdentMatrix
	m[0][0] = sx
	m[1][1] = sy
	return m
}

// New returns a matrix for the PDF six value form [a b c d e f].
func New(a, b, c, d, e, f float64) Matrix {
	return Matrix{{a, b, 0}, {c, d, 0}, {e, f, 1}}
}

func (m Matrix) String() string {
	return fmt.Sprintf("%3.2f %3.2f %3.2f\n%3.2f %3.2f %3.2f\n%3.2f %3.2f %3.2f\n",
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2])
}
