// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reduce

// Quadrant identifies which quarter circle an angle was folded from.
type Quadrant uint8

const (
	Q1 Quadrant = iota + 1
	Q2
	Q3
	Q4
)

// Family selects the sign rule applied when restoring a trigonometric
// result.
type Family uint8

const (
	// Sine negates in quadrants 3 and 4.
	Sine Family = iota
	// Cosine negates in quadrants 2 and 3.
	Cosine
	// Tangent negates in quadrants 2 and 4.
	Tangent
)

// Token is the reconstruction state returned by a Reduce call.
// Trig reducers set Quadrant; the exp, log and sqrt reducers set Exp.
type Token struct {
	Quadrant Quadrant
	Exp      int
}

// negate reports whether a result of family f folded from quadrant q must
// change sign.
func negate(f Family, q Quadrant) bool {
	switch f {
	case Sine:
		return q == Q3 || q == Q4
	case Cosine:
		return q == Q2 || q == Q3
	default:
		return q == Q2 || q == Q4
	}
}
