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

import stdmath "math"

// Trig folds angles onto [0, π/2].
type Trig struct {
	Wrap bool
}

// Wrap maps theta onto [0, 2π) using a two-part 2π so the subtraction
// stays exact for moderate multiples.
func Wrap(theta float32) float32 {
	k := float32(stdmath.Floor(float64(theta * invTwoPi_f32)))
	r := (theta - k*twoPiHi_f32) - k*twoPiLo_f32
	if r < 0 {
		r += twoPi_f32
	}
	return r
}

// Reduce folds theta into [0, π/2] and reports the source quadrant.
func (t Trig) Reduce(theta float32) (float32, Token) {
	if t.Wrap {
		theta = Wrap(theta)
	}
	r, q := quadrant(theta)
	return r, Token{Quadrant: q}
}

// ReduceCos reduces theta + π/2, so that cos(theta) is recovered from a sine
// evaluation of the reduced angle restored with the Sine family.
func (t Trig) ReduceCos(theta float32) (float32, Token) {
	if t.Wrap {
		theta = Wrap(theta)
	}
	r, q := quadrant(theta + halfPi_f32)
	return r, Token{Quadrant: q}
}

// Restore applies the sign of family f for the token's quadrant.
func (Trig) Restore(y float32, tok Token, f Family) float32 {
	if negate(f, tok.Quadrant) {
		return -y
	}
	return y
}

// quadrant accepts angles in [0, 2.5π) so that a quarter-circle shift of a
// wrapped angle needs no second wrap. Folded angles are clamped to π/2; the
// float32 subtractions can overshoot it by an ulp next to a boundary.
func quadrant(theta float32) (float32, Quadrant) {
	switch {
	case theta < halfPi_f32:
		return theta, Q1
	case theta < pi_f32:
		return min(pi_f32-theta, halfPi_f32), Q2
	case theta < threeHalfPi_f32:
		return min(theta-pi_f32, halfPi_f32), Q3
	case theta < twoPi_f32:
		return min(twoPi_f32-theta, halfPi_f32), Q4
	default:
		return min(theta-twoPi_f32, halfPi_f32), Q1
	}
}
