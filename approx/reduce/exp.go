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

import (
	stdmath "math"

	"github.com/ajroetker/go-approx/approx/bitfloat"
)

// Exp factors x = k*ln2 + r with r in [0, ln2].
type Exp struct {
	Wrap bool
}

// Reduce returns r and a token holding k.
func (e Exp) Reduce(x float32) (float32, Token) {
	if !e.Wrap {
		return x, Token{}
	}
	x = min(max(x, expLo_f32), expHi_f32)
	k := float32(stdmath.Floor(float64(x * log2E_f32)))
	r := (x - k*ln2Hi_f32) - k*ln2Lo_f32
	// The split constants can leave r a few ulps outside [0, ln2].
	r = min(max(r, 0), ln2_f32)
	return r, Token{Exp: int(k)}
}

// Restore returns y * 2^k.
func (Exp) Restore(y float32, tok Token) float32 {
	return bitfloat.Ldexp(y, tok.Exp)
}

// Sqrt splits x = m * 2^e with e even and m in [0.5, 2).
type Sqrt struct {
	Wrap bool
}

// Reduce returns m and a token holding the even exponent e.
func (s Sqrt) Reduce(x float32) (float32, Token) {
	if !s.Wrap {
		return x, Token{}
	}
	m, e := bitfloat.Frexp(x)
	if e&1 != 0 {
		m = bitfloat.Ldexp(m, 1)
		e--
	}
	return m, Token{Exp: e}
}

// Restore returns y * 2^(e/2).
func (Sqrt) Restore(y float32, tok Token) float32 {
	return bitfloat.Ldexp(y, tok.Exp/2)
}

// Log splits x = m * 2^e with m in [0.5, 1).
type Log struct {
	Wrap bool
}

// Reduce returns m and a token holding e.
func (l Log) Reduce(x float32) (float32, Token) {
	if !l.Wrap {
		return x, Token{}
	}
	m, e := bitfloat.Frexp(x)
	return m, Token{Exp: e}
}

// Restore returns y + e*ln2.
func (Log) Restore(y float32, tok Token) float32 {
	if tok.Exp == 0 {
		return y
	}
	k := float32(tok.Exp)
	return (y + k*ln2Lo_f32) + k*ln2Hi_f32
}
