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
	"math/bits"

	"github.com/ajroetker/go-approx/approx/fixed"
)

// TrigFixed folds fixed-point angles onto [0, π/2].
//
// The format must hold 2.5π, which limits it to at most 28 fractional bits.
type TrigFixed struct {
	Q    fixed.Format
	Wrap bool

	halfPi, pi, threeHalfPi, twoPi int32
}

// NewTrigFixed precomputes the circle constants for q.
func NewTrigFixed(q fixed.Format, wrap bool) TrigFixed {
	return TrigFixed{
		Q:           q,
		Wrap:        wrap,
		halfPi:      q.FromFloat64(halfPi_f64),
		pi:          q.FromFloat64(pi_f64),
		threeHalfPi: q.FromFloat64(3 * halfPi_f64),
		twoPi:       q.FromFloat64(twoPi_f64),
	}
}

// HalfPi returns π/2 in the reducer's format.
func (t TrigFixed) HalfPi() int32 { return t.halfPi }

// Reduce folds theta into [0, π/2] and reports the source quadrant.
func (t TrigFixed) Reduce(theta int32) (int32, Token) {
	if t.Wrap {
		theta = t.wrap(theta)
	}
	r, q := t.quadrant(theta)
	return r, Token{Quadrant: q}
}

// ReduceCos reduces theta + π/2; restore with the Sine family.
func (t TrigFixed) ReduceCos(theta int32) (int32, Token) {
	if t.Wrap {
		theta = t.wrap(theta)
	}
	r, q := t.quadrant(theta + t.halfPi)
	return r, Token{Quadrant: q}
}

// Restore applies the sign of family f for the token's quadrant.
func (TrigFixed) Restore(y int32, tok Token, f Family) int32 {
	if negate(f, tok.Quadrant) {
		return -y
	}
	return y
}

func (t TrigFixed) wrap(theta int32) int32 {
	r := theta % t.twoPi
	if r < 0 {
		r += t.twoPi
	}
	return r
}

// quadrant folds theta in [0, 2.5π). The rounded constants need not be
// exact multiples of halfPi, so folded angles are clamped to it.
func (t TrigFixed) quadrant(theta int32) (int32, Quadrant) {
	switch {
	case theta < t.halfPi:
		return theta, Q1
	case theta < t.pi:
		return min(t.pi-theta, t.halfPi), Q2
	case theta < t.threeHalfPi:
		return min(theta-t.pi, t.halfPi), Q3
	case theta < t.twoPi:
		return min(t.twoPi-theta, t.halfPi), Q4
	default:
		return min(theta-t.twoPi, t.halfPi), Q1
	}
}

// ExpFixed factors x = k*ln2 + r in fixed point with r in [0, ln2).
type ExpFixed struct {
	Q    fixed.Format
	Wrap bool

	log2E, ln2 int32
}

// NewExpFixed precomputes log2(e) and ln2 for q.
func NewExpFixed(q fixed.Format, wrap bool) ExpFixed {
	return ExpFixed{Q: q, Wrap: wrap, log2E: q.FromFloat64(log2E_f64), ln2: q.FromFloat64(ln2_f64)}
}

// Reduce returns r and a token holding k.
func (e ExpFixed) Reduce(x int32) (int32, Token) {
	if !e.Wrap {
		return x, Token{}
	}
	v := e.Q.Mul(x, e.log2E)
	k := e.Q.Floor(v)
	r := e.Q.Mul(e.Q.FracPart(v), e.ln2)
	return r, Token{Exp: int(k)}
}

// Restore returns y * 2^k.
func (ExpFixed) Restore(y int32, tok Token) int32 {
	return shift(y, tok.Exp)
}

// SqrtFixed splits a positive x = m * 2^e with e even and m in [0.5, 2).
type SqrtFixed struct {
	Q    fixed.Format
	Wrap bool
}

// Reduce returns m and a token holding e. Zero reduces to zero.
func (s SqrtFixed) Reduce(x int32) (int32, Token) {
	if !s.Wrap || x <= 0 {
		return x, Token{}
	}
	e := normExp(x, s.Q)
	if e&1 != 0 {
		e--
	}
	return shift(x, -e), Token{Exp: e}
}

// Restore returns y * 2^(e/2).
func (SqrtFixed) Restore(y int32, tok Token) int32 {
	return shift(y, tok.Exp/2)
}

// LogFixed splits a positive x = m * 2^e with m in [0.5, 1).
type LogFixed struct {
	Q    fixed.Format
	Wrap bool

	ln2 int32
}

// NewLogFixed precomputes ln2 for q.
func NewLogFixed(q fixed.Format, wrap bool) LogFixed {
	return LogFixed{Q: q, Wrap: wrap, ln2: q.FromFloat64(ln2_f64)}
}

// Reduce returns m and a token holding e.
func (l LogFixed) Reduce(x int32) (int32, Token) {
	if !l.Wrap || x <= 0 {
		return x, Token{}
	}
	e := normExp(x, l.Q)
	return shift(x, -e), Token{Exp: e}
}

// Restore returns y + e*ln2.
func (l LogFixed) Restore(y int32, tok Token) int32 {
	return y + int32(tok.Exp)*l.ln2
}

// normExp returns e such that x >> e lies in [0.5, 1) in format q.
func normExp(x int32, q fixed.Format) int {
	return bits.Len32(uint32(x)) - int(q.Frac)
}

// shift multiplies v by 2^e with an arithmetic shift.
func shift(v int32, e int) int32 {
	if e >= 0 {
		return v << uint(e)
	}
	if e <= -32 {
		return v >> 31
	}
	return v >> uint(-e)
}
