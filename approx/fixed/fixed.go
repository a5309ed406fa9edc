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

// Package fixed implements two's-complement fixed-point arithmetic with a
// configurable number of fractional bits.
//
// A value v in Format{Frac: F} represents the real number v / 2^F. Products
// and quotients of two 32-bit values go through a 64-bit intermediate; the
// 64-bit variants go through a 128-bit intermediate. Overflow of the result
// is outside the domain and is not detected, except by DivSat.
package fixed

import (
	"math"

	num "github.com/shabbyrobe/go-num"

	"github.com/ajroetker/go-approx/approx/bitfloat"
)

// Format describes a fixed-point encoding with Frac fractional bits.
type Format struct {
	Frac uint
}

// Q returns the format with f fractional bits.
func Q(f uint) Format { return Format{Frac: f} }

// One returns 1.0 in the format.
func (f Format) One() int32 { return 1 << f.Frac }

// Half returns 0.5 in the format.
func (f Format) Half() int32 { return 1 << (f.Frac - 1) }

// Mask selects the fractional bits.
func (f Format) Mask() int32 { return f.One() - 1 }

// FromFloat converts x exactly via its IEEE fields, truncating toward zero.
func (f Format) FromFloat(x float32) int32 { return bitfloat.ToFixed(x, f.Frac) }

// ToFloat converts v back to float32.
func (f Format) ToFloat(v int32) float32 { return bitfloat.FromFixed(v, f.Frac) }

// FromFloat64 rounds x to the nearest representable value. Used when
// building constants and tables from a double-precision reference.
func (f Format) FromFloat64(x float64) int32 {
	return int32(math.Round(math.Ldexp(x, int(f.Frac))))
}

// ToFloat64 converts v to float64 exactly.
func (f Format) ToFloat64(v int32) float64 {
	return math.Ldexp(float64(v), -int(f.Frac))
}

// Mul returns a*b.
func (f Format) Mul(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> f.Frac)
}

// Div returns a/b, truncated toward zero. Division by zero panics.
func (f Format) Div(a, b int32) int32 {
	return int32((int64(a) << f.Frac) / int64(b))
}

// Floor returns the integer part of v, rounded toward negative infinity.
func (f Format) Floor(v int32) int32 { return v >> f.Frac }

// FracPart returns the fractional part of v in [0, 1).
func (f Format) FracPart(v int32) int32 { return v & f.Mask() }

// Mul64 returns a*b for 64-bit operands in the format, flooring the
// discarded bits. The product is formed in 128 bits.
func (f Format) Mul64(a, b int64) int64 {
	hi, lo := num.I128From64(a).Mul(num.I128From64(b)).Raw()
	if f.Frac == 0 {
		return int64(lo)
	}
	return int64(hi<<(64-f.Frac) | lo>>f.Frac)
}

// Div64 returns a/b for 64-bit operands in the format, truncated toward
// zero. The dividend is widened to 128 bits before scaling.
func (f Format) Div64(a, b int64) int64 {
	scaled := num.I128From64(a).Mul(num.I128From64(1 << f.Frac))
	return scaled.Quo(num.I128From64(b)).AsInt64()
}

// DivSat returns a/b saturated to ±MaxInt32. The quotient is formed with
// Div64, so results past the 32-bit range saturate instead of wrapping. A
// zero divisor saturates with the sign of a, and 0/0 is zero.
func (f Format) DivSat(a, b int32) int32 {
	if b == 0 {
		switch {
		case a > 0:
			return math.MaxInt32
		case a < 0:
			return -math.MaxInt32
		}
		return 0
	}
	q := f.Div64(int64(a), int64(b))
	return int32(min(max(q, -math.MaxInt32), math.MaxInt32))
}

// FromFloat64Wide rounds x into a 64-bit value in the format.
func (f Format) FromFloat64Wide(x float64) int64 {
	return int64(math.Round(math.Ldexp(x, int(f.Frac))))
}
