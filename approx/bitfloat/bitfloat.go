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

// Package bitfloat provides exact bit-level manipulation of IEEE 754
// single-precision floats: power-of-two scaling, mantissa/exponent
// splitting, and conversion to and from two's-complement fixed point.
//
// Format: Sign (1 bit) | Exponent (8 bits) | Mantissa (23 bits)
//
//	S | EEEEEEEE | MMMMMMMMMMMMMMMMMMMMMMM
//
// None of the operations produce infinity. Results whose magnitude exceeds
// the largest finite float32 saturate to MaxFloat32 with the input's sign.
// Infinity and NaN inputs are outside the domain of every operation.
package bitfloat

import (
	"math"
	"math/bits"
)

// Bit layout constants for float32.
const (
	SignMask     uint32 = 0x80000000
	ExpMask      uint32 = 0x7F800000
	MantissaMask uint32 = 0x007FFFFF
	ImplicitBit  uint32 = 0x00800000

	// MaxFiniteBits is the bit pattern of math.MaxFloat32.
	MaxFiniteBits uint32 = 0x7F7FFFFF

	MantissaBits = 23
	ExpBias      = 127

	// maxBiasedExp is the first biased exponent that no longer encodes a
	// finite value.
	maxBiasedExp = 255
)

// Bits returns the IEEE 754 bit pattern of x.
func Bits(x float32) uint32 { return math.Float32bits(x) }

// FromBits returns the float32 with the given bit pattern.
func FromBits(b uint32) float32 { return math.Float32frombits(b) }

// BiasedExp returns the raw 8-bit exponent field of x.
func BiasedExp(x float32) int {
	return int((math.Float32bits(x) & ExpMask) >> MantissaBits)
}

// Ldexp returns x * 2^e computed directly on the exponent field.
//
// Four regimes are handled exactly:
//   - subnormal x scaled down: the mantissa is shifted right (truncating)
//   - subnormal x scaled up: normalized by counting leading zeros, then
//     promoted to a normal or saturated
//   - normal x whose result overflows: saturates to ±MaxFloat32
//   - normal x with a representable result: exponent field addition, or a
//     right shift of the full significand when the result is subnormal
//
// A zero input is returned unchanged, sign included.
func Ldexp(x float32, e int) float32 {
	b := math.Float32bits(x)
	sign := b & SignMask
	mag := b &^ SignMask
	if mag == 0 || e == 0 {
		return x
	}

	cur := int(mag >> MantissaBits)
	if cur == 0 {
		if e < 0 {
			return math.Float32frombits(sign | shr(mag, -e))
		}
		// Shifts needed to move the leading one onto the implicit bit.
		k := MantissaBits + 1 - bits.Len32(mag)
		if e < k {
			return math.Float32frombits(sign | mag<<uint(e))
		}
		n := e - k + 1
		if n >= maxBiasedExp {
			return math.Float32frombits(sign | MaxFiniteBits)
		}
		return math.Float32frombits(sign | uint32(n)<<MantissaBits | (mag<<uint(k))&MantissaMask)
	}

	n := cur + e
	switch {
	case n >= maxBiasedExp:
		return math.Float32frombits(sign | MaxFiniteBits)
	case n >= 1:
		return math.Float32frombits(sign | uint32(n)<<MantissaBits | mag&MantissaMask)
	default:
		return math.Float32frombits(sign | shr(ImplicitBit|mag&MantissaMask, 1-n))
	}
}

// Frexp splits x into a mantissa in [0.5, 1) and an exponent such that
// x == m * 2^exp. Zero returns (x, 0).
func Frexp(x float32) (m float32, exp int) {
	b := math.Float32bits(x)
	mag := b &^ SignMask
	if mag == 0 {
		return x, 0
	}
	cur := int(mag >> MantissaBits)
	if cur == 0 {
		// Subnormal: value lies in [2^(L-150), 2^(L-149)).
		exp = bits.Len32(mag) - 149
	} else {
		exp = cur - (ExpBias - 1)
	}
	return Ldexp(x, -exp), exp
}

// ToFixed converts x to a signed fixed-point value with frac fractional
// bits, truncating toward zero. Subnormal inputs convert to zero. The result
// is unspecified when |x| does not fit the format.
func ToFixed(x float32, frac uint) int32 {
	b := math.Float32bits(x)
	cur := int((b & ExpMask) >> MantissaBits)
	if cur == 0 {
		return 0
	}
	sig := ImplicitBit | b&MantissaMask
	shift := cur - ExpBias - MantissaBits + int(frac)

	var v uint32
	if shift >= 0 {
		v = sig << uint(shift)
	} else {
		v = shr(sig, -shift)
	}
	if b&SignMask != 0 {
		return -int32(v)
	}
	return int32(v)
}

// FromFixed converts a signed fixed-point value with frac fractional bits
// to float32. Values needing more than 24 significant bits are truncated
// toward zero.
func FromFixed(v int32, frac uint) float32 {
	if v == 0 {
		return 0
	}
	var sign uint32
	mag := uint32(v)
	if v < 0 {
		sign = SignMask
		mag = -mag
	}

	l := bits.Len32(mag)
	if l > MantissaBits+1 {
		mag >>= uint(l - MantissaBits - 1)
	} else {
		mag <<= uint(MantissaBits + 1 - l)
	}
	exp := uint32(l - 1 - int(frac) + ExpBias)
	return math.Float32frombits(sign | exp<<MantissaBits | mag&MantissaMask)
}

// shr is a right shift that yields zero for shift counts of 32 or more.
func shr(v uint32, s int) uint32 {
	if s >= 32 {
		return 0
	}
	return v >> uint(s)
}
