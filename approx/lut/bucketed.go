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

package lut

import (
	"math"

	"golang.org/x/xerrors"

	"github.com/ajroetker/go-approx/approx/bitfloat"
)

// Layout describes how an exponent-bucketed table splits its addresses.
//
// Operands below 2^MinExp use a linear region of 2^MantissaBits addresses.
// Each following octave [2^e, 2^(e+1)) gets 2^MantissaBits addresses taken
// from the top mantissa bits, for 2^(P-MantissaBits)-1 octaves. Operands
// past the last octave saturate.
type Layout struct {
	MantissaBits int
	MinExp       int

	// Identity makes saturated operands evaluate to themselves instead of
	// the table's top sample.
	Identity bool
}

// BucketedTable is a table addressed by the exponent and top mantissa bits
// of a non-negative float32 operand. Callers handle the sign.
type BucketedTable struct {
	layout   Layout
	bits     int
	linExp   int
	maxExp   int
	linScale int
	low      uint
	lowInv   float32
	samples  []float32
}

// BuildBucketed samples f at every address of layout l with 2^bits
// addresses.
func BuildBucketed(f Func, l Layout, bits int) (*BucketedTable, error) {
	if err := checkBits(bits); err != nil {
		return nil, err
	}
	if l.MantissaBits < 1 || l.MantissaBits >= bits || l.MantissaBits > bitfloat.MantissaBits || bits-l.MantissaBits > 8 {
		return nil, xerrors.Errorf("mantissa bits %d with %d table bits: %w", l.MantissaBits, bits, ErrPolicy)
	}
	lin := bitfloat.ExpBias + l.MinExp
	octaves := 1<<(bits-l.MantissaBits) - 1
	if lin < 1 || lin+octaves > 254 {
		return nil, xerrors.Errorf("min exponent %d: %w", l.MinExp, ErrPolicy)
	}

	low := uint(bitfloat.MantissaBits - l.MantissaBits)
	t := &BucketedTable{
		layout:   l,
		bits:     bits,
		linExp:   lin,
		maxExp:   lin + octaves - 1,
		linScale: l.MantissaBits - l.MinExp,
		low:      low,
		lowInv:   float32(math.Ldexp(1, -int(low))),
		samples:  make([]float32, 1<<bits+1),
	}
	for a := range t.samples {
		t.samples[a] = sample32(f, t.AddressValue(a))
	}
	return t, nil
}

// AddressValue returns the operand value that address a samples.
func (t *BucketedTable) AddressValue(a int) float64 {
	ms := t.layout.MantissaBits
	if a < 1<<ms {
		return math.Ldexp(float64(a), t.layout.MinExp-ms)
	}
	e := a>>ms - 1 + t.layout.MinExp
	m := a & (1<<ms - 1)
	return math.Ldexp(1+math.Ldexp(float64(m), -ms), e)
}

// Upper returns the smallest operand that saturates.
func (t *BucketedTable) Upper() float64 { return t.AddressValue(t.Size()) }

// Layout returns the bucket layout.
func (t *BucketedTable) Layout() Layout { return t.layout }

func (t *BucketedTable) Size() int { return len(t.samples) - 1 }

func (t *BucketedTable) Samples() []float32 { return t.samples }

// Rebind returns a table with the same layout that reads samples.
func (t *BucketedTable) Rebind(samples []float32) (*BucketedTable, error) {
	if err := checkSamples(len(t.samples), len(samples)); err != nil {
		return nil, err
	}
	c := *t
	c.samples = samples
	return &c, nil
}

// address returns the address of x, the position between it and the next
// address in [0, 1), and whether x saturated.
func (t *BucketedTable) address(x float32) (int, float32, bool) {
	// Only the magnitude addresses the table; -0 reads the sample of +0.
	b := bitfloat.Bits(x) &^ bitfloat.SignMask
	x = bitfloat.FromBits(b)
	cur := int(b >> bitfloat.MantissaBits)
	switch {
	case cur < t.linExp:
		v := bitfloat.Ldexp(x, t.linScale)
		a := int(v)
		return a, v - float32(a), false
	case cur > t.maxExp:
		return 0, 0, true
	}
	mant := b & bitfloat.MantissaMask
	a := (cur-t.linExp+1)<<t.layout.MantissaBits | int(mant>>t.low)
	frac := float32(mant&(1<<t.low-1)) * t.lowInv
	return a, frac, false
}

func (t *BucketedTable) saturated(x float32) float32 {
	if t.layout.Identity {
		return x
	}
	return t.samples[len(t.samples)-1]
}

func (t *BucketedTable) Nearest(x float32) float32 {
	a, frac, sat := t.address(x)
	if sat {
		return t.saturated(x)
	}
	if frac >= 0.5 {
		a++
	}
	return t.samples[a]
}

func (t *BucketedTable) Interp(x float32) float32 {
	a, frac, sat := t.address(x)
	if sat {
		return t.saturated(x)
	}
	return lerp(t.samples[a], t.samples[a+1], frac)
}

// Bits returns log2 of the addressable sample count.
func (t *BucketedTable) Bits() int { return t.bits }
