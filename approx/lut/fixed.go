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

	"github.com/ajroetker/go-approx/approx/fixed"
)

// FixedTable is a fixed-point table using the Granularity or Spacing
// policy. Operands and samples share the format Q.
type FixedTable struct {
	Q       fixed.Format
	policy  Policy
	domain  Domain
	origin  int32
	samples []int32

	// Granularity: address = (x-origin) >> shift.
	shift     uint
	fracShift uint

	// Spacing: address = (x-origin) * scale, scale in Q.
	scale int64
}

// BuildFixed builds a fixed-point table of 2^bits samples over d.
func BuildFixed(f Func, d Domain, bits int, p Policy, q fixed.Format) (*FixedTable, error) {
	if err := checkBits(bits); err != nil {
		return nil, err
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	limit := math.Ldexp(1, 31-int(q.Frac))
	if d.Lower <= -limit || d.Upper >= limit {
		return nil, xerrors.Errorf("[%v, %v) in Q%d: %w", d.Lower, d.Upper, q.Frac, ErrDomain)
	}

	size := 1 << bits
	t := &FixedTable{
		Q:       q,
		policy:  p,
		domain:  d,
		samples: make([]int32, size+1),
	}

	var at func(i int) float64
	switch p {
	case Granularity:
		gran := granularity(d, size)
		origin := math.Ldexp(math.Floor(math.Ldexp(d.Lower, -gran)), gran)
		if d.Upper-origin > math.Ldexp(float64(size), gran) {
			gran++
			origin = math.Ldexp(math.Floor(math.Ldexp(d.Lower, -gran)), gran)
		}
		shift := int(q.Frac) + gran
		if shift < 1 || gran > 0 {
			return nil, xerrors.Errorf("spacing 2^%d in Q%d: %w", gran, q.Frac, ErrPolicy)
		}
		t.shift = uint(shift)
		t.fracShift = uint(-gran)
		t.origin = q.FromFloat64(origin)
		at = func(i int) float64 { return origin + math.Ldexp(float64(i), gran) }
	case Spacing:
		step := d.Width() / float64(size-1)
		t.origin = q.FromFloat64(d.Lower)
		t.scale = q.FromFloat64Wide(float64(size-1) / d.Width())
		at = func(i int) float64 { return d.Lower + float64(i)*step }
	default:
		return nil, xerrors.Errorf("fixed tables support granularity and spacing, got %v: %w", p, ErrPolicy)
	}

	for i := range t.samples {
		t.samples[i] = sampleFixed(f, at(i), q)
	}
	return t, nil
}

func sampleFixed(f Func, x float64, q fixed.Format) int32 {
	v := math.Ldexp(f(x), int(q.Frac))
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(math.Round(v))
}

// Policy returns the addressing policy.
func (t *FixedTable) Policy() Policy { return t.policy }

// Domain returns the requested domain.
func (t *FixedTable) Domain() Domain { return t.domain }

func (t *FixedTable) Size() int { return len(t.samples) - 1 }

// Samples returns the backing samples, guard included.
func (t *FixedTable) Samples() []int32 { return t.samples }

// Rebind returns a table with the same addressing that reads samples.
func (t *FixedTable) Rebind(samples []int32) (*FixedTable, error) {
	if err := checkSamples(len(t.samples), len(samples)); err != nil {
		return nil, err
	}
	c := *t
	c.samples = samples
	return &c, nil
}

// address returns the sample index and the fractional position in Q.
func (t *FixedTable) address(x int32) (int, int32) {
	d := x - t.origin
	if t.policy == Granularity {
		return int(d >> t.shift), (d & (1<<t.shift - 1)) << t.fracShift
	}
	a := t.Q.Mul64(int64(d), t.scale)
	return int(a >> t.Q.Frac), int32(a) & t.Q.Mask()
}

// Nearest returns the sample closest to x, rounding half up.
func (t *FixedTable) Nearest(x int32) int32 {
	i, frac := t.address(x)
	if frac >= t.Q.Half() {
		i++
	}
	return t.samples[i]
}

// Interp linearly interpolates between the samples around x.
func (t *FixedTable) Interp(x int32) int32 {
	i, frac := t.address(x)
	base := t.samples[i]
	return base + t.Q.Mul(t.samples[i+1]-base, frac)
}
