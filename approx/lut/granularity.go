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

	"github.com/ajroetker/go-approx/approx/bitfloat"
)

// GranularityTable samples a function every 2^Gran starting at an origin
// that is a multiple of 2^Gran, so an address is a pure exponent shift of
// the operand plus a constant offset.
type GranularityTable struct {
	domain  Domain
	gran    int
	zero    float32
	samples []float32
}

// BuildGranularity builds a table of 2^bits samples over d. The spacing is
// the smallest power of two for which 2^bits samples cover d.
func BuildGranularity(f Func, d Domain, bits int) (*GranularityTable, error) {
	if err := checkBits(bits); err != nil {
		return nil, err
	}
	if err := d.validate(); err != nil {
		return nil, err
	}

	size := 1 << bits
	gran := granularity(d, size)
	zero := -math.Floor(math.Ldexp(d.Lower, -gran))
	// A misaligned lower bound can push the upper bound one step past the
	// last sample.
	if math.Ldexp(d.Upper, -gran)+zero > float64(size) {
		gran++
		zero = -math.Floor(math.Ldexp(d.Lower, -gran))
	}

	t := &GranularityTable{
		domain:  d,
		gran:    gran,
		zero:    float32(zero),
		samples: make([]float32, size+1),
	}
	for i := range t.samples {
		t.samples[i] = sample32(f, math.Ldexp(float64(i)-zero, gran))
	}
	return t, nil
}

// granularity returns the exponent of the smallest power of two not below
// the ideal spacing width/size.
func granularity(d Domain, size int) int {
	m, e := math.Frexp(d.Width() / float64(size))
	if m == 0.5 {
		return e - 1
	}
	return e
}

// Granularity returns the spacing exponent g; samples lie 2^g apart.
func (t *GranularityTable) Granularity() int { return t.gran }

// ZeroAddress returns the (possibly negative) address of x = 0.
func (t *GranularityTable) ZeroAddress() int { return int(t.zero) }

// Domain returns the requested domain.
func (t *GranularityTable) Domain() Domain { return t.domain }

func (t *GranularityTable) Size() int { return len(t.samples) - 1 }

func (t *GranularityTable) Samples() []float32 { return t.samples }

func (t *GranularityTable) Rebind(samples []float32) (Table, error) {
	if err := checkSamples(len(t.samples), len(samples)); err != nil {
		return nil, err
	}
	c := *t
	c.samples = samples
	return &c, nil
}

func (t *GranularityTable) Nearest(x float32) float32 {
	a := bitfloat.Ldexp(x, -t.gran) + t.zero
	return t.samples[int(a+0.5)]
}

func (t *GranularityTable) Interp(x float32) float32 {
	a := bitfloat.Ldexp(x, -t.gran) + t.zero
	i := int(a)
	return lerp(t.samples[i], t.samples[i+1], a-float32(i))
}
