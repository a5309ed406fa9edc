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

// Package cordic implements the shift-and-add CORDIC rotation algorithm in
// fixed point for circular and hyperbolic coordinate systems.
//
// All angle tables, gains and the hyperbolic repeat schedule are computed
// once by NewConstants and shared read-only by every Engine built from them.
//
// Convergence domains (sum of the micro-rotation angles):
//   - circular: |θ| <= 1.7432866
//   - hyperbolic: |θ| <= 1.1181730
package cordic

import (
	"math"

	"golang.org/x/xerrors"

	"github.com/ajroetker/go-approx/approx/fixed"
)

const (
	// MainTableLength is the default number of entries in each angle table.
	MainTableLength = 28

	// DefaultPrecision is the default iteration count.
	DefaultPrecision = 22

	// FirstRepeat is the first hyperbolic iteration index executed twice.
	// Later repeats follow r(n+1) = 3*r(n) + 1.
	FirstRepeat = 4

	// CircularLimit and HyperbolicLimit bound the rotation angle each
	// coordinate system converges for.
	CircularLimit   = 1.7432866
	HyperbolicLimit = 1.1181730
)

var (
	// ErrPrecision is returned for iteration counts outside [1, table length].
	ErrPrecision = xerrors.New("cordic: precision out of range")

	// ErrTableLength is returned for angle tables that cannot be encoded.
	ErrTableLength = xerrors.New("cordic: table length out of range")
)

// Constants holds the arctangent and inverse hyperbolic tangent tables of
// 2^-i in a fixed-point format, and the hyperbolic iteration schedule.
type Constants struct {
	Q fixed.Format

	// Atan[i] = atan(2^-i).
	Atan []int32
	// Atanh[i] = atanh(2^-i) for i >= 1. Atanh[0] is unused.
	Atanh []int32
	// Schedule lists hyperbolic iteration indices in execution order,
	// repeated indices included.
	Schedule []uint8
}

// NewConstants builds angle tables of the given length for format q.
func NewConstants(length int, q fixed.Format) (*Constants, error) {
	if length < 2 || length > 63 {
		return nil, xerrors.Errorf("length %d: %w", length, ErrTableLength)
	}
	c := &Constants{
		Q:        q,
		Atan:     make([]int32, length),
		Atanh:    make([]int32, length),
		Schedule: RepeatSchedule(length),
	}
	for i := range length {
		p := math.Ldexp(1, -i)
		c.Atan[i] = q.FromFloat64(math.Atan(p))
		if i > 0 {
			c.Atanh[i] = q.FromFloat64(math.Atanh(p))
		}
	}
	return c, nil
}

// Len returns the angle table length.
func (c *Constants) Len() int { return len(c.Atan) }

// RepeatSchedule returns the hyperbolic iteration indices 1..length-1 in
// order, with every index of the sequence 4, 13, 40, 121, ... listed twice.
func RepeatSchedule(length int) []uint8 {
	s := make([]uint8, 0, length+4)
	next := FirstRepeat
	for i := 1; i < length; i++ {
		s = append(s, uint8(i))
		if i == next {
			s = append(s, uint8(i))
			next = 3*next + 1
		}
	}
	return s
}

// steps returns the prefix of the schedule with indices in [from, to).
func (c *Constants) steps(from, to int) []uint8 {
	lo, hi := len(c.Schedule), len(c.Schedule)
	for k, i := range c.Schedule {
		if int(i) >= from && lo == len(c.Schedule) {
			lo = k
		}
		if int(i) >= to {
			hi = k
			break
		}
	}
	if lo > hi {
		lo = hi
	}
	return c.Schedule[lo:hi]
}

// circularGain returns prod sqrt(1 + 2^-2i) for i in [from, to).
func circularGain(from, to int) float64 {
	g := 1.0
	for i := from; i < to; i++ {
		g *= math.Sqrt(1 + math.Ldexp(1, -2*i))
	}
	return g
}

// hyperbolicGain returns prod sqrt(1 - 2^-2i) over the given steps.
func hyperbolicGain(steps []uint8) float64 {
	g := 1.0
	for _, i := range steps {
		g *= math.Sqrt(1 - math.Ldexp(1, -2*int(i)))
	}
	return g
}
