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

package cordic

import (
	"math"

	"golang.org/x/xerrors"
)

// ErrSeed is returned for seed tables that cannot be built.
var ErrSeed = xerrors.New("cordic: invalid seed table")

// Seeded is a rotation-mode engine whose first iterations are replaced by a
// table of pre-rotated vectors on a power-of-two angle grid. Evaluation
// picks the nearest grid angle, loads its vector, and runs the remaining
// micro-rotations on the residual angle.
type Seeded struct {
	mode Mode

	// Grid spacing is 2^gran; shift = Frac + gran.
	gran  int
	shift uint
	half  int32

	xs, ys []int32

	// Circular iterations run for i in [start, precision).
	start, precision int
	atan             []int32

	// Hyperbolic steps after the seeded prefix.
	hyp   []uint8
	atanh []int32
}

// NewSeeded builds a seed table of 2^bits+1 vectors covering angles
// [0, upper] for CircularRotation or HyperbolicRotation.
func NewSeeded(c *Constants, m Mode, precision, bits int, upper float64) (*Seeded, error) {
	if precision < 1 || precision > c.Len() {
		return nil, xerrors.Errorf("precision %d with table length %d: %w", precision, c.Len(), ErrPrecision)
	}
	if bits < 1 || bits > 16 || upper <= 0 {
		return nil, xerrors.Errorf("bits %d, upper %v: %w", bits, upper, ErrSeed)
	}

	size := 1 << bits
	gran := int(math.Ceil(math.Log2(upper / float64(size))))
	shift := int(c.Q.Frac) + gran
	if shift < 1 || gran >= 0 {
		return nil, xerrors.Errorf("grid 2^%d in Q%d: %w", gran, c.Q.Frac, ErrSeed)
	}

	s := &Seeded{
		mode:      m,
		gran:      gran,
		shift:     uint(shift),
		half:      1 << (shift - 1),
		xs:        make([]int32, size+1),
		ys:        make([]int32, size+1),
		start:     min(1-gran, precision),
		precision: precision,
		atan:      c.Atan,
		atanh:     c.Atanh,
	}

	var fx, fy func(float64) float64
	var gain float64
	switch m {
	case CircularRotation:
		fx, fy = math.Cos, math.Sin
		gain = circularGain(s.start, precision)
	case HyperbolicRotation:
		s.hyp = c.steps(s.start, precision)
		fx, fy = math.Cosh, math.Sinh
		gain = hyperbolicGain(s.hyp)
	default:
		return nil, xerrors.Errorf("mode %v: %w", m, ErrSeed)
	}

	for a := range size + 1 {
		theta := math.Ldexp(float64(a), gran)
		s.xs[a] = c.Q.FromFloat64(fx(theta) / gain)
		s.ys[a] = c.Q.FromFloat64(fy(theta) / gain)
	}
	return s, nil
}

// Granularity returns the seed grid exponent.
func (s *Seeded) Granularity() int { return s.gran }

// Start returns the first iteration index run after seeding.
func (s *Seeded) Start() int { return s.start }

// Tables returns the seed vectors, guard included. Callers must not modify
// them.
func (s *Seeded) Tables() (xs, ys []int32) { return s.xs, s.ys }

// Rebind returns a Seeded that reads its seed vectors from xs and ys, which
// must have the lengths of Tables().
func (s *Seeded) Rebind(xs, ys []int32) (*Seeded, error) {
	if len(xs) != len(s.xs) || len(ys) != len(s.ys) {
		return nil, xerrors.Errorf("%d/%d seeds for a table of %d: %w", len(xs), len(ys), len(s.xs), ErrSeed)
	}
	c := *s
	c.xs, c.ys = xs, ys
	return &c, nil
}

// Rotate returns the final (x, y) for angle z in [-upper, upper]:
// (cos, sin) for circular seeds, (cosh, sinh) for hyperbolic seeds.
// Negative angles use the even x and odd y symmetry of both modes.
func (s *Seeded) Rotate(z int32) (x, y int32) {
	if z < 0 {
		x, y = s.Rotate(-z)
		return x, -y
	}
	a := (z + s.half) >> s.shift
	x, y = s.xs[a], s.ys[a]
	z -= a << s.shift

	if s.mode == HyperbolicRotation {
		x, y, _ = rotateHyperbolic(s.atanh, s.hyp, x, y, z)
		return x, y
	}
	for i := s.start; i < s.precision; i++ {
		dx, dy := y>>uint(i), x>>uint(i)
		if z >= 0 {
			x, y, z = x-dx, y+dy, z-s.atan[i]
		} else {
			x, y, z = x+dx, y-dy, z+s.atan[i]
		}
	}
	return x, y
}
