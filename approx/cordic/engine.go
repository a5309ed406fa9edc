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
	"golang.org/x/xerrors"

	"github.com/ajroetker/go-approx/approx/fixed"
)

// Mode selects the coordinate system and the quantity driven to zero.
type Mode uint8

const (
	// CircularRotation drives the angle to zero in circular coordinates.
	CircularRotation Mode = iota
	// HyperbolicRotation drives the angle to zero in hyperbolic coordinates.
	HyperbolicRotation
	// HyperbolicVectoring drives y to zero, accumulating atanh(y0/x0).
	HyperbolicVectoring
	// SqrtVectoring is HyperbolicVectoring without angle accumulation.
	SqrtVectoring
)

func (m Mode) String() string {
	switch m {
	case CircularRotation:
		return "circular-rotation"
	case HyperbolicRotation:
		return "hyperbolic-rotation"
	case HyperbolicVectoring:
		return "hyperbolic-vectoring"
	case SqrtVectoring:
		return "sqrt-vectoring"
	}
	return "unknown"
}

// Engine runs a fixed number of micro-rotations against shared Constants.
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	c         *Constants
	q         fixed.Format
	precision int

	// Hyperbolic steps for this precision, repeats included.
	hyp []uint8

	circularInit   int32
	hyperbolicInit int32
	quarter        int32
	one            int32
}

// New returns an engine running precision iterations.
func New(c *Constants, precision int) (*Engine, error) {
	if precision < 1 || precision > c.Len() {
		return nil, xerrors.Errorf("precision %d with table length %d: %w", precision, c.Len(), ErrPrecision)
	}
	hyp := c.steps(1, precision)
	return &Engine{
		c:              c,
		q:              c.Q,
		precision:      precision,
		hyp:            hyp,
		circularInit:   c.Q.FromFloat64(1 / circularGain(0, precision)),
		hyperbolicInit: c.Q.FromFloat64(1 / hyperbolicGain(hyp)),
		quarter:        c.Q.FromFloat64(0.25),
		one:            c.Q.One(),
	}, nil
}

// Precision returns the iteration count.
func (e *Engine) Precision() int { return e.precision }

// Format returns the fixed-point format of every operand.
func (e *Engine) Format() fixed.Format { return e.q }

// HyperbolicSteps returns the hyperbolic iteration indices this engine
// executes. The slice must not be modified.
func (e *Engine) HyperbolicSteps() []uint8 { return e.hyp }

// CircularInit returns the reciprocal circular gain used as the initial x.
func (e *Engine) CircularInit() int32 { return e.circularInit }

// HyperbolicInit returns the reciprocal hyperbolic gain. It is both the
// initial x of hyperbolic rotation and the sqrt correction factor.
func (e *Engine) HyperbolicInit() int32 { return e.hyperbolicInit }

// Run executes mode m from the state (x, y, z) and returns the final state.
func (e *Engine) Run(m Mode, x, y, z int32) (int32, int32, int32) {
	switch m {
	case CircularRotation:
		return e.circular(x, y, z)
	case HyperbolicRotation:
		return e.hyperbolic(x, y, z)
	case HyperbolicVectoring:
		return e.vector(x, y, z)
	default:
		x, y = e.vectorXY(x, y)
		return x, y, z
	}
}

func (e *Engine) circular(x, y, z int32) (int32, int32, int32) {
	atan := e.c.Atan
	for i := range e.precision {
		dx, dy := y>>uint(i), x>>uint(i)
		if z >= 0 {
			x, y, z = x-dx, y+dy, z-atan[i]
		} else {
			x, y, z = x+dx, y-dy, z+atan[i]
		}
	}
	return x, y, z
}

func (e *Engine) hyperbolic(x, y, z int32) (int32, int32, int32) {
	return rotateHyperbolic(e.c.Atanh, e.hyp, x, y, z)
}

func rotateHyperbolic(atanh []int32, steps []uint8, x, y, z int32) (int32, int32, int32) {
	for _, i := range steps {
		dx, dy := y>>i, x>>i
		if z >= 0 {
			x, y, z = x+dx, y+dy, z-atanh[i]
		} else {
			x, y, z = x-dx, y-dy, z+atanh[i]
		}
	}
	return x, y, z
}

func (e *Engine) vector(x, y, z int32) (int32, int32, int32) {
	atanh := e.c.Atanh
	for _, i := range e.hyp {
		dx, dy := y>>i, x>>i
		if y < 0 {
			x, y, z = x+dx, y+dy, z-atanh[i]
		} else {
			x, y, z = x-dx, y-dy, z+atanh[i]
		}
	}
	return x, y, z
}

func (e *Engine) vectorXY(x, y int32) (int32, int32) {
	for _, i := range e.hyp {
		dx, dy := y>>i, x>>i
		if y < 0 {
			x, y = x+dx, y+dy
		} else {
			x, y = x-dx, y-dy
		}
	}
	return x, y
}

// SinCos returns sin(theta) and cos(theta) for |theta| <= CircularLimit.
func (e *Engine) SinCos(theta int32) (sin, cos int32) {
	x, y, _ := e.circular(e.circularInit, 0, theta)
	return y, x
}

// SinhCosh returns sinh(x) and cosh(x) for |x| <= HyperbolicLimit.
func (e *Engine) SinhCosh(x int32) (sinh, cosh int32) {
	c, s, _ := e.hyperbolic(e.hyperbolicInit, 0, x)
	return s, c
}

// Exp returns exp(x) = cosh(x) + sinh(x) for |x| <= HyperbolicLimit.
// Exp(0) is exactly one.
func (e *Engine) Exp(x int32) int32 {
	if x == 0 {
		return e.one
	}
	c, s, _ := e.hyperbolic(e.hyperbolicInit, 0, x)
	return c + s
}

// Log returns ln(x) for x in roughly [0.11, 9.3], as twice the vectoring
// angle of (x+1, x-1).
func (e *Engine) Log(x int32) int32 {
	_, _, z := e.vector(x+e.one, x-e.one, 0)
	return z << 1
}

// Sqrt returns sqrt(x) for x in roughly [0.03, 2.3], from the vectoring
// magnitude of (x+1/4, x-1/4) corrected by the hyperbolic gain.
func (e *Engine) Sqrt(x int32) int32 {
	m, _ := e.vectorXY(x+e.quarter, x-e.quarter)
	return e.q.Mul(m, e.hyperbolicInit)
}
