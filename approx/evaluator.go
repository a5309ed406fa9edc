// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package approx

import (
	"math"

	"github.com/ajroetker/go-approx/approx/contrib/workerpool"
	"github.com/ajroetker/go-approx/approx/lut"
	"github.com/ajroetker/go-approx/approx/reduce"
)

const halfPi = float32(math.Pi / 2)

// hyperbolicDirect bounds the operands rotated directly by hyperbolic
// CORDIC. Larger ones go through exp when range reduction is on.
const hyperbolicDirect = 1.0

// Evaluator computes one function with one method. Its method is bound at
// construction, so the per-element path has no dispatch.
type Evaluator struct {
	fn     Function
	method Method
	eval   func(float32) float32
}

// Function returns the evaluated function.
func (ev *Evaluator) Function() Function { return ev.fn }

// Method returns the evaluation method.
func (ev *Evaluator) Method() Method { return ev.method }

// Eval returns the approximation of the function at x.
func (ev *Evaluator) Eval(x float32) float32 { return ev.eval(x) }

// Func returns Eval as a plain function value.
func (ev *Evaluator) Func() func(float32) float32 { return ev.eval }

// EvalBatch writes f(in[i]) to out[i] for i < min(len(in), len(out)),
// split across the pool's lanes. A nil pool runs on the calling goroutine.
func (ev *Evaluator) EvalBatch(pool *workerpool.Pool, in, out []float32) {
	n := min(len(in), len(out))
	f := ev.eval
	if pool == nil {
		for i := range n {
			out[i] = f(in[i])
		}
		return
	}
	pool.ParallelFor(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(in[i])
		}
	})
}

// trig wraps evaluators of the reduced domain [0, π/2] with quadrant
// reduction. A nil cos evaluates cosine as the sine of the angle shifted by
// a quarter circle.
func (e *Engine) trig(fn Function, sin, cos, tan func(float32) float32) func(float32) float32 {
	red := reduce.Trig{Wrap: e.cfg.Wrap}
	switch fn {
	case Cos:
		if cos != nil {
			return func(x float32) float32 {
				r, tok := red.Reduce(x)
				return red.Restore(cos(r), tok, reduce.Cosine)
			}
		}
		return func(x float32) float32 {
			r, tok := red.ReduceCos(x)
			return red.Restore(sin(r), tok, reduce.Sine)
		}
	case Tan:
		return func(x float32) float32 {
			r, tok := red.Reduce(x)
			return red.Restore(tan(r), tok, reduce.Tangent)
		}
	}
	return func(x float32) float32 {
		r, tok := red.Reduce(x)
		return red.Restore(sin(r), tok, reduce.Sine)
	}
}

// complement returns π/2 - r, clamped at zero.
func complement(r float32) float32 {
	return max(halfPi-r, 0)
}

func (e *Engine) lookup(t lut.Table) func(float32) float32 {
	if e.cfg.Interpolate {
		return t.Interp
	}
	return t.Nearest
}

func (e *Engine) tableFunc(fn Function, p lut.Policy) (func(float32) float32, error) {
	switch fn {
	case Sin, Cos, Tan:
		t, err := e.table("sin", math.Sin, lut.Domain{Lower: 0, Upper: math.Pi / 2}, p)
		if err != nil {
			return nil, err
		}
		sin := e.lookup(t)
		tan := func(r float32) float32 { return sin(r) / sin(complement(r)) }
		return e.trig(fn, sin, nil, tan), nil

	case Exp:
		t, err := e.table("exp", math.Exp, lut.Domain{Lower: 0, Upper: math.Ln2}, p)
		if err != nil {
			return nil, err
		}
		exp := e.lookup(t)
		red := reduce.Exp{Wrap: e.cfg.Wrap}
		return func(x float32) float32 {
			r, tok := red.Reduce(x)
			return red.Restore(exp(r), tok)
		}, nil

	case Log:
		t, err := e.table("log", math.Log, lut.Domain{Lower: 0.5, Upper: 1}, p)
		if err != nil {
			return nil, err
		}
		return e.logFunc(e.lookup(t)), nil

	case Sqrt:
		t, err := e.table("sqrt", math.Sqrt, lut.Domain{Lower: 0.5, Upper: 2}, p)
		if err != nil {
			return nil, err
		}
		return e.sqrtFunc(e.lookup(t)), nil

	case CNDF:
		c, err := e.cndf(p)
		if err != nil {
			return nil, err
		}
		return c.Eval, nil
	}
	return nil, ErrUnsupported
}

// logFunc saturates non-positive operands to the most negative float32.
func (e *Engine) logFunc(log func(float32) float32) func(float32) float32 {
	red := reduce.Log{Wrap: e.cfg.Wrap}
	return func(x float32) float32 {
		if x <= 0 {
			return -math.MaxFloat32
		}
		m, tok := red.Reduce(x)
		return red.Restore(log(m), tok)
	}
}

// sqrtFunc returns zero for non-positive operands.
func (e *Engine) sqrtFunc(sqrt func(float32) float32) func(float32) float32 {
	red := reduce.Sqrt{Wrap: e.cfg.Wrap}
	return func(x float32) float32 {
		if x <= 0 {
			return 0
		}
		m, tok := red.Reduce(x)
		return red.Restore(sqrt(m), tok)
	}
}

// GELUReference is the double-precision GELU, x * Φ(x).
func GELUReference(x float64) float64 {
	return x * lut.NormalCDF(x)
}

func (e *Engine) bucketedFunc(fn Function) (func(float32) float32, error) {
	bits := e.cfg.TableBits
	switch fn {
	case Sin, Cos, Tan:
		// Seven octaves below 2 cover [0, π/2].
		t, err := e.bucketed("sin", math.Sin, lut.Layout{MantissaBits: bits - 3, MinExp: -6}, bits)
		if err != nil {
			return nil, err
		}
		sin := e.lookup(t)
		tan := func(r float32) float32 { return sin(r) / sin(complement(r)) }
		return e.trig(fn, sin, nil, tan), nil

	case Tanh:
		t, err := e.bucketed("tanh", math.Tanh, lut.Layout{MantissaBits: bits - 3, MinExp: -4}, bits)
		if err != nil {
			return nil, err
		}
		tanh := e.lookup(t)
		return func(x float32) float32 {
			if x < 0 {
				return -tanh(-x)
			}
			return tanh(x)
		}, nil

	case GELU:
		// Two half tables of 2^(P-1) samples each. Past 8 the positive
		// half is the identity and the negative half is its top sample.
		l := lut.Layout{MantissaBits: bits - 4, MinExp: -4}
		neg, err := e.bucketed("gelu-", func(t float64) float64 { return GELUReference(-t) }, l, bits-1)
		if err != nil {
			return nil, err
		}
		l.Identity = true
		pos, err := e.bucketed("gelu+", GELUReference, l, bits-1)
		if err != nil {
			return nil, err
		}
		negf, posf := e.lookup(neg), e.lookup(pos)
		return func(x float32) float32 {
			if x < 0 {
				return negf(-x)
			}
			return posf(x)
		}, nil
	}
	return nil, ErrUnsupported
}

func (e *Engine) cordicFunc(fn Function) func(float32) float32 {
	q, ce := e.q, e.cordic

	sincos := ce.SinCos
	if s := e.seedCircular; s != nil {
		sincos = func(z int32) (int32, int32) {
			c, sn := s.Rotate(z)
			return sn, c
		}
	}
	exp := ce.Exp
	if s := e.seedHyperbolic; s != nil {
		exp = func(r int32) int32 {
			c, sh := s.Rotate(r)
			return c + sh
		}
	}

	switch fn {
	case Sin, Cos, Tan:
		sin := func(r float32) float32 {
			s, _ := sincos(q.FromFloat(r))
			return q.ToFloat(s)
		}
		cos := func(r float32) float32 {
			_, c := sincos(q.FromFloat(r))
			return q.ToFloat(c)
		}
		tan := func(r float32) float32 {
			s, c := sincos(q.FromFloat(r))
			return q.ToFloat(s) / q.ToFloat(c)
		}
		return e.trig(fn, sin, cos, tan)

	case Exp:
		red := reduce.Exp{Wrap: e.cfg.Wrap}
		return func(x float32) float32 {
			r, tok := red.Reduce(x)
			if r == 0 {
				// Exact powers of two, exp(0) included.
				return red.Restore(1, tok)
			}
			return red.Restore(q.ToFloat(exp(q.FromFloat(r))), tok)
		}

	case Log:
		return e.logFunc(func(m float32) float32 { return q.ToFloat(ce.Log(q.FromFloat(m))) })

	case Sqrt:
		return e.sqrtFunc(func(m float32) float32 { return q.ToFloat(ce.Sqrt(q.FromFloat(m))) })
	}

	// Sinh, Cosh, Tanh.
	expf := e.cordicFunc(Exp)
	wrap := e.cfg.Wrap
	hyp := func(x float32) (float32, float32) {
		if wrap && (x > hyperbolicDirect || x < -hyperbolicDirect) {
			p, n := expf(x), expf(-x)
			return (p - n) * 0.5, (p + n) * 0.5
		}
		s, c := ce.SinhCosh(q.FromFloat(x))
		return q.ToFloat(s), q.ToFloat(c)
	}
	switch fn {
	case Sinh:
		return func(x float32) float32 {
			s, _ := hyp(x)
			return s
		}
	case Cosh:
		return func(x float32) float32 {
			_, c := hyp(x)
			return c
		}
	}
	return func(x float32) float32 {
		s, c := hyp(x)
		return s / c
	}
}
