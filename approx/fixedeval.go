// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package approx

import (
	"fmt"
	"math"

	"golang.org/x/xerrors"

	"github.com/ajroetker/go-approx/approx/contrib/workerpool"
	"github.com/ajroetker/go-approx/approx/fixed"
	"github.com/ajroetker/go-approx/approx/lut"
	"github.com/ajroetker/go-approx/approx/reduce"
)

// FixedEvaluator computes one function on operands and results in a
// fixed-point format, with no float arithmetic on the per-element path.
type FixedEvaluator struct {
	fn   Function
	q    fixed.Format
	eval func(int32) int32
}

// Function returns the evaluated function.
func (ev *FixedEvaluator) Function() Function { return ev.fn }

// Format returns the operand and result format.
func (ev *FixedEvaluator) Format() fixed.Format { return ev.q }

// Eval returns the approximation of the function at x.
func (ev *FixedEvaluator) Eval(x int32) int32 { return ev.eval(x) }

// EvalBatch writes f(in[i]) to out[i] for i < min(len(in), len(out)). A nil
// pool runs on the calling goroutine.
func (ev *FixedEvaluator) EvalBatch(pool *workerpool.Pool, in, out []int32) {
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

// FixedFunctions lists the functions BuildFixed supports.
func FixedFunctions() []Function {
	return []Function{Sin, Cos, Tan, Exp, Log, Sqrt, CNDF}
}

// BuildFixed returns the fixed-point evaluator of fn in format q. Engines
// configured with LutSpacing use spacing tables; every other method uses
// granularity tables. Table size, interpolation, range reduction and tier
// follow the engine configuration.
//
// The format must hold every table domain: 2.5π for the trigonometric
// functions, 9 for CNDF.
func (e *Engine) BuildFixed(fn Function, q fixed.Format) (*FixedEvaluator, error) {
	if fn >= numFunctions {
		return nil, xerrors.Errorf("function %d: %w", fn, ErrFunction)
	}
	if q.Frac < MinFractionBits || q.Frac > MaxFractionBits {
		return nil, xerrors.Errorf("Q%d not in [%d, %d]: %w", q.Frac, MinFractionBits, MaxFractionBits, ErrFractionBits)
	}
	eval, err := e.fixedFunc(fn, q)
	if err != nil {
		return nil, xerrors.Errorf("build fixed %v in Q%d: %w", fn, q.Frac, err)
	}
	return &FixedEvaluator{fn: fn, q: q, eval: eval}, nil
}

func (e *Engine) fixedPolicy() lut.Policy {
	if e.cfg.Method == LutSpacing {
		return lut.Spacing
	}
	return lut.Granularity
}

// fixedTable returns the table of f over d in format q.
func (e *Engine) fixedTable(fn string, f lut.Func, d lut.Domain, q fixed.Format) (func(int32) int32, error) {
	p, bits := e.fixedPolicy(), e.cfg.TableBits
	name := fmt.Sprintf("%s/Q%d", e.tableName(fn, p, bits), q.Frac)
	t, err := cached(e, name, func() (*lut.FixedTable, []int32, error) {
		t, err := lut.BuildFixed(f, d, bits, p, q)
		if err != nil {
			return nil, nil, err
		}
		return t, t.Samples(), nil
	}, (*lut.FixedTable).Rebind)
	if err != nil {
		return nil, err
	}
	if e.cfg.Interpolate {
		return t.Interp, nil
	}
	return t.Nearest, nil
}

func (e *Engine) fixedCNDF(q fixed.Format) (*lut.FixedCNDF, error) {
	p, bits := e.fixedPolicy(), e.cfg.TableBits
	name := fmt.Sprintf("%s/Q%d", e.tableName("cndf", p, bits), q.Frac)
	if e.cfg.Interpolate {
		name += "/interp"
	}
	return cached(e, name, func() (*lut.FixedCNDF, []int32, error) {
		c, err := lut.NewFixedCNDF(p, bits, e.cfg.Interpolate, q)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Table().Samples(), nil
	}, (*lut.FixedCNDF).Rebind)
}

func (e *Engine) fixedFunc(fn Function, q fixed.Format) (func(int32) int32, error) {
	wrap := e.cfg.Wrap
	switch fn {
	case Sin, Cos, Tan:
		sin, err := e.fixedTable("sin", math.Sin, lut.Domain{Lower: 0, Upper: math.Pi / 2}, q)
		if err != nil {
			return nil, err
		}
		red := reduce.NewTrigFixed(q, wrap)
		switch fn {
		case Sin:
			return func(x int32) int32 {
				r, tok := red.Reduce(x)
				return red.Restore(sin(r), tok, reduce.Sine)
			}, nil
		case Cos:
			return func(x int32) int32 {
				r, tok := red.ReduceCos(x)
				return red.Restore(sin(r), tok, reduce.Sine)
			}, nil
		}
		halfPi := red.HalfPi()
		return func(x int32) int32 {
			r, tok := red.Reduce(x)
			// Poles saturate.
			return red.Restore(q.DivSat(sin(r), sin(max(halfPi-r, 0))), tok, reduce.Tangent)
		}, nil

	case Exp:
		exp, err := e.fixedTable("exp", math.Exp, lut.Domain{Lower: 0, Upper: math.Ln2}, q)
		if err != nil {
			return nil, err
		}
		red := reduce.NewExpFixed(q, wrap)
		return func(x int32) int32 {
			r, tok := red.Reduce(x)
			return red.Restore(exp(r), tok)
		}, nil

	case Log:
		log, err := e.fixedTable("log", math.Log, lut.Domain{Lower: 0.5, Upper: 1}, q)
		if err != nil {
			return nil, err
		}
		red := reduce.NewLogFixed(q, wrap)
		return func(x int32) int32 {
			if x <= 0 {
				return -math.MaxInt32
			}
			m, tok := red.Reduce(x)
			return red.Restore(log(m), tok)
		}, nil

	case Sqrt:
		sqrt, err := e.fixedTable("sqrt", math.Sqrt, lut.Domain{Lower: 0.5, Upper: 2}, q)
		if err != nil {
			return nil, err
		}
		red := reduce.SqrtFixed{Q: q, Wrap: wrap}
		return func(x int32) int32 {
			if x <= 0 {
				return 0
			}
			m, tok := red.Reduce(x)
			return red.Restore(sqrt(m), tok)
		}, nil

	case CNDF:
		c, err := e.fixedCNDF(q)
		if err != nil {
			return nil, err
		}
		return c.Eval, nil
	}
	return nil, ErrUnsupported
}
