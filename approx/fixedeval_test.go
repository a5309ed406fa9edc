// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package approx

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-approx/approx/contrib/workerpool"
	"github.com/ajroetker/go-approx/approx/fixed"
	"github.com/ajroetker/go-approx/approx/lut"
	"github.com/ajroetker/go-approx/approx/reduce"
	"github.com/ajroetker/go-approx/approx/tier"
)

type fixedCase struct {
	fn     Function
	ref    func(float64) float64
	lo, hi float64
	// Allowed error is abs + rel*|want|.
	abs, rel float64
}

var fixedCases = []fixedCase{
	{Sin, math.Sin, -10, 10, 2e-5, 0},
	{Cos, math.Cos, -10, 10, 2e-5, 0},
	{Tan, math.Tan, -1.4, 1.4, 2e-5, 1e-4},
	{Exp, math.Exp, -5, 3, 1e-5, 1e-4},
	{Log, math.Log, 0.01, 100, 1e-4, 1e-5},
	{Sqrt, math.Sqrt, 0.01, 100, 1e-5, 1e-4},
	{CNDF, lut.NormalCDF, -8, 8, 1e-4, 0},
}

func TestFixedAccuracy(t *testing.T) {
	for _, m := range []Method{LutGranularity, LutSpacing} {
		e := newEngine(t, withMethod(m, true))
		for _, q := range []fixed.Format{fixed.Q(20), fixed.Q(24)} {
			for _, c := range fixedCases {
				t.Run(fmt.Sprintf("%v/Q%d/%v", m, q.Frac, c.fn), func(t *testing.T) {
					ev, err := e.BuildFixed(c.fn, q)
					require.NoError(t, err)
					assert.Equal(t, c.fn, ev.Function())
					assert.Equal(t, q, ev.Format())

					const n = 997
					step := (c.hi - c.lo) / n
					for i := range n {
						x := q.FromFloat64(c.lo + float64(i)*step)
						want := c.ref(q.ToFloat64(x))
						got := q.ToFloat64(ev.Eval(x))
						if d := math.Abs(got - want); d > c.abs+c.rel*math.Abs(want) {
							t.Errorf("%v(%v) = %v, want %v", c.fn, q.ToFloat64(x), got, want)
						}
					}
				})
			}
		}
	}
}

func TestFixedTrigWideFormat(t *testing.T) {
	e := newEngine(t, nil)
	q := fixed.Q(MaxFractionBits)
	sin, err := e.BuildFixed(Sin, q)
	require.NoError(t, err)
	cos, err := e.BuildFixed(Cos, q)
	require.NoError(t, err)
	for _, x := range []float64{0, 0.5, 1.5, math.Pi / 2, 3, math.Pi, 4.712, 6, 7.5, -2, -7.5} {
		xq := q.FromFloat64(x)
		assert.InDelta(t, math.Sin(x), q.ToFloat64(sin.Eval(xq)), 1e-5, "sin(%v)", x)
		assert.InDelta(t, math.Cos(x), q.ToFloat64(cos.Eval(xq)), 1e-5, "cos(%v)", x)
	}
}

func TestFixedNearest(t *testing.T) {
	e := newEngine(t, withMethod(LutGranularity, false))
	q := fixed.Q(20)
	sin, err := e.BuildFixed(Sin, q)
	require.NoError(t, err)
	for x := -3.0; x < 3; x += 0.01 {
		xq := q.FromFloat64(x)
		assert.InDelta(t, math.Sin(x), q.ToFloat64(sin.Eval(xq)), 2e-3, "sin(%v)", x)
	}
}

func TestFixedTanPole(t *testing.T) {
	e := newEngine(t, nil)
	q := fixed.Q(20)
	tan, err := e.BuildFixed(Tan, q)
	require.NoError(t, err)
	halfPi := reduce.NewTrigFixed(q, true).HalfPi()
	for _, x := range []int32{halfPi, -halfPi, 3 * halfPi} {
		got := tan.Eval(x)
		assert.Equal(t, int32(math.MaxInt32), max(got, -got), "tan(%v)", q.ToFloat64(x))
	}
}

func TestFixedEdges(t *testing.T) {
	e := newEngine(t, nil)
	q := fixed.Q(20)
	log, err := e.BuildFixed(Log, q)
	require.NoError(t, err)
	assert.Equal(t, int32(-math.MaxInt32), log.Eval(0))
	assert.Equal(t, int32(-math.MaxInt32), log.Eval(-q.One()))
	assert.InDelta(t, 0, log.Eval(q.One()), 2)

	sqrt, err := e.BuildFixed(Sqrt, q)
	require.NoError(t, err)
	assert.Zero(t, sqrt.Eval(0))
	assert.Zero(t, sqrt.Eval(-q.One()))

	exp, err := e.BuildFixed(Exp, q)
	require.NoError(t, err)
	assert.Equal(t, q.One(), exp.Eval(0))

	cndf, err := e.BuildFixed(CNDF, q)
	require.NoError(t, err)
	for _, v := range []float64{0, 0.3, 1, 2.5, 8, 100} {
		x := q.FromFloat64(v)
		assert.Equal(t, q.One(), cndf.Eval(x)+cndf.Eval(-x), "Φ(%v)+Φ(-%v)", v, v)
	}
}

func TestBuildFixedErrors(t *testing.T) {
	e := newEngine(t, nil)
	_, err := e.BuildFixed(Sin, fixed.Q(MaxFractionBits+1))
	assert.ErrorIs(t, err, ErrFractionBits)
	_, err = e.BuildFixed(Sin, fixed.Q(MinFractionBits-1))
	assert.ErrorIs(t, err, ErrFractionBits)
	_, err = e.BuildFixed(Tanh, fixed.Q(20))
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = e.BuildFixed(numFunctions, fixed.Q(20))
	assert.ErrorIs(t, err, ErrFunction)
	// 9 does not fit in Q28.
	_, err = e.BuildFixed(CNDF, fixed.Q(28))
	assert.ErrorIs(t, err, lut.ErrDomain)

	for _, fn := range FixedFunctions() {
		_, err := e.BuildFixed(fn, fixed.Q(20))
		assert.NoError(t, err, "%v", fn)
	}
}

func TestFixedTablesPlaced(t *testing.T) {
	e := newEngine(t, nil)
	q := fixed.Q(20)
	before := e.Store().FastUsed()
	_, err := e.BuildFixed(Sin, q)
	require.NoError(t, err)
	samples, err := tier.View[int32](e.Store(), "sin/granularity/10/Q20")
	require.NoError(t, err)
	afterSin := e.Store().FastUsed()
	assert.Equal(t, before+4*len(samples), afterSin)

	// Cos and Tan share the sine table.
	_, err = e.BuildFixed(Cos, q)
	require.NoError(t, err)
	_, err = e.BuildFixed(Tan, q)
	require.NoError(t, err)
	assert.Equal(t, afterSin, e.Store().FastUsed())

	bulk := newEngine(t, func(c *Config) { c.TableTier = tier.Bulk })
	exp, err := bulk.BuildFixed(Exp, q)
	require.NoError(t, err)
	data, err := tier.View[int32](bulk.Store(), "exp/granularity/10/Q20")
	require.NoError(t, err)
	clear(data)
	assert.Zero(t, exp.Eval(q.FromFloat64(0.3)), "evaluation reads the bulk tier")
}

func TestFixedEvalBatch(t *testing.T) {
	pool := workerpool.New(4)
	t.Cleanup(pool.Close)
	e := newEngine(t, nil)
	q := fixed.Q(20)
	ev, err := e.BuildFixed(Exp, q)
	require.NoError(t, err)

	in := make([]int32, 1000)
	for i := range in {
		in[i] = q.FromFloat64(-4 + 0.007*float64(i))
	}
	out := make([]int32, len(in))
	ev.EvalBatch(pool, in, out)
	seq := make([]int32, len(in))
	ev.EvalBatch(nil, in, seq)
	assert.Equal(t, seq, out)
	for i, x := range in {
		assert.Equal(t, ev.Eval(x), out[i])
	}

	short := make([]int32, 10)
	ev.EvalBatch(pool, in, short)
	assert.Equal(t, seq[:10], short)
}

func BenchmarkFixedSin(b *testing.B) {
	e := newEngine(b, nil)
	q := fixed.Q(20)
	ev, err := e.BuildFixed(Sin, q)
	require.NoError(b, err)
	var sink int32
	x := q.FromFloat64(0.1)
	for b.Loop() {
		sink += ev.Eval(x)
		x += 997
	}
	_ = sink
}
