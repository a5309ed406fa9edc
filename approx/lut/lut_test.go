// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package lut

import (
	"fmt"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-approx/approx/contrib/accuracy"
	"github.com/ajroetker/go-approx/approx/fixed"
)

type refCase struct {
	name   string
	f      Func
	domain Domain
}

var refCases = []refCase{
	{"sin", stdmath.Sin, Domain{0, stdmath.Pi / 2}},
	{"exp", stdmath.Exp, Domain{0, stdmath.Ln2}},
	{"log", stdmath.Log, Domain{0.5, 1}},
	{"sqrt", stdmath.Sqrt, Domain{0.5, 2}},
}

// measure samples the table densely over the domain.
func measure(tb testing.TB, tbl Table, interp bool, rc refCase) accuracy.Stats {
	tb.Helper()
	eval := tbl.Nearest
	if interp {
		eval = tbl.Interp
	}
	return accuracy.Measure(eval, rc.f, rc.domain.Lower, rc.domain.Upper, 20000)
}

func TestGranularityMetadata(t *testing.T) {
	tests := []struct {
		rc       refCase
		wantGran int
		wantZero int
	}{
		{refCases[0], -9, 0},
		{refCases[1], -10, 0},
		{refCases[2], -11, -1024},
		{refCases[3], -9, -256},
	}

	for _, tt := range tests {
		tbl, err := BuildGranularity(tt.rc.f, tt.rc.domain, 10)
		require.NoError(t, err)
		assert.Equal(t, tt.wantGran, tbl.Granularity(), tt.rc.name)
		assert.Equal(t, tt.wantZero, tbl.ZeroAddress(), tt.rc.name)
		assert.Equal(t, 1024, tbl.Size())
		assert.Len(t, tbl.Samples(), 1025)
	}
}

func TestGranularityMisalignedLower(t *testing.T) {
	// [0.3, 1.3) with 4 samples: ideal spacing 0.25, but origin 0.25 would
	// leave 1.3 uncovered.
	tbl, err := BuildGranularity(func(x float64) float64 { return x }, Domain{0.3, 1.3}, 2)
	require.NoError(t, err)
	assert.Equal(t, -1, tbl.Granularity())
	for _, x := range []float32{0.3, 0.7, 1.0, 1.29} {
		assert.InDelta(t, x, tbl.Interp(x), 1e-6)
	}
}

func TestSpacingScale(t *testing.T) {
	tbl, err := BuildSpacing(stdmath.Exp, Domain{0, 1}, 8)
	require.NoError(t, err)
	assert.Equal(t, float32(255), tbl.Scale())
	assert.Equal(t, float32(stdmath.E), tbl.Samples()[255])
}

func TestExpZeroExact(t *testing.T) {
	for _, p := range []Policy{Granularity, Spacing} {
		tbl, err := Build(stdmath.Exp, Domain{0, stdmath.Ln2}, 10, p)
		require.NoError(t, err)
		assert.Equal(t, float32(1), tbl.Nearest(0), "%v nearest", p)
		assert.Equal(t, float32(1), tbl.Interp(0), "%v interp", p)
	}
}

func TestAccuracyImprovesWithBits(t *testing.T) {
	for _, p := range []Policy{Granularity, Spacing} {
		for _, rc := range refCases {
			t.Run(fmt.Sprintf("%v/%s", p, rc.name), func(t *testing.T) {
				prevNearest := accuracy.Stats{MaxAbs: stdmath.Inf(1), RMS: stdmath.Inf(1)}
				prevInterp := prevNearest
				for _, bits := range []int{4, 6, 8} {
					tbl, err := Build(rc.f, rc.domain, bits, p)
					require.NoError(t, err)

					nearest := measure(t, tbl, false, rc)
					interp := measure(t, tbl, true, rc)

					assert.Less(t, nearest.MaxAbs, prevNearest.MaxAbs, "nearest max, bits=%d", bits)
					assert.Less(t, nearest.RMS, prevNearest.RMS, "nearest rms, bits=%d", bits)
					assert.Less(t, interp.MaxAbs, prevInterp.MaxAbs, "interp max, bits=%d", bits)
					assert.Less(t, interp.RMS, prevInterp.RMS, "interp rms, bits=%d", bits)
					assert.Less(t, interp.RMS, nearest.RMS, "interp vs nearest, bits=%d", bits)

					prevNearest, prevInterp = nearest, interp
				}
			})
		}
	}
}

func TestAccuracyBounds(t *testing.T) {
	bounds := map[Policy]struct{ nearest, interp accuracy.Bound }{
		Granularity: {accuracy.Bound{MaxAbs: 4e-3, RMS: 2e-3}, accuracy.Bound{MaxAbs: 2e-6, RMS: 1e-6}},
		Spacing:     {accuracy.Bound{MaxAbs: 2e-3, RMS: 1e-3}, accuracy.Bound{MaxAbs: 1e-6, RMS: 5e-7}},
	}
	for p, b := range bounds {
		for _, rc := range refCases {
			tbl, err := Build(rc.f, rc.domain, 10, p)
			require.NoError(t, err)
			n, i := measure(t, tbl, false, rc), measure(t, tbl, true, rc)
			assert.True(t, n.Within(b.nearest), "%v/%s nearest %v", p, rc.name, n)
			assert.True(t, i.Within(b.interp), "%v/%s interp %v", p, rc.name, i)
		}
	}
}

func TestNonFiniteSamplesSaturate(t *testing.T) {
	tbl, err := BuildGranularity(stdmath.Log, Domain{0, 2}, 4)
	require.NoError(t, err)
	assert.Equal(t, float32(-stdmath.MaxFloat32), tbl.Samples()[0])
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(stdmath.Exp, Domain{0, 1}, 1, Granularity)
	assert.ErrorIs(t, err, ErrBits)
	_, err = Build(stdmath.Exp, Domain{0, 1}, MaxBits+1, Spacing)
	assert.ErrorIs(t, err, ErrBits)
	_, err = Build(stdmath.Exp, Domain{1, 1}, 8, Spacing)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = Build(stdmath.Exp, Domain{0, stdmath.Inf(1)}, 8, Granularity)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = Build(stdmath.Exp, Domain{0, 1}, 8, Bucketed)
	assert.ErrorIs(t, err, ErrPolicy)
	_, err = BuildBucketed(stdmath.Tanh, Layout{MantissaBits: 10, MinExp: -4}, 10)
	assert.ErrorIs(t, err, ErrPolicy)
	_, err = BuildBucketed(stdmath.Tanh, Layout{MantissaBits: 7, MinExp: -140}, 10)
	assert.ErrorIs(t, err, ErrPolicy)
	_, err = BuildFixed(stdmath.Exp, Domain{0, 100}, 8, Granularity, fixed.Q(28))
	assert.ErrorIs(t, err, ErrDomain)
	_, err = BuildFixed(stdmath.Exp, Domain{0, 1}, 8, Bucketed, fixed.Q(24))
	assert.ErrorIs(t, err, ErrPolicy)
}

func tanhLayout(bits int) Layout {
	return Layout{MantissaBits: bits - 3, MinExp: -4}
}

func TestBucketedAddressing(t *testing.T) {
	tbl, err := BuildBucketed(stdmath.Tanh, tanhLayout(10), 10)
	require.NoError(t, err)

	assert.Equal(t, 0.0, tbl.AddressValue(0))
	assert.Equal(t, 0.0625, tbl.AddressValue(1<<7))
	assert.Equal(t, 0.125, tbl.AddressValue(2<<7))
	assert.Equal(t, 0.0625*(1+0.5), tbl.AddressValue(1<<7+64))
	assert.Equal(t, 8.0, tbl.Upper())
	assert.Equal(t, 10, tbl.Bits())

	// Every sample point evaluates to its own sample.
	for _, a := range []int{0, 1, 100, 127, 128, 129, 500, 1023} {
		x := float32(tbl.AddressValue(a))
		assert.Equal(t, tbl.Samples()[a], tbl.Interp(x), "address %d", a)
		assert.Equal(t, tbl.Samples()[a], tbl.Nearest(x), "address %d", a)
	}
}

func TestBucketedAccuracy(t *testing.T) {
	tbl, err := BuildBucketed(stdmath.Tanh, tanhLayout(10), 10)
	require.NoError(t, err)

	rc := refCase{"tanh", stdmath.Tanh, Domain{0, 8}}
	n := measure(t, tbl, false, rc)
	i := measure(t, tbl, true, rc)
	assert.Less(t, n.MaxAbs, 4e-3, "nearest %v", n)
	assert.Less(t, i.MaxAbs, 1e-4, "interp %v", i)
	assert.Less(t, i.RMS, n.RMS)

	small, err := BuildBucketed(stdmath.Tanh, tanhLayout(8), 8)
	require.NoError(t, err)
	assert.Less(t, i.RMS, measure(t, small, true, rc).RMS)
}

func TestBucketedSaturation(t *testing.T) {
	tbl, err := BuildBucketed(stdmath.Tanh, tanhLayout(10), 10)
	require.NoError(t, err)
	top := tbl.Samples()[tbl.Size()]
	assert.Equal(t, float32(stdmath.Tanh(8)), top)
	assert.Equal(t, top, tbl.Interp(100))
	assert.Equal(t, top, tbl.Nearest(1e30))

	id, err := BuildBucketed(func(x float64) float64 { return x }, Layout{MantissaBits: 6, MinExp: -4, Identity: true}, 10)
	require.NoError(t, err)
	assert.Equal(t, float32(1e6), id.Interp(1e6))
}

func TestBucketedSignedZero(t *testing.T) {
	tbl, err := BuildBucketed(stdmath.Tanh, tanhLayout(10), 10)
	require.NoError(t, err)
	negZero := float32(stdmath.Copysign(0, -1))
	assert.Equal(t, float32(0), tbl.Interp(negZero))
	assert.Equal(t, float32(0), tbl.Nearest(negZero))
	assert.Equal(t, tbl.Interp(0), tbl.Interp(negZero))
	// The sign bit never reaches the exponent decode.
	assert.Equal(t, tbl.Interp(0.3), tbl.Interp(-0.3))
}

func TestRebind(t *testing.T) {
	for _, p := range []Policy{Granularity, Spacing} {
		tbl, err := Build(stdmath.Exp, Domain{0, stdmath.Ln2}, 8, p)
		require.NoError(t, err)
		local := append([]float32(nil), tbl.Samples()...)
		r, err := tbl.Rebind(local)
		require.NoError(t, err)
		assert.Equal(t, tbl.Interp(0.3), r.Interp(0.3), "%v", p)

		// The rebound table reads only the new slice.
		clear(local)
		assert.Zero(t, r.Interp(0.3), "%v", p)
		assert.NotZero(t, tbl.Interp(0.3), "%v", p)

		_, err = tbl.Rebind(local[1:])
		assert.ErrorIs(t, err, ErrSamples, "%v", p)
	}

	b, err := BuildBucketed(stdmath.Tanh, tanhLayout(8), 8)
	require.NoError(t, err)
	rb, err := b.Rebind(make([]float32, len(b.Samples())))
	require.NoError(t, err)
	assert.Zero(t, rb.Interp(0.5))
	_, err = b.Rebind(nil)
	assert.ErrorIs(t, err, ErrSamples)

	q := fixed.Q(20)
	f, err := BuildFixed(stdmath.Exp, Domain{0, stdmath.Ln2}, 8, Granularity, q)
	require.NoError(t, err)
	rf, err := f.Rebind(make([]int32, len(f.Samples())))
	require.NoError(t, err)
	assert.Zero(t, rf.Interp(q.FromFloat64(0.3)))

	c, err := NewCNDF(Granularity, 8, true)
	require.NoError(t, err)
	rc, err := c.Rebind(make([]float32, len(c.Table().Samples())))
	require.NoError(t, err)
	// Zero deltas leave only the 0.5 offset.
	assert.Equal(t, float32(0.5), rc.Eval(1.3))

	fc, err := NewFixedCNDF(Granularity, 8, true, q)
	require.NoError(t, err)
	rfc, err := fc.Rebind(make([]int32, len(fc.Table().Samples())))
	require.NoError(t, err)
	assert.Zero(t, rfc.Eval(q.FromFloat64(1.3)))
}

func TestFixedTables(t *testing.T) {
	q := fixed.Q(24)
	for _, p := range []Policy{Granularity, Spacing} {
		tbl, err := BuildFixed(stdmath.Exp, Domain{0, stdmath.Ln2}, 10, p, q)
		require.NoError(t, err)
		assert.Equal(t, p, tbl.Policy())
		assert.Equal(t, q.One(), tbl.Nearest(0), "%v", p)
		assert.Equal(t, q.One(), tbl.Interp(0), "%v", p)

		var near, lin accuracy.Accumulator
		for x := 0.0; x < stdmath.Ln2; x += 1e-4 {
			v := q.FromFloat64(x)
			want := stdmath.Exp(q.ToFloat64(v))
			near.Add(x, q.ToFloat64(tbl.Nearest(v)), want)
			lin.Add(x, q.ToFloat64(tbl.Interp(v)), want)
		}
		assert.Less(t, near.Stats().MaxAbs, 2e-3, "%v nearest", p)
		assert.Less(t, lin.Stats().MaxAbs, 1e-6, "%v interp", p)
		assert.Less(t, lin.Stats().RMS, near.Stats().RMS)
	}
}

func TestFixedTableNegativeOrigin(t *testing.T) {
	q := fixed.Q(20)
	tbl, err := BuildFixed(stdmath.Log, Domain{0.5, 1}, 10, Granularity, q)
	require.NoError(t, err)
	for _, x := range []float64{0.5, 0.6, 0.75, 0.9999} {
		got := q.ToFloat64(tbl.Interp(q.FromFloat64(x)))
		assert.InDelta(t, stdmath.Log(x), got, 5e-6, "log(%v)", x)
	}
}

func TestCNDF(t *testing.T) {
	for _, p := range []Policy{Granularity, Spacing} {
		for _, interp := range []bool{false, true} {
			c, err := NewCNDF(p, 10, interp)
			require.NoError(t, err)
			assert.Equal(t, float32(0.5), c.Eval(0))

			tol := 1e-2
			if interp {
				tol = 2e-5
			}
			for x := float32(-8); x < 8; x += 0.01 {
				assert.InDelta(t, 1, c.Eval(x)+c.Eval(-x), 1e-6, "symmetry at %v", x)
				assert.InDelta(t, NormalCDF(float64(x)), c.Eval(x), tol, "%v interp=%v cndf(%v)", p, interp, x)
			}
			assert.InDelta(t, 1, c.Eval(50), 1e-6)
			assert.InDelta(t, 0, c.Eval(-50), 1e-6)
		}
	}
}

func TestFixedCNDF(t *testing.T) {
	q := fixed.Q(20)
	c, err := NewFixedCNDF(Granularity, 10, true, q)
	require.NoError(t, err)
	assert.Equal(t, q.Half(), c.Eval(0))
	assert.Equal(t, 1024, c.Table().Size())
	for x := -8.0; x < 8; x += 0.05 {
		v := q.FromFloat64(x)
		assert.Equal(t, q.One(), c.Eval(v)+c.Eval(-v), "symmetry at %v", x)
		assert.InDelta(t, NormalCDF(x), q.ToFloat64(c.Eval(v)), 2e-5, "cndf(%v)", x)
	}
}

func TestPure(t *testing.T) {
	tbl, err := Build(stdmath.Sin, Domain{0, stdmath.Pi / 2}, 10, Granularity)
	require.NoError(t, err)
	for _, x := range []float32{0.1, 0.7, 1.5} {
		assert.Equal(t, tbl.Interp(x), tbl.Interp(x))
		assert.Equal(t, tbl.Nearest(x), tbl.Nearest(x))
	}
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "granularity", Granularity.String())
	assert.Equal(t, "spacing", Spacing.String())
	assert.Equal(t, "bucketed", Bucketed.String())
	assert.Equal(t, "unknown", Policy(9).String())
}

func BenchmarkGranularityInterp(b *testing.B) {
	tbl, _ := BuildGranularity(stdmath.Sin, Domain{0, stdmath.Pi / 2}, 10)
	var sink float32
	for b.Loop() {
		sink += tbl.Interp(0.7)
	}
	_ = sink
}

func BenchmarkSpacingInterp(b *testing.B) {
	tbl, _ := BuildSpacing(stdmath.Sin, Domain{0, stdmath.Pi / 2}, 10)
	var sink float32
	for b.Loop() {
		sink += tbl.Interp(0.7)
	}
	_ = sink
}
