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

package pricing

import (
	"github.com/ajroetker/go-approx/approx"
	"github.com/ajroetker/go-approx/approx/contrib/workerpool"
	"github.com/ajroetker/go-approx/approx/fixed"
)

// DefaultFormat holds prices up to 2047 with 20 fractional bits.
var DefaultFormat = fixed.Q(20)

// FixedOption is an Option in a fixed-point format.
type FixedOption struct {
	Spot       int32
	Strike     int32
	Rate       int32
	Volatility int32
	Time       int32
	Kind       Kind
}

// Fixed converts o to format q.
func (o Option) Fixed(q fixed.Format) FixedOption {
	return FixedOption{
		Spot:       q.FromFloat(o.Spot),
		Strike:     q.FromFloat(o.Strike),
		Rate:       q.FromFloat(o.Rate),
		Volatility: q.FromFloat(o.Volatility),
		Time:       q.FromFloat(o.Time),
		Kind:       o.Kind,
	}
}

func (o FixedOption) degenerate() bool {
	return o.Strike == 0 || o.Volatility == 0 || o.Time == 0
}

// FixedPricer prices options entirely in fixed point.
type FixedPricer struct {
	q fixed.Format

	sqrt, log, exp, cndf *approx.FixedEvaluator
}

// NewFixed builds the fixed-point evaluators the pricer needs from e in
// format q. Table size, interpolation, policy and tier follow the engine.
func NewFixed(e *approx.Engine, q fixed.Format) (*FixedPricer, error) {
	fp := &FixedPricer{q: q}
	for _, b := range []struct {
		fn  approx.Function
		dst **approx.FixedEvaluator
	}{
		{approx.Sqrt, &fp.sqrt},
		{approx.Log, &fp.log},
		{approx.Exp, &fp.exp},
		{approx.CNDF, &fp.cndf},
	} {
		ev, err := e.BuildFixed(b.fn, q)
		if err != nil {
			return nil, err
		}
		*b.dst = ev
	}
	return fp, nil
}

// Format returns the pricer's fixed-point format.
func (fp *FixedPricer) Format() fixed.Format { return fp.q }

// Price returns the option value in the pricer's format.
func (fp *FixedPricer) Price(o FixedOption) int32 {
	if o.degenerate() {
		return 0
	}
	q := fp.q
	sqrtT := fp.sqrt.Eval(o.Time)
	logTerm := fp.log.Eval(q.DivSat(o.Spot, o.Strike))

	power := q.Mul(o.Volatility, o.Volatility) >> 1
	d1 := q.Mul(o.Rate+power, o.Time) + logTerm
	den := q.Mul(o.Volatility, sqrtT)
	// Tiny denominators saturate d1 instead of wrapping.
	d1 = q.DivSat(d1, den)
	d2 := d1 - den

	nd1, nd2 := fp.cndf.Eval(d1), fp.cndf.Eval(d2)
	fv := q.Mul(o.Strike, fp.exp.Eval(-q.Mul(o.Rate, o.Time)))
	if o.Kind == Put {
		one := q.One()
		return q.Mul(fv, one-nd2) - q.Mul(o.Spot, one-nd1)
	}
	return q.Mul(o.Spot, nd1) - q.Mul(fv, nd2)
}

// PriceBatch writes the price of opts[i] to out[i] for
// i < min(len(opts), len(out)). A nil pool runs on the calling goroutine.
func (fp *FixedPricer) PriceBatch(pool *workerpool.Pool, opts []FixedOption, out []int32) {
	n := min(len(opts), len(out))
	if pool == nil {
		for i := range n {
			out[i] = fp.Price(opts[i])
		}
		return
	}
	pool.ParallelFor(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			out[i] = fp.Price(opts[i])
		}
	})
}
