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

// Package pricing prices European options with the Black-Scholes formula,
// evaluating sqrt, log, exp and the normal CDF by approximation.
package pricing

import (
	"math"

	"github.com/ajroetker/go-approx/approx"
	"github.com/ajroetker/go-approx/approx/contrib/workerpool"
)

// Kind is the option type.
type Kind uint8

const (
	Call Kind = iota
	Put
)

// ParseKind maps the one-letter option type: 'P' is a put, anything else a
// call.
func ParseKind(c byte) Kind {
	if c == 'P' {
		return Put
	}
	return Call
}

func (k Kind) String() string {
	if k == Put {
		return "put"
	}
	return "call"
}

// Option is a European option without dividends.
type Option struct {
	Spot       float32
	Strike     float32
	Rate       float32
	Volatility float32
	// Time to expiry in years.
	Time float32
	Kind Kind
}

// degenerate reports options whose price is left at zero.
func (o Option) degenerate() bool {
	return o.Strike == 0 || o.Volatility == 0 || o.Time == 0
}

// Pricer prices options in float32 through an approx.Engine.
type Pricer struct {
	sqrt, log, exp, cndf func(float32) float32
}

// New builds a pricer from e. Functions the engine's method cannot
// evaluate use granularity tables.
func New(e *approx.Engine) (*Pricer, error) {
	var p Pricer
	for _, b := range []struct {
		fn  approx.Function
		dst *func(float32) float32
	}{
		{approx.Sqrt, &p.sqrt},
		{approx.Log, &p.log},
		{approx.Exp, &p.exp},
		{approx.CNDF, &p.cndf},
	} {
		m := e.Config().Method
		if !m.Supports(b.fn) {
			m = approx.LutGranularity
		}
		ev, err := e.BuildMethod(b.fn, m)
		if err != nil {
			return nil, err
		}
		*b.dst = ev.Func()
	}
	return &p, nil
}

// Price returns the option value. Options with a zero strike, volatility
// or time are priced at zero.
func (p *Pricer) Price(o Option) float32 {
	if o.degenerate() {
		return 0
	}
	sqrtT := p.sqrt(o.Time)
	logTerm := p.log(o.Spot / o.Strike)

	d1 := (o.Rate+o.Volatility*o.Volatility*0.5)*o.Time + logTerm
	den := o.Volatility * sqrtT
	d1 /= den
	d2 := d1 - den

	nd1, nd2 := p.cndf(d1), p.cndf(d2)
	fv := o.Strike * p.exp(-o.Rate*o.Time)
	if o.Kind == Put {
		return fv*(1-nd2) - o.Spot*(1-nd1)
	}
	return o.Spot*nd1 - fv*nd2
}

// PriceBatch writes the price of opts[i] to out[i] for
// i < min(len(opts), len(out)). A nil pool runs on the calling goroutine.
func (p *Pricer) PriceBatch(pool *workerpool.Pool, opts []Option, out []float32) {
	n := min(len(opts), len(out))
	if pool == nil {
		for i := range n {
			out[i] = p.Price(opts[i])
		}
		return
	}
	pool.ParallelFor(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			out[i] = p.Price(opts[i])
		}
	})
}

// Reference prices o in float64 with the math package.
func Reference(o Option) float64 {
	if o.degenerate() {
		return 0
	}
	s, k := float64(o.Spot), float64(o.Strike)
	r, v, t := float64(o.Rate), float64(o.Volatility), float64(o.Time)

	den := v * math.Sqrt(t)
	d1 := ((r+v*v/2)*t + math.Log(s/k)) / den
	d2 := d1 - den
	ncdf := func(x float64) float64 { return 0.5 * math.Erfc(-x/math.Sqrt2) }
	fv := k * math.Exp(-r*t)
	if o.Kind == Put {
		return fv*ncdf(-d2) - s*ncdf(-d1)
	}
	return s*ncdf(d1) - fv*ncdf(d2)
}
