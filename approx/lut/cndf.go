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

	"github.com/ajroetker/go-approx/approx/fixed"
)

// CNDFDomain is the tabulated half of the standard normal CDF. Negative
// operands use the symmetry CNDF(x) = 1 - CNDF(-x).
var CNDFDomain = Domain{Lower: 0, Upper: 9}

// NormalCDF is the double-precision reference standard normal CDF.
func NormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// CNDF evaluates the standard normal CDF from a float32 table of
// NormalCDF(x) - 0.5 on CNDFDomain, so that CNDF(0) is exactly 0.5.
// Operands beyond the domain saturate to the edge sample.
type CNDF struct {
	table  Table
	interp bool
	lookup func(float32) float32
	upper  float32
}

// NewCNDF builds the CNDF table with policy p (Granularity or Spacing).
func NewCNDF(p Policy, bits int, interp bool) (*CNDF, error) {
	t, err := Build(func(x float64) float64 { return NormalCDF(x) - 0.5 }, CNDFDomain, bits, p)
	if err != nil {
		return nil, err
	}
	return newCNDF(t, interp), nil
}

func newCNDF(t Table, interp bool) *CNDF {
	c := &CNDF{table: t, interp: interp, lookup: t.Nearest, upper: float32(CNDFDomain.Upper)}
	if interp {
		c.lookup = t.Interp
	}
	return c
}

// Table returns the underlying table.
func (c *CNDF) Table() Table { return c.table }

// Rebind returns a CNDF whose table reads samples.
func (c *CNDF) Rebind(samples []float32) (*CNDF, error) {
	t, err := c.table.Rebind(samples)
	if err != nil {
		return nil, err
	}
	return newCNDF(t, c.interp), nil
}

// Eval returns an approximation of NormalCDF(x).
func (c *CNDF) Eval(x float32) float32 {
	if x < 0 {
		return 0.5 - c.lookup(min(-x, c.upper))
	}
	return 0.5 + c.lookup(min(x, c.upper))
}

// FixedCNDF evaluates the standard normal CDF from a fixed-point table of
// NormalCDF on CNDFDomain.
type FixedCNDF struct {
	table  *FixedTable
	interp bool
	one    int32
	upper  int32
}

// NewFixedCNDF builds the fixed-point CNDF table. The format must hold 9.
func NewFixedCNDF(p Policy, bits int, interp bool, q fixed.Format) (*FixedCNDF, error) {
	t, err := BuildFixed(NormalCDF, CNDFDomain, bits, p, q)
	if err != nil {
		return nil, err
	}
	return &FixedCNDF{table: t, interp: interp, one: q.One(), upper: q.FromFloat64(CNDFDomain.Upper)}, nil
}

// Table returns the underlying table.
func (c *FixedCNDF) Table() *FixedTable { return c.table }

// Rebind returns a FixedCNDF whose table reads samples.
func (c *FixedCNDF) Rebind(samples []int32) (*FixedCNDF, error) {
	t, err := c.table.Rebind(samples)
	if err != nil {
		return nil, err
	}
	r := *c
	r.table = t
	return &r, nil
}

// Eval returns an approximation of NormalCDF(x) in the table's format.
func (c *FixedCNDF) Eval(x int32) int32 {
	if x > 0 {
		return c.lookup(min(x, c.upper))
	}
	return c.one - c.lookup(min(-x, c.upper))
}

func (c *FixedCNDF) lookup(x int32) int32 {
	if c.interp {
		return c.table.Interp(x)
	}
	return c.table.Nearest(x)
}
