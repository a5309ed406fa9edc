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

// Package lut builds and evaluates lookup tables that approximate a
// function on a fixed domain from double-precision reference samples.
//
// Three addressing policies are supported:
//   - Granularity: samples every 2^g, addressed with an exponent shift
//   - Spacing: samples every (upper-lower)/(size-1), addressed with a multiply
//   - Bucketed: addressed from the IEEE exponent and top mantissa bits, so
//     resolution follows the operand's magnitude
//
// Every table has 2^P addressable samples plus one guard sample at the top,
// so the interpolating evaluators never read past the end. Tables are
// immutable after construction and safe for concurrent use.
//
// Evaluators do not check bounds beyond what Go itself enforces: inputs
// outside a table's domain are outside the contract.
package lut

import (
	"math"

	"golang.org/x/xerrors"
)

var (
	// ErrBits is returned for table sizes outside [MinBits, MaxBits].
	ErrBits = xerrors.New("lut: table bits out of range")

	// ErrDomain is returned for empty or non-finite domains.
	ErrDomain = xerrors.New("lut: invalid domain")

	// ErrPolicy is returned for unknown policies or invalid bucket layouts.
	ErrPolicy = xerrors.New("lut: invalid policy")

	// ErrSamples is returned when rebinding a table to a sample slice of a
	// different length.
	ErrSamples = xerrors.New("lut: sample count mismatch")
)

// Table size limits, as log2 of the sample count.
const (
	MinBits = 2
	MaxBits = 24
)

// Func is a double-precision reference function.
type Func func(float64) float64

// Domain is the half-open interval [Lower, Upper) a table covers.
type Domain struct {
	Lower, Upper float64
}

// Width returns Upper - Lower.
func (d Domain) Width() float64 { return d.Upper - d.Lower }

// Contains reports whether x lies in [Lower, Upper).
func (d Domain) Contains(x float64) bool { return x >= d.Lower && x < d.Upper }

func (d Domain) validate() error {
	if math.IsNaN(d.Lower) || math.IsInf(d.Lower, 0) || math.IsNaN(d.Upper) || math.IsInf(d.Upper, 0) || d.Upper <= d.Lower {
		return xerrors.Errorf("[%v, %v): %w", d.Lower, d.Upper, ErrDomain)
	}
	return nil
}

// Policy selects how an operand is turned into a table address.
type Policy uint8

const (
	Granularity Policy = iota
	Spacing
	Bucketed
)

func (p Policy) String() string {
	switch p {
	case Granularity:
		return "granularity"
	case Spacing:
		return "spacing"
	case Bucketed:
		return "bucketed"
	}
	return "unknown"
}

// Table is the evaluation contract shared by every float32 table.
type Table interface {
	// Nearest returns the sample whose address is closest to x.
	Nearest(x float32) float32
	// Interp linearly interpolates between the two samples around x.
	Interp(x float32) float32
	// Size returns the number of addressable samples, 2^P.
	Size() int
	// Samples returns the backing samples, guard included. Callers must
	// not modify the slice.
	Samples() []float32
	// Rebind returns a table with the same addressing that reads samples,
	// which must have the length of Samples().
	Rebind(samples []float32) (Table, error)
}

// Build constructs a float32 table for f over d with 2^bits samples using
// the Granularity or Spacing policy. Bucketed tables take a layout and are
// built with BuildBucketed.
func Build(f Func, d Domain, bits int, p Policy) (Table, error) {
	switch p {
	case Granularity:
		return BuildGranularity(f, d, bits)
	case Spacing:
		return BuildSpacing(f, d, bits)
	}
	return nil, xerrors.Errorf("policy %v needs a bucket layout: %w", p, ErrPolicy)
}

func checkSamples(want, got int) error {
	if want != got {
		return xerrors.Errorf("%d samples for a table of %d: %w", got, want, ErrSamples)
	}
	return nil
}

func checkBits(bits int) error {
	if bits < MinBits || bits > MaxBits {
		return xerrors.Errorf("%d: %w", bits, ErrBits)
	}
	return nil
}

// sample32 evaluates f and saturates non-finite or out-of-range values to
// the largest finite float32.
func sample32(f Func, x float64) float32 {
	v := f(x)
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxFloat32:
		return math.MaxFloat32
	case v < -math.MaxFloat32:
		return -math.MaxFloat32
	}
	return float32(v)
}

// lerp returns base + (next-base)*frac.
func lerp(base, next, frac float32) float32 {
	return base + (next-base)*frac
}
