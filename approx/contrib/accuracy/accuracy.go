// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package accuracy measures approximation error against a double-precision
// reference: maximum absolute error and root-mean-square error over a dense
// sample of a domain.
package accuracy

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Stats summarizes the error of an approximation over a sample.
type Stats struct {
	MaxAbs float64
	RMS    float64
	// WorstAt is the input with the largest absolute error.
	WorstAt float64
	N       int
}

func (s Stats) String() string {
	return fmt.Sprintf("max=%.3e rms=%.3e at=%g n=%d", s.MaxAbs, s.RMS, s.WorstAt, s.N)
}

// Bound is a documented error budget.
type Bound struct {
	MaxAbs float64
	RMS    float64
}

// Within reports whether s respects b.
func (s Stats) Within(b Bound) bool {
	return s.MaxAbs <= b.MaxAbs && s.RMS <= b.RMS
}

// Accumulator collects errors one sample at a time.
type Accumulator struct {
	sumSq float64
	s     Stats
}

// Add records the error of got against want at input x.
func (a *Accumulator) Add(x, got, want float64) {
	d := math.Abs(got - want)
	if d > a.s.MaxAbs || a.s.N == 0 {
		a.s.MaxAbs = d
		a.s.WorstAt = x
	}
	a.sumSq += d * d
	a.s.N++
}

// Stats returns the summary so far.
func (a *Accumulator) Stats() Stats {
	s := a.s
	if s.N > 0 {
		s.RMS = math.Sqrt(a.sumSq / float64(s.N))
	}
	return s
}

// Measure evaluates approx and ref at n evenly spaced points of [lo, hi).
func Measure[T constraints.Float](approx func(T) T, ref func(float64) float64, lo, hi float64, n int) Stats {
	var acc Accumulator
	step := (hi - lo) / float64(n)
	for i := range n {
		x := T(lo + float64(i)*step)
		acc.Add(float64(x), float64(approx(x)), ref(float64(x)))
	}
	return acc.Stats()
}

// Compare measures got against want element-wise, using the element index
// as the reported input.
func Compare[T constraints.Float](got []T, want []float64) Stats {
	var acc Accumulator
	for i := range min(len(got), len(want)) {
		acc.Add(float64(i), float64(got[i]), want[i])
	}
	return acc.Stats()
}

// Entry is one named measurement in a Report.
type Entry struct {
	Name string
	Stats
}

// Report collects named measurements.
type Report struct {
	entries map[string]Stats
}

// Add records s under name, replacing any earlier entry.
func (r *Report) Add(name string, s Stats) {
	if r.entries == nil {
		r.entries = make(map[string]Stats)
	}
	r.entries[name] = s
}

// Len returns the number of entries.
func (r *Report) Len() int { return len(r.entries) }

// Names returns the entry names in sorted order.
func (r *Report) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Entries returns a copy of every recorded measurement.
func (r *Report) Entries() map[string]Stats {
	return maps.Clone(r.entries)
}

// Worst returns up to n entries ordered by decreasing maximum error, ties
// broken by name.
func (r *Report) Worst(n int) []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, name := range r.Names() {
		out = append(out, Entry{Name: name, Stats: r.entries[name]})
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.MaxAbs > b.MaxAbs:
			return -1
		case a.MaxAbs < b.MaxAbs:
			return 1
		}
		return 0
	})
	return out[:min(n, len(out))]
}
