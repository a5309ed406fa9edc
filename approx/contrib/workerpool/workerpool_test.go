// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.Lanes() != 4 {
		t.Errorf("Lanes() = %d, want 4", pool.Lanes())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.Lanes() != runtime.GOMAXPROCS(0) {
		t.Errorf("Lanes() = %d, want %d", pool.Lanes(), runtime.GOMAXPROCS(0))
	}
}

func TestParallelForCoversRange(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	for _, n := range []int{1, 3, 4, 5, 100, 1001} {
		hits := make([]int32, n)
		pool.ParallelFor(n, func(lane, start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d processed %d times, want 1", n, i, h)
			}
		}
	}
}

func TestParallelForLaneIndex(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	// Each lane writes only its own slot, so no synchronization is needed.
	perLane := make([]int, pool.Lanes())
	pool.ParallelFor(1000, func(lane, start, end int) {
		perLane[lane] += end - start
	})

	total := 0
	for lane, c := range perLane {
		if c != 250 {
			t.Errorf("lane %d processed %d elements, want 250", lane, c)
		}
		total += c
	}
	if total != 1000 {
		t.Errorf("total = %d, want 1000", total)
	}
}

func TestParallelForBatched(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 1000
	results := make([]int, n)
	var calls atomic.Int32
	pool.ParallelForBatched(n, 64, func(lane, start, end int) {
		calls.Add(1)
		if lane < 0 || lane >= pool.Lanes() {
			t.Errorf("lane %d out of range", lane)
		}
		if end-start > 64 {
			t.Errorf("batch [%d, %d) larger than 64", start, end)
		}
		for i := start; i < end; i++ {
			results[i] = i * 2
		}
	})

	for i := range n {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
	if got := calls.Load(); got != 16 {
		t.Errorf("batches = %d, want 16", got)
	}
}

func TestZeroAndNegative(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	called := false
	pool.ParallelFor(0, func(int, int, int) { called = true })
	pool.ParallelForBatched(-1, 8, func(int, int, int) { called = true })
	if called {
		t.Error("fn called for empty range")
	}
}

func TestClosedPoolRunsInline(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close()

	var lanes []int
	pool.ParallelFor(10, func(lane, start, end int) {
		lanes = append(lanes, lane)
		if start != 0 || end != 10 {
			t.Errorf("range [%d, %d), want [0, 10)", start, end)
		}
	})
	if len(lanes) != 1 || lanes[0] != 0 {
		t.Errorf("lanes = %v, want [0]", lanes)
	}
}

func BenchmarkParallelFor(b *testing.B) {
	pool := New(0)
	defer pool.Close()
	data := make([]float32, 1<<16)
	for b.Loop() {
		pool.ParallelFor(len(data), func(_, start, end int) {
			for i := start; i < end; i++ {
				data[i] = data[i]*0.5 + 1
			}
		})
	}
}
