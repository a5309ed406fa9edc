// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool runs element-wise evaluation across a fixed set of
// persistent lanes. Each lane is a goroutine with a stable index, so callers
// can give every lane its own scratch space without synchronization.
//
// Lanes never communicate with each other: work is split into disjoint
// index ranges and a call returns once every range is done.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	pool.ParallelFor(len(in), func(lane, start, end int) {
//	    for i := start; i < end; i++ {
//	        out[i] = eval(in[i])
//	    }
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of persistent lanes.
type Pool struct {
	lanes     int
	workC     []chan task
	closeOnce sync.Once
	closed    atomic.Bool
}

// task is one range assignment for a lane.
type task struct {
	fn   func(lane int)
	done *sync.WaitGroup
}

// New starts a pool with the given number of lanes. If lanes <= 0 the pool
// uses GOMAXPROCS.
func New(lanes int) *Pool {
	if lanes <= 0 {
		lanes = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		lanes: lanes,
		workC: make([]chan task, lanes),
	}
	for lane := range lanes {
		p.workC[lane] = make(chan task, 2)
		go p.run(lane)
	}
	return p
}

func (p *Pool) run(lane int) {
	for t := range p.workC[lane] {
		t.fn(lane)
		t.done.Done()
	}
}

// Lanes returns the number of lanes.
func (p *Pool) Lanes() int {
	return p.lanes
}

// Close stops every lane after pending work completes. Calling Close more
// than once is safe; a closed pool runs all work on the calling goroutine
// as lane 0.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		for _, c := range p.workC {
			close(c)
		}
	})
}

// ParallelFor splits [0, n) into one contiguous range per lane and blocks
// until every range is processed. fn receives the lane index and the range
// [start, end).
func (p *Pool) ParallelFor(n int, fn func(lane, start, end int)) {
	if n <= 0 {
		return
	}
	lanes := min(p.lanes, n)
	if lanes == 1 || p.closed.Load() {
		fn(0, 0, n)
		return
	}

	chunk := (n + lanes - 1) / lanes
	var wg sync.WaitGroup
	for lane := range lanes {
		start := lane * chunk
		if start >= n {
			break
		}
		end := min(start+chunk, n)
		wg.Add(1)
		p.workC[lane] <- task{
			fn:   func(lane int) { fn(lane, start, end) },
			done: &wg,
		}
	}
	wg.Wait()
}

// ParallelForBatched hands out [0, n) in batches of batchSize through an
// atomic cursor, which balances lanes when per-element cost varies. It
// blocks until every batch is processed.
func (p *Pool) ParallelForBatched(n, batchSize int, fn func(lane, start, end int)) {
	if n <= 0 {
		return
	}
	batchSize = max(batchSize, 1)
	batches := (n + batchSize - 1) / batchSize
	lanes := min(p.lanes, batches)
	if lanes == 1 || p.closed.Load() {
		fn(0, 0, n)
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(lanes)
	for lane := range lanes {
		p.workC[lane] <- task{
			fn: func(lane int) {
				for {
					start := int(next.Add(1)-1) * batchSize
					if start >= n {
						return
					}
					fn(lane, start, min(start+batchSize, n))
				}
			},
			done: &wg,
		}
	}
	wg.Wait()
}
