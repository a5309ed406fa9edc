// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package tier

import (
	"golang.org/x/sys/cpu"
	"golang.org/x/xerrors"
)

// Scratch holds one fast-tier buffer per worker lane. Slots are padded to
// separate cache lines so lanes never share a line.
type Scratch[T Elem] struct {
	slots []slot[T]
}

type slot[T Elem] struct {
	_   cpu.CacheLinePad
	buf []T
	_   cpu.CacheLinePad
}

// NewScratch reserves lanes*size elements of fast-tier budget from s.
// Free returns the budget.
func NewScratch[T Elem](s *Store, lanes, size int) (*Scratch[T], error) {
	if lanes <= 0 || size <= 0 {
		return nil, xerrors.Errorf("scratch %d lanes x %d: %w", lanes, size, ErrRange)
	}
	n := lanes * size * sizeOf[T]()
	s.mu.Lock()
	if s.fastUsed+n > s.cfg.FastBytes {
		free := s.cfg.FastBytes - s.fastUsed
		s.mu.Unlock()
		return nil, xerrors.Errorf("scratch %d lanes x %d (%d bytes, %d free): %w", lanes, size, n, free, ErrCapacity)
	}
	s.fastUsed += n
	s.mu.Unlock()

	sc := &Scratch[T]{slots: make([]slot[T], lanes)}
	for i := range sc.slots {
		sc.slots[i].buf = make([]T, size)
	}
	return sc, nil
}

// Lanes returns the number of lane buffers.
func (sc *Scratch[T]) Lanes() int { return len(sc.slots) }

// Size returns the element capacity of each lane buffer.
func (sc *Scratch[T]) Size() int { return len(sc.slots[0].buf) }

// Lane returns the buffer owned by lane i.
func (sc *Scratch[T]) Lane(i int) []T { return sc.slots[i].buf }

// Free returns the scratch budget to s. The buffers must not be used after.
func (sc *Scratch[T]) Free(s *Store) {
	if sc.slots == nil {
		return
	}
	n := len(sc.slots) * len(sc.slots[0].buf) * sizeOf[T]()
	s.mu.Lock()
	s.fastUsed -= n
	s.mu.Unlock()
	sc.slots = nil
}
