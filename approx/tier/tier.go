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

// Package tier models a two-level memory hierarchy: a small fast tier with
// a hard byte budget and a large bulk tier. Nothing moves between tiers
// implicitly. Data enters the bulk tier through Register and reaches the
// fast tier only through Stage, which copies a range in and returns a
// handle whose Release copies it back out.
package tier

import (
	"log"
	"sync"
	"unsafe"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// Tier names a memory level.
type Tier uint8

const (
	Fast Tier = iota
	Bulk
)

func (t Tier) String() string {
	switch t {
	case Fast:
		return "fast"
	case Bulk:
		return "bulk"
	}
	return "unknown"
}

// Default capacities, matching a 64 KiB scratchpad and 64 MiB of bank
// memory per lane group.
const (
	DefaultFastBytes = 64 << 10
	DefaultBulkBytes = 64 << 20
)

var (
	ErrUnknownBuffer = xerrors.New("tier: unknown buffer")
	ErrDuplicate     = xerrors.New("tier: buffer already registered")
	ErrRange         = xerrors.New("tier: range out of bounds")
	ErrCapacity      = xerrors.New("tier: capacity exceeded")
	ErrType          = xerrors.New("tier: element type mismatch")
	ErrConfig        = xerrors.New("tier: invalid configuration")
)

// Elem is the set of element types a buffer may hold.
type Elem interface {
	~float32 | ~int32 | ~uint32
}

// Config sizes the two tiers.
type Config struct {
	FastBytes int
	BulkBytes int

	// Logger, when set, receives one line per registration and stage.
	Logger *log.Logger
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs *multierror.Error
	if c.FastBytes <= 0 {
		errs = multierror.Append(errs, xerrors.Errorf("fast tier bytes %d: %w", c.FastBytes, ErrConfig))
	}
	if c.BulkBytes <= 0 {
		errs = multierror.Append(errs, xerrors.Errorf("bulk tier bytes %d: %w", c.BulkBytes, ErrConfig))
	}
	// Sizes are only compared once both are valid.
	if c.FastBytes > 0 && c.BulkBytes > 0 && c.FastBytes > c.BulkBytes {
		errs = multierror.Append(errs, xerrors.Errorf("fast tier (%d) larger than bulk tier (%d): %w", c.FastBytes, c.BulkBytes, ErrConfig))
	}
	return errs.ErrorOrNil()
}

// Store owns the bulk tier and accounts for fast-tier usage.
// It is safe for concurrent use.
type Store struct {
	cfg Config

	mu       sync.Mutex
	fastUsed int
	bulkUsed int
	bufs     map[string]*buffer
}

type buffer struct {
	data  any
	bytes int
}

// NewStore validates cfg and returns an empty store.
func NewStore(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{cfg: cfg, bufs: make(map[string]*buffer)}, nil
}

// FastUsed returns the bytes currently staged in the fast tier.
func (s *Store) FastUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fastUsed
}

// FastFree returns the remaining fast-tier budget.
func (s *Store) FastFree() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.FastBytes - s.fastUsed
}

// BulkUsed returns the bytes registered in the bulk tier.
func (s *Store) BulkUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulkUsed
}

func (s *Store) logf(format string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Printf(format, args...)
	}
}

func sizeOf[T Elem]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Register copies data into the bulk tier under name.
func Register[T Elem](s *Store, name string, data []T) error {
	n := len(data) * sizeOf[T]()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bufs[name]; ok {
		return xerrors.Errorf("%q: %w", name, ErrDuplicate)
	}
	if s.bulkUsed+n > s.cfg.BulkBytes {
		return xerrors.Errorf("register %q (%d bytes, %d free): %w", name, n, s.cfg.BulkBytes-s.bulkUsed, ErrCapacity)
	}
	s.bufs[name] = &buffer{data: append([]T(nil), data...), bytes: n}
	s.bulkUsed += n
	s.logf("tier: registered %q in bulk tier (%d bytes)", name, n)
	return nil
}

// Read copies the bulk-tier contents of name.
func Read[T Elem](s *Store, name string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := lookup[T](s, name)
	if err != nil {
		return nil, err
	}
	return append([]T(nil), data...), nil
}

// View returns the bulk-tier buffer of name itself, for readers that
// evaluate straight from the bulk tier. Callers must not modify it while
// a range of it is staged.
func View[T Elem](s *Store, name string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lookup[T](s, name)
}

func lookup[T Elem](s *Store, name string) ([]T, error) {
	b, ok := s.bufs[name]
	if !ok {
		return nil, xerrors.Errorf("%q: %w", name, ErrUnknownBuffer)
	}
	data, ok := b.data.([]T)
	if !ok {
		return nil, xerrors.Errorf("%q holds %T: %w", name, b.data, ErrType)
	}
	return data, nil
}

// Staged is a fast-tier copy of a bulk-tier range.
type Staged[T Elem] struct {
	// Data is the fast-tier copy. It stays valid until Release or Discard.
	Data []T

	s        *Store
	name     string
	lo       int
	bytes    int
	released bool
}

// Stage copies elements [lo, hi) of the named buffer into the fast tier.
func Stage[T Elem](s *Store, name string, lo, hi int) (*Staged[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := lookup[T](s, name)
	if err != nil {
		return nil, err
	}
	if lo < 0 || hi > len(data) || lo > hi {
		return nil, xerrors.Errorf("stage %q [%d, %d) of %d: %w", name, lo, hi, len(data), ErrRange)
	}
	n := (hi - lo) * sizeOf[T]()
	if s.fastUsed+n > s.cfg.FastBytes {
		return nil, xerrors.Errorf("stage %q (%d bytes, %d free): %w", name, n, s.cfg.FastBytes-s.fastUsed, ErrCapacity)
	}
	s.fastUsed += n
	s.logf("tier: staged %q [%d, %d) into fast tier (%d bytes)", name, lo, hi, n)

	return &Staged[T]{
		Data:  append([]T(nil), data[lo:hi]...),
		s:     s,
		name:  name,
		lo:    lo,
		bytes: n,
	}, nil
}

// Release copies the staged data back to the bulk tier and frees its
// fast-tier budget. Calling Release or Discard again has no effect.
func (st *Staged[T]) Release() error {
	return st.finish(true)
}

// Discard frees the fast-tier budget without copying back.
func (st *Staged[T]) Discard() {
	_ = st.finish(false)
}

func (st *Staged[T]) finish(copyOut bool) error {
	s := st.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.released {
		return nil
	}
	st.released = true
	s.fastUsed -= st.bytes
	if !copyOut {
		return nil
	}
	data, err := lookup[T](s, st.name)
	if err != nil {
		return err
	}
	copy(data[st.lo:], st.Data)
	return nil
}
