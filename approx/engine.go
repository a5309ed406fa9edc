// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package approx

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/sys/cpu"
	"golang.org/x/xerrors"

	"github.com/ajroetker/go-approx/approx/contrib/workerpool"
	"github.com/ajroetker/go-approx/approx/cordic"
	"github.com/ajroetker/go-approx/approx/fixed"
	"github.com/ajroetker/go-approx/approx/lut"
	"github.com/ajroetker/go-approx/approx/tier"
)

// Engine builds evaluators for one configuration. Tables and CORDIC
// constants are built on first use, shared by every evaluator of the
// engine, and never modified afterwards.
//
// Engine is safe for concurrent use. Evaluators stay valid until Close.
type Engine struct {
	cfg    Config
	q      fixed.Format
	cordic *cordic.Engine
	store  *tier.Store

	// Seeded rotations, nil unless SeedBits is set.
	seedCircular   *cordic.Seeded
	seedHyperbolic *cordic.Seeded

	mu       sync.Mutex
	tables   map[string]any
	resident []interface{ Discard() }
}

// New validates cfg, filling zero numeric knobs with their defaults, and
// builds the CORDIC constants.
func New(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	q := fixed.Q(uint(cfg.FractionBits))
	consts, err := cordic.NewConstants(cordic.MainTableLength, q)
	if err != nil {
		return nil, err
	}
	store, err := tier.NewStore(tier.Config{FastBytes: cfg.FastBytes, BulkBytes: cfg.BulkBytes, Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		q:      q,
		store:  store,
		tables: make(map[string]any),
	}
	// Rotations read the angle tables from their tier.
	if consts.Atan, err = place(e, "cordic/atan", consts.Atan); err != nil {
		return nil, err
	}
	if consts.Atanh, err = place(e, "cordic/atanh", consts.Atanh); err != nil {
		return nil, err
	}
	if e.cordic, err = cordic.New(consts, cfg.Precision); err != nil {
		return nil, err
	}
	if cfg.SeedBits > 0 {
		if e.seedCircular, err = e.seeds(consts, cordic.CircularRotation, math.Pi/2); err != nil {
			return nil, xerrors.Errorf("circular seeds: %w", err)
		}
		if e.seedHyperbolic, err = e.seeds(consts, cordic.HyperbolicRotation, math.Ln2); err != nil {
			return nil, xerrors.Errorf("hyperbolic seeds: %w", err)
		}
	}
	return e, nil
}

// seeds builds the seed table of mode m and rebinds it to its tier copies.
func (e *Engine) seeds(c *cordic.Constants, m cordic.Mode, upper float64) (*cordic.Seeded, error) {
	s, err := cordic.NewSeeded(c, m, e.cfg.Precision, e.cfg.SeedBits, upper)
	if err != nil {
		return nil, err
	}
	xs, ys := s.Tables()
	name := fmt.Sprintf("cordic/seed/%v/%d", m, e.cfg.SeedBits)
	if xs, err = place(e, name+"/x", xs); err != nil {
		return nil, err
	}
	if ys, err = place(e, name+"/y", ys); err != nil {
		return nil, err
	}
	return s.Rebind(xs, ys)
}

// Config returns the resolved configuration.
func (e *Engine) Config() Config { return e.cfg }

// Store returns the engine's memory tiers.
func (e *Engine) Store() *tier.Store { return e.store }

func (e *Engine) String() string {
	return fmt.Sprintf("approx: method=%v bits=%d interp=%v precision=%d Q%d seeds=%d tables=%v (avx2=%v neon=%v)",
		e.cfg.Method, e.cfg.TableBits, e.cfg.Interpolate, e.cfg.Precision, e.cfg.FractionBits,
		e.cfg.SeedBits, e.cfg.TableTier, cpu.X86.HasAVX2, cpu.ARM64.HasASIMD)
}

// Close returns every fast-tier table to the bulk tier. Evaluators built by
// e must not be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, st := range e.resident {
		st.Discard()
	}
	e.resident = nil
}

func (e *Engine) logf(format string, args ...any) {
	if e.cfg.Logger != nil {
		e.cfg.Logger.Printf(format, args...)
	}
}

// cached returns the table stored under name. On first use it builds the
// table, places its samples and rebinds it with bind to the placed copy,
// so evaluation only reads tier memory.
func cached[T any, S tier.Elem](e *Engine, name string, build func() (T, []S, error), bind func(T, []S) (T, error)) (T, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.tables[name]; ok {
		return t.(T), nil
	}
	t, samples, err := build()
	if err != nil {
		return t, err
	}
	local, err := place(e, name, samples)
	if err != nil {
		return t, err
	}
	if t, err = bind(t, local); err != nil {
		return t, err
	}
	e.tables[name] = t
	return t, nil
}

// place registers samples in the bulk tier and returns the copy evaluators
// read: the staged fast-tier copy for fast-tier tables, which stays staged
// for the engine's lifetime, or the bulk-tier buffer. Called with e.mu held
// or before e is shared.
func place[T tier.Elem](e *Engine, name string, samples []T) ([]T, error) {
	if err := tier.Register(e.store, name, samples); err != nil {
		return nil, err
	}
	e.logf("approx: built %s (%d samples, %v tier)", name, len(samples), e.cfg.TableTier)
	if e.cfg.TableTier != tier.Fast {
		return tier.View[T](e.store, name)
	}
	st, err := tier.Stage[T](e.store, name, 0, len(samples))
	if err != nil {
		return nil, err
	}
	e.resident = append(e.resident, st)
	return st.Data, nil
}

func (e *Engine) tableName(fn string, p lut.Policy, bits int) string {
	return fmt.Sprintf("%s/%v/%d", fn, p, bits)
}

// table returns the float32 table of f over d.
func (e *Engine) table(fn string, f lut.Func, d lut.Domain, p lut.Policy) (lut.Table, error) {
	bits := e.cfg.TableBits
	return cached(e, e.tableName(fn, p, bits), func() (lut.Table, []float32, error) {
		t, err := lut.Build(f, d, bits, p)
		if err != nil {
			return nil, nil, err
		}
		return t, t.Samples(), nil
	}, lut.Table.Rebind)
}

func (e *Engine) bucketed(fn string, f lut.Func, l lut.Layout, bits int) (*lut.BucketedTable, error) {
	return cached(e, e.tableName(fn, lut.Bucketed, bits), func() (*lut.BucketedTable, []float32, error) {
		t, err := lut.BuildBucketed(f, l, bits)
		if err != nil {
			return nil, nil, err
		}
		return t, t.Samples(), nil
	}, (*lut.BucketedTable).Rebind)
}

func (e *Engine) cndf(p lut.Policy) (*lut.CNDF, error) {
	bits := e.cfg.TableBits
	name := e.tableName("cndf", p, bits)
	if e.cfg.Interpolate {
		name += "/interp"
	}
	return cached(e, name, func() (*lut.CNDF, []float32, error) {
		c, err := lut.NewCNDF(p, bits, e.cfg.Interpolate)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Table().Samples(), nil
	}, (*lut.CNDF).Rebind)
}

// Build returns the evaluator of fn using the configured method.
func (e *Engine) Build(fn Function) (*Evaluator, error) {
	return e.BuildMethod(fn, e.cfg.Method)
}

// BuildMethod returns the evaluator of fn using method m.
func (e *Engine) BuildMethod(fn Function, m Method) (*Evaluator, error) {
	if fn >= numFunctions {
		return nil, xerrors.Errorf("function %d: %w", fn, ErrFunction)
	}
	if m >= numMethods {
		return nil, xerrors.Errorf("method %d: %w", m, ErrMethod)
	}
	if !m.Supports(fn) {
		return nil, xerrors.Errorf("%v with %v: %w", fn, m, ErrUnsupported)
	}

	var eval func(float32) float32
	var err error
	switch m {
	case Cordic:
		eval = e.cordicFunc(fn)
	case LutBucketed:
		eval, err = e.bucketedFunc(fn)
	default:
		eval, err = e.tableFunc(fn, m.policy())
	}
	if err != nil {
		return nil, xerrors.Errorf("build %v with %v: %w", fn, m, err)
	}
	return &Evaluator{fn: fn, method: m, eval: eval}, nil
}

// MustBuild is like Build but panics on error.
func (e *Engine) MustBuild(fn Function) *Evaluator {
	ev, err := e.Build(fn)
	if err != nil {
		panic(err)
	}
	return ev
}

// EvalStaged evaluates ev over in, writing out, moving every block of
// operands through a per-lane fast-tier buffer: copy in, evaluate in
// place, copy out. A nil pool runs on the calling goroutine.
func (e *Engine) EvalStaged(ev *Evaluator, pool *workerpool.Pool, in, out []float32) error {
	if len(out) < len(in) {
		return xerrors.Errorf("output length %d < input length %d: %w", len(out), len(in), tier.ErrRange)
	}
	lanes := 1
	if pool != nil {
		lanes = pool.Lanes()
	}
	scratch, err := tier.NewScratch[float32](e.store, lanes, e.cfg.ScratchSize)
	if err != nil {
		return err
	}
	defer scratch.Free(e.store)

	f := ev.eval
	block := func(lane, start, end int) {
		buf := scratch.Lane(lane)
		for lo := start; lo < end; lo += len(buf) {
			b := buf[:min(len(buf), end-lo)]
			copy(b, in[lo:])
			for i, x := range b {
				b[i] = f(x)
			}
			copy(out[lo:], b)
		}
	}
	if pool == nil {
		block(0, 0, len(in))
		return nil
	}
	pool.ParallelFor(len(in), block)
	return nil
}
