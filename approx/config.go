// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package approx

import (
	"log"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"github.com/ajroetker/go-approx/approx/cordic"
	"github.com/ajroetker/go-approx/approx/tier"
)

// Knob limits.
const (
	MinTableBits    = 4
	MaxTableBits    = 20
	MinFractionBits = 16
	// The fixed trig reducer needs 2.5π below 2^(31-F).
	MaxFractionBits = 28
	MinSeedBits     = 2
	MaxSeedBits     = 12
)

// Environment variables read by ConfigFromEnv.
const (
	EnvTableBits    = "APPROX_TABLE_BITS"
	EnvPrecision    = "APPROX_PRECISION"
	EnvFractionBits = "APPROX_FRACTION_BITS"
	EnvMethod       = "APPROX_METHOD"
	EnvInterpolate  = "APPROX_INTERPOLATE"
	EnvWrap         = "APPROX_WRAP"
	EnvSeedBits     = "APPROX_SEED_BITS"
)

// Config holds the numeric knobs of an Engine. It is copied by New and
// never changes afterwards.
type Config struct {
	// TableBits is P: every table has 2^P samples plus a guard sample.
	TableBits int

	// Precision is the CORDIC iteration count.
	Precision int

	// FractionBits is F of the Q(F) format CORDIC runs in.
	FractionBits int

	// Method is the default evaluation method for Engine.Build.
	Method Method

	// Interpolate selects linear interpolation over nearest-sample lookup.
	Interpolate bool

	// Wrap enables range reduction. Without it operands must already lie
	// in each function's reduced domain.
	Wrap bool

	// SeedBits, when non-zero, replaces the first CORDIC rotations with a
	// table of 2^SeedBits pre-rotated vectors. Seed tables only cover the
	// reduced domain, so they require Wrap. They are placed in TableTier
	// like every other table.
	SeedBits int

	// TableTier is where built tables live during evaluation.
	TableTier tier.Tier

	// FastBytes and BulkBytes size the memory tiers.
	FastBytes int
	BulkBytes int

	// ScratchSize is the per-lane staging buffer length, in elements, used
	// by Engine.EvalStaged.
	ScratchSize int

	// Logger, when set, receives one line per built table.
	Logger *log.Logger
}

// DefaultScratchSize is the default per-lane staging buffer length.
const DefaultScratchSize = 256

// DefaultConfig returns the default knobs: 2^10 interpolated granularity
// tables in the fast tier, 22 CORDIC iterations in Q28, range reduction on.
func DefaultConfig() Config {
	return Config{
		TableBits:    10,
		Precision:    cordic.DefaultPrecision,
		FractionBits: 28,
		Method:       LutGranularity,
		Interpolate:  true,
		Wrap:         true,
		TableTier:    tier.Fast,
		FastBytes:    tier.DefaultFastBytes,
		BulkBytes:    tier.DefaultBulkBytes,
		ScratchSize:  DefaultScratchSize,
	}
}

// withDefaults fills zero numeric knobs from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TableBits == 0 {
		c.TableBits = d.TableBits
	}
	if c.Precision == 0 {
		c.Precision = d.Precision
	}
	if c.FractionBits == 0 {
		c.FractionBits = d.FractionBits
	}
	if c.FastBytes == 0 {
		c.FastBytes = d.FastBytes
	}
	if c.BulkBytes == 0 {
		c.BulkBytes = d.BulkBytes
	}
	if c.ScratchSize == 0 {
		c.ScratchSize = d.ScratchSize
	}
	return c
}

// Validate reports every knob outside its range.
func (c Config) Validate() error {
	var errs *multierror.Error
	if c.TableBits < MinTableBits || c.TableBits > MaxTableBits {
		errs = multierror.Append(errs, xerrors.Errorf("table bits %d not in [%d, %d]: %w", c.TableBits, MinTableBits, MaxTableBits, ErrTableBits))
	}
	if c.Precision < 1 || c.Precision > cordic.MainTableLength {
		errs = multierror.Append(errs, xerrors.Errorf("precision %d not in [1, %d]: %w", c.Precision, cordic.MainTableLength, ErrPrecision))
	}
	if c.FractionBits < MinFractionBits || c.FractionBits > MaxFractionBits {
		errs = multierror.Append(errs, xerrors.Errorf("fraction bits %d not in [%d, %d]: %w", c.FractionBits, MinFractionBits, MaxFractionBits, ErrFractionBits))
	}
	if c.Method >= numMethods {
		errs = multierror.Append(errs, xerrors.Errorf("method %d: %w", c.Method, ErrMethod))
	}
	if c.SeedBits != 0 && (c.SeedBits < MinSeedBits || c.SeedBits > MaxSeedBits) {
		errs = multierror.Append(errs, xerrors.Errorf("seed bits %d not 0 or in [%d, %d]: %w", c.SeedBits, MinSeedBits, MaxSeedBits, ErrSeedBits))
	}
	if c.SeedBits != 0 && !c.Wrap {
		errs = multierror.Append(errs, xerrors.Errorf("seed bits %d without range reduction: %w", c.SeedBits, ErrSeedBits))
	}
	if c.ScratchSize < 1 {
		errs = multierror.Append(errs, xerrors.Errorf("scratch size %d: %w", c.ScratchSize, tier.ErrRange))
	}
	if err := (tier.Config{FastBytes: c.FastBytes, BulkBytes: c.BulkBytes}).Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

// ConfigFromEnv returns DefaultConfig overridden by the APPROX_*
// environment variables. Every malformed variable is reported.
func ConfigFromEnv() (Config, error) {
	c := DefaultConfig()
	var errs *multierror.Error

	envInt := func(name string, dst *int) {
		val := os.Getenv(name)
		if val == "" {
			return
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			errs = multierror.Append(errs, xerrors.Errorf("%s=%q: %w", name, val, ErrEnv))
			return
		}
		*dst = n
	}
	envBool := func(name string, dst *bool) {
		val := os.Getenv(name)
		if val == "" {
			return
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			errs = multierror.Append(errs, xerrors.Errorf("%s=%q: %w", name, val, ErrEnv))
			return
		}
		*dst = b
	}

	envInt(EnvTableBits, &c.TableBits)
	envInt(EnvPrecision, &c.Precision)
	envInt(EnvFractionBits, &c.FractionBits)
	envInt(EnvSeedBits, &c.SeedBits)
	envBool(EnvInterpolate, &c.Interpolate)
	envBool(EnvWrap, &c.Wrap)
	if val := os.Getenv(EnvMethod); val != "" {
		m, err := ParseMethod(val)
		if err != nil {
			errs = multierror.Append(errs, xerrors.Errorf("%s: %w", EnvMethod, err))
		} else {
			c.Method = m
		}
	}
	return c, errs.ErrorOrNil()
}
