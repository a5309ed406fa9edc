// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package approx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-approx/approx/tier"
)

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateReportsEveryKnob(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TableBits = 2
	cfg.Precision = 40
	cfg.FractionBits = 30
	cfg.Method = Method(9)
	cfg.SeedBits = 1
	cfg.ScratchSize = -1
	cfg.FastBytes = -1

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []error{ErrTableBits, ErrPrecision, ErrFractionBits, ErrMethod, ErrSeedBits, tier.ErrRange, tier.ErrConfig} {
		assert.ErrorIs(t, err, want)
	}
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		want error
	}{
		{"min table bits", func(c *Config) { c.TableBits = MinTableBits }, nil},
		{"max table bits", func(c *Config) { c.TableBits = MaxTableBits }, nil},
		{"table bits too large", func(c *Config) { c.TableBits = MaxTableBits + 1 }, ErrTableBits},
		{"precision 1", func(c *Config) { c.Precision = 1 }, nil},
		{"precision 0", func(c *Config) { c.Precision = 0 }, ErrPrecision},
		{"fraction bits 16", func(c *Config) { c.FractionBits = 16 }, nil},
		{"fraction bits 29", func(c *Config) { c.FractionBits = 29 }, ErrFractionBits},
		{"seed bits 8", func(c *Config) { c.SeedBits = 8 }, nil},
		{"seed bits 13", func(c *Config) { c.SeedBits = 13 }, ErrSeedBits},
		{"seed bits without wrap", func(c *Config) {
			c.SeedBits = 8
			c.Wrap = false
		}, ErrSeedBits},
		{"fast larger than bulk", func(c *Config) { c.FastBytes = c.BulkBytes + 1 }, tier.ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{Method: Cordic}.withDefaults()
	d := DefaultConfig()
	assert.Equal(t, d.TableBits, cfg.TableBits)
	assert.Equal(t, d.Precision, cfg.Precision)
	assert.Equal(t, d.FractionBits, cfg.FractionBits)
	assert.Equal(t, d.FastBytes, cfg.FastBytes)
	assert.Equal(t, d.BulkBytes, cfg.BulkBytes)
	assert.Equal(t, d.ScratchSize, cfg.ScratchSize)
	assert.Equal(t, Cordic, cfg.Method)
	assert.False(t, cfg.Interpolate)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvTableBits, "12")
	t.Setenv(EnvPrecision, "18")
	t.Setenv(EnvFractionBits, "24")
	t.Setenv(EnvMethod, "lut-spacing")
	t.Setenv(EnvInterpolate, "false")
	t.Setenv(EnvWrap, "0")
	t.Setenv(EnvSeedBits, "6")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.TableBits)
	assert.Equal(t, 18, cfg.Precision)
	assert.Equal(t, 24, cfg.FractionBits)
	assert.Equal(t, LutSpacing, cfg.Method)
	assert.False(t, cfg.Interpolate)
	assert.False(t, cfg.Wrap)
	assert.Equal(t, 6, cfg.SeedBits)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnvUnset(t *testing.T) {
	for _, name := range []string{EnvTableBits, EnvPrecision, EnvFractionBits, EnvMethod, EnvInterpolate, EnvWrap, EnvSeedBits} {
		t.Setenv(name, "")
	}
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigFromEnvErrors(t *testing.T) {
	t.Setenv(EnvTableBits, "ten")
	t.Setenv(EnvInterpolate, "maybe")
	t.Setenv(EnvMethod, "chebyshev")

	cfg, err := ConfigFromEnv()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEnv)
	assert.ErrorIs(t, err, ErrMethod)
	assert.Equal(t, DefaultConfig().TableBits, cfg.TableBits)
	assert.Contains(t, err.Error(), EnvTableBits)
	assert.Contains(t, err.Error(), EnvInterpolate)
}

func TestParse(t *testing.T) {
	for _, m := range Methods() {
		got, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	m, err := ParseMethod("LUT-Granularity")
	require.NoError(t, err)
	assert.Equal(t, LutGranularity, m)

	for _, f := range Functions() {
		got, err := ParseFunction(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err = ParseFunction("erf")
	assert.ErrorIs(t, err, ErrFunction)

	assert.Equal(t, "unknown", Method(99).String())
	assert.Equal(t, "unknown", Function(99).String())
}
