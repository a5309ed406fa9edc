// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package approx

import "golang.org/x/xerrors"

// Construction errors. Evaluation never fails; inputs outside a function's
// documented domain give unspecified results.
var (
	ErrUnsupported  = xerrors.New("approx: function not supported by method")
	ErrMethod       = xerrors.New("approx: unknown method")
	ErrFunction     = xerrors.New("approx: unknown function")
	ErrTableBits    = xerrors.New("approx: table bits out of range")
	ErrPrecision    = xerrors.New("approx: precision out of range")
	ErrFractionBits = xerrors.New("approx: fraction bits out of range")
	ErrSeedBits     = xerrors.New("approx: seed bits out of range")
	ErrEnv          = xerrors.New("approx: invalid environment setting")
)
