// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package approx

import (
	"strings"

	"golang.org/x/xerrors"

	"github.com/ajroetker/go-approx/approx/lut"
)

// Function identifies an approximated function.
type Function uint8

const (
	Sin Function = iota
	Cos
	Tan
	Sinh
	Cosh
	Tanh
	Exp
	Log
	Sqrt
	GELU
	CNDF

	numFunctions
)

var functionNames = [numFunctions]string{
	Sin:  "sin",
	Cos:  "cos",
	Tan:  "tan",
	Sinh: "sinh",
	Cosh: "cosh",
	Tanh: "tanh",
	Exp:  "exp",
	Log:  "log",
	Sqrt: "sqrt",
	GELU: "gelu",
	CNDF: "cndf",
}

func (f Function) String() string {
	if f < numFunctions {
		return functionNames[f]
	}
	return "unknown"
}

// Functions returns every function in declaration order.
func Functions() []Function {
	fs := make([]Function, numFunctions)
	for i := range fs {
		fs[i] = Function(i)
	}
	return fs
}

// ParseFunction returns the function named s, ignoring case.
func ParseFunction(s string) (Function, error) {
	for i, name := range functionNames {
		if strings.EqualFold(s, name) {
			return Function(i), nil
		}
	}
	return 0, xerrors.Errorf("%q: %w", s, ErrFunction)
}

// Method selects how functions are evaluated.
type Method uint8

const (
	// LutGranularity uses tables addressed by a power-of-two shift.
	LutGranularity Method = iota

	// LutSpacing uses tables addressed by an exact multiply.
	LutSpacing

	// LutBucketed uses tables addressed by the operand's exponent and top
	// mantissa bits.
	LutBucketed

	// Cordic runs shift-and-add rotations in fixed point.
	Cordic

	numMethods
)

var methodNames = [numMethods]string{
	LutGranularity: "granularity",
	LutSpacing:     "spacing",
	LutBucketed:    "bucketed",
	Cordic:         "cordic",
}

func (m Method) String() string {
	if m < numMethods {
		return methodNames[m]
	}
	return "unknown"
}

// Methods returns every method in declaration order.
func Methods() []Method {
	ms := make([]Method, numMethods)
	for i := range ms {
		ms[i] = Method(i)
	}
	return ms
}

// ParseMethod returns the method named s, ignoring case. The "lut-" prefix
// is optional.
func ParseMethod(s string) (Method, error) {
	name := strings.TrimPrefix(strings.ToLower(s), "lut-")
	for i, n := range methodNames {
		if name == n {
			return Method(i), nil
		}
	}
	return 0, xerrors.Errorf("%q: %w", s, ErrMethod)
}

func (m Method) policy() lut.Policy {
	switch m {
	case LutSpacing:
		return lut.Spacing
	case LutBucketed:
		return lut.Bucketed
	}
	return lut.Granularity
}

// Supports reports whether m can evaluate f.
func (m Method) Supports(f Function) bool {
	switch m {
	case LutGranularity, LutSpacing:
		switch f {
		case Sin, Cos, Tan, Exp, Log, Sqrt, CNDF:
			return true
		}
	case LutBucketed:
		switch f {
		case Sin, Cos, Tan, Tanh, GELU:
			return true
		}
	case Cordic:
		switch f {
		case Sin, Cos, Tan, Sinh, Cosh, Tanh, Exp, Log, Sqrt:
			return true
		}
	}
	return false
}
