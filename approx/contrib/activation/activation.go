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

// Package activation provides neural-network activation functions whose
// transcendental parts run through an approx.Engine.
package activation

import (
	"github.com/ajroetker/go-approx/approx"
)

// Activations holds the evaluators an activation set needs. It is safe for
// concurrent use.
type Activations struct {
	exp  func(float32) float32
	tanh func(float32) float32
	gelu func(float32) float32
}

// New builds the evaluators from e. Each function uses the engine's method
// when it supports the function, and a table method otherwise.
func New(e *approx.Engine) (*Activations, error) {
	exp, err := build(e, approx.Exp, approx.LutGranularity)
	if err != nil {
		return nil, err
	}
	tanh, err := build(e, approx.Tanh, approx.LutBucketed)
	if err != nil {
		return nil, err
	}
	gelu, err := build(e, approx.GELU, approx.LutBucketed)
	if err != nil {
		return nil, err
	}
	return &Activations{exp: exp, tanh: tanh, gelu: gelu}, nil
}

func build(e *approx.Engine, fn approx.Function, fallback approx.Method) (func(float32) float32, error) {
	m := e.Config().Method
	if !m.Supports(fn) {
		m = fallback
	}
	ev, err := e.BuildMethod(fn, m)
	if err != nil {
		return nil, err
	}
	return ev.Func(), nil
}

// GELU computes x * Φ(x) from two exponent-bucketed half tables.
func (a *Activations) GELU(input, output []float32) {
	size := min(len(input), len(output))
	for i := range size {
		output[i] = a.gelu(input[i])
	}
}

// Sigmoid computes 1 / (1 + exp(-x)).
func (a *Activations) Sigmoid(input, output []float32) {
	size := min(len(input), len(output))
	for i := range size {
		output[i] = 1 / (1 + a.exp(-input[i]))
	}
}

// SiLU computes x * sigmoid(x).
func (a *Activations) SiLU(input, output []float32) {
	size := min(len(input), len(output))
	for i := range size {
		x := input[i]
		output[i] = x / (1 + a.exp(-x))
	}
}

// Tanh computes the hyperbolic tangent.
func (a *Activations) Tanh(input, output []float32) {
	size := min(len(input), len(output))
	for i := range size {
		output[i] = a.tanh(input[i])
	}
}

// ELU computes x for x > 0 and alpha * (exp(x) - 1) otherwise.
func (a *Activations) ELU(input, output []float32, alpha float32) {
	size := min(len(input), len(output))
	for i := range size {
		x := input[i]
		if x > 0 {
			output[i] = x
		} else {
			output[i] = alpha * (a.exp(x) - 1)
		}
	}
}

// ReLU computes max(0, x).
func ReLU(input, output []float32) {
	size := min(len(input), len(output))
	for i := range size {
		output[i] = max(input[i], 0)
	}
}

// Softmax writes exp(x - max) / sum to output. Shifting by the maximum
// keeps every exponent operand non-positive.
func (a *Activations) Softmax(input, output []float32) {
	size := min(len(input), len(output))
	if size == 0 {
		return
	}
	m := input[0]
	for _, x := range input[1:size] {
		m = max(m, x)
	}
	var sum float32
	for i := range size {
		v := a.exp(input[i] - m)
		output[i] = v
		sum += v
	}
	inv := 1 / sum
	for i := range size {
		output[i] *= inv
	}
}
