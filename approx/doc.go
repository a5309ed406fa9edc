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

// Package approx evaluates transcendental functions in float32 without
// calling the math library at evaluation time. Each function runs as a
// pipeline of range reduction, a core approximation, and restoration:
//
//	r, tok := reduce(x)
//	y := core(r)       // lookup table or CORDIC
//	return restore(y, tok)
//
// An Engine holds one Config of numeric knobs and builds one Evaluator per
// (Function, Method) pair. Tables and CORDIC constants are built once per
// engine, placed in its memory tiers, and shared read-only by every
// evaluator:
//
//	eng, err := approx.New(approx.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer eng.Close()
//	sin := eng.MustBuild(approx.Sin)
//	y := sin.Eval(1.25)
//
// Supported pairs:
//
//	             granularity  spacing  bucketed  cordic
//	sin cos tan       x          x        x        x
//	sinh cosh                                      x
//	tanh                                  x        x
//	exp log sqrt      x          x                 x
//	gelu                                  x
//	cndf              x          x
//
// Operands outside a function's domain (negative sqrt, operands beyond
// the reduced domain when Wrap is off) give unspecified results. Results
// that would overflow saturate to the largest finite float32.
package approx
