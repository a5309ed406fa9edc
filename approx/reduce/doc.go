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

// Package reduce implements domain range reduction for the trigonometric,
// exponential, square root and logarithm families.
//
// Every reducer is a (Reduce, Restore) pair. Reduce maps an unrestricted
// input onto a small canonical domain and returns a Token carrying what is
// needed to map a result on that domain back to the full-range answer:
//
//	r, tok := reduce.Exp{Wrap: true}.Reduce(x)
//	y := reduce.Exp{}.Restore(approxExp(r), tok)
//
// A Token is consumed once by the matching Restore and never stored.
//
// Canonical domains:
//   - Trig: [0, π/2], with a quadrant token
//   - Exp: [0, ln2], with a power-of-two token
//   - Sqrt: [0.5, 2), with an even power-of-two token
//   - Log: [0.5, 1), with a power-of-two token
//
// When Wrap is false a reducer assumes its input is already in the narrow
// domain (for Trig, [0, 2π)) and skips the folding arithmetic.
package reduce
