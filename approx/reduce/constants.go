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

package reduce

// Float32 constants for trigonometric reduction
var (
	halfPi_f32      float32 = 1.5707963267948966
	pi_f32          float32 = 3.141592653589793
	threeHalfPi_f32 float32 = 4.71238898038469
	twoPi_f32       float32 = 6.283185307179586
	invTwoPi_f32    float32 = 0.15915494309189535

	// 2π split so that k*twoPiHi is exact for |k| < 2^16.
	twoPiHi_f32 float32 = 6.28125
	twoPiLo_f32 float32 = 1.9353071795864769e-3
)

// Float32 constants for exp and log reduction
var (
	log2E_f32 float32 = 1.4426950408889634
	ln2_f32   float32 = 0.6931471805599453

	ln2Hi_f32 float32 = 0.693359375
	ln2Lo_f32 float32 = -2.12194440e-4

	// Inputs beyond these bounds saturate or flush after restoration.
	expHi_f32 float32 = 89
	expLo_f32 float32 = -104
)

// Float64 reference values used to derive fixed-point constants
const (
	halfPi_f64 = 1.5707963267948966
	pi_f64     = 3.141592653589793
	twoPi_f64  = 6.283185307179586
	log2E_f64  = 1.4426950408889634
	ln2_f64    = 0.6931471805599453
)
