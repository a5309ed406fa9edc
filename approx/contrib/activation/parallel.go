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

package activation

import (
	"github.com/ajroetker/go-approx/approx/contrib/workerpool"
)

// Parallel tuning parameters for row-parallel activation operations.
const (
	// MinParallelActivationOps is the minimum total element count before
	// rows are split across lanes.
	MinParallelActivationOps = 16384

	// ActivationRowBatch is the number of rows a lane claims at a time.
	ActivationRowBatch = 4
)

// ParallelApplyRows applies fn to each row of a [rows, cols] matrix.
//
// Runs sequentially when pool is nil or the matrix has fewer than
// MinParallelActivationOps elements.
func ParallelApplyRows(pool *workerpool.Pool, input, output []float32, rows, cols int, fn func(input, output []float32)) {
	if pool == nil || rows*cols < MinParallelActivationOps {
		for r := range rows {
			off := r * cols
			fn(input[off:off+cols], output[off:off+cols])
		}
		return
	}

	pool.ParallelForBatched(rows, ActivationRowBatch, func(_, start, end int) {
		for r := start; r < end; r++ {
			off := r * cols
			fn(input[off:off+cols], output[off:off+cols])
		}
	})
}

// ParallelGELU applies GELU across a [rows, cols] matrix.
func (a *Activations) ParallelGELU(pool *workerpool.Pool, input, output []float32, rows, cols int) {
	ParallelApplyRows(pool, input, output, rows, cols, a.GELU)
}

// ParallelSigmoid applies Sigmoid across a [rows, cols] matrix.
func (a *Activations) ParallelSigmoid(pool *workerpool.Pool, input, output []float32, rows, cols int) {
	ParallelApplyRows(pool, input, output, rows, cols, a.Sigmoid)
}

// ParallelTanh applies Tanh across a [rows, cols] matrix.
func (a *Activations) ParallelTanh(pool *workerpool.Pool, input, output []float32, rows, cols int) {
	ParallelApplyRows(pool, input, output, rows, cols, a.Tanh)
}

// ParallelSoftmax applies Softmax to each row of a [rows, cols] matrix.
func (a *Activations) ParallelSoftmax(pool *workerpool.Pool, input, output []float32, rows, cols int) {
	ParallelApplyRows(pool, input, output, rows, cols, a.Softmax)
}
