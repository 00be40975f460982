// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package attention

import (
	"github.com/born-ml/attention/internal/attention"
	"github.com/born-ml/attention/internal/parallel"
	"github.com/born-ml/attention/internal/tensor"
)

// Float is the set of supported element types.
type Float = tensor.Float

// Matrix is a dense row-major matrix.
type Matrix[T Float] = tensor.Matrix[T]

// Shape is the {rows, cols} of a matrix.
type Shape = tensor.Shape

// Mask is a square boolean mask.
type Mask = tensor.Mask

// Engine computes causal scaled dot-product attention.
type Engine[T Float] = attention.Engine[T]

// ParallelConfig controls how row work is spread over goroutines.
type ParallelConfig = parallel.Config

// DimensionError describes a failed shape precondition.
type DimensionError = attention.DimensionError

// Errors returned by Compute.
var (
	ErrShapeMismatch    = attention.ErrShapeMismatch
	ErrInvalidDimension = attention.ErrInvalidDimension
)

// NewMatrix returns a zero-filled rows × cols matrix.
func NewMatrix[T Float](rows, cols int) (*Matrix[T], error) {
	return tensor.New[T](rows, cols)
}

// FromRows builds a matrix from a slice of equal-length rows. The data is copied.
//
// Example:
//
//	q, err := attention.FromRows([][]float64{{1, 0}, {0, 1}})
func FromRows[T Float](rows [][]T) (*Matrix[T], error) {
	return tensor.FromRows(rows)
}

// FromSlice builds a matrix from row-major data. The data is copied.
func FromSlice[T Float](data []T, rows, cols int) (*Matrix[T], error) {
	return tensor.FromSlice(data, rows, cols)
}

// NewEngine returns an engine with the given parallel configuration.
//
// Example:
//
//	e := attention.NewEngine[float32](attention.SequentialConfig())
func NewEngine[T Float](cfg ParallelConfig) *Engine[T] {
	return attention.NewEngine[T](cfg)
}

// DefaultParallelConfig returns a configuration based on the CPU count.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// SequentialConfig returns a configuration that never starts goroutines.
func SequentialConfig() ParallelConfig {
	return parallel.Sequential()
}

// Compute returns softmax(mask(Q·Kᵗ / sqrt(d_k))) · V using the default engine.
func Compute[T Float](q, k, v *Matrix[T]) (*Matrix[T], error) {
	return attention.Compute(q, k, v)
}

// ComputeWithWeights is like Compute but also returns the [n, n] attention weights.
func ComputeWithWeights[T Float](q, k, v *Matrix[T]) (output, weights *Matrix[T], err error) {
	return attention.Default[T]().ComputeWithWeights(q, k, v)
}

// CausalMask returns the n × n mask with (i, j) set iff j > i.
func CausalMask(n int) *Mask {
	return attention.CausalMask(n)
}
