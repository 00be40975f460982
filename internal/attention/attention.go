// Package attention computes causally masked scaled dot-product attention
// for a single head over a single sequence.
package attention

import (
	"fmt"

	"github.com/born-ml/attention/internal/parallel"
	"github.com/born-ml/attention/internal/tensor"
)

// Engine computes scaled dot-product attention with a causal mask:
//
//	Attention(Q, K, V) = softmax(mask(QK^T / sqrt(d_k))) * V
//
// Where:
//   - Q (query): [n, d_k]
//   - K (key): [n, d_k]
//   - V (value): [n, d_v]
//
// An Engine has no mutable state. The parallel configuration only controls how
// rows are spread over goroutines; results are bit-identical for any setting.
// It is safe for concurrent use.
type Engine[T tensor.Float] struct {
	cfg parallel.Config
}

// NewEngine returns an engine that parallelizes row work according to cfg.
func NewEngine[T tensor.Float](cfg parallel.Config) *Engine[T] {
	return &Engine[T]{cfg: cfg}
}

// Default returns an engine using parallel.DefaultConfig.
func Default[T tensor.Float]() *Engine[T] {
	return NewEngine[T](parallel.DefaultConfig())
}

// Config returns the engine's parallel configuration.
func (e *Engine[T]) Config() parallel.Config {
	return e.cfg
}

// Compute returns the attention output [n, d_v] for q, k and v.
//
// Inputs are never modified. Shape problems are reported before any
// arithmetic as a *DimensionError wrapping ErrShapeMismatch or
// ErrInvalidDimension.
//
// Example:
//
//	q, _ := tensor.FromRows([][]float64{{1, 0}, {0, 1}})
//	out, err := attention.Default[float64]().Compute(q, q, q)
//	// out = [[1 0] [0.3302 0.6698]]
func (e *Engine[T]) Compute(q, k, v *tensor.Matrix[T]) (*tensor.Matrix[T], error) {
	out, _, err := e.ComputeWithWeights(q, k, v)
	return out, err
}

// ComputeWithWeights is like Compute but also returns the [n, n] attention
// weights. Row i of the weights is a probability distribution over key
// positions 0..i.
func (e *Engine[T]) ComputeWithWeights(q, k, v *tensor.Matrix[T]) (output, weights *tensor.Matrix[T], err error) {
	if err := validate(q, k, v); err != nil {
		return nil, nil, err
	}

	// 1. Score: Q @ K^T
	scores, err := e.score(q, k)
	if err != nil {
		return nil, nil, err
	}

	// 2. Scale by sqrt(d_k)
	scaled := e.scale(scores, k.Cols())

	// 3. Causal mask
	masked, err := e.mask(scaled)
	if err != nil {
		return nil, nil, err
	}

	// 4. Softmax over keys, per query row
	weights = e.normalize(masked)

	// 5. Weighted sum of values
	output, err = e.aggregate(weights, v)
	if err != nil {
		return nil, nil, err
	}

	return output, weights, nil
}

// Compute runs the default engine on q, k and v.
func Compute[T tensor.Float](q, k, v *tensor.Matrix[T]) (*tensor.Matrix[T], error) {
	return Default[T]().Compute(q, k, v)
}

// score computes the raw query/key similarities Q · Kᵗ.
func (e *Engine[T]) score(q, k *tensor.Matrix[T]) (*tensor.Matrix[T], error) {
	scores, err := tensor.MatMulTransposed(q, k, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("attention: scores: %w", err)
	}
	return scores, nil
}

// scale divides every score by sqrt(dk).
func (e *Engine[T]) scale(scores *tensor.Matrix[T], dk int) *tensor.Matrix[T] {
	return tensor.DivScalar(scores, tensor.Sqrt(T(dk)))
}

// mask sets every strictly-upper-triangular score to -Inf.
func (e *Engine[T]) mask(scaled *tensor.Matrix[T]) (*tensor.Matrix[T], error) {
	masked, err := tensor.MaskedFill(scaled, CausalMask(scaled.Rows()), tensor.NegInf[T]())
	if err != nil {
		return nil, fmt.Errorf("attention: mask: %w", err)
	}
	return masked, nil
}

// normalize applies a row-wise softmax.
func (e *Engine[T]) normalize(masked *tensor.Matrix[T]) *tensor.Matrix[T] {
	return tensor.SoftmaxRows(masked, e.cfg)
}

// aggregate computes weights · V.
func (e *Engine[T]) aggregate(weights, v *tensor.Matrix[T]) (*tensor.Matrix[T], error) {
	out, err := tensor.MatMul(weights, v, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("attention: output: %w", err)
	}
	return out, nil
}

// validate checks the preconditions on q, k and v.
func validate[T tensor.Float](q, k, v *tensor.Matrix[T]) error {
	fail := func(kind error, format string, args ...any) error {
		return &DimensionError{
			Kind:   kind,
			Query:  q.Shape(),
			Key:    k.Shape(),
			Value:  v.Shape(),
			Detail: fmt.Sprintf(format, args...),
		}
	}

	n, dk := q.Rows(), q.Cols()
	switch {
	case n == 0:
		return fail(ErrInvalidDimension, "sequence length is 0")
	case dk == 0:
		return fail(ErrInvalidDimension, "key dimension is 0")
	case k.Cols() != dk:
		return fail(ErrShapeMismatch, "query has %d features, key has %d", dk, k.Cols())
	case k.Rows() != n:
		return fail(ErrShapeMismatch, "query has %d rows, key has %d", n, k.Rows())
	case v.Rows() != n:
		return fail(ErrShapeMismatch, "query has %d rows, value has %d", n, v.Rows())
	}
	return nil
}
