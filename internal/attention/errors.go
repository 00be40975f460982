package attention

import (
	"errors"
	"fmt"

	"github.com/born-ml/attention/internal/tensor"
)

// Precondition errors. Both are caller programming errors and are never retried.
var (
	// ErrShapeMismatch reports incompatible Q/K/V dimensions.
	// It is the same value as tensor.ErrShapeMismatch.
	ErrShapeMismatch = tensor.ErrShapeMismatch

	// ErrInvalidDimension reports a zero-length sequence or zero-width feature dimension.
	ErrInvalidDimension = errors.New("invalid dimension")
)

// DimensionError describes a failed precondition check.
type DimensionError struct {
	Kind   error        // ErrShapeMismatch or ErrInvalidDimension
	Query  tensor.Shape // Shape of Q as received
	Key    tensor.Shape // Shape of K as received
	Value  tensor.Shape // Shape of V as received
	Detail string       // Which check failed
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("attention: %v: %s (q=%v k=%v v=%v)", e.Kind, e.Detail, e.Query, e.Key, e.Value)
}

// Unwrap returns the error kind so errors.Is matches the sentinels.
func (e *DimensionError) Unwrap() error {
	return e.Kind
}
