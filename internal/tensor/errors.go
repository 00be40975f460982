package tensor

import "errors"

// Common errors.
var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrInvalidShape    = errors.New("invalid shape")
	ErrRaggedRows      = errors.New("rows have different lengths")
	ErrUnknownDataType = errors.New("unknown data type")
)
