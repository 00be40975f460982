package tensor

import (
	"math"

	"github.com/chewxy/math32"
)

// exp computes e**x in the precision of T.
func exp[T Float](x T) T {
	if v, ok := any(x).(float32); ok {
		return T(math32.Exp(v))
	}
	return T(math.Exp(float64(x)))
}

// Sqrt computes the square root in the precision of T.
func Sqrt[T Float](x T) T {
	if v, ok := any(x).(float32); ok {
		return T(math32.Sqrt(v))
	}
	return T(math.Sqrt(float64(x)))
}

// NegInf returns negative infinity as T.
func NegInf[T Float]() T {
	return T(math.Inf(-1))
}

// isNegInf reports whether x is negative infinity.
func isNegInf[T Float](x T) bool {
	return math.IsInf(float64(x), -1)
}
