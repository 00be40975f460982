package tensor

import (
	"fmt"

	"github.com/born-ml/attention/internal/parallel"
)

// MatMulTransposed computes a · bᵗ.
//
// a is [m, k], b is [n, k]; the result is [m, n] where
// result[i][j] is the dot product of row i of a and row j of b.
// Rows of the result are computed in parallel according to cfg.
func MatMulTransposed[T Float](a, b *Matrix[T], cfg parallel.Config) (*Matrix[T], error) {
	if a.Cols() != b.Cols() {
		return nil, fmt.Errorf("%w: matmul %v by transposed %v", ErrShapeMismatch, a.Shape(), b.Shape())
	}

	m, n, k := a.Rows(), b.Rows(), a.Cols()
	out := Zeros[T](m, n)

	parallel.For(m, func(i int) {
		aRow := a.data[i*k : (i+1)*k]
		outRow := out.data[i*n : (i+1)*n]
		for j := 0; j < n; j++ {
			outRow[j] = dot(aRow, b.data[j*k:(j+1)*k])
		}
	}, cfg)

	return out, nil
}

// MatMul computes a · b.
//
// a is [m, k], b is [k, n]; the result is [m, n].
// For each output cell the products are accumulated in increasing k order,
// so the result does not depend on how rows are split across workers.
func MatMul[T Float](a, b *Matrix[T], cfg parallel.Config) (*Matrix[T], error) {
	if a.Cols() != b.Rows() {
		return nil, fmt.Errorf("%w: matmul %v by %v", ErrShapeMismatch, a.Shape(), b.Shape())
	}

	m, k, n := a.Rows(), a.Cols(), b.Cols()
	out := Zeros[T](m, n)

	parallel.For(m, func(i int) {
		outRow := out.data[i*n : (i+1)*n]
		for j := 0; j < n; j++ {
			var sum T
			for p := 0; p < k; p++ {
				sum += a.data[i*k+p] * b.data[p*n+j]
			}
			outRow[j] = sum
		}
	}, cfg)

	return out, nil
}

// DivScalar returns a new matrix with every element of m divided by s.
func DivScalar[T Float](m *Matrix[T], s T) *Matrix[T] {
	out := Zeros[T](m.Rows(), m.Cols())
	for i, v := range m.Data() {
		out.data[i] = v / s
	}
	return out
}

// MaskedFill returns a copy of m with every element where mask is true
// replaced by value. m must be square with the same size as mask.
func MaskedFill[T Float](m *Matrix[T], mask *Mask, value T) (*Matrix[T], error) {
	if m.Rows() != mask.Size() || m.Cols() != mask.Size() {
		return nil, fmt.Errorf("%w: masked fill of %v with %dx%d mask",
			ErrShapeMismatch, m.Shape(), mask.Size(), mask.Size())
	}

	out := m.Clone()
	for idx, masked := range mask.data {
		if masked {
			out.data[idx] = value
		}
	}
	return out, nil
}

// SoftmaxRows applies a numerically stable softmax to each row independently:
//
//	out[i][j] = exp(x[i][j] - max(x[i])) / Σ_j exp(x[i][j] - max(x[i]))
//
// Negative-infinity entries map to exactly zero. A row with no finite
// maximum (every entry -Inf) becomes all zeros instead of NaN.
func SoftmaxRows[T Float](m *Matrix[T], cfg parallel.Config) *Matrix[T] {
	rows, cols := m.Rows(), m.Cols()
	out := Zeros[T](rows, cols)
	if cols == 0 {
		return out
	}

	parallel.For(rows, func(i int) {
		softmaxRow(out.data[i*cols:(i+1)*cols], m.data[i*cols:(i+1)*cols])
	}, cfg)

	return out
}

// softmaxRow writes the softmax of src into dst.
func softmaxRow[T Float](dst, src []T) {
	maxVal := src[0]
	for _, v := range src[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	if isNegInf(maxVal) {
		return // dst is already zeroed
	}

	var sum T
	for j, v := range src {
		if isNegInf(v) {
			dst[j] = 0
			continue
		}
		e := exp(v - maxVal)
		dst[j] = e
		sum += e
	}

	for j := range dst {
		dst[j] /= sum
	}
}

// dot returns Σ a[i]*b[i], accumulated left to right.
func dot[T Float](a, b []T) T {
	var sum T
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
