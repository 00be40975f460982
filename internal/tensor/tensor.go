package tensor

import (
	"fmt"
	"strings"
)

// Matrix is a dense row-major matrix of rows × cols elements.
//
// A nil *Matrix reports a 0×0 shape. Zero-sized dimensions are valid values.
type Matrix[T Float] struct {
	rows int
	cols int
	data []T
}

// New returns a zero-filled rows × cols matrix.
func New[T Float](rows, cols int) (*Matrix[T], error) {
	if err := (Shape{rows, cols}).Validate(); err != nil {
		return nil, err
	}
	return &Matrix[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}, nil
}

// Zeros is like New but panics on a negative dimension.
// It is meant for internal kernels whose shapes are already validated.
func Zeros[T Float](rows, cols int) *Matrix[T] {
	m, err := New[T](rows, cols)
	if err != nil {
		panic(err)
	}
	return m
}

// FromSlice creates a matrix from row-major data. The data is copied.
func FromSlice[T Float](data []T, rows, cols int) (*Matrix[T], error) {
	if err := (Shape{rows, cols}).Validate(); err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d elements for shape %v", ErrInvalidShape, len(data), Shape{rows, cols})
	}
	m := &Matrix[T]{rows: rows, cols: cols, data: make([]T, len(data))}
	copy(m.data, data)
	return m, nil
}

// FromRows creates a matrix from a slice of rows. The data is copied.
// An empty slice yields a 0×0 matrix.
func FromRows[T Float](rows [][]T) (*Matrix[T], error) {
	if len(rows) == 0 {
		return &Matrix[T]{}, nil
	}
	cols := len(rows[0])
	m := &Matrix[T]{rows: len(rows), cols: cols, data: make([]T, 0, len(rows)*cols)}
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d elements, row 0 has %d", ErrRaggedRows, i, len(row), cols)
		}
		m.data = append(m.data, row...)
	}
	return m, nil
}

// Identity returns the n × n identity matrix.
func Identity[T Float](n int) *Matrix[T] {
	m := Zeros[T](n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix[T]) Rows() int {
	if m == nil {
		return 0
	}
	return m.rows
}

// Cols returns the number of columns.
func (m *Matrix[T]) Cols() int {
	if m == nil {
		return 0
	}
	return m.cols
}

// Shape returns {rows, cols}.
func (m *Matrix[T]) Shape() Shape {
	return Shape{m.Rows(), m.Cols()}
}

// DataType returns the element type.
func (m *Matrix[T]) DataType() DataType {
	return inferDataType[T]()
}

// At returns the element at (i, j).
func (m *Matrix[T]) At(i, j int) T {
	m.checkIndex(i, j)
	return m.data[i*m.cols+j]
}

// Set stores v at (i, j).
func (m *Matrix[T]) Set(i, j int, v T) {
	m.checkIndex(i, j)
	m.data[i*m.cols+j] = v
}

// Row returns row i as a slice aliasing the matrix storage.
func (m *Matrix[T]) Row(i int) []T {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("tensor: row %d out of range [0, %d)", i, m.rows))
	}
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// Data returns the row-major backing slice. Writes through it modify the matrix.
func (m *Matrix[T]) Data() []T {
	if m == nil {
		return nil
	}
	return m.data
}

// ToRows returns a copy of the matrix as a slice of rows.
func (m *Matrix[T]) ToRows() [][]T {
	out := make([][]T, m.Rows())
	for i := range out {
		out[i] = append([]T(nil), m.Row(i)...)
	}
	return out
}

// Clone returns a deep copy.
func (m *Matrix[T]) Clone() *Matrix[T] {
	if m == nil {
		return nil
	}
	return &Matrix[T]{rows: m.rows, cols: m.cols, data: append([]T(nil), m.data...)}
}

// Equal reports whether both matrices have the same shape and bit-equal elements.
// NaN never compares equal.
func (m *Matrix[T]) Equal(other *Matrix[T]) bool {
	if !m.Shape().Equal(other.Shape()) {
		return false
	}
	for i, v := range m.Data() {
		if other.data[i] != v {
			return false
		}
	}
	return true
}

// String formats the matrix one row per line.
func (m *Matrix[T]) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.Rows(); i++ {
		if i > 0 {
			sb.WriteString("\n ")
		}
		fmt.Fprint(&sb, m.Row(i))
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix[T]) checkIndex(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("tensor: index (%d, %d) out of range for shape %v", i, j, m.Shape()))
	}
}
