package tensor

import "fmt"

// Mask is a square boolean matrix. A true entry marks a position to overwrite.
type Mask struct {
	size int
	data []bool
}

// NewMask returns an all-false size × size mask.
func NewMask(size int) *Mask {
	if size < 0 {
		panic(fmt.Sprintf("tensor: negative mask size %d", size))
	}
	return &Mask{size: size, data: make([]bool, size*size)}
}

// Size returns the side length.
func (m *Mask) Size() int {
	return m.size
}

// At reports whether (i, j) is masked.
func (m *Mask) At(i, j int) bool {
	return m.data[i*m.size+j]
}

// Set marks or unmarks (i, j).
func (m *Mask) Set(i, j int, v bool) {
	m.data[i*m.size+j] = v
}
