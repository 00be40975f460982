package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/attention/internal/parallel"
)

var testParallel = parallel.Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1}

func TestMatMulTransposed(t *testing.T) {
	a := mustFromRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	b := mustFromRows(t, [][]float64{{1, 0, 1}, {0, 1, 0}, {2, 2, 2}, {-1, 0, 1}})

	out, err := MatMulTransposed(a, b, parallel.Sequential())
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{4, 2, 12, 2}, {10, 5, 30, 2}}, out.ToRows())

	_, err = MatMulTransposed(a, Zeros[float64](2, 2), parallel.Sequential())
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMatMul(t *testing.T) {
	a := mustFromRows(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	b := mustFromRows(t, [][]float64{{1, 0, 2}, {0, 1, 3}})

	out, err := MatMul(a, b, parallel.Sequential())
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 8}, {3, 4, 18}, {5, 6, 28}}, out.ToRows())

	_, err = MatMul(a, a, parallel.Sequential())
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMatMul_MatchesGonum(t *testing.T) {
	rng := NewRand(3)
	a := Randn[float64](17, 9, rng)
	b := Randn[float64](9, 11, rng)
	c := Randn[float64](13, 9, rng)

	got, err := MatMul(a, b, testParallel)
	require.NoError(t, err)
	var want mat.Dense
	want.Mul(mat.NewDense(17, 9, a.Data()), mat.NewDense(9, 11, b.Data()))
	assert.True(t, mat.EqualApprox(&want, mat.NewDense(17, 11, got.Data()), 1e-12))

	gotT, err := MatMulTransposed(a, c, testParallel)
	require.NoError(t, err)
	var wantT mat.Dense
	wantT.Mul(mat.NewDense(17, 9, a.Data()), mat.NewDense(13, 9, c.Data()).T())
	assert.True(t, mat.EqualApprox(&wantT, mat.NewDense(17, 13, gotT.Data()), 1e-12))
}

func TestMatMul_ParallelIsBitIdentical(t *testing.T) {
	rng := NewRand(8)
	a := Randn[float32](50, 33, rng)
	b := Randn[float32](33, 21, rng)

	seq, err := MatMul(a, b, parallel.Sequential())
	require.NoError(t, err)
	par, err := MatMul(a, b, testParallel)
	require.NoError(t, err)
	assert.True(t, seq.Equal(par))
}

func TestDivScalar(t *testing.T) {
	m := mustFromRows(t, [][]float64{{2, 4}, {-6, 0}})
	out := DivScalar(m, 2)
	assert.Equal(t, [][]float64{{1, 2}, {-3, 0}}, out.ToRows())
	assert.Equal(t, 2.0, m.At(0, 0), "input must be unchanged")
}

func TestMaskedFill(t *testing.T) {
	m := mustFromRows(t, [][]float32{{1, 2}, {3, 4}})
	mask := NewMask(2)
	mask.Set(0, 1, true)

	out, err := MaskedFill(m, mask, NegInf[float32]())
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(out.At(0, 1)), -1))
	assert.Equal(t, float32(1), out.At(0, 0))
	assert.Equal(t, float32(2), m.At(0, 1), "input must be unchanged")

	_, err = MaskedFill(m, NewMask(3), 0)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSoftmaxRows(t *testing.T) {
	inf := math.Inf(-1)
	m := mustFromRows(t, [][]float64{
		{0, 0, 0, 0},
		{1000, 1000, inf, inf},
		{inf, 3, inf, inf},
		{inf, inf, inf, inf},
	})

	out := SoftmaxRows(m, testParallel)

	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, out.Row(0))
	assert.Equal(t, []float64{0.5, 0.5, 0, 0}, out.Row(1))
	assert.Equal(t, []float64{0, 1, 0, 0}, out.Row(2))
	assert.Equal(t, []float64{0, 0, 0, 0}, out.Row(3), "all-masked row must be zeros, not NaN")
}

func TestSoftmaxRows_Float32(t *testing.T) {
	m := mustFromRows(t, [][]float32{{1, 2, 3}})
	out := SoftmaxRows(m, parallel.Sequential())

	e1, e2, e3 := math.Exp(-2), math.Exp(-1), 1.0
	sum := e1 + e2 + e3
	want := []float64{e1 / sum, e2 / sum, e3 / sum}
	for j, w := range want {
		assert.InDelta(t, w, float64(out.At(0, j)), 1e-6)
	}
}

func TestSoftmaxRows_Empty(t *testing.T) {
	out := SoftmaxRows(Zeros[float64](3, 0), parallel.Sequential())
	assertEqualShape(t, Shape{3, 0}, out.Shape(), "empty softmax")
}

func TestSqrt(t *testing.T) {
	assert.Equal(t, float32(3), Sqrt[float32](9))
	assert.Equal(t, math.Sqrt2, Sqrt[float64](2))
}
