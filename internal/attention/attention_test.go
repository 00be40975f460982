package attention

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/attention/internal/parallel"
	"github.com/born-ml/attention/internal/tensor"
)

func mustRows[T tensor.Float](t *testing.T, rows [][]T) *tensor.Matrix[T] {
	t.Helper()
	m, err := tensor.FromRows(rows)
	require.NoError(t, err)
	return m
}

func randomQKV[T tensor.Float](n, dk, dv int, seed uint64) (q, k, v *tensor.Matrix[T]) {
	rng := tensor.NewRand(seed)
	return tensor.Randn[T](n, dk, rng), tensor.Randn[T](n, dk, rng), tensor.Randn[T](n, dv, rng)
}

// referenceAttention computes the same result with gonum, independently of
// the tensor kernels.
func referenceAttention(q, k, v *tensor.Matrix[float64]) (output, weights *mat.Dense) {
	n, dk := q.Rows(), q.Cols()
	qd := mat.NewDense(n, dk, q.Clone().Data())
	kd := mat.NewDense(n, dk, k.Clone().Data())
	vd := mat.NewDense(n, v.Cols(), v.Clone().Data())

	scores := mat.NewDense(n, n, nil)
	scores.Mul(qd, kd.T())
	scores.Scale(1/math.Sqrt(float64(dk)), scores)

	for i := 0; i < n; i++ {
		row := scores.RawRowView(i)
		for j := i + 1; j < n; j++ {
			row[j] = math.Inf(-1)
		}
		m := floats.Max(row)
		for j := range row {
			row[j] = math.Exp(row[j] - m)
		}
		floats.Scale(1/floats.Sum(row), row)
	}

	output = mat.NewDense(n, v.Cols(), nil)
	output.Mul(scores, vd)
	return output, scores
}

func TestCompute_IdentityScenario(t *testing.T) {
	eye := mustRows(t, [][]float64{{1, 0}, {0, 1}})

	output, weights, err := Default[float64]().ComputeWithWeights(eye, eye, eye)
	require.NoError(t, err)

	e := math.Exp(1 / math.Sqrt2)
	w10 := 1 / (1 + e)
	w11 := e / (1 + e)

	wantWeights := [][]float64{{1, 0}, {w10, w11}}
	wantOutput := [][]float64{{1, 0}, {w10, w11}}

	opt := cmpopts.EquateApprox(0, 1e-12)
	if diff := cmp.Diff(wantWeights, weights.ToRows(), opt); diff != "" {
		t.Errorf("weights mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantOutput, output.ToRows(), opt); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 0.3302, output.At(1, 0), 1e-4)
	assert.InDelta(t, 0.6698, output.At(1, 1), 1e-4)
	assert.Equal(t, 0.0, weights.At(0, 1))
}

func TestCompute_SingleRow(t *testing.T) {
	q := mustRows(t, [][]float64{{3, -1, 2}})
	k := mustRows(t, [][]float64{{0.5, 4, -7}})
	v := mustRows(t, [][]float64{{1.25, -2.5, 9, 0.125}})

	output, weights, err := Default[float64]().ComputeWithWeights(q, k, v)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{1}}, weights.ToRows())
	assert.True(t, output.Equal(v), "output %v, want exactly %v", output, v)
}

func TestCompute_Shape(t *testing.T) {
	tests := []struct {
		n, dk, dv int
	}{
		{1, 1, 1},
		{2, 3, 5},
		{7, 4, 1},
		{16, 8, 32},
		{33, 2, 3},
	}

	for _, tt := range tests {
		q, k, v := randomQKV[float64](tt.n, tt.dk, tt.dv, uint64(tt.n*100+tt.dk))
		output, err := Compute(q, k, v)
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{tt.n, tt.dv}, output.Shape())
	}
}

func TestCompute_ZeroWidthValue(t *testing.T) {
	q, k, _ := randomQKV[float64](3, 2, 1, 1)
	v, err := tensor.New[float64](3, 0)
	require.NoError(t, err)

	output, err := Compute(q, k, v)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 0}, output.Shape())
}

func TestComputeWithWeights_CausalRows(t *testing.T) {
	const n = 12
	q, k, v := randomQKV[float64](n, 6, 4, 42)

	_, weights, err := Default[float64]().ComputeWithWeights(q, k, v)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			w := weights.At(i, j)
			if j > i {
				assert.Equal(t, 0.0, w, "weight[%d][%d] attends to the future", i, j)
				continue
			}
			assert.GreaterOrEqual(t, w, 0.0)
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "row %d", i)
	}
}

func TestCompute_ConvexCombination(t *testing.T) {
	const n = 9
	q, k, v := randomQKV[float64](n, 3, 2, 7)

	output, err := Compute(q, k, v)
	require.NoError(t, err)

	// Each output row lies inside the bounding box of value rows 0..i.
	for i := 0; i < n; i++ {
		for c := 0; c < v.Cols(); c++ {
			lo, hi := math.Inf(1), math.Inf(-1)
			for j := 0; j <= i; j++ {
				lo = math.Min(lo, v.At(j, c))
				hi = math.Max(hi, v.At(j, c))
			}
			got := output.At(i, c)
			assert.True(t, got >= lo-1e-12 && got <= hi+1e-12,
				"output[%d][%d] = %v outside [%v, %v]", i, c, got, lo, hi)
		}
	}
}

func TestCompute_MatchesReference(t *testing.T) {
	q, k, v := randomQKV[float64](20, 16, 5, 2024)

	output, weights, err := Default[float64]().ComputeWithWeights(q, k, v)
	require.NoError(t, err)

	wantOut, wantWeights := referenceAttention(q, k, v)
	assert.True(t, mat.EqualApprox(wantOut, mat.NewDense(20, 5, output.Data()), 1e-9))
	assert.True(t, mat.EqualApprox(wantWeights, mat.NewDense(20, 20, weights.Data()), 1e-9))
}

func TestCompute_LargeScoresStayFinite(t *testing.T) {
	q := mustRows(t, [][]float64{{1e3, 0}, {0, 1e3}, {1e3, 1e3}})
	k := mustRows(t, [][]float64{{1e3, 1e3}, {-1e3, 1e3}, {1e3, -1e3}})
	v := mustRows(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})

	output, weights, err := Default[float64]().ComputeWithWeights(q, k, v)
	require.NoError(t, err)

	for _, x := range weights.Data() {
		assert.False(t, math.IsNaN(x) || math.IsInf(x, 0), "weight %v", x)
	}
	for _, x := range output.Data() {
		assert.False(t, math.IsNaN(x) || math.IsInf(x, 0), "output %v", x)
	}
}

func TestCompute_Float32(t *testing.T) {
	const n = 10
	q, k, v := randomQKV[float32](n, 8, 3, 99)

	output, weights, err := Default[float32]().ComputeWithWeights(q, k, v)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, output.DataType())
	assert.Equal(t, tensor.Shape{n, 3}, output.Shape())

	for i := 0; i < n; i++ {
		var sum float32
		for j := 0; j < n; j++ {
			if j > i {
				assert.Equal(t, float32(0), weights.At(i, j))
			}
			sum += weights.At(i, j)
		}
		assert.InDelta(t, 1.0, float64(sum), 1e-5, "row %d", i)
	}
}

func TestCompute_DoesNotMutateInputs(t *testing.T) {
	q, k, v := randomQKV[float64](6, 4, 3, 5)
	q0, k0, v0 := q.Clone(), k.Clone(), v.Clone()

	_, err := Compute(q, k, v)
	require.NoError(t, err)

	assert.True(t, q.Equal(q0))
	assert.True(t, k.Equal(k0))
	assert.True(t, v.Equal(v0))
}

func TestCompute_Deterministic(t *testing.T) {
	q, k, v := randomQKV[float64](64, 12, 7, 11)

	seq := NewEngine[float64](parallel.Sequential())
	par := NewEngine[float64](parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})

	first, err := seq.Compute(q, k, v)
	require.NoError(t, err)
	second, err := seq.Compute(q, k, v)
	require.NoError(t, err)
	parallelOut, err := par.Compute(q, k, v)
	require.NoError(t, err)

	assert.True(t, first.Equal(second), "repeated runs differ")
	assert.True(t, first.Equal(parallelOut), "parallel run differs from sequential")
}

func TestCompute_Errors(t *testing.T) {
	zeros := func(r, c int) *tensor.Matrix[float64] { return tensor.Zeros[float64](r, c) }

	tests := []struct {
		name    string
		q, k, v *tensor.Matrix[float64]
		want    error
	}{
		{"feature mismatch", zeros(3, 4), zeros(3, 5), zeros(3, 4), ErrShapeMismatch},
		{"key rows", zeros(3, 4), zeros(2, 4), zeros(3, 4), ErrShapeMismatch},
		{"value rows", zeros(3, 4), zeros(3, 4), zeros(4, 2), ErrShapeMismatch},
		{"empty key", zeros(3, 4), zeros(0, 4), zeros(3, 4), ErrShapeMismatch},
		{"empty sequence", zeros(0, 4), zeros(0, 4), zeros(0, 4), ErrInvalidDimension},
		{"zero key dimension", zeros(3, 0), zeros(3, 0), zeros(3, 2), ErrInvalidDimension},
		{"nil inputs", nil, nil, nil, ErrInvalidDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := Compute(tt.q, tt.k, tt.v)
			require.Error(t, err)
			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.want)

			var dimErr *DimensionError
			require.True(t, errors.As(err, &dimErr))
			assert.Equal(t, tt.q.Shape(), dimErr.Query)
			assert.Equal(t, tt.k.Shape(), dimErr.Key)
			assert.Equal(t, tt.v.Shape(), dimErr.Value)
		})
	}
}

func TestCompute_ShapeMismatchMessage(t *testing.T) {
	_, err := Compute(tensor.Zeros[float64](3, 4), tensor.Zeros[float64](3, 5), tensor.Zeros[float64](3, 4))
	require.Error(t, err)
	assert.Equal(t,
		"attention: shape mismatch: query has 4 features, key has 5 (q=[3, 4] k=[3, 5] v=[3, 4])",
		err.Error())
}

func TestStages(t *testing.T) {
	e := NewEngine[float64](parallel.Sequential())
	eye := mustRows(t, [][]float64{{1, 0}, {0, 1}})

	scores, err := e.score(eye, eye)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, scores.ToRows())

	scaled := e.scale(scores, 2)
	assert.InDelta(t, 0.70710678, scaled.At(0, 0), 1e-8)
	assert.Equal(t, 0.0, scaled.At(0, 1))

	masked, err := e.mask(scaled)
	require.NoError(t, err)
	assert.True(t, math.IsInf(masked.At(0, 1), -1))
	assert.Equal(t, scaled.At(1, 0), masked.At(1, 0))
	assert.Equal(t, 0.0, scaled.At(0, 1), "mask must not touch its input")

	weights := e.normalize(masked)
	assert.Equal(t, []float64{1, 0}, weights.Row(0))

	out, err := e.aggregate(weights, eye)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, out.Row(0))
}

func BenchmarkCompute(b *testing.B) {
	q, k, v := randomQKV[float32](128, 64, 64, 1)

	b.Run("sequential", func(b *testing.B) {
		e := NewEngine[float32](parallel.Sequential())
		for i := 0; i < b.N; i++ {
			_, _ = e.Compute(q, k, v)
		}
	})

	b.Run("parallel", func(b *testing.B) {
		e := Default[float32]()
		for i := 0; i < b.N; i++ {
			_, _ = e.Compute(q, k, v)
		}
	})
}
