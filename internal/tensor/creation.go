package tensor

import (
	"math"
	"math/rand/v2"
)

// Randn returns a rows × cols matrix of standard normal samples drawn from rng.
//
// Samples are generated with the Box-Muller transform in float64 and then
// stored as T, so the same rng state gives the same values for either type
// up to rounding.
func Randn[T Float](rows, cols int, rng *rand.Rand) *Matrix[T] {
	m := Zeros[T](rows, cols)
	data := m.data
	for i := 0; i < len(data); i += 2 {
		u1 := 1 - rng.Float64() // (0, 1] keeps log finite
		u2 := rng.Float64()
		r := math.Sqrt(-2.0 * math.Log(u1))
		data[i] = T(r * math.Cos(2.0*math.Pi*u2))
		if i+1 < len(data) {
			data[i+1] = T(r * math.Sin(2.0*math.Pi*u2))
		}
	}
	return m
}

// NewRand returns a deterministic PCG-backed generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // G404: reproducible samples, not secrets
}
