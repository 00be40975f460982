package tokenizer

import "github.com/born-ml/attention/internal/tensor"

// Embed maps each token ID to a dim-wide feature row.
//
// Row values are standard normal samples seeded by the token ID and scaled
// by 1/sqrt(dim), so equal tokens always get equal rows and dot products
// stay near unit size. This stands in for a learned embedding table.
func Embed[T tensor.Float](tokens []int32, dim int) *tensor.Matrix[T] {
	out := tensor.Zeros[T](len(tokens), dim)
	norm := tensor.Sqrt(T(dim))
	for i, id := range tokens {
		row := tensor.Randn[T](1, dim, tensor.NewRand(uint64(uint32(id))))
		dst := out.Row(i)
		for j, x := range row.Data() {
			dst[j] = x / norm
		}
	}
	return out
}
