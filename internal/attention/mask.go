package attention

import "github.com/born-ml/attention/internal/tensor"

// CausalMask creates a causal (autoregressive) attention mask.
//
// Entry (i, j) is true iff j > i, i.e. key position j lies strictly after
// query position i and must not be attended to:
//
//	// For n=4 (x = masked):
//	// [[.  x  x  x],
//	//  [.  .  x  x],
//	//  [.  .  .  x],
//	//  [.  .  .  . ]]
func CausalMask(n int) *tensor.Mask {
	mask := tensor.NewMask(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			mask.Set(i, j, true)
		}
	}
	return mask
}
