// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package attention computes causal scaled dot-product attention.
//
// # Overview
//
// Given a query matrix Q [n, d_k], a key matrix K [n, d_k] and a value
// matrix V [n, d_v], Compute returns
//
//	softmax(mask(Q·Kᵗ / sqrt(d_k))) · V
//
// as an [n, d_v] matrix. The mask hides every key position after the query
// position, so row i of the output only mixes value rows 0..i.
//
// # Basic Usage
//
//	import "github.com/born-ml/attention/attention"
//
//	func main() {
//	    q, _ := attention.FromRows([][]float32{{1, 0}, {0, 1}})
//	    out, err := attention.Compute(q, q, q)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(out)
//	}
//
// # Precision
//
// The element type (float32 or float64) is chosen by the caller through the
// matrix type and is kept through every stage.
//
// # Errors
//
// Shape problems are reported before any arithmetic:
//
//	_, err := attention.Compute(q, k, v)
//	if errors.Is(err, attention.ErrShapeMismatch) {
//	    // Q/K feature widths or Q/K/V row counts differ
//	}
//	if errors.Is(err, attention.ErrInvalidDimension) {
//	    // empty sequence or zero-width keys
//	}
//
// # Concurrency
//
// Engines are stateless and safe for concurrent use. Row work inside a call
// may be spread over goroutines (see NewEngine); results do not depend on it.
package attention
