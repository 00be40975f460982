// Package matrixio reads attention inputs from YAML or JSON documents and
// renders matrices as text tables.
package matrixio

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/attention/internal/tensor"
)

// ErrMissingMatrix is returned when a document lacks q, k or v.
var ErrMissingMatrix = errors.New("missing matrix")

// Document is the on-disk form of an attention input:
//
//	q: [[1, 0], [0, 1]]
//	k: [[1, 0], [0, 1]]
//	v: [[1, 0], [0, 1]]
//
// JSON documents with the same keys are accepted too.
type Document struct {
	Q [][]float64 `yaml:"q"`
	K [][]float64 `yaml:"k"`
	V [][]float64 `yaml:"v"`
}

// Inputs holds typed query, key and value matrices.
type Inputs[T tensor.Float] struct {
	Q, K, V *tensor.Matrix[T]
}

// Decode reads one document from r and converts it to matrices of type T.
func Decode[T tensor.Float](r io.Reader) (*Inputs[T], error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode attention input: empty document")
		}
		return nil, fmt.Errorf("decode attention input: %w", err)
	}
	return Convert[T](&doc)
}

// Convert turns a decoded document into matrices of type T.
func Convert[T tensor.Float](doc *Document) (*Inputs[T], error) {
	q, err := toMatrix[T]("q", doc.Q)
	if err != nil {
		return nil, err
	}
	k, err := toMatrix[T]("k", doc.K)
	if err != nil {
		return nil, err
	}
	v, err := toMatrix[T]("v", doc.V)
	if err != nil {
		return nil, err
	}
	return &Inputs[T]{Q: q, K: k, V: v}, nil
}

func toMatrix[T tensor.Float](name string, rows [][]float64) (*tensor.Matrix[T], error) {
	if rows == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingMatrix, name)
	}

	typed := make([][]T, len(rows))
	for i, row := range rows {
		typed[i] = make([]T, len(row))
		for j, x := range row {
			typed[i][j] = T(x)
		}
	}

	m, err := tensor.FromRows(typed)
	if err != nil {
		return nil, fmt.Errorf("matrix %q: %w", name, err)
	}
	return m, nil
}
