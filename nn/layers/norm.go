package layers

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-periodnet/nn/tensor"
	"github.com/cwbudde/algo-vecmath"
)

const layerNormEpsilon = 1e-5

// LayerNorm normalizes the last axis to zero mean and unit variance, then
// applies a learned per-feature scale and shift.
type LayerNorm struct {
	features int
	gamma    []float64
	beta     []float64
}

// NewLayerNorm creates a normalization over the given feature count with
// gamma=1 and beta=0.
func NewLayerNorm(features int) (*LayerNorm, error) {
	if err := validateDims("layernorm", features); err != nil {
		return nil, err
	}
	n := &LayerNorm{
		features: features,
		gamma:    make([]float64, features),
		beta:     make([]float64, features),
	}
	for i := range n.gamma {
		n.gamma[i] = 1
	}
	return n, nil
}

// Forward normalizes every row of the last axis.
func (n *LayerNorm) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	rank := x.Rank()
	if rank == 0 || x.Dim(rank-1) != n.features {
		return nil, fmt.Errorf("%w: layernorm expects last axis %d, got %v", tensor.ErrShape, n.features, x.Shape())
	}
	y := x.Clone()
	data := y.Data()
	f := n.features
	for r := 0; r < len(data); r += f {
		row := data[r : r+f]
		mean := 0.0
		for _, v := range row {
			mean += v
		}
		mean /= float64(f)
		variance := 0.0
		for _, v := range row {
			d := v - mean
			variance += d * d
		}
		variance /= float64(f)
		inv := 1 / math.Sqrt(variance+layerNormEpsilon)
		for i, v := range row {
			row[i] = (v - mean) * inv
		}
		vecmath.MulBlockInPlace(row, n.gamma)
		for i, b := range n.beta {
			row[i] += b
		}
	}
	return y, nil
}

// Params returns gamma and beta.
func (n *LayerNorm) Params(prefix string) []Param {
	return []Param{
		{Name: prefix + ".weight", Shape: []int{n.features}, Values: n.gamma},
		{Name: prefix + ".bias", Shape: []int{n.features}, Values: n.beta},
	}
}
