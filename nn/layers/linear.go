package layers

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-periodnet/nn/tensor"
)

// Linear is an affine projection over the last axis: y = x W^T + b.
type Linear struct {
	in, out int
	weight  []float64 // out x in
	bias    []float64
}

// NewLinear creates a projection from in to out features.
func NewLinear(in, out int, rng *rand.Rand) (*Linear, error) {
	if err := validateDims("linear", in, out); err != nil {
		return nil, err
	}
	l := &Linear{
		in:     in,
		out:    out,
		weight: make([]float64, in*out),
		bias:   make([]float64, out),
	}
	bound := fanInBound(in)
	uniform(l.weight, bound, rng)
	uniform(l.bias, bound, rng)
	return l, nil
}

// In returns the input feature count.
func (l *Linear) In() int { return l.in }

// Out returns the output feature count.
func (l *Linear) Out() int { return l.out }

// Forward projects the last axis of x from In to Out features.
func (l *Linear) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	rank := x.Rank()
	if rank == 0 || x.Dim(rank-1) != l.in {
		return nil, fmt.Errorf("%w: linear expects last axis %d, got %v", tensor.ErrShape, l.in, x.Shape())
	}
	outShape := x.Shape()
	outShape[rank-1] = l.out
	y := tensor.New(outShape...)

	src, dst := x.Data(), y.Data()
	rows := len(src) / l.in
	for r := range rows {
		xr := src[r*l.in : (r+1)*l.in]
		yr := dst[r*l.out : (r+1)*l.out]
		for o := range l.out {
			w := l.weight[o*l.in : (o+1)*l.in]
			acc := l.bias[o]
			for i, v := range xr {
				acc += v * w[i]
			}
			yr[o] = acc
		}
	}
	return y, nil
}

// Params returns the weight and bias slices.
func (l *Linear) Params(prefix string) []Param {
	return []Param{
		{Name: prefix + ".weight", Shape: []int{l.out, l.in}, Values: l.weight},
		{Name: prefix + ".bias", Shape: []int{l.out}, Values: l.bias},
	}
}
