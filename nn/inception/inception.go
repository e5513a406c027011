// Package inception implements a multi-kernel 2D convolution stack that
// averages same-padded convolutions of increasing odd kernel size.
package inception

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/cwbudde/algo-periodnet/nn/layers"
	"github.com/cwbudde/algo-periodnet/nn/tensor"
)

// Stack applies kernels of size 1, 3, 5, ... to the same input and returns
// the arithmetic mean of their outputs. Channel width is out regardless of
// the kernel count and spatial dimensions are preserved.
type Stack struct {
	in, out int
	convs   []*layers.Conv2D
}

// New builds a stack of numKernels convolutions from in to out channels.
// Kernel i has size 2i+1 and padding i.
func New(in, out, numKernels int, rng *rand.Rand) (*Stack, error) {
	if numKernels <= 0 {
		return nil, fmt.Errorf("inception: kernel count must be > 0: %d", numKernels)
	}
	s := &Stack{in: in, out: out, convs: make([]*layers.Conv2D, numKernels)}
	for i := range s.convs {
		c, err := layers.NewConv2D(in, out, 2*i+1, rng)
		if err != nil {
			return nil, fmt.Errorf("inception: kernel %d: %w", i, err)
		}
		s.convs[i] = c
	}
	return s, nil
}

// Kernels returns the number of parallel convolutions.
func (s *Stack) Kernels() int { return len(s.convs) }

// Forward maps (batch, in, height, width) to (batch, out, height, width).
func (s *Stack) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	var sum *tensor.Tensor
	for i, c := range s.convs {
		y, err := c.Forward(x)
		if err != nil {
			return nil, fmt.Errorf("inception: kernel %d: %w", i, err)
		}
		if sum == nil {
			sum = y
			continue
		}
		if err := sum.AddInPlace(y); err != nil {
			return nil, err
		}
	}
	sum.ScaleInPlace(1 / float64(len(s.convs)))
	return sum, nil
}

// Params returns the weights of every kernel.
func (s *Stack) Params(prefix string) []layers.Param {
	var out []layers.Param
	for i, c := range s.convs {
		out = append(out, c.Params(prefix+".kernels."+strconv.Itoa(i))...)
	}
	return out
}
