package layers

import "github.com/cwbudde/algo-periodnet/nn/tensor"

// GELU returns a copy of x with the Gaussian error linear unit applied.
func GELU(x *tensor.Tensor) *tensor.Tensor {
	y := x.Clone()
	y.Apply(gelu)
	return y
}
