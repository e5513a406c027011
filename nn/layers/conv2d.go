package layers

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-periodnet/nn/tensor"
)

// Conv2D is a same-padded square 2D convolution with stride 1.
//
// Padding is kernel/2 on every side, so for odd kernels the spatial
// dimensions of the output equal those of the input.
type Conv2D struct {
	in, out int
	kernel  int
	pad     int
	weight  []float64 // out x in x kernel x kernel
	bias    []float64
}

// NewConv2D creates a convolution from in to out channels with an odd kernel.
func NewConv2D(in, out, kernel int, rng *rand.Rand) (*Conv2D, error) {
	if err := validateDims("conv2d", in, out, kernel); err != nil {
		return nil, err
	}
	if kernel%2 == 0 {
		return nil, fmt.Errorf("layers: conv2d kernel must be odd: %d", kernel)
	}
	c := &Conv2D{
		in:     in,
		out:    out,
		kernel: kernel,
		pad:    kernel / 2,
		weight: make([]float64, out*in*kernel*kernel),
		bias:   make([]float64, out),
	}
	bound := fanInBound(in * kernel * kernel)
	uniform(c.weight, bound, rng)
	uniform(c.bias, bound, rng)
	return c, nil
}

// Kernel returns the kernel size.
func (c *Conv2D) Kernel() int { return c.kernel }

// Padding returns the zero padding applied on each side.
func (c *Conv2D) Padding() int { return c.pad }

// Forward maps (batch, in, height, width) to (batch, out, height, width).
func (c *Conv2D) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if x.Rank() != 4 || x.Dim(1) != c.in {
		return nil, fmt.Errorf("%w: conv2d expects (B, %d, H, W), got %v", tensor.ErrShape, c.in, x.Shape())
	}
	batch, h, w := x.Dim(0), x.Dim(2), x.Dim(3)
	y := tensor.New(batch, c.out, h, w)

	src, dst := x.Data(), y.Data()
	k := c.kernel
	plane := h * w
	for b := range batch {
		for o := range c.out {
			out := dst[(b*c.out+o)*plane : (b*c.out+o+1)*plane]
			for i := range out {
				out[i] = c.bias[o]
			}
			for ci := range c.in {
				in := src[(b*c.in+ci)*plane : (b*c.in+ci+1)*plane]
				wk := c.weight[(o*c.in+ci)*k*k : (o*c.in+ci+1)*k*k]
				for ky := range k {
					dy := ky - c.pad
					for kx := range k {
						dx := kx - c.pad
						wv := wk[ky*k+kx]
						if wv == 0 {
							continue
						}
						// Output rows/cols whose shifted input stays in bounds.
						y0, y1 := max(0, -dy), min(h, h-dy)
						x0, x1 := max(0, -dx), min(w, w-dx)
						for yy := y0; yy < y1; yy++ {
							orow := out[yy*w : (yy+1)*w]
							irow := in[(yy+dy)*w : (yy+dy+1)*w]
							for xx := x0; xx < x1; xx++ {
								orow[xx] += wv * irow[xx+dx]
							}
						}
					}
				}
			}
		}
	}
	return y, nil
}

// Params returns the weight and bias slices.
func (c *Conv2D) Params(prefix string) []Param {
	return []Param{
		{Name: prefix + ".weight", Shape: []int{c.out, c.in, c.kernel, c.kernel}, Values: c.weight},
		{Name: prefix + ".bias", Shape: []int{c.out}, Values: c.bias},
	}
}
