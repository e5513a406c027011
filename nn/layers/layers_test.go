package layers

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-periodnet/internal/testutil"
	"github.com/cwbudde/algo-periodnet/nn/tensor"
)

func newRNG() *rand.Rand { return rand.New(rand.NewSource(1)) }

func TestLinearForward(t *testing.T) {
	l, err := NewLinear(2, 3, newRNG())
	if err != nil {
		t.Fatalf("NewLinear: %v", err)
	}
	params := l.Params("proj")
	copy(params[0].Values, []float64{1, 0, 0, 1, 1, 1})
	copy(params[1].Values, []float64{0, 0, 10})

	x, _ := tensor.FromData([]float64{2, 3, -1, 4}, 2, 2)
	y, err := l.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, y.Data(), []float64{2, 3, 15, -1, 4, 13}, 1e-12)

	if CountParams(params) != 9 {
		t.Fatalf("param count: got %d want 9", CountParams(params))
	}

	bad := tensor.New(2, 5)
	if _, err := l.Forward(bad); !errors.Is(err, tensor.ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
}

// naiveConv is a reference zero-padded same convolution.
func naiveConv(c *Conv2D, x *tensor.Tensor) *tensor.Tensor {
	b, h, w := x.Dim(0), x.Dim(2), x.Dim(3)
	y := tensor.New(b, c.out, h, w)
	k := c.kernel
	for n := range b {
		for o := range c.out {
			for yy := range h {
				for xx := range w {
					acc := c.bias[o]
					for ci := range c.in {
						for ky := range k {
							for kx := range k {
								iy, ix := yy+ky-c.pad, xx+kx-c.pad
								if iy < 0 || iy >= h || ix < 0 || ix >= w {
									continue
								}
								acc += c.weight[((o*c.in+ci)*k+ky)*k+kx] * x.At(n, ci, iy, ix)
							}
						}
					}
					y.Set(acc, n, o, yy, xx)
				}
			}
		}
	}
	return y
}

func TestConv2DMatchesReference(t *testing.T) {
	for _, kernel := range []int{1, 3, 5, 7} {
		c, err := NewConv2D(3, 2, kernel, newRNG())
		if err != nil {
			t.Fatalf("NewConv2D(%d): %v", kernel, err)
		}
		// Grid narrower than the kernel exercises the clipped borders.
		x, _ := tensor.FromData(testutil.DeterministicNoise(int64(kernel), 1, 2*3*4*2), 2, 3, 4, 2)

		got, err := c.Forward(x)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if got.Dim(0) != 2 || got.Dim(1) != 2 || got.Dim(2) != 4 || got.Dim(3) != 2 {
			t.Fatalf("shape: got %v", got.Shape())
		}
		testutil.RequireSliceNearlyEqual(t, got.Data(), naiveConv(c, x).Data(), 1e-12)
	}
}

func TestConv2DIdentityKernel(t *testing.T) {
	c, err := NewConv2D(1, 1, 3, newRNG())
	if err != nil {
		t.Fatalf("NewConv2D: %v", err)
	}
	p := c.Params("conv")
	for i := range p[0].Values {
		p[0].Values[i] = 0
	}
	p[0].Values[4] = 1
	p[1].Values[0] = 0

	x, _ := tensor.FromData(testutil.Ramp(12), 1, 1, 3, 4)
	y, err := c.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, y.Data(), x.Data(), 0)
}

func TestConv2DValidation(t *testing.T) {
	if _, err := NewConv2D(1, 1, 2, newRNG()); err == nil {
		t.Fatal("expected error for even kernel")
	}
	if _, err := NewConv2D(0, 1, 3, newRNG()); err == nil {
		t.Fatal("expected error for zero channels")
	}
	c, _ := NewConv2D(2, 1, 3, newRNG())
	if _, err := c.Forward(tensor.New(1, 3, 2, 2)); !errors.Is(err, tensor.ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
}

func TestLayerNormRows(t *testing.T) {
	n, err := NewLayerNorm(4)
	if err != nil {
		t.Fatalf("NewLayerNorm: %v", err)
	}
	x, _ := tensor.FromData([]float64{1, 2, 3, 4, 10, 10, 10, 10}, 2, 4)
	y, err := n.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	row := y.Data()[:4]
	mean, sq := 0.0, 0.0
	for _, v := range row {
		mean += v
		sq += v * v
	}
	if math.Abs(mean) > 1e-12 || math.Abs(sq/4-1) > 1e-4 {
		t.Fatalf("row not normalized: %v", row)
	}
	// Constant rows normalize to zero.
	testutil.RequireSliceNearlyEqual(t, y.Data()[4:], []float64{0, 0, 0, 0}, 1e-9)
	if x.At(0, 0) != 1 {
		t.Fatal("LayerNorm must not modify its input")
	}
}

func TestDropout(t *testing.T) {
	d, err := NewDropout(0.5, newRNG())
	if err != nil {
		t.Fatalf("NewDropout: %v", err)
	}
	x, _ := tensor.FromData(testutil.DC(1, 1000), 1000)

	if got := d.Forward(x, false); got != x {
		t.Fatal("inference dropout must be the identity")
	}

	y := d.Forward(x, true)
	zeros := 0
	for _, v := range y.Data() {
		switch v {
		case 0:
			zeros++
		case 2:
		default:
			t.Fatalf("unexpected value %v", v)
		}
	}
	if zeros < 400 || zeros > 600 {
		t.Fatalf("drop count %d far from 500", zeros)
	}

	if _, err := NewDropout(1, newRNG()); err == nil {
		t.Fatal("expected error for rate 1")
	}
}

func TestGELU(t *testing.T) {
	x, _ := tensor.FromData([]float64{0, 1, -1, 30, -30}, 5)
	y := GELU(x)
	want := []float64{0, 0.8413447460685429, -0.15865525393145707, 30, 0}
	testutil.RequireSliceNearlyEqual(t, y.Data(), want, 2e-3)
	if x.At(1) != 1 {
		t.Fatal("GELU must not modify its input")
	}
}
