package temporal

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-periodnet/nn/inception"
	"github.com/cwbudde/algo-periodnet/nn/layers"
	"github.com/cwbudde/algo-periodnet/nn/tensor"
	"github.com/cwbudde/algo-periodnet/period"
)

// Block folds a (batch, seqLen, dModel) sequence into a 2D grid per period,
// extracts multi-scale features with two inception stacks and unfolds the
// result back to the input shape.
//
// The per-period outputs are summed and divided by topK, not by the number of
// periods that carried input. A period longer than the sequence contributes
// a zero-input placeholder that still counts in the divisor, which dilutes the
// block output when topK exceeds the usable periods. Trained weights depend
// on this scaling.
type Block struct {
	seqLen   int
	dModel   int
	topK     int
	selector period.Selector
	expand   *inception.Stack // dModel -> dFF
	project  *inception.Stack // dFF -> dModel
}

// NewBlock creates a block for topo using the given resolved selector.
func NewBlock(topo Topology, selector period.Selector, rng *rand.Rand) (*Block, error) {
	expand, err := inception.New(topo.DModel, topo.DFF, topo.NumKernels, rng)
	if err != nil {
		return nil, err
	}
	project, err := inception.New(topo.DFF, topo.DModel, topo.NumKernels, rng)
	if err != nil {
		return nil, err
	}
	return &Block{
		seqLen:   topo.SeqLen,
		dModel:   topo.DModel,
		topK:     topo.TopK,
		selector: selector,
		expand:   expand,
		project:  project,
	}, nil
}

// Forward returns a tensor of the same shape as x.
func (b *Block) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if x.Rank() != 3 || x.Dim(1) != b.seqLen || x.Dim(2) != b.dModel {
		return nil, fmt.Errorf("%w: block expects (B, %d, %d), got %v", tensor.ErrShape, b.seqLen, b.dModel, x.Shape())
	}

	periods, err := b.selector.Select(x, b.topK)
	if err != nil {
		return nil, err
	}

	sum := tensor.New(x.Shape()...)
	for _, p := range periods {
		y, err := b.forwardPeriod(x, p)
		if err != nil {
			return nil, fmt.Errorf("temporal: period %d: %w", p, err)
		}
		if err := sum.AddInPlace(y); err != nil {
			return nil, err
		}
	}

	sum.ScaleInPlace(1 / float64(b.topK))
	if err := sum.AddInPlace(x); err != nil {
		return nil, err
	}
	return sum, nil
}

// forwardPeriod runs one period through fold -> inception -> GELU ->
// inception -> unfold and returns a (batch, seqLen, dModel) tensor.
func (b *Block) forwardPeriod(x *tensor.Tensor, p int) (*tensor.Tensor, error) {
	batch := x.Dim(0)
	reps := b.seqLen / p
	covered := reps * p

	grid, err := b.fold(x, p, reps, covered)
	if err != nil {
		return nil, err
	}

	h, err := b.expand.Forward(grid)
	if err != nil {
		return nil, err
	}
	h = layers.GELU(h)
	h, err = b.project.Forward(h)
	if err != nil {
		return nil, err
	}

	// (B, N, rows, p) -> (B, rows, p, N) -> (B, rows*p, N)
	back, err := h.Permute(0, 2, 3, 1)
	if err != nil {
		return nil, err
	}
	flat, err := back.Reshape(batch, back.Dim(1)*p, b.dModel)
	if err != nil {
		return nil, err
	}
	return b.fitLength(flat)
}

// fold reshapes the first covered timesteps of x into (B, N, reps, p), or
// returns an all-zero (B, N, 1, p) placeholder when p exceeds the sequence.
func (b *Block) fold(x *tensor.Tensor, p, reps, covered int) (*tensor.Tensor, error) {
	batch := x.Dim(0)
	if covered == 0 {
		return tensor.New(batch, b.dModel, 1, p), nil
	}

	head := x
	if covered < b.seqLen {
		var err error
		head, err = x.Narrow(1, 0, covered)
		if err != nil {
			return nil, err
		}
	}
	grid, err := head.Reshape(batch, reps, p, b.dModel)
	if err != nil {
		return nil, err
	}
	return grid.Permute(0, 3, 1, 2)
}

// fitLength zero-pads or truncates the time axis to seqLen. Truncation only
// happens for placeholders, whose single row is longer than the sequence.
func (b *Block) fitLength(y *tensor.Tensor) (*tensor.Tensor, error) {
	n := y.Dim(1)
	switch {
	case n < b.seqLen:
		return y.PadAxis(1, b.seqLen-n)
	case n > b.seqLen:
		return y.Narrow(1, 0, b.seqLen)
	default:
		return y, nil
	}
}

// Params returns the weights of both inception stacks.
func (b *Block) Params(prefix string) []layers.Param {
	out := b.expand.Params(prefix + ".conv.0")
	return append(out, b.project.Params(prefix+".conv.2")...)
}
