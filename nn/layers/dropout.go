package layers

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/cwbudde/algo-periodnet/nn/tensor"
	"github.com/cwbudde/algo-vecmath"
)

// Dropout zeroes elements with probability Rate during training and scales
// survivors by 1/(1-Rate). At inference it is the identity.
type Dropout struct {
	rate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDropout creates a dropout layer. rate must be in [0, 1).
func NewDropout(rate float64, rng *rand.Rand) (*Dropout, error) {
	if rate < 0 || rate >= 1 {
		return nil, fmt.Errorf("layers: dropout rate must be in [0,1): %v", rate)
	}
	return &Dropout{rate: rate, rng: rng}, nil
}

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 { return d.rate }

// Forward applies dropout when training is true and returns x unchanged
// otherwise.
func (d *Dropout) Forward(x *tensor.Tensor, training bool) *tensor.Tensor {
	if !training || d.rate == 0 {
		return x
	}

	mask := make([]float64, x.Len())
	keep := 1 / (1 - d.rate)
	d.mu.Lock()
	for i := range mask {
		if d.rng.Float64() >= d.rate {
			mask[i] = keep
		}
	}
	d.mu.Unlock()

	y := x.Clone()
	vecmath.MulBlockInPlace(y.Data(), mask)
	return y
}
