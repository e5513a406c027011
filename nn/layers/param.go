package layers

import (
	"fmt"
	"math"
	"math/rand"
)

// Param exposes a named weight slice. Values aliases the layer's storage.
type Param struct {
	Name   string
	Shape  []int
	Values []float64
}

// CountParams returns the total number of scalars across params.
func CountParams(params []Param) int {
	n := 0
	for _, p := range params {
		n += len(p.Values)
	}
	return n
}

// uniform fills w with samples from U(-bound, bound).
func uniform(w []float64, bound float64, rng *rand.Rand) {
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * bound
	}
}

// fanInBound is the default init bound 1/sqrt(fanIn).
func fanInBound(fanIn int) float64 {
	if fanIn <= 0 {
		return 0
	}
	return 1 / math.Sqrt(float64(fanIn))
}

func validateDims(layer string, dims ...int) error {
	for _, d := range dims {
		if d <= 0 {
			return fmt.Errorf("layers: %s dimensions must be > 0: %v", layer, dims)
		}
	}
	return nil
}
