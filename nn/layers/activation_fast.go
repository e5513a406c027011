//go:build fastmath

package layers

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

// sqrt2OverPi is sqrt(2/pi), the scale of the tanh approximation.
const sqrt2OverPi = 0.797884560802865355879892119868763737

// gelu uses the tanh approximation with a fast exponential:
// tanh(u) = 1 - 2/(exp(2u)+1).
func gelu(x float64) float64 {
	u := sqrt2OverPi * (x + 0.044715*x*x*x)
	if u > 20 {
		return x
	}
	if u < -20 {
		return 0
	}
	th := 1 - 2/(approx.FastExp(2*u)+1)
	if math.IsNaN(th) {
		return 0.5 * x * (1 + math.Tanh(u))
	}
	return 0.5 * x * (1 + th)
}
