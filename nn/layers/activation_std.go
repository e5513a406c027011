//go:build !fastmath

package layers

import "math"

// gelu is the exact erf form: x * Phi(x).
func gelu(x float64) float64 {
	return 0.5 * x * (1 + math.Erf(x/math.Sqrt2))
}
