package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// SineWindow builds a (length x channels) sample matrix where every channel
// carries the same sine at freqHz, scaled by 1, 2, 3... per channel.
func SineWindow(freqHz, sampleRate float64, length, channels int) [][]float64 {
	base := DeterministicSine(freqHz, sampleRate, 1, length)
	out := make([][]float64, length)
	for t := range out {
		row := make([]float64, channels)
		for c := range row {
			row[c] = base[t] * float64(c+1)
		}
		out[t] = row
	}
	return out
}

// NoiseWindow builds a (length x channels) sample matrix of seeded noise.
func NoiseWindow(seed int64, amplitude float64, length, channels int) [][]float64 {
	flat := DeterministicNoise(seed, amplitude, length*channels)
	out := make([][]float64, length)
	for t := range out {
		out[t] = flat[t*channels : (t+1)*channels]
	}
	return out
}

// Ramp returns 0, 1, 2, ... n-1.
func Ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
