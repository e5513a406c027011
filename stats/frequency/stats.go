// Package frequency computes spectral shape descriptors from one-sided power
// spectra.
//
// All functions take the bin frequencies in Hz alongside the per-bin power
// (|X[k]|^2). Use [Frequencies] to build the axis for a real transform.
package frequency

import (
	"math"

	"github.com/cwbudde/algo-periodnet/dsp/spectrum"
)

// Band is a half-open frequency interval [Low, High) in Hz.
// A High of +Inf makes the band open-ended.
type Band struct {
	Name string
	Low  float64
	High float64
}

// Contains reports whether f lies in the band.
func (b Band) Contains(f float64) bool {
	return f >= b.Low && f < b.High
}

// Descriptors holds spectral shape statistics.
type Descriptors struct {
	BinCount    int
	TotalPower  float64
	Peak        float64
	PeakBin     int     // arg-max excluding DC
	Dominant    float64 // frequency of PeakBin (Hz)
	Centroid    float64 // power-weighted mean frequency (Hz)
	Spread      float64 // power-weighted standard deviation around Centroid (Hz)
	Flatness    float64 // Wiener entropy, 0..1
	Rolloff     float64 // frequency below which 85% of the power lies (Hz)
	ActiveLow   float64
	ActiveHigh  float64
	ActiveFound bool
}

// Bandwidth returns the width of the active range.
func (d Descriptors) Bandwidth() float64 {
	if !d.ActiveFound {
		return 0
	}
	return d.ActiveHigh - d.ActiveLow
}

// DefaultActiveFraction is the share of the peak power a bin must exceed to
// count as active.
const DefaultActiveFraction = 0.05

// Frequencies returns the bin frequencies of a real transform of length size
// sampled at sampleRate: f_k = k * sampleRate / size for k in [0, size/2].
func Frequencies(size int, sampleRate float64) []float64 {
	if size <= 0 {
		return nil
	}
	out := make([]float64, spectrum.BinCount(size))
	for k := range out {
		out[k] = spectrum.BinFrequency(k, size, sampleRate)
	}
	return out
}

// Describe computes all descriptors of power over freqs, using activeFraction
// of the overall peak as the active-range threshold.
func Describe(freqs, power []float64, activeFraction float64) Descriptors {
	n := min(len(freqs), len(power))
	if n == 0 {
		return Descriptors{}
	}
	freqs, power = freqs[:n], power[:n]

	var d Descriptors
	d.BinCount = n
	for _, p := range power {
		d.TotalPower += p
	}

	d.PeakBin = DominantBin(power)
	d.Peak = power[d.PeakBin]
	d.Dominant = freqs[d.PeakBin]
	d.Centroid = centroid(freqs, power, d.TotalPower)
	d.Spread = spread(freqs, power, d.Centroid, d.TotalPower)
	d.Flatness = Flatness(power)
	d.Rolloff = rolloff(freqs, power, 0.85, d.TotalPower)
	d.ActiveLow, d.ActiveHigh, d.ActiveFound = ActiveRange(freqs, power, activeFraction)

	return d
}

// DominantBin returns the index of the largest bin, ignoring DC (bin 0).
// Spectra with fewer than two bins return 0.
func DominantBin(power []float64) int {
	if len(power) < 2 {
		return 0
	}
	best := 1
	for i := 2; i < len(power); i++ {
		if power[i] > power[best] {
			best = i
		}
	}
	return best
}

// Centroid returns the power-weighted mean frequency.
//
//	centroid = sum(f_k * P_k) / sum(P_k)
func Centroid(freqs, power []float64) float64 {
	total := 0.0
	for _, p := range power {
		total += p
	}
	return centroid(freqs, power, total)
}

func centroid(freqs, power []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	weighted := 0.0
	for i, p := range power {
		weighted += freqs[i] * p
	}
	return weighted / total
}

func spread(freqs, power []float64, cent, total float64) float64 {
	if total == 0 {
		return 0
	}
	acc := 0.0
	for i, p := range power {
		diff := freqs[i] - cent
		acc += diff * diff * p
	}
	return math.Sqrt(acc / total)
}

// ActiveRange returns the lowest and highest frequency whose power exceeds
// fraction times the spectrum's peak. ok is false when no bin clears the
// threshold, in which case low and high are 0.
func ActiveRange(freqs, power []float64, fraction float64) (low, high float64, ok bool) {
	peak := 0.0
	for _, p := range power {
		if p > peak {
			peak = p
		}
	}
	threshold := fraction * peak

	first, last := -1, -1
	for i, p := range power {
		if p > threshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return 0, 0, false
	}
	return freqs[first], freqs[last], true
}

// BandEnergy returns the percentage of total power that falls into each band.
// Bins outside every band are ignored in the numerator but counted in the
// total. An all-zero spectrum yields all-zero percentages.
func BandEnergy(freqs, power []float64, bands []Band) []float64 {
	out := make([]float64, len(bands))
	total := 0.0
	for i, p := range power {
		total += p
		for b, band := range bands {
			if band.Contains(freqs[i]) {
				out[b] += p
				break
			}
		}
	}
	if total == 0 {
		return out
	}
	for b := range out {
		out[b] = 100 * out[b] / total
	}
	return out
}

// Flatness returns the spectral flatness (Wiener entropy) in the range 0..1.
//
// Flatness = exp(mean(log(P_k))) / mean(P_k)
//
// DC bin (index 0) is excluded from the computation. If any considered bin is
// zero, 0 is returned.
func Flatness(power []float64) float64 {
	n := len(power)
	if n < 2 {
		return 0
	}

	nBins := n - 1
	sumLin := 0.0
	sumLog := 0.0
	for i := 1; i < n; i++ {
		v := power[i]
		if v <= 0 {
			return 0
		}
		sumLin += v
		sumLog += math.Log(v)
	}

	meanLin := sumLin / float64(nBins)
	if meanLin == 0 {
		return 0
	}
	return math.Exp(sumLog/float64(nBins)) / meanLin
}

// Rolloff returns the frequency below which percent (0..1) of the total power
// lies.
func Rolloff(freqs, power []float64, percent float64) float64 {
	total := 0.0
	for _, p := range power {
		total += p
	}
	return rolloff(freqs, power, percent, total)
}

func rolloff(freqs, power []float64, percent, total float64) float64 {
	if len(power) == 0 || total == 0 {
		return 0
	}
	threshold := percent * total
	cum := 0.0
	for i, p := range power {
		cum += p
		if cum >= threshold {
			return freqs[i]
		}
	}
	return freqs[len(power)-1]
}
