// Package time provides time-domain statistics for single signals and for
// multi-channel sample matrices laid out as (timesteps x channels).
package time

import "math"

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// DC returns the mean (DC offset) of the signal.
func DC(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	// Use Kahan summation for numerical stability.
	var sum, c float64
	for _, x := range signal {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(signal))
}

// Column copies channel c of a (timesteps x channels) matrix into dst and
// returns it. dst is grown when it is too short.
func Column(dst []float64, samples [][]float64, c int) []float64 {
	if cap(dst) < len(samples) {
		dst = make([]float64, len(samples))
	}
	dst = dst[:len(samples)]
	for t, row := range samples {
		dst[t] = row[c]
	}
	return dst
}

// ChannelDC returns the mean of every channel.
func ChannelDC(samples [][]float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	out := make([]float64, len(samples[0]))
	var col []float64
	for c := range out {
		col = Column(col, samples, c)
		out[c] = DC(col)
	}
	return out
}

// ChannelRMS returns the RMS of every channel.
func ChannelRMS(samples [][]float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	out := make([]float64, len(samples[0]))
	var col []float64
	for c := range out {
		col = Column(col, samples, c)
		out[c] = RMS(col)
	}
	return out
}

// Detrend returns a copy of samples with each channel's mean removed.
func Detrend(samples [][]float64) [][]float64 {
	dc := ChannelDC(samples)
	out := make([][]float64, len(samples))
	for t, row := range samples {
		r := make([]float64, len(row))
		for c, v := range row {
			r[c] = v - dc[c]
		}
		out[t] = r
	}
	return out
}
