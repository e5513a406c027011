package profile

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-periodnet/dsp/spectrum"
	"github.com/cwbudde/algo-periodnet/dsp/window"
	frequencystats "github.com/cwbudde/algo-periodnet/stats/frequency"
	timestats "github.com/cwbudde/algo-periodnet/stats/time"
)

// Range is a closed frequency interval in Hz.
type Range struct {
	Min float64
	Max float64
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Contains reports whether f lies in [Min, Max].
func (r Range) Contains(f float64) bool { return f >= r.Min && f <= r.Max }

// FrequencyStats summarizes the mean power spectrum of one class.
type FrequencyStats struct {
	// DominantFrequency is the strongest non-DC bin in Hz.
	DominantFrequency float64
	// ActiveRange spans the lowest to highest bin above the threshold.
	// It is (0, 0) when no bin clears the threshold.
	ActiveRange Range
	Centroid    float64
	Bandwidth   float64
	Energy      EnergyDistribution
	SampleCount int

	Flatness float64
	Rolloff  float64
	MeanRMS  float64
}

type options struct {
	threshold float64
	detrend   bool
	window    window.Type
}

// Option configures Profile.
type Option func(*options)

// WithThreshold sets the fraction of the peak power a bin must exceed to be
// part of the active range. Values outside (0, 1) are ignored.
func WithThreshold(fraction float64) Option {
	return func(o *options) {
		if fraction > 0 && fraction < 1 {
			o.threshold = fraction
		}
	}
}

// WithDetrend removes each channel's mean before the transform, so a sensor
// offset does not dominate the very-low band.
func WithDetrend(enabled bool) Option {
	return func(o *options) { o.detrend = enabled }
}

// WithWindow tapers each channel with t before the transform and divides
// the power by the window's power gain. The default is rectangular.
func WithWindow(t window.Type) Option {
	return func(o *options) { o.window = t }
}

// Profile computes FrequencyStats per label. Windows of different classes
// may differ in length; windows within one class may not.
func Profile(windows []Window, sampleRate float64, opts ...Option) (map[string]FrequencyStats, error) {
	if len(windows) == 0 {
		return nil, ErrNoWindows
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	o := options{threshold: frequencystats.DefaultActiveFraction}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	classes, order := group(windows)
	out := make(map[string]FrequencyStats, len(order))
	for _, label := range order {
		stats, err := profileClass(classes[label], sampleRate, o)
		if err != nil {
			return nil, fmt.Errorf("profile: class %q: %w", label, err)
		}
		out[label] = stats
	}
	return out, nil
}

func group(windows []Window) (map[string][]Window, []string) {
	classes := make(map[string][]Window)
	var order []string
	for _, w := range windows {
		if _, ok := classes[w.Label]; !ok {
			order = append(order, w.Label)
		}
		classes[w.Label] = append(classes[w.Label], w)
	}
	return classes, order
}

func profileClass(windows []Window, sampleRate float64, o options) (FrequencyStats, error) {
	seqLen, channels := windows[0].Len(), windows[0].Channels()
	for i, w := range windows {
		if err := w.Validate(); err != nil {
			return FrequencyStats{}, fmt.Errorf("window %d: %w", i, err)
		}
		if w.Len() != seqLen || w.Channels() != channels {
			return FrequencyStats{}, fmt.Errorf("%w: window %d is %dx%d, class is %dx%d",
				ErrWindowShape, i, w.Len(), w.Channels(), seqLen, channels)
		}
	}

	analyzer, err := spectrum.NewAnalyzer(seqLen)
	if err != nil {
		return FrequencyStats{}, err
	}

	var taper []float64
	gain := 1.0
	if o.window != window.TypeRectangular {
		taper = window.Generate(o.window, seqLen)
		gain = window.PowerGain(taper)
	}

	bins := analyzer.Bins()
	mean := make([]float64, bins)
	chPower := make([]float64, bins)
	var col []float64
	rmsSum := 0.0

	for _, w := range windows {
		samples := w.Samples
		if o.detrend {
			samples = timestats.Detrend(samples)
		}
		for c := 0; c < channels; c++ {
			col = timestats.Column(col, samples, c)
			if taper != nil {
				if err := window.ApplyCoefficientsInPlace(col, taper); err != nil {
					return FrequencyStats{}, err
				}
			}
			if err := analyzer.Power(chPower, col); err != nil {
				return FrequencyStats{}, err
			}
			for k, p := range chPower {
				mean[k] += p
			}
		}
		rmsSum += meanOf(timestats.ChannelRMS(w.Samples))
	}

	scale := 1 / (gain * float64(len(windows)*channels))
	for k := range mean {
		mean[k] *= scale
	}

	freqs := frequencystats.Frequencies(seqLen, sampleRate)
	d := frequencystats.Describe(freqs, mean, o.threshold)

	stats := FrequencyStats{
		DominantFrequency: d.Dominant,
		Centroid:          d.Centroid,
		Bandwidth:         d.Bandwidth(),
		SampleCount:       len(windows),
		Flatness:          d.Flatness,
		Rolloff:           d.Rolloff,
		MeanRMS:           rmsSum / float64(len(windows)),
	}
	if d.ActiveFound {
		stats.ActiveRange = Range{Min: d.ActiveLow, Max: d.ActiveHigh}
	}
	copy(stats.Energy[:], frequencystats.BandEnergy(freqs, mean, Bands[:]))
	return stats, nil
}

func meanOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
