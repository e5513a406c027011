package profile

import (
	"math"

	frequencystats "github.com/cwbudde/algo-periodnet/stats/frequency"
)

// Band indices into EnergyDistribution.
const (
	VeryLow = iota
	Low
	Medium
	High
	VeryHigh
	NumBands
)

// Bands are the fixed energy bands in Hz. Each is half-open [Low, High).
var Bands = [NumBands]frequencystats.Band{
	{Name: "very_low", Low: 0, High: 0.5},
	{Name: "low", Low: 0.5, High: 1.5},
	{Name: "medium", Low: 1.5, High: 3.0},
	{Name: "high", Low: 3.0, High: 5.0},
	{Name: "very_high", Low: 5.0, High: math.Inf(1)},
}

// EnergyDistribution holds the percentage of spectral power per band,
// indexed like Bands.
type EnergyDistribution [NumBands]float64

// Total returns the sum of all band percentages.
func (e EnergyDistribution) Total() float64 {
	sum := 0.0
	for _, v := range e {
		sum += v
	}
	return sum
}

// Share returns the percentage of the band with the given name, or 0.
func (e EnergyDistribution) Share(name string) float64 {
	for i, b := range Bands {
		if b.Name == name {
			return e[i]
		}
	}
	return 0
}
