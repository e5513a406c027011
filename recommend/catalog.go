// Package recommend matches a data set's frequency profile against a fixed
// catalog of period configurations.
package recommend

import (
	"strings"

	"github.com/cwbudde/algo-periodnet/period"
	"github.com/cwbudde/algo-periodnet/profile"
)

// PeriodConfig is one catalog entry. Periods are in descending order.
type PeriodConfig struct {
	ID          string
	Name        string
	Periods     []int
	Description string
	FreqRange   profile.Range
	UseCase     string
}

// Source returns the fixed period source for building a model.
func (c PeriodConfig) Source() period.Source { return period.Fixed(c.Periods...) }

func (c PeriodConfig) clone() PeriodConfig {
	c.Periods = append([]int(nil), c.Periods...)
	return c
}

var catalog = [...]PeriodConfig{
	{
		ID:          "A",
		Name:        "Low frequency",
		Periods:     []int{100, 50, 33, 25, 20},
		Description: "Long periods for slow, sustained motion.",
		FreqRange:   profile.Range{Min: 0.1, Max: 1.0},
		UseCase:     "posture, breathing, slow gestures",
	},
	{
		ID:          "B",
		Name:        "Balanced",
		Periods:     []int{100, 50, 25, 20, 16},
		Description: "Mixed periods covering everyday motion.",
		FreqRange:   profile.Range{Min: 0.5, Max: 3.0},
		UseCase:     "walking, general activity recognition",
	},
	{
		ID:          "C",
		Name:        "High frequency",
		Periods:     []int{50, 25, 12, 8, 5},
		Description: "Short periods for fast, repetitive motion.",
		FreqRange:   profile.Range{Min: 2.0, Max: 10.0},
		UseCase:     "running, tremor, vibration",
	},
}

// Catalog returns a copy of all configurations in catalog order.
func Catalog() []PeriodConfig {
	out := make([]PeriodConfig, len(catalog))
	for i, c := range catalog {
		out[i] = c.clone()
	}
	return out
}

// Lookup returns the configuration with the given ID, ignoring case.
func Lookup(id string) (PeriodConfig, bool) {
	for _, c := range catalog {
		if strings.EqualFold(c.ID, strings.TrimSpace(id)) {
			return c.clone(), true
		}
	}
	return PeriodConfig{}, false
}
