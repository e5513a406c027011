package recommend

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cwbudde/algo-periodnet/profile"
)

// ErrNoSamples is returned when the statistics carry no samples to weight.
var ErrNoSamples = errors.New("recommend: no samples in frequency statistics")

// LowConfidenceThreshold is the confidence below which a recommendation should be
// reviewed manually.
const LowConfidenceThreshold = 0.5

const (
	overlapWeight  = 0.6
	centroidWeight = 0.4
)

// Summary is the sample-weighted profile of all classes.
type Summary struct {
	ActiveRange profile.Range
	Centroid    float64
	SampleCount int
	Classes     int
}

// Aggregate averages the active ranges and centroids of all classes,
// weighting each class by its sample count.
func Aggregate(stats map[string]profile.FrequencyStats) (Summary, error) {
	labels := make([]string, 0, len(stats))
	for label := range stats {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	var s Summary
	var lo, hi, cent float64
	for _, label := range labels {
		st := stats[label]
		if st.SampleCount <= 0 {
			continue
		}
		w := float64(st.SampleCount)
		lo += w * st.ActiveRange.Min
		hi += w * st.ActiveRange.Max
		cent += w * st.Centroid
		s.SampleCount += st.SampleCount
		s.Classes++
	}
	if s.SampleCount == 0 {
		return Summary{}, ErrNoSamples
	}

	n := float64(s.SampleCount)
	s.ActiveRange = profile.Range{Min: lo / n, Max: hi / n}
	s.Centroid = cent / n
	return s, nil
}

// Score is the match of one configuration against a summary.
type Score struct {
	ConfigID string
	Overlap  float64
	Centroid float64
	Combined float64
}

// ScoreConfig rates cfg against s.
//
// The overlap term is the length of the intersection of both ranges divided
// by the span of the data, so a data range fully inside the configuration
// scores 1 and a data range wider than the configuration scores the share of
// it the configuration covers. A zero-width data range scores 1 when it lies
// in the configuration range. The centroid term is 1 inside the range and
// decays as exp(-d) with the distance d to the nearest boundary.
func ScoreConfig(cfg PeriodConfig, s Summary) Score {
	overlap := overlapScore(cfg.FreqRange, s.ActiveRange)
	centroid := centroidScore(cfg.FreqRange, s.Centroid)
	return Score{
		ConfigID: cfg.ID,
		Overlap:  overlap,
		Centroid: centroid,
		Combined: overlapWeight*overlap + centroidWeight*centroid,
	}
}

func overlapScore(cfg, data profile.Range) float64 {
	if data.Span() <= 0 {
		if cfg.Contains(data.Min) {
			return 1
		}
		return 0
	}
	lo := math.Max(cfg.Min, data.Min)
	hi := math.Min(cfg.Max, data.Max)
	if hi <= lo {
		return 0
	}
	return math.Min(1, (hi-lo)/data.Span())
}

func centroidScore(cfg profile.Range, f float64) float64 {
	if cfg.Contains(f) {
		return 1
	}
	d := math.Min(math.Abs(f-cfg.Min), math.Abs(f-cfg.Max))
	return math.Exp(-d)
}

// Recommendation is the best catalog entry for a data set.
type Recommendation struct {
	Config     PeriodConfig
	Confidence float64
	Summary    Summary
	// Scores holds one entry per catalog configuration, in catalog order.
	Scores []Score
}

// LowConfidence reports whether the recommendation should be overridden
// manually.
func (r Recommendation) LowConfidence() bool { return r.Confidence < LowConfidenceThreshold }

// Recommend scores every catalog configuration and returns the best one.
// Ties keep the earlier catalog entry. There is always a recommendation;
// callers should check LowConfidence.
func Recommend(stats map[string]profile.FrequencyStats) (Recommendation, error) {
	summary, err := Aggregate(stats)
	if err != nil {
		return Recommendation{}, err
	}

	configs := Catalog()
	rec := Recommendation{Summary: summary, Scores: make([]Score, len(configs))}
	best := -1
	for i, cfg := range configs {
		rec.Scores[i] = ScoreConfig(cfg, summary)
		if best < 0 || rec.Scores[i].Combined > rec.Scores[best].Combined {
			best = i
		}
	}
	rec.Config = configs[best]
	rec.Confidence = math.Max(0, math.Min(1, rec.Scores[best].Combined))
	return rec, nil
}

// Guidance renders deployment instructions for the recommendation.
func (r Recommendation) Guidance() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommended configuration %s (%s), confidence %.0f%%.\n",
		r.Config.ID, r.Config.Name, 100*r.Confidence)
	fmt.Fprintf(&b, "Data: active %.2f-%.2f Hz, centroid %.2f Hz over %d samples in %d classes.\n",
		r.Summary.ActiveRange.Min, r.Summary.ActiveRange.Max, r.Summary.Centroid,
		r.Summary.SampleCount, r.Summary.Classes)
	fmt.Fprintf(&b, "Build the model with fixed periods %s and keep them unchanged for export and deployment.\n",
		formatPeriods(r.Config.Periods))
	fmt.Fprintf(&b, "Intended use: %s.\n", r.Config.UseCase)
	if r.LowConfidence() {
		fmt.Fprintf(&b, "Confidence is below %.0f%%: no configuration matches the data well. "+
			"Review the frequency profile and choose a configuration manually.\n", 100*LowConfidenceThreshold)
	}
	return b.String()
}

func formatPeriods(periods []int) string {
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = fmt.Sprint(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
