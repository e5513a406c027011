package period

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-periodnet/dsp/spectrum"
	"github.com/cwbudde/algo-periodnet/nn/tensor"
	timestats "github.com/cwbudde/algo-periodnet/stats/time"
)

// Selector is a resolved Source bound to one sequence length.
type Selector struct {
	kind    Kind
	seqLen  int
	periods []int
}

// Kind returns the variant the selector was resolved from.
func (s Selector) Kind() Kind { return s.kind }

// SeqLen returns the sequence length the selector was resolved for.
func (s Selector) SeqLen() int { return s.seqLen }

// Static reports whether the selected periods are independent of the input.
// Only static selectors are safe for static-graph export.
func (s Selector) Static() bool { return s.kind != KindAdaptive }

// Periods returns a copy of the resolved list, or nil for adaptive selectors.
func (s Selector) Periods() []int {
	if s.periods == nil {
		return nil
	}
	return append([]int{}, s.periods...)
}

// Select returns the periods a block processes for x shaped
// (batch, seqLen, channels). At most topK periods are returned.
func (s Selector) Select(x *tensor.Tensor, topK int) ([]int, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("period: top_k must be > 0: %d", topK)
	}
	if s.kind != KindAdaptive {
		n := min(topK, len(s.periods))
		return append([]int{}, s.periods[:n]...), nil
	}

	amp, err := s.MeanAmplitude(x)
	if err != nil {
		return nil, err
	}
	return TopPeriods(amp, s.seqLen, topK), nil
}

// MeanAmplitude computes |rfft| along time for every batch element and
// channel of x and averages the result into one curve of seqLen/2+1 bins.
func (s Selector) MeanAmplitude(x *tensor.Tensor) ([]float64, error) {
	if x.Rank() != 3 || x.Dim(1) != s.seqLen {
		return nil, fmt.Errorf("%w: period selection expects (B, %d, C), got %v", tensor.ErrShape, s.seqLen, x.Shape())
	}
	batch, channels := x.Dim(0), x.Dim(2)

	a, err := spectrum.NewAnalyzer(s.seqLen)
	if err != nil {
		return nil, err
	}
	mean := make([]float64, a.Bins())
	amp := make([]float64, a.Bins())

	data := x.Data()
	rows := make([][]float64, s.seqLen)
	var col []float64
	for b := range batch {
		for t := range rows {
			off := (b*s.seqLen + t) * channels
			rows[t] = data[off : off+channels]
		}
		for c := range channels {
			col = timestats.Column(col, rows, c)
			if err := a.Amplitude(amp, col); err != nil {
				return nil, err
			}
			for k, v := range amp {
				mean[k] += v
			}
		}
	}

	if n := batch * channels; n > 0 {
		for k := range mean {
			mean[k] /= float64(n)
		}
	}
	return mean, nil
}

// TopPeriods picks the topK largest non-DC bins of amplitude and converts each
// bin index k into the period seqLen/k, clamped to MinPeriod. Bins are ranked
// by amplitude, ties by lower index.
func TopPeriods(amplitude []float64, seqLen, topK int) []int {
	if len(amplitude) < 2 || topK <= 0 {
		return nil
	}
	idx := make([]int, len(amplitude)-1)
	for i := range idx {
		idx[i] = i + 1
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return amplitude[idx[i]] > amplitude[idx[j]]
	})

	n := min(topK, len(idx))
	out := make([]int, n)
	for i := range out {
		out[i] = Clamp(seqLen / idx[i])
	}
	return out
}
