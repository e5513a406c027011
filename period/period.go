package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinPeriod is the smallest period length ever used.
const MinPeriod = 2

var (
	// ErrEmptyPeriods is returned when an explicit period list is empty.
	ErrEmptyPeriods = errors.New("period: explicit period list is empty")

	// ErrInvalidPeriod is returned for non-positive period lengths.
	ErrInvalidPeriod = errors.New("period: period lengths must be > 0")

	// ErrInvalidSeqLen is returned when the sequence length is not positive.
	ErrInvalidSeqLen = errors.New("period: sequence length must be > 0")
)

// Kind tags the variant held by a Source.
type Kind int

const (
	// KindDefault derives the dyadic cascade from the sequence length.
	KindDefault Kind = iota
	// KindAdaptive selects periods from each input's spectrum.
	KindAdaptive
	// KindFixed uses an explicit list.
	KindFixed
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindAdaptive:
		return "adaptive"
	case KindFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Source is the period policy of a model. The zero value is Default.
type Source struct {
	kind    Kind
	periods []int
}

// Default returns the source that resolves to the dyadic cascade.
func Default() Source { return Source{kind: KindDefault} }

// Adaptive returns the spectral top-k source.
func Adaptive() Source { return Source{kind: KindAdaptive} }

// Fixed returns a source using periods in the given order. The slice is
// copied. An empty list is accepted here and rejected by Resolve.
func Fixed(periods ...int) Source {
	return Source{kind: KindFixed, periods: append([]int{}, periods...)}
}

// Kind returns the variant tag.
func (s Source) Kind() Kind { return s.kind }

// Periods returns a copy of the explicit list (nil unless KindFixed).
func (s Source) Periods() []int {
	if s.kind != KindFixed {
		return nil
	}
	return append([]int{}, s.periods...)
}

// String renders the source, e.g. "fixed[100 50 25]".
func (s Source) String() string {
	if s.kind != KindFixed {
		return s.kind.String()
	}
	parts := make([]string, len(s.periods))
	for i, p := range s.periods {
		parts[i] = strconv.Itoa(p)
	}
	return "fixed[" + strings.Join(parts, " ") + "]"
}

// Clamp raises p to MinPeriod.
func Clamp(p int) int {
	return max(p, MinPeriod)
}

// DefaultCascade returns [T, T/2, T/4, T/8, T/16], each clamped to MinPeriod.
func DefaultCascade(seqLen int) []int {
	out := make([]int, 5)
	for i := range out {
		out[i] = Clamp(seqLen >> i)
	}
	return out
}

// Resolve validates the source against seqLen and returns the selector used
// by every block of a model.
func (s Source) Resolve(seqLen int) (Selector, error) {
	if seqLen <= 0 {
		return Selector{}, fmt.Errorf("%w: %d", ErrInvalidSeqLen, seqLen)
	}

	switch s.kind {
	case KindAdaptive:
		return Selector{kind: KindAdaptive, seqLen: seqLen}, nil
	case KindFixed:
		if len(s.periods) == 0 {
			return Selector{}, ErrEmptyPeriods
		}
		resolved := make([]int, len(s.periods))
		for i, p := range s.periods {
			if p <= 0 {
				return Selector{}, fmt.Errorf("%w: index %d is %d", ErrInvalidPeriod, i, p)
			}
			resolved[i] = Clamp(p)
		}
		return Selector{kind: KindFixed, seqLen: seqLen, periods: resolved}, nil
	default:
		return Selector{kind: KindDefault, seqLen: seqLen, periods: DefaultCascade(seqLen)}, nil
	}
}
