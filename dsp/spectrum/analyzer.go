package spectrum

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// ErrLengthMismatch is returned when a buffer does not match the analyzer size.
var ErrLengthMismatch = errors.New("spectrum: buffer length mismatch")

// Analyzer computes one-sided spectra of real signals of a fixed length.
//
// An Analyzer owns scratch buffers and is not safe for concurrent use. Create
// one per goroutine.
type Analyzer struct {
	size int
	plan *algofft.Plan[complex128]

	in  []complex128
	out []complex128
}

// NewAnalyzer creates an analyzer for signals of the given length.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("spectrum: analyzer size must be > 0: %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan for size %d: %w", size, err)
	}

	return &Analyzer{
		size: size,
		plan: plan,
		in:   make([]complex128, size),
		out:  make([]complex128, size),
	}, nil
}

// Size returns the signal length the analyzer was built for.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of one-sided bins produced per spectrum.
func (a *Analyzer) Bins() int { return BinCount(a.size) }

// Power writes the one-sided power spectrum |X[k]|^2 of x into dst.
//
// len(x) must equal Size and len(dst) must equal Bins.
func (a *Analyzer) Power(dst, x []float64) error {
	if err := a.check(dst, x); err != nil {
		return err
	}

	if err := a.forward(x); err != nil {
		return err
	}
	powerInto(dst, a.out[:len(dst)])
	return nil
}

// Amplitude writes the one-sided amplitude spectrum |X[k]| of x into dst.
func (a *Analyzer) Amplitude(dst, x []float64) error {
	if err := a.check(dst, x); err != nil {
		return err
	}

	if err := a.forward(x); err != nil {
		return err
	}
	magnitudeInto(dst, a.out[:len(dst)])
	return nil
}

func (a *Analyzer) forward(x []float64) error {
	for i, v := range x {
		a.in[i] = complex(v, 0)
	}
	if err := a.plan.Forward(a.out, a.in); err != nil {
		return fmt.Errorf("spectrum: forward fft: %w", err)
	}
	return nil
}

func (a *Analyzer) check(dst, x []float64) error {
	if len(x) != a.size {
		return fmt.Errorf("%w: signal %d, analyzer %d", ErrLengthMismatch, len(x), a.size)
	}
	if len(dst) != a.Bins() {
		return fmt.Errorf("%w: dst %d, bins %d", ErrLengthMismatch, len(dst), a.Bins())
	}
	return nil
}
