package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrNoWindows is returned when there is nothing to profile.
	ErrNoWindows = errors.New("profile: no windows")

	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("profile: sample rate must be > 0")

	// ErrWindowShape is returned for empty or ragged windows, or windows
	// whose shape differs from the rest of their class.
	ErrWindowShape = errors.New("profile: inconsistent window shape")
)

// Window is one labeled slice of a recording, shaped (seqLen x channels).
type Window struct {
	Samples [][]float64
	Label   string
}

// Len returns the number of timesteps.
func (w Window) Len() int { return len(w.Samples) }

// Channels returns the channel count of the first timestep.
func (w Window) Channels() int {
	if len(w.Samples) == 0 {
		return 0
	}
	return len(w.Samples[0])
}

// Validate reports ErrWindowShape for empty or ragged windows.
func (w Window) Validate() error {
	if len(w.Samples) < 2 {
		return fmt.Errorf("%w: window needs at least 2 timesteps, has %d", ErrWindowShape, len(w.Samples))
	}
	ch := len(w.Samples[0])
	if ch == 0 {
		return fmt.Errorf("%w: window has no channels", ErrWindowShape)
	}
	for t, row := range w.Samples {
		if len(row) != ch {
			return fmt.Errorf("%w: timestep %d has %d channels, want %d", ErrWindowShape, t, len(row), ch)
		}
	}
	return nil
}

// Slice cuts a continuous recording shaped (timesteps x channels) into
// windows of seqLen timesteps, advancing by stride. A trailing remainder
// shorter than seqLen is dropped. The windows share no memory with
// recording.
func Slice(recording [][]float64, seqLen, stride int, label string) ([]Window, error) {
	if seqLen < 2 {
		return nil, fmt.Errorf("%w: seq_len must be >= 2: %d", ErrWindowShape, seqLen)
	}
	if stride <= 0 {
		return nil, fmt.Errorf("profile: stride must be > 0: %d", stride)
	}

	var out []Window
	for start := 0; start+seqLen <= len(recording); start += stride {
		samples := make([][]float64, seqLen)
		for t := range samples {
			samples[t] = append([]float64(nil), recording[start+t]...)
		}
		w := Window{Samples: samples, Label: label}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("window at %d: %w", start, err)
		}
		out = append(out, w)
	}
	return out, nil
}
