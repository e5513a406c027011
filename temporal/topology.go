package temporal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-periodnet/period"
)

var (
	// ErrInvalidTopology is returned for topologies that cannot be built.
	ErrInvalidTopology = errors.New("temporal: invalid topology")

	// ErrTopologyMismatch is returned when two topologies differ.
	ErrTopologyMismatch = errors.New("temporal: topology mismatch")
)

// Task selects the output head.
type Task int

const (
	// TaskClassification produces NumClasses logits per sequence.
	TaskClassification Task = iota
	// TaskAnomaly produces a single score per sequence.
	TaskAnomaly
)

// String returns the task name.
func (t Task) String() string {
	switch t {
	case TaskClassification:
		return "classification"
	case TaskAnomaly:
		return "anomaly"
	default:
		return "unknown"
	}
}

// ParseTask converts a task name into a Task.
func ParseTask(s string) (Task, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "classification":
		return TaskClassification, nil
	case "anomaly":
		return TaskAnomaly, nil
	default:
		return 0, fmt.Errorf("%w: unknown task %q", ErrInvalidTopology, s)
	}
}

// Topology fixes every shape and control-flow decision of a model. It must
// be identical between the instance that exports a static graph and any
// runtime executing that graph; compare with Fingerprint.
type Topology struct {
	SeqLen     int
	Channels   int
	DModel     int
	DFF        int
	NumKernels int
	TopK       int
	Layers     int
	NumClasses int
	Task       Task
	Dropout    float64
	Periods    period.Source
}

// DefaultTopology returns a small classification topology for the given
// input shape using the default period cascade.
func DefaultTopology(seqLen, channels, numClasses int) Topology {
	return Topology{
		SeqLen:     seqLen,
		Channels:   channels,
		DModel:     16,
		DFF:        32,
		NumKernels: 3,
		TopK:       3,
		Layers:     2,
		NumClasses: numClasses,
		Task:       TaskClassification,
		Dropout:    0.1,
		Periods:    period.Default(),
	}
}

// OutputWidth returns the number of values produced per sequence.
func (t Topology) OutputWidth() int {
	if t.Task == TaskAnomaly {
		return 1
	}
	return t.NumClasses
}

// Validate checks that all dimensions are usable.
func (t Topology) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"seq_len", t.SeqLen},
		{"channels", t.Channels},
		{"d_model", t.DModel},
		{"d_ff", t.DFF},
		{"num_kernels", t.NumKernels},
		{"top_k", t.TopK},
		{"layers", t.Layers},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%w: %s must be > 0: %d", ErrInvalidTopology, f.name, f.value)
		}
	}
	switch t.Task {
	case TaskClassification:
		if t.NumClasses <= 0 {
			return fmt.Errorf("%w: num_classes must be > 0: %d", ErrInvalidTopology, t.NumClasses)
		}
	case TaskAnomaly:
	default:
		return fmt.Errorf("%w: unknown task %d", ErrInvalidTopology, t.Task)
	}
	if t.Dropout < 0 || t.Dropout >= 1 {
		return fmt.Errorf("%w: dropout must be in [0,1): %v", ErrInvalidTopology, t.Dropout)
	}
	if _, err := t.Periods.Resolve(t.SeqLen); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTopology, err)
	}
	return nil
}

// canonical renders the topology in a stable key=value form. The resolved
// period list is included so that a default cascade and the equivalent
// explicit list are told apart only by their source kind.
func (t Topology) canonical() string {
	var b strings.Builder
	fmt.Fprintf(&b, "seq_len=%d;channels=%d;d_model=%d;d_ff=%d;num_kernels=%d;top_k=%d;layers=%d;",
		t.SeqLen, t.Channels, t.DModel, t.DFF, t.NumKernels, t.TopK, t.Layers)
	fmt.Fprintf(&b, "num_classes=%d;task=%s;dropout=%s;", t.NumClasses, t.Task,
		strconv.FormatFloat(t.Dropout, 'g', -1, 64))
	b.WriteString("periods=" + t.Periods.String())
	if sel, err := t.Periods.Resolve(t.SeqLen); err == nil && sel.Static() {
		b.WriteString(";resolved=")
		for i, p := range sel.Periods() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(p))
		}
	}
	return b.String()
}

// Fingerprint returns a hex SHA-256 digest of the canonical topology.
func (t Topology) Fingerprint() string {
	sum := sha256.Sum256([]byte(t.canonical()))
	return hex.EncodeToString(sum[:])
}

// Verify returns ErrTopologyMismatch when other differs from t.
func (t Topology) Verify(other Topology) error {
	if t.Fingerprint() != other.Fingerprint() {
		return fmt.Errorf("%w: %s != %s", ErrTopologyMismatch, t.canonical(), other.canonical())
	}
	return nil
}

// String returns the canonical form.
func (t Topology) String() string { return t.canonical() }
