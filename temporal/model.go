package temporal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"github.com/cwbudde/algo-periodnet/nn/layers"
	"github.com/cwbudde/algo-periodnet/nn/tensor"
	"github.com/cwbudde/algo-periodnet/period"
)

var (
	// ErrChannelMismatch is returned when the input channel count differs
	// from the topology.
	ErrChannelMismatch = errors.New("temporal: channel count mismatch")

	// ErrSeqLenMismatch is returned when the input length differs from the
	// topology.
	ErrSeqLenMismatch = errors.New("temporal: sequence length mismatch")

	// ErrAdaptiveExport is returned when a model with data-dependent period
	// selection is checked for static-graph export.
	ErrAdaptiveExport = errors.New("temporal: adaptive period selection cannot be exported")
)

type options struct {
	seed     int64
	training bool
}

// Option configures model construction.
type Option func(*options)

// WithSeed sets the seed for weight initialization and dropout masks.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithTraining enables dropout in Forward. Inference models leave it off.
func WithTraining(training bool) Option {
	return func(o *options) { o.training = training }
}

// Model is the embedding -> blocks -> head pipeline.
type Model struct {
	topo     Topology
	selector period.Selector
	training bool

	embed     *layers.Linear
	embedDrop *layers.Dropout
	blocks    []*Block
	norm      *layers.LayerNorm
	headDrop  *layers.Dropout
	head      *layers.Linear
}

// New validates topo, resolves its period source once and builds the model.
func New(topo Topology, opts ...Option) (*Model, error) {
	o := options{seed: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if err := topo.Validate(); err != nil {
		return nil, err
	}
	selector, err := topo.Periods.Resolve(topo.SeqLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTopology, err)
	}

	rng := rand.New(rand.NewSource(o.seed))
	m := &Model{topo: topo, selector: selector, training: o.training}

	if m.embed, err = layers.NewLinear(topo.Channels, topo.DModel, rng); err != nil {
		return nil, err
	}
	if m.embedDrop, err = layers.NewDropout(topo.Dropout, rng); err != nil {
		return nil, err
	}
	m.blocks = make([]*Block, topo.Layers)
	for i := range m.blocks {
		if m.blocks[i], err = NewBlock(topo, selector, rng); err != nil {
			return nil, fmt.Errorf("temporal: block %d: %w", i, err)
		}
	}
	if m.norm, err = layers.NewLayerNorm(topo.DModel); err != nil {
		return nil, err
	}
	if m.headDrop, err = layers.NewDropout(topo.Dropout, rng); err != nil {
		return nil, err
	}
	if m.head, err = layers.NewLinear(topo.SeqLen*topo.DModel, topo.OutputWidth(), rng); err != nil {
		return nil, err
	}
	return m, nil
}

// Topology returns the topology the model was built with.
func (m *Model) Topology() Topology { return m.topo }

// Periods returns the resolved period list, or nil for adaptive models.
func (m *Model) Periods() []int { return m.selector.Periods() }

// CheckExportable reports whether the model has no data-dependent control
// flow or shapes.
func (m *Model) CheckExportable() error {
	if !m.selector.Static() {
		return ErrAdaptiveExport
	}
	return nil
}

// Forward maps x shaped (batch, seqLen, channels) to (batch, OutputWidth).
func (m *Model) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := m.checkInput(x); err != nil {
		return nil, err
	}
	batch := x.Dim(0)

	h, err := m.embed.Forward(x)
	if err != nil {
		return nil, err
	}
	h = m.embedDrop.Forward(h, m.training)

	for i, blk := range m.blocks {
		if h, err = blk.Forward(h); err != nil {
			return nil, fmt.Errorf("temporal: block %d: %w", i, err)
		}
		if h, err = m.norm.Forward(h); err != nil {
			return nil, err
		}
	}

	h = layers.GELU(h)
	h = m.headDrop.Forward(h, m.training)
	flat, err := h.Reshape(batch, m.topo.SeqLen*m.topo.DModel)
	if err != nil {
		return nil, err
	}
	return m.head.Forward(flat)
}

func (m *Model) checkInput(x *tensor.Tensor) error {
	if x.Rank() != 3 {
		return fmt.Errorf("%w: expected (batch, seq_len, channels), got %v", tensor.ErrShape, x.Shape())
	}
	if x.Dim(2) != m.topo.Channels {
		return fmt.Errorf("%w: input has %d channels, topology %d", ErrChannelMismatch, x.Dim(2), m.topo.Channels)
	}
	if x.Dim(1) != m.topo.SeqLen {
		return fmt.Errorf("%w: input has %d timesteps, topology %d", ErrSeqLenMismatch, x.Dim(1), m.topo.SeqLen)
	}
	return nil
}

// Predict returns the arg-max class of every row. Anomaly models return 0
// for every row; use Forward for their scores.
func (m *Model) Predict(x *tensor.Tensor) ([]int, error) {
	logits, err := m.Forward(x)
	if err != nil {
		return nil, err
	}
	width := logits.Dim(1)
	data := logits.Data()
	out := make([]int, logits.Dim(0))
	for r := range out {
		row := data[r*width : (r+1)*width]
		best := 0
		for i, v := range row {
			if v > row[best] {
				best = i
			}
		}
		out[r] = best
	}
	return out, nil
}

// Parameters returns every weight slice in a stable order with dotted names.
func (m *Model) Parameters() []layers.Param {
	out := m.embed.Params("enc_embedding.value_embedding")
	for i, blk := range m.blocks {
		out = append(out, blk.Params("model."+strconv.Itoa(i))...)
	}
	out = append(out, m.norm.Params("layer_norm")...)
	return append(out, m.head.Params("projection")...)
}

// ParamCount returns the number of scalar weights.
func (m *Model) ParamCount() int { return layers.CountParams(m.Parameters()) }

// Softmax converts each row of logits shaped (batch, classes) into
// probabilities.
func Softmax(logits *tensor.Tensor) (*tensor.Tensor, error) {
	if logits.Rank() != 2 {
		return nil, fmt.Errorf("%w: softmax expects (batch, classes), got %v", tensor.ErrShape, logits.Shape())
	}
	out := logits.Clone()
	width := out.Dim(1)
	data := out.Data()
	for r := 0; r < len(data); r += width {
		row := data[r : r+width]
		peak := math.Inf(-1)
		for _, v := range row {
			peak = math.Max(peak, v)
		}
		sum := 0.0
		for i, v := range row {
			row[i] = math.Exp(v - peak)
			sum += row[i]
		}
		for i := range row {
			row[i] /= sum
		}
	}
	return out, nil
}

// Batch stacks windows shaped (seqLen x channels) into a (batch, seqLen,
// channels) tensor. All windows must share one shape.
func Batch(windows [][][]float64) (*tensor.Tensor, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: empty batch", tensor.ErrShape)
	}
	seqLen := len(windows[0])
	if seqLen == 0 {
		return nil, fmt.Errorf("%w: empty window", tensor.ErrShape)
	}
	channels := len(windows[0][0])
	data := make([]float64, 0, len(windows)*seqLen*channels)
	for i, w := range windows {
		if len(w) != seqLen {
			return nil, fmt.Errorf("%w: window %d has %d timesteps, want %d", tensor.ErrShape, i, len(w), seqLen)
		}
		for t, row := range w {
			if len(row) != channels {
				return nil, fmt.Errorf("%w: window %d step %d has %d channels, want %d", ErrChannelMismatch, i, t, len(row), channels)
			}
			data = append(data, row...)
		}
	}
	return tensor.FromData(data, len(windows), seqLen, channels)
}
