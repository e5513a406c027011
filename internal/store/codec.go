package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrCorruptSamples is returned when a stored blob does not match its shape.
var ErrCorruptSamples = errors.New("store: corrupt sample blob")

// encodeSamples packs a (seqLen x channels) matrix row-major as little-endian
// float64 values.
func encodeSamples(samples [][]float64) []byte {
	if len(samples) == 0 {
		return nil
	}
	channels := len(samples[0])
	buf := make([]byte, 0, 8*len(samples)*channels)
	for _, row := range samples {
		for _, v := range row {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		}
	}
	return buf
}

func decodeSamples(blob []byte, seqLen, channels int) ([][]float64, error) {
	if seqLen <= 0 || channels <= 0 || len(blob) != 8*seqLen*channels {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrCorruptSamples, len(blob), seqLen, channels)
	}
	flat := make([]float64, seqLen*channels)
	for i := range flat {
		flat[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[8*i:]))
	}
	out := make([][]float64, seqLen)
	for t := range out {
		out[t] = flat[t*channels : (t+1)*channels : (t+1)*channels]
	}
	return out, nil
}
