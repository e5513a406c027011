package spectrum

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// magnitudeInto writes |in[k]| into dst. len(dst) must equal len(in).
func magnitudeInto(dst []float64, in []complex128) {
	re, im, buf := getScratch(len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	vecmath.Magnitude(dst, re, im)
	putScratch(buf)
}

// powerInto writes |in[k]|^2 into dst. len(dst) must equal len(in).
func powerInto(dst []float64, in []complex128) {
	re, im, buf := getScratch(len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}
	vecmath.Power(dst, re, im)
	putScratch(buf)
}

// BinFrequency returns the frequency in Hz of one-sided bin k for a transform
// of the given size.
func BinFrequency(k, size int, sampleRate float64) float64 {
	if size <= 0 {
		return 0
	}
	return float64(k) * sampleRate / float64(size)
}

// BinCount returns the number of one-sided bins (DC..Nyquist) of a real
// transform of the given size.
func BinCount(size int) int {
	if size <= 0 {
		return 0
	}
	return size/2 + 1
}
