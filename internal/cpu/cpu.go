// Package cpu reports the SIMD extensions of the host processor.
//
// The vector kernels behind spectrum magnitude, layer normalization and
// dropout masks pick their implementation at runtime; this package exposes
// the same view of the hardware so periodctl env can show which path is
// taken.
package cpu

import (
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sys/cpu"
)

// SIMDLevel is an instruction set extension level.
type SIMDLevel int

const (
	SIMDNone SIMDLevel = iota
	SIMDSSE2
	SIMDAVX
	SIMDAVX2
	SIMDAVX512
	SIMDNEON
)

// String returns a human-readable name for the level.
func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "generic"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX:
		return "AVX"
	case SIMDAVX2:
		return "AVX2"
	case SIMDAVX512:
		return "AVX-512"
	case SIMDNEON:
		return "NEON"
	default:
		return "unknown"
	}
}

// Features describes the detected extensions.
type Features struct {
	HasSSE2   bool
	HasAVX    bool
	HasAVX2   bool
	HasAVX512 bool
	HasNEON   bool

	Architecture string // runtime.GOARCH
}

var (
	detectOnce sync.Once
	detected   Features

	forcedMu sync.RWMutex
	forced   *Features
)

// DetectFeatures returns the host features. Detection runs once.
func DetectFeatures() Features {
	forcedMu.RLock()
	f := forced
	forcedMu.RUnlock()
	if f != nil {
		return *f
	}

	detectOnce.Do(func() {
		// x/sys/cpu leaves the flags of other architectures false.
		detected = Features{
			HasSSE2:      cpu.X86.HasSSE2,
			HasAVX:       cpu.X86.HasAVX,
			HasAVX2:      cpu.X86.HasAVX2,
			HasAVX512:    cpu.X86.HasAVX512F,
			HasNEON:      cpu.ARM64.HasASIMD,
			Architecture: runtime.GOARCH,
		}
	})
	return detected
}

// SetForcedFeatures overrides detection. Pass nil to restore it. For tests.
func SetForcedFeatures(f *Features) {
	forcedMu.Lock()
	defer forcedMu.Unlock()
	if f == nil {
		forced = nil
		return
	}
	c := *f
	forced = &c
}

// Supports reports whether f provides level.
func Supports(f Features, level SIMDLevel) bool {
	switch level {
	case SIMDNone:
		return true
	case SIMDSSE2:
		return f.HasSSE2
	case SIMDAVX:
		return f.HasAVX
	case SIMDAVX2:
		return f.HasAVX2
	case SIMDAVX512:
		return f.HasAVX512
	case SIMDNEON:
		return f.HasNEON
	default:
		return false
	}
}

// Best returns the widest level f supports.
func Best(f Features) SIMDLevel {
	for _, level := range []SIMDLevel{SIMDAVX512, SIMDAVX2, SIMDAVX, SIMDSSE2, SIMDNEON} {
		if Supports(f, level) {
			return level
		}
	}
	return SIMDNone
}

// Extensions lists the supported levels, narrowest first.
func Extensions(f Features) []SIMDLevel {
	var out []SIMDLevel
	for _, level := range []SIMDLevel{SIMDSSE2, SIMDAVX, SIMDAVX2, SIMDAVX512, SIMDNEON} {
		if Supports(f, level) {
			out = append(out, level)
		}
	}
	return out
}

// String renders f as "amd64: SSE2 AVX AVX2".
func (f Features) String() string {
	ext := Extensions(f)
	if len(ext) == 0 {
		return f.Architecture + ": generic"
	}
	names := make([]string, len(ext))
	for i, e := range ext {
		names[i] = e.String()
	}
	return f.Architecture + ": " + strings.Join(names, " ")
}
