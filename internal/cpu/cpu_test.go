package cpu

import (
	"runtime"
	"testing"
)

func TestDetectFeaturesArchitecture(t *testing.T) {
	f := DetectFeatures()
	if f.Architecture != runtime.GOARCH {
		t.Fatalf("Architecture = %q, want %q", f.Architecture, runtime.GOARCH)
	}
	if runtime.GOARCH == "amd64" && !f.HasSSE2 {
		t.Fatal("amd64 must report SSE2")
	}
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "386" && (f.HasSSE2 || f.HasAVX || f.HasAVX2 || f.HasAVX512) {
		t.Fatalf("%s reports x86 extensions: %+v", runtime.GOARCH, f)
	}
	if runtime.GOARCH != "arm64" && f.HasNEON {
		t.Fatalf("%s reports NEON", runtime.GOARCH)
	}
}

func TestForcedFeatures(t *testing.T) {
	t.Cleanup(func() { SetForcedFeatures(nil) })

	SetForcedFeatures(&Features{Architecture: "amd64", HasSSE2: true, HasAVX: true, HasAVX2: true})
	f := DetectFeatures()
	if Best(f) != SIMDAVX2 {
		t.Fatalf("Best = %v, want AVX2", Best(f))
	}
	if got := f.String(); got != "amd64: SSE2 AVX AVX2" {
		t.Fatalf("String = %q", got)
	}

	SetForcedFeatures(&Features{Architecture: "riscv64"})
	f = DetectFeatures()
	if Best(f) != SIMDNone || f.String() != "riscv64: generic" {
		t.Fatalf("generic features = %v / %v", Best(f), f)
	}
}

func TestSupports(t *testing.T) {
	f := Features{HasNEON: true}
	if !Supports(f, SIMDNone) || !Supports(f, SIMDNEON) || Supports(f, SIMDAVX2) {
		t.Fatal("unexpected Supports result")
	}
	if Supports(f, SIMDLevel(99)) {
		t.Fatal("unknown level must be unsupported")
	}
}
