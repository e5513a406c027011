package frequency

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// makeSingleBinSpectrum creates a spectrum of given length with a single
// non-zero bin at the specified index.
func makeSingleBinSpectrum(n, bin int, power float64) []float64 {
	p := make([]float64, n)
	if bin >= 0 && bin < n {
		p[bin] = power
	}
	return p
}

func TestFrequencies(t *testing.T) {
	f := Frequencies(100, 50)
	if len(f) != 51 {
		t.Fatalf("len: got %d want 51", len(f))
	}
	if !almostEqual(f[1], 0.5, tolerance) || !almostEqual(f[50], 25, tolerance) {
		t.Fatalf("unexpected axis: f[1]=%v f[50]=%v", f[1], f[50])
	}
	if Frequencies(0, 50) != nil {
		t.Fatal("expected nil axis for size 0")
	}
}

func TestDescribeSingleBin(t *testing.T) {
	freqs := Frequencies(100, 50)
	power := makeSingleBinSpectrum(len(freqs), 4, 3)

	d := Describe(freqs, power, DefaultActiveFraction)
	if d.PeakBin != 4 {
		t.Fatalf("PeakBin: got %d want 4", d.PeakBin)
	}
	if !almostEqual(d.Dominant, 2, tolerance) {
		t.Fatalf("Dominant: got %v want 2", d.Dominant)
	}
	if !almostEqual(d.Centroid, 2, tolerance) {
		t.Fatalf("Centroid: got %v want 2", d.Centroid)
	}
	if !almostEqual(d.Spread, 0, tolerance) {
		t.Fatalf("Spread: got %v want 0", d.Spread)
	}
	if !d.ActiveFound || !almostEqual(d.ActiveLow, 2, tolerance) || !almostEqual(d.ActiveHigh, 2, tolerance) {
		t.Fatalf("active range: got (%v, %v, %v)", d.ActiveLow, d.ActiveHigh, d.ActiveFound)
	}
	if d.Bandwidth() != 0 {
		t.Fatalf("Bandwidth: got %v want 0", d.Bandwidth())
	}
	if !almostEqual(d.TotalPower, 3, tolerance) {
		t.Fatalf("TotalPower: got %v want 3", d.TotalPower)
	}
}

func TestDominantBinIgnoresDC(t *testing.T) {
	power := []float64{100, 1, 5, 2}
	if got := DominantBin(power); got != 2 {
		t.Fatalf("DominantBin: got %d want 2", got)
	}
	if got := DominantBin([]float64{4}); got != 0 {
		t.Fatalf("DominantBin single: got %d want 0", got)
	}
}

func TestActiveRangeThreshold(t *testing.T) {
	freqs := []float64{0, 1, 2, 3, 4, 5}
	// Peak 100: threshold 5. Bins at 1 Hz (6) and 4 Hz (5.5) clear it; 5 Hz (5) does not.
	power := []float64{1, 6, 100, 2, 5.5, 5}

	lo, hi, ok := ActiveRange(freqs, power, 0.05)
	if !ok || lo != 1 || hi != 4 {
		t.Fatalf("ActiveRange: got (%v, %v, %v) want (1, 4, true)", lo, hi, ok)
	}
}

func TestActiveRangeDegenerate(t *testing.T) {
	freqs := []float64{0, 1, 2}
	lo, hi, ok := ActiveRange(freqs, make([]float64, 3), 0.05)
	if ok || lo != 0 || hi != 0 {
		t.Fatalf("expected collapsed range, got (%v, %v, %v)", lo, hi, ok)
	}

	d := Describe(freqs, make([]float64, 3), 0.05)
	if d.Bandwidth() != 0 || d.Centroid != 0 || d.Rolloff != 0 {
		t.Fatalf("expected zero descriptors, got %+v", d)
	}
}

func TestBandEnergySumsToHundred(t *testing.T) {
	bands := []Band{
		{Name: "a", Low: 0, High: 1},
		{Name: "b", Low: 1, High: 3},
		{Name: "c", Low: 3, High: math.Inf(1)},
	}
	freqs := []float64{0, 0.5, 1, 2, 3, 10}
	power := []float64{1, 1, 2, 2, 3, 1}

	got := BandEnergy(freqs, power, bands)
	want := []float64{20, 40, 40}
	sum := 0.0
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Fatalf("band %d: got %v want %v", i, got[i], want[i])
		}
		sum += got[i]
	}
	if !almostEqual(sum, 100, 1e-9) {
		t.Fatalf("sum: got %v want 100", sum)
	}
}

func TestBandEnergyAllZero(t *testing.T) {
	bands := []Band{{Low: 0, High: math.Inf(1)}}
	got := BandEnergy([]float64{0, 1}, []float64{0, 0}, bands)
	if got[0] != 0 {
		t.Fatalf("expected 0 for silent spectrum, got %v", got[0])
	}
}

func TestFlatness(t *testing.T) {
	if got := Flatness([]float64{9, 2, 2, 2, 2}); !almostEqual(got, 1, tolerance) {
		t.Fatalf("flat spectrum: got %v want 1", got)
	}
	if got := Flatness([]float64{0, 1, 0, 1}); got != 0 {
		t.Fatalf("spectrum with zero bin: got %v want 0", got)
	}
}

func TestRolloff(t *testing.T) {
	freqs := []float64{0, 1, 2, 3}
	power := []float64{0, 10, 80, 10}
	// Cumulative: 0, 10, 90 >= 85 at 2 Hz.
	if got := Rolloff(freqs, power, 0.85); !almostEqual(got, 2, tolerance) {
		t.Fatalf("Rolloff: got %v want 2", got)
	}
}

func TestCentroidWeighted(t *testing.T) {
	freqs := []float64{1, 3}
	power := []float64{3, 1}
	if got := Centroid(freqs, power); !almostEqual(got, 1.5, tolerance) {
		t.Fatalf("Centroid: got %v want 1.5", got)
	}
}
