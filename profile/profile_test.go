package profile

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-periodnet/dsp/window"
	"github.com/cwbudde/algo-periodnet/internal/testutil"
)

const testRate = 50.0

func sineWindows(label string, freq float64, n, seqLen, channels int) []Window {
	out := make([]Window, n)
	for i := range out {
		out[i] = Window{Samples: testutil.SineWindow(freq, testRate, seqLen, channels), Label: label}
	}
	return out
}

func TestProfileSingleTone(t *testing.T) {
	stats, err := Profile(sineWindows("walk", 2, 4, 100, 3), testRate)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	s, ok := stats["walk"]
	if !ok {
		t.Fatalf("missing class, got %v", stats)
	}

	testutil.RequireNearlyEqual(t, "dominant", s.DominantFrequency, 2, 1e-12)
	testutil.RequireNearlyEqual(t, "centroid", s.Centroid, 2, 1e-6)
	testutil.RequireNearlyEqual(t, "active min", s.ActiveRange.Min, 2, 1e-12)
	testutil.RequireNearlyEqual(t, "active max", s.ActiveRange.Max, 2, 1e-12)
	testutil.RequireNearlyEqual(t, "bandwidth", s.Bandwidth, 0, 1e-12)
	testutil.RequireNearlyEqual(t, "medium share", s.Energy[Medium], 100, 1e-6)
	if s.SampleCount != 4 {
		t.Fatalf("SampleCount = %d, want 4", s.SampleCount)
	}
	if s.MeanRMS <= 0 {
		t.Fatalf("MeanRMS = %v", s.MeanRMS)
	}
}

func TestProfileBandsSumToHundred(t *testing.T) {
	var windows []Window
	for i := range 5 {
		windows = append(windows, Window{
			Samples: testutil.NoiseWindow(int64(i+1), 1, 128, 2),
			Label:   "noise",
		})
	}
	windows = append(windows, sineWindows("tone", 7.5, 3, 100, 1)...)

	stats, err := Profile(windows, testRate)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d classes, want 2", len(stats))
	}
	for label, s := range stats {
		if math.Abs(s.Energy.Total()-100) > 1e-4 {
			t.Fatalf("%s: band total = %v", label, s.Energy.Total())
		}
		if s.ActiveRange.Min > s.ActiveRange.Max {
			t.Fatalf("%s: inverted active range %+v", label, s.ActiveRange)
		}
		testutil.RequireNearlyEqual(t, label+" bandwidth", s.Bandwidth, s.ActiveRange.Span(), 1e-12)
	}
	if stats["tone"].Energy.Share("very_high") < 99 {
		t.Fatalf("7.5 Hz tone should sit in very_high, got %v", stats["tone"].Energy)
	}
}

func TestProfileDegenerateSpectrum(t *testing.T) {
	silent := Window{Samples: make([][]float64, 32), Label: "idle"}
	for i := range silent.Samples {
		silent.Samples[i] = make([]float64, 2)
	}

	stats, err := Profile([]Window{silent}, testRate)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	s := stats["idle"]
	if s.ActiveRange != (Range{}) || s.Bandwidth != 0 {
		t.Fatalf("degenerate range = %+v bandwidth %v", s.ActiveRange, s.Bandwidth)
	}
	if s.Energy.Total() != 0 {
		t.Fatalf("degenerate energy = %v", s.Energy)
	}
}

func TestProfileDetrend(t *testing.T) {
	samples := testutil.SineWindow(2, testRate, 100, 1)
	for _, row := range samples {
		row[0] += 5
	}
	w := []Window{{Samples: samples, Label: "offset"}}

	raw, err := Profile(w, testRate)
	if err != nil {
		t.Fatal(err)
	}
	detrended, err := Profile(w, testRate, WithDetrend(true))
	if err != nil {
		t.Fatal(err)
	}

	if raw["offset"].Energy[VeryLow] < 50 {
		t.Fatalf("offset should dominate very_low without detrend: %v", raw["offset"].Energy)
	}
	if detrended["offset"].Energy[VeryLow] > 1e-6 {
		t.Fatalf("detrend left very_low energy: %v", detrended["offset"].Energy)
	}
	testutil.RequireNearlyEqual(t, "dominant", detrended["offset"].DominantFrequency, 2, 1e-12)
}

func TestProfileThreshold(t *testing.T) {
	samples := testutil.SineWindow(2, testRate, 100, 1)
	weak := testutil.DeterministicSine(6, testRate, 0.3, 100)
	for i, row := range samples {
		row[0] += weak[i]
	}
	w := []Window{{Samples: samples, Label: "mix"}}

	// The 6 Hz tone carries 9% of the peak power.
	wide, err := Profile(w, testRate)
	if err != nil {
		t.Fatal(err)
	}
	narrow, err := Profile(w, testRate, WithThreshold(0.2))
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireNearlyEqual(t, "default max", wide["mix"].ActiveRange.Max, 6, 1e-12)
	testutil.RequireNearlyEqual(t, "narrow max", narrow["mix"].ActiveRange.Max, 2, 1e-12)
}

func TestProfileErrors(t *testing.T) {
	if _, err := Profile(nil, testRate); !errors.Is(err, ErrNoWindows) {
		t.Fatalf("expected ErrNoWindows, got %v", err)
	}
	w := sineWindows("a", 2, 1, 32, 1)
	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Profile(w, rate); !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("rate %v: expected ErrInvalidSampleRate, got %v", rate, err)
		}
	}

	mixed := append(sineWindows("a", 2, 1, 32, 1), sineWindows("a", 2, 1, 40, 1)...)
	if _, err := Profile(mixed, testRate); !errors.Is(err, ErrWindowShape) {
		t.Fatalf("expected ErrWindowShape, got %v", err)
	}

	ragged := Window{Samples: [][]float64{{1, 2}, {3}}, Label: "a"}
	if _, err := Profile([]Window{ragged}, testRate); !errors.Is(err, ErrWindowShape) {
		t.Fatalf("expected ErrWindowShape for ragged window, got %v", err)
	}
}

func TestSlice(t *testing.T) {
	rec := testutil.SineWindow(1, testRate, 25, 2)
	windows, err := Slice(rec, 10, 5, "run")
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if len(windows) != 4 {
		t.Fatalf("got %d windows, want 4", len(windows))
	}
	if windows[1].Samples[0][1] != rec[5][1] || windows[3].Label != "run" {
		t.Fatalf("unexpected window contents")
	}
	windows[0].Samples[0][0] = 42
	if rec[0][0] == 42 {
		t.Fatal("Slice must copy samples")
	}

	if _, err := Slice(rec, 1, 1, "x"); !errors.Is(err, ErrWindowShape) {
		t.Fatalf("expected ErrWindowShape, got %v", err)
	}
}

func TestProfileWindowReducesLeakage(t *testing.T) {
	// 2.25 Hz falls between the 0.5 Hz bins of a 100-sample window.
	w := []Window{{Samples: testutil.SineWindow(2.25, testRate, 100, 1), Label: "off"}}

	rect, err := Profile(w, testRate)
	if err != nil {
		t.Fatal(err)
	}
	hann, err := Profile(w, testRate, WithWindow(window.TypeHann))
	if err != nil {
		t.Fatal(err)
	}
	if hann["off"].Bandwidth >= rect["off"].Bandwidth {
		t.Fatalf("hann bandwidth %v should be below rectangular %v", hann["off"].Bandwidth, rect["off"].Bandwidth)
	}
	if math.Abs(hann["off"].Energy.Total()-100) > 1e-4 {
		t.Fatalf("band total = %v", hann["off"].Energy.Total())
	}
}
