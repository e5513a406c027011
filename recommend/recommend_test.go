package recommend

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-periodnet/internal/testutil"
	"github.com/cwbudde/algo-periodnet/profile"
)

func classStats(lo, hi, centroid float64, samples int) profile.FrequencyStats {
	return profile.FrequencyStats{
		ActiveRange: profile.Range{Min: lo, Max: hi},
		Centroid:    centroid,
		Bandwidth:   hi - lo,
		SampleCount: samples,
	}
}

func TestCatalog(t *testing.T) {
	cfgs := Catalog()
	if len(cfgs) != 3 {
		t.Fatalf("catalog has %d entries, want 3", len(cfgs))
	}
	for i, id := range []string{"A", "B", "C"} {
		if cfgs[i].ID != id {
			t.Fatalf("entry %d = %s, want %s", i, cfgs[i].ID, id)
		}
		for j := 1; j < len(cfgs[i].Periods); j++ {
			if cfgs[i].Periods[j] >= cfgs[i].Periods[j-1] {
				t.Fatalf("%s periods not descending: %v", id, cfgs[i].Periods)
			}
		}
	}

	cfgs[1].Periods[0] = 1
	b, ok := Lookup("b")
	if !ok || b.Periods[0] != 100 {
		t.Fatalf("catalog was mutated through a copy: %v", b.Periods)
	}
	if b.FreqRange != (profile.Range{Min: 0.5, Max: 3.0}) {
		t.Fatalf("B range = %+v", b.FreqRange)
	}
	if _, ok := Lookup("Z"); ok {
		t.Fatal("unexpected config Z")
	}
	if got := b.Source().Periods(); len(got) != 5 || got[4] != 16 {
		t.Fatalf("B source periods = %v", got)
	}
}

func TestAggregateWeightsBySampleCount(t *testing.T) {
	s, err := Aggregate(map[string]profile.FrequencyStats{
		"slow": classStats(0.3, 0.7, 0.5, 80),
		"fast": classStats(5, 7, 6, 20),
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	testutil.RequireNearlyEqual(t, "centroid", s.Centroid, 1.6, 1e-12)
	testutil.RequireNearlyEqual(t, "active min", s.ActiveRange.Min, 0.3*0.8+5*0.2, 1e-12)
	testutil.RequireNearlyEqual(t, "active max", s.ActiveRange.Max, 0.7*0.8+7*0.2, 1e-12)
	if s.SampleCount != 100 || s.Classes != 2 {
		t.Fatalf("summary counts = %+v", s)
	}

	if _, err := Aggregate(nil); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
}

func TestScoreContainedRange(t *testing.T) {
	b, _ := Lookup("B")
	sc := ScoreConfig(b, Summary{ActiveRange: profile.Range{Min: 1.8, Max: 2.2}, Centroid: 2})
	testutil.RequireNearlyEqual(t, "overlap", sc.Overlap, 1, 1e-12)
	testutil.RequireNearlyEqual(t, "centroid", sc.Centroid, 1, 0)
	testutil.RequireNearlyEqual(t, "combined", sc.Combined, 1, 1e-12)
}

func TestScoreOverlapAndDisjoint(t *testing.T) {
	a, _ := Lookup("A")

	partial := ScoreConfig(a, Summary{ActiveRange: profile.Range{Min: 0.9, Max: 1.2}, Centroid: 1.05})
	if partial.Overlap <= 0 {
		t.Fatalf("overlapping ranges scored %v", partial.Overlap)
	}
	testutil.RequireNearlyEqual(t, "partial overlap", partial.Overlap, 0.1/0.3, 1e-12)
	testutil.RequireNearlyEqual(t, "centroid decay", partial.Centroid, math.Exp(-0.05), 1e-12)

	for _, cfg := range Catalog() {
		sc := ScoreConfig(cfg, Summary{ActiveRange: profile.Range{Min: 20, Max: 30}, Centroid: 25})
		if sc.Overlap != 0 {
			t.Fatalf("%s: disjoint overlap = %v", cfg.ID, sc.Overlap)
		}
		if sc.Combined != 0.4*sc.Centroid {
			t.Fatalf("%s: combined %v != 0.4*%v", cfg.ID, sc.Combined, sc.Centroid)
		}
	}
}

func TestScoreWideDataRange(t *testing.T) {
	// 0-10 Hz covers every catalog range; the widest covered share wins.
	wide := Summary{ActiveRange: profile.Range{Min: 0, Max: 10}, Centroid: 0.8}
	want := map[string]float64{"A": 0.9 / 10, "B": 2.5 / 10, "C": 8.0 / 10}
	for _, cfg := range Catalog() {
		sc := ScoreConfig(cfg, wide)
		testutil.RequireNearlyEqual(t, cfg.ID+" overlap", sc.Overlap, want[cfg.ID], 1e-12)
	}

	rec, err := Recommend(map[string]profile.FrequencyStats{
		"mixed": classStats(0, 10, 0.8, 50),
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Config.ID != "C" {
		t.Fatalf("recommended %s, want C (scores %+v)", rec.Config.ID, rec.Scores)
	}
	testutil.RequireNearlyEqual(t, "confidence", rec.Confidence, 0.6*0.8+0.4*math.Exp(-1.2), 1e-12)
}

func TestRecommendPicksBalanced(t *testing.T) {
	rec, err := Recommend(map[string]profile.FrequencyStats{
		"walk": classStats(1.8, 2.2, 2, 40),
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Config.ID != "B" {
		t.Fatalf("recommended %s, want B (scores %+v)", rec.Config.ID, rec.Scores)
	}
	testutil.RequireNearlyEqual(t, "confidence", rec.Confidence, 1, 1e-12)
	if len(rec.Scores) != 3 || rec.Scores[0].ConfigID != "A" || rec.Scores[2].ConfigID != "C" {
		t.Fatalf("scores = %+v", rec.Scores)
	}
	if rec.LowConfidence() {
		t.Fatal("confidence 1 flagged as low")
	}
	if g := rec.Guidance(); !strings.Contains(g, "[100, 50, 25, 20, 16]") || strings.Contains(g, "manually") {
		t.Fatalf("unexpected guidance:\n%s", g)
	}
}

func TestRecommendTieKeepsCatalogOrder(t *testing.T) {
	// A point range at 0.75 Hz lies inside both A and B.
	rec, err := Recommend(map[string]profile.FrequencyStats{
		"x": classStats(0.75, 0.75, 0.75, 10),
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Scores[0].Combined != rec.Scores[1].Combined {
		t.Fatalf("expected a tie, got %+v", rec.Scores)
	}
	if rec.Config.ID != "A" {
		t.Fatalf("tie resolved to %s, want A", rec.Config.ID)
	}
}

func TestRecommendLowConfidence(t *testing.T) {
	rec, err := Recommend(map[string]profile.FrequencyStats{
		"buzz": classStats(20, 30, 25, 5),
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Config.ID != "C" {
		t.Fatalf("recommended %s, want nearest config C", rec.Config.ID)
	}
	if !rec.LowConfidence() {
		t.Fatalf("confidence %v not flagged", rec.Confidence)
	}
	if !strings.Contains(rec.Guidance(), "manually") {
		t.Fatalf("guidance lacks override hint:\n%s", rec.Guidance())
	}
}
