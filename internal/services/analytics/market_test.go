package analytics

import (
	"testing"

	"CardPulse/internal/domain/models"
)

func indexPoints(values map[int]float64) []models.IndexPoint {
	var keys []int
	for k := range values {
		keys = append(keys, k)
	}
	// small fixed inputs; insertion sort keeps the helper dependency-free
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	out := make([]models.IndexPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.IndexPoint{Date: day(k), Value: values[k]})
	}
	return out
}

func TestGlobalIndexBaseIsExactly100(t *testing.T) {
	cfg := DefaultConfig()
	series := [][]models.IndexPoint{
		indexPoints(map[int]float64{0: 80, 1: 90}),
		indexPoints(map[int]float64{0: 120, 1: 130}),
	}
	idx := cfg.GlobalIndex(series, day(1))
	if len(idx.Points) == 0 {
		t.Fatalf("expected points")
	}
	if idx.Points[0].Value != 100 {
		t.Fatalf("first point = %v, want exactly 100", idx.Points[0].Value)
	}
}

func TestGlobalIndexNonPositiveBaseYieldsEmpty(t *testing.T) {
	cfg := DefaultConfig()
	// A zero first-day blend cannot be rebased to 100.
	series := [][]models.IndexPoint{
		indexPoints(map[int]float64{0: 0, 1: 110}),
	}
	idx := cfg.GlobalIndex(series, day(1))
	if idx == nil {
		t.Fatalf("expected a summary object")
	}
	if len(idx.Points) != 0 || idx.Current != nil || idx.Change7d != nil || idx.ChangeYTD != nil {
		t.Fatalf("non-positive base must yield an empty index, got %+v", idx)
	}
}

func TestGlobalIndexBlendsPerDayMean(t *testing.T) {
	cfg := DefaultConfig()
	series := [][]models.IndexPoint{
		indexPoints(map[int]float64{0: 100, 1: 110}),
		indexPoints(map[int]float64{0: 100, 1: 90}),
	}
	idx := cfg.GlobalIndex(series, day(1))
	// Day 0 mean 100 rebases to 100; day 1 mean 100 stays 100.
	if !almostEqual(idx.Points[1].Value, 100) {
		t.Fatalf("day 1 = %v, want 100", idx.Points[1].Value)
	}
}

func TestGlobalIndexChange7dGapFallback(t *testing.T) {
	cfg := DefaultConfig()
	// No point exactly 7 days before asOf; nearest earlier is day 0.
	series := [][]models.IndexPoint{
		indexPoints(map[int]float64{0: 100, 10: 120}),
	}
	idx := cfg.GlobalIndex(series, day(10))
	if idx.Change7d == nil {
		t.Fatalf("change7d should fall back to the nearest earlier point")
	}
	if !almostEqual(*idx.Change7d, 0.2) {
		t.Fatalf("change7d = %v, want 0.2", *idx.Change7d)
	}
}

func TestGlobalIndexChangeNilWithoutBaseline(t *testing.T) {
	cfg := DefaultConfig()
	series := [][]models.IndexPoint{
		indexPoints(map[int]float64{0: 100}),
	}
	idx := cfg.GlobalIndex(series, day(0))
	if idx.Change7d != nil || idx.Change30d != nil || idx.Change90d != nil {
		t.Fatalf("no earlier point exists, changes must be nil: %+v", idx)
	}
}

func TestGlobalIndexChangeYTD(t *testing.T) {
	cfg := DefaultConfig()
	// testEpoch is March 1st; the first point after Jan 1 is the baseline.
	series := [][]models.IndexPoint{
		indexPoints(map[int]float64{0: 100, 30: 125}),
	}
	idx := cfg.GlobalIndex(series, day(30))
	if idx.ChangeYTD == nil {
		t.Fatalf("expected a YTD change")
	}
	if !almostEqual(*idx.ChangeYTD, 0.25) {
		t.Fatalf("changeYTD = %v, want 0.25", *idx.ChangeYTD)
	}
}

func TestGlobalIndexEmptyInput(t *testing.T) {
	cfg := DefaultConfig()
	idx := cfg.GlobalIndex(nil, day(0))
	if idx == nil {
		t.Fatalf("empty input must still produce a summary object")
	}
	if len(idx.Points) != 0 || idx.Current != nil || idx.ChangeYTD != nil {
		t.Fatalf("empty input should yield empty index, got %+v", idx)
	}
}
