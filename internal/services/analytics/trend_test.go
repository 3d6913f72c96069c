package analytics

import (
	"testing"

	"CardPulse/internal/domain/models"
)

func TestClassifyTrendThresholds(t *testing.T) {
	cfg := DefaultConfig()
	asOf := day(1)

	cases := []struct {
		name  string
		last  float64
		trend models.Trend
	}{
		{"exactly +5 percent is stable", 105, models.TrendStable},
		{"just above +5 percent is up", 105.01, models.TrendUp},
		{"exactly -5 percent is stable", 95, models.TrendStable},
		{"just below -5 percent is down", 94.99, models.TrendDown},
	}
	for _, tc := range cases {
		series := dailyFromPrices([]float64{100, tc.last})
		got := cfg.ClassifyTrend(series, 0, asOf)
		if got.Trend != tc.trend {
			t.Fatalf("%s: got %s (variation %v)", tc.name, got.Trend, got.Variation)
		}
	}
}

func TestClassifyTrendTooFewPoints(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.ClassifyTrend(dailyFromPrices([]float64{100}), 0, day(0))
	if got.Trend != models.TrendStable || got.Variation != 0 {
		t.Fatalf("single point should be {stable, 0}, got %+v", got)
	}
	if !got.HasRecentData {
		t.Fatalf("single point in window should count as recent data")
	}

	got = cfg.ClassifyTrend(nil, 0, day(0))
	if got.Trend != models.TrendStable || got.HasRecentData {
		t.Fatalf("empty series should be stable with no recent data, got %+v", got)
	}
}

func TestClassifyTrendZeroFirstPrice(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.ClassifyTrend(dailyFromPrices([]float64{0, 100}), 0, day(1))
	if got.Trend != models.TrendStable || got.Variation != 0 {
		t.Fatalf("zero first price must be guarded, got %+v", got)
	}
}

func TestClassifyTrendWindowFiltering(t *testing.T) {
	cfg := DefaultConfig()
	// Old spike outside the window, flat inside it.
	series := []models.DailyPoint{
		{Day: day(0), Price: 50},
		{Day: day(60), Price: 100},
		{Day: day(61), Price: 100},
	}
	asOf := day(61)

	got := cfg.ClassifyTrend(series, 7, asOf)
	if got.Trend != models.TrendStable || got.Variation != 0 {
		t.Fatalf("windowed trend should ignore the old spike, got %+v", got)
	}
	if !got.HasRecentData {
		t.Fatalf("points inside the window should flag recent data")
	}

	// Whole series doubles: unwindowed classification sees it.
	got = cfg.ClassifyTrend(series, 0, asOf)
	if got.Trend != models.TrendUp {
		t.Fatalf("full-series trend should be up, got %+v", got)
	}
}

func TestClassifyTrendNoRecentData(t *testing.T) {
	cfg := DefaultConfig()
	series := dailyFromPrices([]float64{100, 120})
	got := cfg.ClassifyTrend(series, 7, day(200))
	if got.HasRecentData {
		t.Fatalf("all points outside the window, recent data should be false")
	}
	if got.Trend != models.TrendStable {
		t.Fatalf("no points in window should yield stable, got %+v", got)
	}
}
