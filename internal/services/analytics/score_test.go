package analytics

import (
	"math"
	"testing"
)

func TestCompositeScoreBounds(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name      string
		premium   *float64
		variation float64
		vol       *float64
		coverage  float64
		fresh     *float64
	}{
		{"extreme bull", fptr(5), 1, fptr(0), 1, fptr(0)},
		{"extreme bear", fptr(-5), -1, fptr(100), 1, fptr(0)},
		{"everything missing", nil, 0, nil, 0, nil},
		{"coverage above one is clamped", fptr(0.1), 0.01, fptr(0.1), 3, fptr(0)},
	}
	for _, tc := range cases {
		got := cfg.CompositeScore(tc.premium, tc.variation, tc.vol, tc.coverage, tc.fresh)
		if got < 0 || got > 100 {
			t.Fatalf("%s: score %v out of [0,100]", tc.name, got)
		}
	}
}

func TestCompositeScoreNeutralFallback(t *testing.T) {
	cfg := DefaultConfig()
	// No premium, no vol, no freshness, no trend: every sub-score sits at the
	// 50 midline and only the reliability floor survives.
	got := cfg.CompositeScore(nil, 0, nil, 0, nil)
	want := 50 * cfg.Scoring.ReliabilityFloor
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("neutral score = %v, want %v", got, want)
	}
}

func TestCompositeScorePremiumMovesScore(t *testing.T) {
	cfg := DefaultConfig()
	fresh := fptr(0.0)
	base := cfg.CompositeScore(fptr(0), 0, fptr(0), 1, fresh)
	up := cfg.CompositeScore(fptr(0.2), 0, fptr(0), 1, fresh)
	down := cfg.CompositeScore(fptr(-0.2), 0, fptr(0), 1, fresh)
	if up <= base || down >= base {
		t.Fatalf("premium ordering broken: down=%v base=%v up=%v", down, base, up)
	}
}

func TestCompositeScoreVolatilityPenalizes(t *testing.T) {
	cfg := DefaultConfig()
	fresh := fptr(0.0)
	calm := cfg.CompositeScore(fptr(0), 0, fptr(0.05), 1, fresh)
	wild := cfg.CompositeScore(fptr(0), 0, fptr(0.80), 1, fresh)
	if wild >= calm {
		t.Fatalf("higher vol should score lower: calm=%v wild=%v", calm, wild)
	}
}

func TestCompositeScoreTrendClamped(t *testing.T) {
	cfg := DefaultConfig()
	fresh := fptr(0.0)
	// Beyond ±50/TrendScale the trend sub-score saturates.
	big := cfg.CompositeScore(fptr(0), 10, fptr(0), 1, fresh)
	moderate := cfg.CompositeScore(fptr(0), 50/cfg.Scoring.TrendScale, fptr(0), 1, fresh)
	if math.Abs(big-moderate) > 1e-9 {
		t.Fatalf("trend saturation broken: %v vs %v", big, moderate)
	}
}

func TestCompositeScoreStaleDataDiscounted(t *testing.T) {
	cfg := DefaultConfig()
	inputs := func(fresh *float64) float64 {
		return cfg.CompositeScore(fptr(0.3), 0.02, fptr(0.1), 1, fresh)
	}
	today := inputs(fptr(0))
	stale := inputs(fptr(cfg.Scoring.FreshnessHorizonDays + 10))
	if stale >= today {
		t.Fatalf("stale data should discount the score: today=%v stale=%v", today, stale)
	}
	// Beyond the horizon only the floor remains, same as no freshness at all.
	if math.Abs(stale-inputs(nil)) > 1e-9 {
		t.Fatalf("beyond-horizon freshness should equal missing freshness")
	}
}

func TestClamp(t *testing.T) {
	if clamp(-1, 0, 100) != 0 || clamp(101, 0, 100) != 100 || clamp(55, 0, 100) != 55 {
		t.Fatalf("clamp misbehaves")
	}
}
