package analytics

import (
	"math"
	"testing"

	"CardPulse/internal/domain/models"
)

func TestRiskNullSafetyBelowMinimum(t *testing.T) {
	cfg := DefaultConfig()
	for _, n := range []int{0, 1} {
		p := cfg.Risk(flatSeries(n, 100), nil)
		if p.Vol30dAnnualized != nil || p.SharpeRatio != nil || p.SortinoRatio != nil ||
			p.CalmarRatio != nil || p.VaR95 != nil || p.CVaR95 != nil ||
			p.Beta != nil || p.Skewness != nil || p.Kurtosis != nil ||
			p.RSI != nil || p.MaxDrawdown != nil {
			t.Fatalf("n=%d: every field must be nil, got %+v", n, p)
		}
	}
}

func TestRiskMomentBoundary(t *testing.T) {
	cfg := DefaultConfig()
	// 5 points → 4 returns: one short of the minimum moment sample of 5.
	p := cfg.Risk(dailyFromPrices([]float64{100, 101, 99, 102, 98}), nil)
	if p.Skewness != nil || p.Kurtosis != nil {
		t.Fatalf("4 returns should leave moments nil, got skew=%v kurt=%v", p.Skewness, p.Kurtosis)
	}
	if p.Vol30dAnnualized == nil {
		t.Fatalf("4 returns are enough for vol")
	}

	// 6 points → 5 returns: moments become available.
	p = cfg.Risk(dailyFromPrices([]float64{100, 101, 99, 102, 98, 103}), nil)
	if p.Skewness == nil || p.Kurtosis == nil {
		t.Fatalf("5 returns should produce moments")
	}
}

func TestRiskFlatSeries(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.Risk(flatSeries(10, 50), nil)
	if p.MaxDrawdown == nil || *p.MaxDrawdown != 0 {
		t.Fatalf("flat series drawdown = %v, want 0", p.MaxDrawdown)
	}
	if p.Vol30dAnnualized == nil || *p.Vol30dAnnualized != 0 {
		t.Fatalf("flat series vol = %v, want measured 0", p.Vol30dAnnualized)
	}
	// Zero stddev: ratios are undefined, not zero.
	if p.SharpeRatio != nil || p.SortinoRatio != nil || p.CalmarRatio != nil {
		t.Fatalf("flat series ratios must be nil, got %+v", p)
	}
	if p.DownsideVol != nil {
		t.Fatalf("no negative returns: downside vol must be nil, got %v", *p.DownsideVol)
	}
}

func TestRiskMaxDrawdown(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.Risk(dailyFromPrices([]float64{100, 110, 99, 105}), nil)
	if p.MaxDrawdown == nil {
		t.Fatalf("expected a drawdown")
	}
	want := (99.0 - 110.0) / 110.0
	if !almostEqual(*p.MaxDrawdown, want) {
		t.Fatalf("maxDrawdown = %v, want %v", *p.MaxDrawdown, want)
	}
}

func TestRiskAdjacentDaysOnly(t *testing.T) {
	// A gap between day 1 and day 5: no return is computed across it.
	series := []models.DailyPoint{
		{Day: day(0), Price: 100},
		{Day: day(1), Price: 110},
		{Day: day(5), Price: 300},
		{Day: day(6), Price: 330},
	}
	rets := adjacentDailyReturns(series)
	if len(rets) != 2 {
		t.Fatalf("expected 2 adjacent-day returns, got %d", len(rets))
	}
	for _, r := range rets {
		if !almostEqual(r.r, 0.1) {
			t.Fatalf("unexpected return %v", r.r)
		}
	}
}

func TestRiskVaRAndCVaR(t *testing.T) {
	cfg := DefaultConfig()
	// Construct consecutive days with known returns.
	prices := []float64{100}
	rets := []float64{-0.05, -0.01, 0.01, 0.02, 0.03}
	for _, r := range rets {
		prices = append(prices, prices[len(prices)-1]*(1+r))
	}
	p := cfg.Risk(dailyFromPrices(prices), nil)
	if p.VaR95 == nil || p.CVaR95 == nil {
		t.Fatalf("expected tail-risk estimates")
	}
	// 5th percentile of 5 sorted returns: rank 0.2 between -0.05 and -0.01.
	want := -0.05 + 0.2*(-0.01-(-0.05))
	if math.Abs(*p.VaR95-want) > 1e-9 {
		t.Fatalf("var95 = %v, want %v", *p.VaR95, want)
	}
	if math.Abs(*p.CVaR95-(-0.05)) > 1e-9 {
		t.Fatalf("cvar95 = %v, want -0.05 (mean of the tail)", *p.CVaR95)
	}
}

func TestRiskSharpeKnownValue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RiskFreeRate = 0
	prices := []float64{100}
	rets := []float64{0.01, 0.03, 0.01, 0.03}
	for _, r := range rets {
		prices = append(prices, prices[len(prices)-1]*(1+r))
	}
	p := cfg.Risk(dailyFromPrices(prices), nil)
	if p.SharpeRatio == nil {
		t.Fatalf("expected a sharpe ratio")
	}
	mean := 0.02
	std := sampleStd(rets)
	want := mean / std * math.Sqrt(cfg.TradingDaysPerYear)
	if math.Abs(*p.SharpeRatio-want) > 1e-6 {
		t.Fatalf("sharpe = %v, want %v", *p.SharpeRatio, want)
	}
	// All returns positive: no downside, so sortino is undefined.
	if p.DownsideVol != nil || p.SortinoRatio != nil {
		t.Fatalf("no downside: sortino must be nil")
	}
}

func TestRiskBetaAgainstSelfIsOne(t *testing.T) {
	cfg := DefaultConfig()
	prices := []float64{100, 102, 99, 104, 101, 103}
	series := dailyFromPrices(prices)
	bench := make([]models.IndexPoint, len(series))
	for i, d := range series {
		bench[i] = models.IndexPoint{Date: d.Day, Value: d.Price}
	}
	p := cfg.Risk(series, bench)
	if p.Beta == nil {
		t.Fatalf("expected beta")
	}
	if math.Abs(*p.Beta-1) > 1e-9 {
		t.Fatalf("beta vs self = %v, want 1", *p.Beta)
	}
}

func TestRiskBetaNilOnFlatBenchmark(t *testing.T) {
	cfg := DefaultConfig()
	series := dailyFromPrices([]float64{100, 102, 99, 104})
	bench := make([]models.IndexPoint, 4)
	for i := range bench {
		bench[i] = models.IndexPoint{Date: day(i), Value: 100}
	}
	if p := cfg.Risk(series, bench); p.Beta != nil {
		t.Fatalf("zero benchmark variance must give nil beta, got %v", *p.Beta)
	}
}

func TestRSIBoundaries(t *testing.T) {
	cfg := DefaultConfig()
	// 14 points: one short of period+1.
	if p := cfg.Risk(flatSeries(14, 100), nil); p.RSI != nil {
		t.Fatalf("14 points must give nil RSI, got %v", *p.RSI)
	}

	// 15 strictly rising days: all gains, RSI pegs at 100.
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	p := cfg.Risk(dailyFromPrices(prices), nil)
	if p.RSI == nil || *p.RSI != 100 {
		t.Fatalf("rising series RSI = %v, want 100", p.RSI)
	}

	// 15 strictly falling days: all losses, RSI at 0.
	for i := range prices {
		prices[i] = 100 - float64(i)
	}
	p = cfg.Risk(dailyFromPrices(prices), nil)
	if p.RSI == nil || *p.RSI != 0 {
		t.Fatalf("falling series RSI = %v, want 0", p.RSI)
	}
}
