package analytics

import (
	"math"

	"CardPulse/internal/domain/models"
)

// Config carries every tunable of the engine as a named value. The engine
// itself holds no module-level state; callers build one Config (usually from
// YAML) and pass it around. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// Trend classification.
	TrendUpThreshold   float64 // variation strictly above → "up"
	TrendDownThreshold float64 // variation strictly below → "down"
	TrendWindowDays    int     // default lookback for trend classification

	// Risk & momentum.
	RSIPeriod          int     // classic 14
	VolWindowDays      int     // rolling window for vol/VaR/moments
	TradingDaysPerYear float64 // annualization factor, sqrt'd for vol
	RiskFreeRate       float64 // annual, subtracted in Sharpe
	MinMomentSample    int     // minimum returns for skewness/kurtosis

	// Tail risk.
	VaRConfidence float64 // 0.95 → 5th percentile of returns

	// Series grouping.
	StopWords []string
	Fusions   map[string]string

	// Series compositing.
	TypeWeights map[models.ProductType]float64

	// Scoring.
	Scoring ScoringConfig
}

// ScoringConfig is the fixed linear blend behind the 0-100 composite score.
// Weights and scales are tunable configuration, not a law of nature.
type ScoringConfig struct {
	PremiumWeight   float64 // share of the premium sub-score
	TrendWeight     float64 // share of the trend sub-score
	StabilityWeight float64 // share of the inverse-volatility sub-score

	PremiumScale   float64 // premium → points around the 50 midline
	TrendScale     float64 // variation → points around the 50 midline
	StabilityScale float64 // annualized vol dampening factor

	ReliabilityFloor     float64 // minimum coverage×freshness multiplier
	FreshnessHorizonDays float64 // staleness beyond this zeroes freshness
}

// DefaultConfig returns the production configuration: the fixed type-weight
// table, the French-market stop words and alias fusions, and the standard
// risk parameters.
func DefaultConfig() Config {
	return Config{
		TrendUpThreshold:   0.05,
		TrendDownThreshold: -0.05,
		TrendWindowDays:    30,

		RSIPeriod:          14,
		VolWindowDays:      30,
		TradingDaysPerYear: 252,
		RiskFreeRate:       0,
		MinMomentSample:    5,

		VaRConfidence: 0.95,

		StopWords: []string{
			"pokemon", "coffret", "edition", "collection",
			"pikachu", "evoli", "dracaufeu", "mew", "mewtwo", "lugia",
		},
		Fusions: map[string]string{
			"ev3.5 151":             "151",
			"ecarlate et violet 151": "151",
			"epee et bouclier celebrations": "celebrations",
			"celebrations 25 ans":           "celebrations",
		},

		TypeWeights: map[models.ProductType]float64{
			models.TypeETB:     0.40,
			models.TypeDisplay: 0.20,
			models.TypeDemi:    0.10,
			models.TypeTriPack: 0.08,
			models.TypeUPC:     0.07,
			models.TypeArtset:  0.07,
			models.TypeBundle:  0.05,
			models.TypeCoffret: 0.03,
		},

		Scoring: ScoringConfig{
			PremiumWeight:   0.35,
			TrendWeight:     0.30,
			StabilityWeight: 0.35,

			PremiumScale:   100,
			TrendScale:     250,
			StabilityScale: 10,

			ReliabilityFloor:     0.25,
			FreshnessHorizonDays: 45,
		},
	}
}

// MaxPossibleWeight is the sum of all configured type weights; the coverage
// index is usedWeight relative to this total.
func (c Config) MaxPossibleWeight() float64 {
	var sum float64
	for _, w := range c.TypeWeights {
		sum += w
	}
	return sum
}

func fptr(v float64) *float64 { return &v }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
