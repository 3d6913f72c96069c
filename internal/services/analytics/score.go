package analytics

// CompositeScore blends premium, trend, and stability sub-scores into one
// 0-100 figure, then discounts it by a coverage×freshness reliability
// multiplier. Missing inputs fall back to the neutral 50 midline so a sparse
// series degrades gracefully instead of collapsing to zero.
func (c Config) CompositeScore(premium *float64, trendVariation float64, vol *float64, coverage float64, freshnessDays *float64) float64 {
	s := c.Scoring

	premiumScore := 50.0
	if premium != nil {
		premiumScore = clamp(50+*premium*s.PremiumScale, 0, 100)
	}

	trendScore := 50 + clamp(trendVariation*s.TrendScale, -50, 50)

	stabilityScore := 50.0
	if vol != nil {
		stabilityScore = 100 / (1 + *vol*s.StabilityScale)
		stabilityScore = clamp(stabilityScore, 0, 100)
	}

	raw := s.PremiumWeight*premiumScore + s.TrendWeight*trendScore + s.StabilityWeight*stabilityScore

	freshFactor := 0.0
	if freshnessDays != nil && s.FreshnessHorizonDays > 0 {
		freshFactor = clamp(1-*freshnessDays/s.FreshnessHorizonDays, 0, 1)
	}
	reliability := s.ReliabilityFloor + (1-s.ReliabilityFloor)*clamp(coverage, 0, 1)*freshFactor

	return clamp(raw*reliability, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
