package analytics

import (
	"time"

	"CardPulse/internal/domain/models"
)

// SeriesSummary runs the whole pipeline for one series group: snapshot,
// composite index, trend, risk profile against the global benchmark, and
// composite score. Returns the summary plus the composite points it was
// derived from.
func (c Config) SeriesSummary(g *models.SeriesGroup, benchmark []models.IndexPoint, asOf time.Time) (*models.SeriesSummary, []models.IndexPoint) {
	snap := c.Snapshot(g)
	points := c.SeriesIndex(g)
	daily := DailyFromIndex(points)

	trend := c.ClassifyTrend(daily, c.TrendWindowDays, asOf)
	risk := c.Risk(daily, benchmark)

	fin := &models.FinanceSummary{
		Return7d:         changeOverDays(points, 7, asOf),
		Return30d:        changeOverDays(points, 30, asOf),
		Return90d:        changeOverDays(points, 90, asOf),
		ReturnYTD:        changeYTD(points, asOf),
		Vol30dAnnualized: risk.Vol30dAnnualized,
		DownsideVol:      risk.DownsideVol,
		MaxDrawdown:      risk.MaxDrawdown,
		SharpeRatio:      risk.SharpeRatio,
		SortinoRatio:     risk.SortinoRatio,
		CalmarRatio:      risk.CalmarRatio,
		VaR95:            risk.VaR95,
		CVaR95:           risk.CVaR95,
		Beta:             risk.Beta,
		Skewness:         risk.Skewness,
		Kurtosis:         risk.Kurtosis,
		RSI:              risk.RSI,
		CoverageIndex:    snap.CoverageIndex,
		FreshnessDays:    freshness(daily, asOf),
	}
	if snap.CoverageIndex > 0 {
		fin.PremiumNow = fptr(snap.AverageVariation)
	}
	fin.Score = fptr(c.CompositeScore(fin.PremiumNow, trend.Variation, fin.Vol30dAnnualized, fin.CoverageIndex, fin.FreshnessDays))

	return &models.SeriesSummary{
		SeriesKey:        g.Key,
		ProductCount:     len(g.Products),
		Trend:            trend,
		AverageVariation: snap.AverageVariation,
		CoverageIndex:    snap.CoverageIndex,
		Summary:          fin,
	}, points
}

// ProductSummary is the single-product variant of SeriesSummary, computed on
// the product's own daily-aggregated price history.
func (c Config) ProductSummary(p *models.Product, benchmark []models.IndexPoint, asOf time.Time) *models.FinanceSummary {
	daily := AggregateDaily(p.Prices)
	points := indexFromDaily(daily)

	risk := c.Risk(daily, benchmark)

	fin := &models.FinanceSummary{
		Return7d:         changeOverDays(points, 7, asOf),
		Return30d:        changeOverDays(points, 30, asOf),
		Return90d:        changeOverDays(points, 90, asOf),
		ReturnYTD:        changeYTD(points, asOf),
		Vol30dAnnualized: risk.Vol30dAnnualized,
		DownsideVol:      risk.DownsideVol,
		MaxDrawdown:      risk.MaxDrawdown,
		SharpeRatio:      risk.SharpeRatio,
		SortinoRatio:     risk.SortinoRatio,
		CalmarRatio:      risk.CalmarRatio,
		VaR95:            risk.VaR95,
		CVaR95:           risk.CVaR95,
		Beta:             risk.Beta,
		Skewness:         risk.Skewness,
		Kurtosis:         risk.Kurtosis,
		RSI:              risk.RSI,
		FreshnessDays:    freshness(daily, asOf),
	}

	if p.RetailPrice > 0 && len(daily) > 0 {
		latest := daily[len(daily)-1].Price
		fin.PremiumNow = fptr((latest - p.RetailPrice) / p.RetailPrice)
		if max := c.MaxPossibleWeight(); max > 0 {
			fin.CoverageIndex = round2(c.TypeWeights[p.Type] / max)
		}
	}

	trend := c.ClassifyTrend(daily, c.TrendWindowDays, asOf)
	fin.Score = fptr(c.CompositeScore(fin.PremiumNow, trend.Variation, fin.Vol30dAnnualized, fin.CoverageIndex, fin.FreshnessDays))
	return fin
}

// freshness is the age in days of the most recent daily point, nil for an
// empty series.
func freshness(daily []models.DailyPoint, asOf time.Time) *float64 {
	if len(daily) == 0 {
		return nil
	}
	last := daily[len(daily)-1].Day
	days := truncateToDay(asOf).Sub(truncateToDay(last)).Hours() / 24
	if days < 0 {
		days = 0
	}
	return fptr(days)
}

func indexFromDaily(daily []models.DailyPoint) []models.IndexPoint {
	out := make([]models.IndexPoint, len(daily))
	for i, d := range daily {
		out[i] = models.IndexPoint{Date: d.Day, Value: d.Price}
	}
	return out
}
