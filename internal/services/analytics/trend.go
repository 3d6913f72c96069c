package analytics

import (
	"time"

	"CardPulse/internal/domain/models"
)

// ClassifyTrend computes the windowed variation of a daily series and maps
// it onto up/down/stable. The variation compares the filtered series' first
// and last chronological points, not min/max. With fewer than two points in
// the window, or a zero first price, the result is {stable, 0}.
//
// windowDays <= 0 means the whole series; HasRecentData is then true iff the
// series is non-empty.
func (c Config) ClassifyTrend(series []models.DailyPoint, windowDays int, asOf time.Time) models.TrendResult {
	filtered := series
	if windowDays > 0 {
		cutoff := truncateToDay(asOf).AddDate(0, 0, -windowDays)
		filtered = nil
		for _, p := range series {
			if !p.Day.Before(cutoff) {
				filtered = append(filtered, p)
			}
		}
	}

	res := models.TrendResult{Trend: models.TrendStable, HasRecentData: len(filtered) > 0}
	if len(filtered) < 2 {
		return res
	}

	first, last := filtered[0], filtered[len(filtered)-1]
	if first.Price == 0 {
		return res
	}
	variation := (last.Price - first.Price) / first.Price
	res.Variation = variation
	switch {
	case variation > c.TrendUpThreshold:
		res.Trend = models.TrendUp
	case variation < c.TrendDownThreshold:
		res.Trend = models.TrendDown
	}
	return res
}
