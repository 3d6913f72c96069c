package analytics

import (
	"sort"
	"time"

	"CardPulse/internal/domain/models"
)

// GlobalIndex blends the per-series composites into one market index: per
// calendar day the arithmetic mean of every series that has a point on that
// day, rebased so the earliest point equals exactly 100. Rolling changes
// fall back to the nearest earlier point when the exact day is missing, and
// are nil only when no earlier point exists at all.
func (c Config) GlobalIndex(seriesIndexes [][]models.IndexPoint, asOf time.Time) *models.MarketIndex {
	daySet := make(map[string]time.Time)
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, series := range seriesIndexes {
		for _, p := range series {
			key := p.Date.Format("2006-01-02")
			daySet[key] = p.Date
			sums[key] += p.Value
			counts[key]++
		}
	}
	if len(daySet) == 0 {
		return &models.MarketIndex{}
	}

	dayKeys := make([]string, 0, len(daySet))
	for k := range daySet {
		dayKeys = append(dayKeys, k)
	}
	sort.Strings(dayKeys)

	points := make([]models.IndexPoint, 0, len(dayKeys))
	for _, key := range dayKeys {
		points = append(points, models.IndexPoint{
			Date:  daySet[key],
			Value: sums[key] / float64(counts[key]),
		})
	}

	// Rebase to 100 at the epoch. A non-positive first value cannot be
	// rebased; report no index rather than an unrebased or infinite one.
	base := points[0].Value
	if base <= 0 {
		return &models.MarketIndex{}
	}
	for i := range points {
		points[i].Value = points[i].Value / base * IndexBase
	}

	idx := &models.MarketIndex{Points: points}
	last := points[len(points)-1]
	idx.Current = fptr(last.Value)
	idx.Change7d = changeOverDays(points, 7, asOf)
	idx.Change30d = changeOverDays(points, 30, asOf)
	idx.Change90d = changeOverDays(points, 90, asOf)
	idx.ChangeYTD = changeYTD(points, asOf)
	return idx
}

// changeOverDays compares the latest value against the value N days back,
// or the nearest earlier available point when that exact day is missing.
func changeOverDays(points []models.IndexPoint, days int, asOf time.Time) *float64 {
	if len(points) == 0 {
		return nil
	}
	latest := points[len(points)-1].Value
	target := truncateToDay(asOf).AddDate(0, 0, -days)
	base, ok := valueAtOrBefore(points, target)
	if !ok || base == 0 {
		return nil
	}
	return fptr((latest - base) / base)
}

// changeYTD uses the first available point on or after January 1 of asOf's
// year as the baseline.
func changeYTD(points []models.IndexPoint, asOf time.Time) *float64 {
	if len(points) == 0 {
		return nil
	}
	jan1 := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, asOf.Location())
	for _, p := range points {
		if p.Date.Before(jan1) {
			continue
		}
		if p.Value == 0 {
			return nil
		}
		latest := points[len(points)-1].Value
		return fptr((latest - p.Value) / p.Value)
	}
	return nil
}

// valueAtOrBefore returns the value of the last point dated at or before
// target, scanning the ascending point sequence.
func valueAtOrBefore(points []models.IndexPoint, target time.Time) (float64, bool) {
	var val float64
	found := false
	for _, p := range points {
		if p.Date.After(target) {
			break
		}
		val = p.Value
		found = true
	}
	return val, found
}
