package analytics

import (
	"sort"
	"time"

	"CardPulse/internal/domain/models"
)

// AggregateDaily collapses an unordered bag of observations into one clean
// point per calendar day: the median of that day's valid prices. Points with
// a non-finite or negative price, or a zero date, are dropped silently; one
// bad listing must not invalidate the product's history. Days are emitted at
// midnight UTC, sorted ascending, and the result is identical for any
// permutation of the input.
func AggregateDaily(points []models.PricePoint) []models.DailyPoint {
	if len(points) == 0 {
		return nil
	}

	byDay := make(map[string][]float64)
	days := make(map[string]time.Time)
	for _, p := range points {
		if p.Date.IsZero() || !isFinite(p.Price) || p.Price < 0 {
			continue
		}
		day := truncateToDay(p.Date)
		key := day.Format("2006-01-02")
		byDay[key] = append(byDay[key], p.Price)
		// normalize the stored day so the output does not depend on which
		// input location was seen last
		days[key] = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	}
	if len(byDay) == 0 {
		return nil
	}

	out := make([]models.DailyPoint, 0, len(byDay))
	for key, prices := range byDay {
		out = append(out, models.DailyPoint{Day: days[key], Price: median(prices)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// truncateToDay drops the time-of-day in the date's own location. No
// timezone conversion is performed.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// median sorts a copy of prices and returns the middle value, or the mean of
// the two middle values for an even count.
func median(prices []float64) float64 {
	s := make([]float64, len(prices))
	copy(s, prices)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
