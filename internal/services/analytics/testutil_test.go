package analytics

import (
	"time"

	"CardPulse/internal/domain/models"
)

var testEpoch = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

// day returns the test epoch shifted by d calendar days.
func day(d int) time.Time { return testEpoch.AddDate(0, 0, d) }

func pricePoint(d int, price float64) models.PricePoint {
	return models.PricePoint{Date: day(d), Price: price}
}

// flatSeries builds n consecutive daily points all at the same price.
func flatSeries(n int, price float64) []models.DailyPoint {
	out := make([]models.DailyPoint, n)
	for i := range out {
		out[i] = models.DailyPoint{Day: day(i), Price: price}
	}
	return out
}

// dailyFromPrices builds consecutive daily points from a price slice.
func dailyFromPrices(prices []float64) []models.DailyPoint {
	out := make([]models.DailyPoint, len(prices))
	for i, p := range prices {
		out[i] = models.DailyPoint{Day: day(i), Price: p}
	}
	return out
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
