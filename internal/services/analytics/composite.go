package analytics

import (
	"sort"
	"time"

	"CardPulse/internal/domain/models"
)

// IndexBase is the level a composite sits at when market price equals
// retail price (zero variation).
const IndexBase = 100.0

// SeriesSnapshot is the current-day composite of a series: the type-weighted
// average variation of its products against their retail prices, and the
// fraction of the maximum type weight actually backed by priced data.
type SeriesSnapshot struct {
	AverageVariation float64
	CoverageIndex    float64
}

// Snapshot computes the series composite from each product's most recent
// daily price. A type with weight 0, or with no product carrying both a
// positive retail price and at least one valid observation, contributes to
// neither the numerator nor the weight denominator: skipping absent types
// avoids biasing the average toward zero when data is merely missing.
func (c Config) Snapshot(g *models.SeriesGroup) SeriesSnapshot {
	var weightedSum, usedWeight float64
	for typ, products := range partitionByType(g) {
		weight := c.TypeWeights[typ]
		if weight == 0 {
			continue
		}
		var sum float64
		var n int
		for _, p := range products {
			daily := AggregateDaily(p.Prices)
			if p.RetailPrice <= 0 || len(daily) == 0 {
				continue
			}
			latest := daily[len(daily)-1].Price
			sum += (latest - p.RetailPrice) / p.RetailPrice
			n++
		}
		if n == 0 {
			continue
		}
		weightedSum += (sum / float64(n)) * weight
		usedWeight += weight
	}

	snap := SeriesSnapshot{}
	if usedWeight > 0 {
		snap.AverageVariation = weightedSum / usedWeight
	}
	if max := c.MaxPossibleWeight(); max > 0 {
		snap.CoverageIndex = round2(usedWeight / max)
	}
	return snap
}

// SeriesIndex applies the snapshot weighting day by day over the series'
// daily-aggregated, type-grouped history, yielding the composite as a time
// series. A day contributes a point only when at least one weighted type has
// priced data on that exact day. Point values are base-100 relative to
// retail: 100 × (1 + averageVariation).
func (c Config) SeriesIndex(g *models.SeriesGroup) []models.IndexPoint {
	type pricedProduct struct {
		typ    models.ProductType
		retail float64
		byDay  map[string]float64
	}

	var eligible []pricedProduct
	daySet := make(map[string]time.Time)
	for _, p := range g.Products {
		if p == nil || p.RetailPrice <= 0 || c.TypeWeights[p.Type] == 0 {
			continue
		}
		daily := AggregateDaily(p.Prices)
		if len(daily) == 0 {
			continue
		}
		byDay := make(map[string]float64, len(daily))
		for _, dp := range daily {
			key := dp.Day.Format("2006-01-02")
			byDay[key] = dp.Price
			daySet[key] = dp.Day
		}
		eligible = append(eligible, pricedProduct{typ: p.Type, retail: p.RetailPrice, byDay: byDay})
	}
	if len(eligible) == 0 {
		return nil
	}

	dayKeys := make([]string, 0, len(daySet))
	for k := range daySet {
		dayKeys = append(dayKeys, k)
	}
	sort.Strings(dayKeys)

	points := make([]models.IndexPoint, 0, len(dayKeys))
	for _, key := range dayKeys {
		var weightedSum, usedWeight float64
		byType := make(map[models.ProductType][]float64)
		for _, p := range eligible {
			price, ok := p.byDay[key]
			if !ok {
				continue
			}
			byType[p.typ] = append(byType[p.typ], (price-p.retail)/p.retail)
		}
		for typ, variations := range byType {
			weight := c.TypeWeights[typ]
			var sum float64
			for _, v := range variations {
				sum += v
			}
			weightedSum += (sum / float64(len(variations))) * weight
			usedWeight += weight
		}
		if usedWeight == 0 {
			continue
		}
		points = append(points, models.IndexPoint{
			Date:  daySet[key],
			Value: IndexBase * (1 + weightedSum/usedWeight),
		})
	}
	return points
}

func partitionByType(g *models.SeriesGroup) map[models.ProductType][]*models.Product {
	byType := make(map[models.ProductType][]*models.Product)
	for _, p := range g.Products {
		if p == nil {
			continue
		}
		byType[p.Type] = append(byType[p.Type], p)
	}
	return byType
}
