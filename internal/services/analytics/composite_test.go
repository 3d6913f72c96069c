package analytics

import (
	"testing"

	"CardPulse/internal/domain/models"
)

func TestSnapshotFlatProduct(t *testing.T) {
	cfg := DefaultConfig()
	g := &models.SeriesGroup{Key: "flat", Products: []*models.Product{{
		ID: "p1", Name: "flat", Type: models.TypeETB, RetailPrice: 50,
		Prices: []models.PricePoint{pricePoint(0, 50), pricePoint(1, 50), pricePoint(2, 50)},
	}}}

	snap := cfg.Snapshot(g)
	if snap.AverageVariation != 0 {
		t.Fatalf("flat product variation = %v, want 0", snap.AverageVariation)
	}
	want := round2(cfg.TypeWeights[models.TypeETB] / cfg.MaxPossibleWeight())
	if snap.CoverageIndex != want {
		t.Fatalf("coverage = %v, want %v", snap.CoverageIndex, want)
	}
}

func TestSnapshotExcludesUnpricedMember(t *testing.T) {
	cfg := DefaultConfig()
	g := &models.SeriesGroup{Key: "mixed", Products: []*models.Product{
		{
			ID: "etb", Name: "mixed", Type: models.TypeETB, RetailPrice: 50,
			Prices: []models.PricePoint{pricePoint(0, 60)},
		},
		{
			// RetailPrice 0: excluded from numerator and denominator.
			ID: "artset", Name: "mixed", Type: models.TypeArtset, RetailPrice: 0,
			Prices: []models.PricePoint{pricePoint(0, 120)},
		},
	}}

	snap := cfg.Snapshot(g)
	if !almostEqual(snap.AverageVariation, 0.2) {
		t.Fatalf("variation = %v, want 0.2 from the ETB alone", snap.AverageVariation)
	}
	want := round2(cfg.TypeWeights[models.TypeETB] / cfg.MaxPossibleWeight())
	if snap.CoverageIndex != want {
		t.Fatalf("coverage = %v, want %v (artset must not count)", snap.CoverageIndex, want)
	}
}

func TestSnapshotSkipsZeroWeightType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TypeWeights = map[models.ProductType]float64{models.TypeETB: 0.40}
	g := &models.SeriesGroup{Key: "s", Products: []*models.Product{{
		ID: "x", Type: models.TypeDisplay, RetailPrice: 100,
		Prices: []models.PricePoint{pricePoint(0, 200)},
	}}}
	snap := cfg.Snapshot(g)
	if snap.AverageVariation != 0 || snap.CoverageIndex != 0 {
		t.Fatalf("unweighted type should contribute nothing, got %+v", snap)
	}
}

func TestSnapshotCoverageBounds(t *testing.T) {
	cfg := DefaultConfig()
	groups := []*models.SeriesGroup{
		{Key: "empty"},
		{Key: "noprices", Products: []*models.Product{{ID: "a", Type: models.TypeETB, RetailPrice: 40}}},
	}
	for _, g := range groups {
		snap := cfg.Snapshot(g)
		if snap.CoverageIndex != 0 {
			t.Fatalf("%s: coverage = %v, want 0", g.Key, snap.CoverageIndex)
		}
	}

	// Every weighted type priced: coverage hits 1 exactly.
	var all []*models.Product
	for typ := range cfg.TypeWeights {
		all = append(all, &models.Product{
			ID: string(typ), Type: typ, RetailPrice: 100,
			Prices: []models.PricePoint{pricePoint(0, 110)},
		})
	}
	snap := cfg.Snapshot(&models.SeriesGroup{Key: "full", Products: all})
	if snap.CoverageIndex < 0 || snap.CoverageIndex > 1 {
		t.Fatalf("coverage out of bounds: %v", snap.CoverageIndex)
	}
	if snap.CoverageIndex != 1 {
		t.Fatalf("fully covered series should have coverage 1, got %v", snap.CoverageIndex)
	}
}

func TestSeriesIndexDayByDay(t *testing.T) {
	cfg := DefaultConfig()
	g := &models.SeriesGroup{Key: "s", Products: []*models.Product{{
		ID: "p", Type: models.TypeETB, RetailPrice: 100,
		Prices: []models.PricePoint{
			pricePoint(0, 100), pricePoint(1, 110), pricePoint(2, 90),
		},
	}}}

	points := cfg.SeriesIndex(g)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	wantValues := []float64{100, 110, 90}
	for i, p := range points {
		if !almostEqual(p.Value, wantValues[i]) {
			t.Fatalf("point %d value = %v, want %v", i, p.Value, wantValues[i])
		}
		if i > 0 && !points[i-1].Date.Before(p.Date) {
			t.Fatalf("points not strictly ascending by date")
		}
	}
}

func TestSeriesIndexSkipsUnpricedDays(t *testing.T) {
	cfg := DefaultConfig()
	g := &models.SeriesGroup{Key: "s", Products: []*models.Product{
		{
			ID: "etb", Type: models.TypeETB, RetailPrice: 100,
			Prices: []models.PricePoint{pricePoint(0, 120)},
		},
		{
			ID: "display", Type: models.TypeDisplay, RetailPrice: 200,
			Prices: []models.PricePoint{pricePoint(1, 210)},
		},
	}}

	points := cfg.SeriesIndex(g)
	if len(points) != 2 {
		t.Fatalf("expected one point per observed day, got %d", len(points))
	}
	// Day 0 carries only the ETB, day 1 only the Display: each day's value
	// reflects just the types priced on that day.
	if !almostEqual(points[0].Value, 120) {
		t.Fatalf("day 0 value = %v, want 120", points[0].Value)
	}
	if !almostEqual(points[1].Value, 105) {
		t.Fatalf("day 1 value = %v, want 105", points[1].Value)
	}
}
