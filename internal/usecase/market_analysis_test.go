package usecase

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"CardPulse/internal/domain/models"
	domrepo "CardPulse/internal/domain/repository"
	"CardPulse/internal/services/analytics"
)

type fakeCatalog struct {
	products []*models.Product
}

func (f *fakeCatalog) ListProducts(_ context.Context) ([]*models.Product, error) {
	return f.products, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*models.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("product %s not found", id)
}

type nopMetrics struct{}

func (nopMetrics) RecordObservation(string, string) {}
func (nopMetrics) RecordError(string)               {}
func (nopMetrics) RecordLastPrice(string, float64)  {}
func (nopMetrics) RecordIndexLevel(float64)         {}
func (nopMetrics) RecordLatency(string, float64)    {}

// testCatalog builds two single-product series with ten daily observations
// each, ending today.
func testCatalog() *fakeCatalog {
	now := time.Now().UTC()
	day := func(i int) time.Time {
		d := now.AddDate(0, 0, -(9 - i))
		return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
	}

	alpha := &models.Product{
		ID:          "p-alpha-etb",
		Name:        "Alpha",
		Type:        models.TypeETB,
		RetailPrice: 50,
	}
	for i := 0; i < 10; i++ {
		alpha.Prices = append(alpha.Prices, models.PricePoint{Date: day(i), Price: 50 + float64(i)})
	}

	beta := &models.Product{
		ID:          "p-beta-display",
		Name:        "Beta",
		Type:        models.TypeDisplay,
		RetailPrice: 100,
	}
	for i := 0; i < 10; i++ {
		beta.Prices = append(beta.Prices, models.PricePoint{Date: day(i), Price: 110})
	}

	return &fakeCatalog{products: []*models.Product{alpha, beta}}
}

func newTestAnalysis(catalog *fakeCatalog) *MarketAnalysisUseCase {
	return NewMarketAnalysisUseCase(catalog, analytics.DefaultConfig(), nil, nopMetrics{}, time.Minute)
}

func TestOverviewComputesSeriesAndIndex(t *testing.T) {
	uc := newTestAnalysis(testCatalog())

	ov, err := uc.Overview(context.Background(), domrepo.WinMax)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.Index == nil || ov.Index.Current == nil {
		t.Fatalf("expected a global index with a current level")
	}
	if len(ov.Series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(ov.Series))
	}
	if ov.Series[0].SeriesKey != "alpha" || ov.Series[1].SeriesKey != "beta" {
		t.Fatalf("expected sorted keys alpha,beta; got %s,%s", ov.Series[0].SeriesKey, ov.Series[1].SeriesKey)
	}
	for _, s := range ov.Series {
		if s.ProductCount != 1 {
			t.Fatalf("series %s: expected 1 product, got %d", s.SeriesKey, s.ProductCount)
		}
		if s.Summary == nil || s.Summary.Score == nil {
			t.Fatalf("series %s: expected a scored summary", s.SeriesKey)
		}
	}

	// rebased: the earliest blended point sits at exactly 100
	first := ov.Index.Points[0].Value
	if math.Abs(first-100) > 1e-9 {
		t.Fatalf("expected first index point 100, got %v", first)
	}
}

func TestOverviewWindowTrimsPoints(t *testing.T) {
	uc := newTestAnalysis(testCatalog())

	full, err := uc.Overview(context.Background(), domrepo.WinMax)
	if err != nil {
		t.Fatalf("overview max: %v", err)
	}
	trimmed, err := uc.Overview(context.Background(), domrepo.Win7d)
	if err != nil {
		t.Fatalf("overview 7d: %v", err)
	}
	if len(trimmed.Index.Points) >= len(full.Index.Points) {
		t.Fatalf("expected 7d window to trim points: %d vs %d",
			len(trimmed.Index.Points), len(full.Index.Points))
	}
	// changes are computed on full history regardless of the window
	if (full.Index.Change7d == nil) != (trimmed.Index.Change7d == nil) {
		t.Fatalf("window must not affect change fields")
	}
}

func TestSeriesReportCanonicalizesKey(t *testing.T) {
	uc := newTestAnalysis(testCatalog())

	rep, err := uc.SeriesReport(context.Background(), "ALPHA", domrepo.WinMax)
	if err != nil {
		t.Fatalf("series report: %v", err)
	}
	if rep.SeriesKey != "alpha" {
		t.Fatalf("expected canonical key alpha, got %s", rep.SeriesKey)
	}
	if len(rep.Points) == 0 {
		t.Fatalf("expected composite points")
	}
}

func TestSeriesReportUnknownKey(t *testing.T) {
	uc := newTestAnalysis(testCatalog())

	if _, err := uc.SeriesReport(context.Background(), "no-such-series", domrepo.WinMax); err == nil {
		t.Fatalf("expected error for unknown series")
	}
}

func TestProductSummaryPremium(t *testing.T) {
	uc := newTestAnalysis(testCatalog())

	fin, err := uc.ProductSummary(context.Background(), "p-alpha-etb")
	if err != nil {
		t.Fatalf("product summary: %v", err)
	}
	if fin.PremiumNow == nil {
		t.Fatalf("expected premium for priced product")
	}
	// latest daily price 59 against retail 50
	want := (59.0 - 50.0) / 50.0
	if math.Abs(*fin.PremiumNow-want) > 1e-9 {
		t.Fatalf("premium: got %v want %v", *fin.PremiumNow, want)
	}
}

func TestProductSummaryUnknownProduct(t *testing.T) {
	uc := newTestAnalysis(testCatalog())

	if _, err := uc.ProductSummary(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unknown product")
	}
}
