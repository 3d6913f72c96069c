package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"CardPulse/internal/domain/models"
	domrepo "CardPulse/internal/domain/repository"
	"CardPulse/internal/services/analytics"
	pkgcache "CardPulse/pkg/cache"
)

// MarketAnalysisUseCase recomputes the market overview from the current
// catalog on demand. Results are cached briefly; the engine itself holds no
// state between calls.
type MarketAnalysisUseCase struct {
	catalog domrepo.ProductCatalog
	engine  analytics.Config
	cache   pkgcache.Service // optional
	metrics domrepo.Metrics
	timeout time.Duration
	ttl     time.Duration
}

func NewMarketAnalysisUseCase(catalog domrepo.ProductCatalog, engine analytics.Config, cache pkgcache.Service, metrics domrepo.Metrics, ttl time.Duration) *MarketAnalysisUseCase {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MarketAnalysisUseCase{
		catalog: catalog,
		engine:  engine,
		cache:   cache,
		metrics: metrics,
		timeout: 30 * time.Second,
		ttl:     ttl,
	}
}

// Overview computes the global index and one summary per series. The window
// trims the returned index points; all metrics are computed on full history.
func (uc *MarketAnalysisUseCase) Overview(ctx context.Context, win domrepo.Window) (*models.MarketOverview, error) {
	cacheKey := pkgcache.GenerateKeyWithParams("cardpulse:overview", string(win))
	if uc.cache != nil {
		var cached models.MarketOverview
		if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	asOf := time.Now().UTC()
	groups, benchmark, err := uc.compute(ctx, asOf)
	if err != nil {
		return nil, err
	}

	type item struct {
		summary *models.SeriesSummary
		err     error
	}
	ch := make(chan item, len(groups))
	var wg sync.WaitGroup
	for _, g := range groups {
		wg.Add(1)
		go func(g *models.SeriesGroup) {
			defer wg.Done()
			s, _ := uc.engine.SeriesSummary(g, benchmark.Points, asOf)
			ch <- item{summary: s}
		}(g)
	}
	go func() { wg.Wait(); close(ch) }()

	var series []*models.SeriesSummary
	for it := range ch {
		if it.err != nil {
			continue
		}
		series = append(series, it.summary)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].SeriesKey < series[j].SeriesKey })

	out := &models.MarketOverview{
		AsOf:   asOf,
		Index:  windowIndex(benchmark, win, asOf),
		Series: series,
	}
	if benchmark.Current != nil {
		uc.metrics.RecordIndexLevel(*benchmark.Current)
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, cacheKey, out, uc.ttl)
	}
	return out, nil
}

// SeriesReport computes one series' summary plus its composite points. The
// key is canonicalized, so raw series names work too.
func (uc *MarketAnalysisUseCase) SeriesReport(ctx context.Context, key string, win domrepo.Window) (*models.SeriesReport, error) {
	canonical := uc.engine.CanonicalSeriesKey(key)
	cacheKey := pkgcache.GenerateKeyWithParams("cardpulse:series", canonical, string(win))
	if uc.cache != nil {
		var cached models.SeriesReport
		if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	asOf := time.Now().UTC()
	groups, benchmark, err := uc.compute(ctx, asOf)
	if err != nil {
		return nil, err
	}

	var group *models.SeriesGroup
	for _, g := range groups {
		if g.Key == canonical {
			group = g
			break
		}
	}
	if group == nil {
		return nil, fmt.Errorf("series %q not found", key)
	}

	summary, points := uc.engine.SeriesSummary(group, benchmark.Points, asOf)
	out := &models.SeriesReport{
		SeriesSummary: *summary,
		Points:        filterPoints(points, win, asOf),
	}
	if uc.cache != nil {
		_ = uc.cache.Set(ctx, cacheKey, out, uc.ttl)
	}
	return out, nil
}

// ProductSummary computes the full finance record for one product, with the
// global index as beta benchmark.
func (uc *MarketAnalysisUseCase) ProductSummary(ctx context.Context, id string) (*models.FinanceSummary, error) {
	cacheKey := pkgcache.GenerateKey("cardpulse:product", id)
	if uc.cache != nil {
		var cached models.FinanceSummary
		if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	asOf := time.Now().UTC()
	product, err := uc.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	_, benchmark, err := uc.compute(ctx, asOf)
	if err != nil {
		return nil, err
	}

	out := uc.engine.ProductSummary(product, benchmark.Points, asOf)
	if uc.cache != nil {
		_ = uc.cache.Set(ctx, cacheKey, out, uc.ttl)
	}
	return out, nil
}

// Invalidate drops every cached analysis result.
func (uc *MarketAnalysisUseCase) Invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	for _, pattern := range []string{"cardpulse:overview*", "cardpulse:series*", "cardpulse:product*"} {
		_ = uc.cache.DeleteByPattern(ctx, pattern)
	}
}

// compute loads the catalog, groups it, and derives every series composite
// plus the rebased global index.
func (uc *MarketAnalysisUseCase) compute(ctx context.Context, asOf time.Time) ([]*models.SeriesGroup, *models.MarketIndex, error) {
	start := time.Now()
	products, err := uc.catalog.ListProducts(ctx)
	if err != nil {
		uc.metrics.RecordError("catalog_list")
		return nil, nil, fmt.Errorf("list products: %w", err)
	}
	groups := uc.engine.GroupBySeries(products)

	// Per-series composites in parallel; order restored by index.
	composites := make([][]models.IndexPoint, len(groups))
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g *models.SeriesGroup) {
			defer wg.Done()
			composites[i] = uc.engine.SeriesIndex(g)
		}(i, g)
	}
	wg.Wait()

	benchmark := uc.engine.GlobalIndex(composites, asOf)
	uc.metrics.RecordLatency("analysis_compute", time.Since(start).Seconds())
	return groups, benchmark, nil
}

// windowIndex trims the index point series to the window, preserving the
// current level and change fields.
func windowIndex(idx *models.MarketIndex, win domrepo.Window, asOf time.Time) *models.MarketIndex {
	if idx == nil {
		return nil
	}
	out := *idx
	out.Points = filterPoints(idx.Points, win, asOf)
	return &out
}

func filterPoints(points []models.IndexPoint, win domrepo.Window, asOf time.Time) []models.IndexPoint {
	cutoff := win.Cutoff(asOf)
	if cutoff.IsZero() {
		return points
	}
	out := make([]models.IndexPoint, 0, len(points))
	for _, p := range points {
		if !p.Date.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}
