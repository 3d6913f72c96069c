package api

import (
	"encoding/json"
	"time"

	models "CardPulse/internal/domain/models"
	domrepo "CardPulse/internal/domain/repository"
	icache "CardPulse/internal/service/cache"
	"CardPulse/internal/service/metrics"
	"CardPulse/internal/service/ratelimit"
	"CardPulse/internal/usecase"
	xhttp "CardPulse/pkg/http"
	xlogger "CardPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HealthReporter exposes the collector's connection state for /healthz.
type HealthReporter interface {
	IsConnected() bool
}

// MarketEchoHandler serves the market analysis API.
type MarketEchoHandler struct {
	logger       *xlogger.Logger
	analysis     *usecase.MarketAnalysisUseCase
	observations *usecase.ObservationsUseCase
	health       HealthReporter
	rl           *ratelimit.Limiter
	cache        icache.BytesCache

	rateCapacity float64
	rateRefill   float64 // tokens per second
}

func NewMarketEchoHandler(logger *xlogger.Logger, analysis *usecase.MarketAnalysisUseCase, observations *usecase.ObservationsUseCase, health HealthReporter, ratePerMinute, rateBurst int) *MarketEchoHandler {
	metrics.Register()
	if ratePerMinute <= 0 {
		ratePerMinute = 120
	}
	if rateBurst <= 0 {
		rateBurst = 20
	}
	return &MarketEchoHandler{
		logger:       logger,
		analysis:     analysis,
		observations: observations,
		health:       health,
		rl:           ratelimit.New(),
		rateCapacity: float64(rateBurst),
		rateRefill:   float64(ratePerMinute) / 60,
	}
}

// SetCache injects a short-TTL byte cache for serialized responses.
func (h *MarketEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/market", h.Market)
	g.GET("/series", h.SeriesList)
	g.GET("/series/:key", h.Series)
	g.GET("/products/:id/summary", h.ProductSummary)
	g.GET("/products/:id/observations", h.ProductObservations)
}

func (h *MarketEchoHandler) Health(c echo.Context) error {
	status := map[string]interface{}{"status": "ok"}
	if h.health != nil {
		status["feed_connected"] = h.health.IsConnected()
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *MarketEchoHandler) Market(c echo.Context) error {
	const endpoint = "market"
	start := time.Now()
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if err := h.allow(c, endpoint); err != nil {
		return err
	}

	req := &models.MarketRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	win := domrepo.NormalizeWindow(req.Window)

	cacheKey := "market:" + string(win)
	if b, ok := h.cached(cacheKey); ok {
		return jsonBytes(c, b)
	}

	res, err := h.analysis.Overview(c.Request().Context(), win)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("market usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.store(cacheKey, res, 30*time.Second)
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) SeriesList(c echo.Context) error {
	const endpoint = "series_list"
	start := time.Now()
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if err := h.allow(c, endpoint); err != nil {
		return err
	}

	req := &models.SeriesListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analysis.Overview(c.Request().Context(), domrepo.WinMax)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("series list usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	series := res.Series
	if len(series) > req.Limit {
		series = series[:req.Limit]
	}
	return xhttp.ListResponse(c, series, int64(len(res.Series)))
}

func (h *MarketEchoHandler) Series(c echo.Context) error {
	const endpoint = "series"
	start := time.Now()
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if err := h.allow(c, endpoint); err != nil {
		return err
	}

	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	win := domrepo.NormalizeWindow(req.Window)

	cacheKey := "series:" + req.Key + ":" + string(win)
	if b, ok := h.cached(cacheKey); ok {
		return jsonBytes(c, b)
	}

	res, err := h.analysis.SeriesReport(c.Request().Context(), req.Key, win)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("series usecase error",
			xlogger.String("key", req.Key),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("series %s not found", req.Key).WithError(err))
	}
	h.store(cacheKey, res, 30*time.Second)
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) ProductSummary(c echo.Context) error {
	const endpoint = "product_summary"
	start := time.Now()
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if err := h.allow(c, endpoint); err != nil {
		return err
	}

	req := &models.ProductSummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analysis.ProductSummary(c.Request().Context(), req.ID)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("product summary usecase error",
			xlogger.String("product_id", req.ID),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("product %s not found", req.ID).WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) ProductObservations(c echo.Context) error {
	const endpoint = "product_observations"
	start := time.Now()
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if err := h.allow(c, endpoint); err != nil {
		return err
	}

	id := c.Param("id")
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), time.Time{})
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), time.Now().UTC())
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 1000)

	res, err := h.observations.GetObservations(c.Request().Context(), usecase.GetObservationsParams{
		ProductID: id,
		From:      from,
		To:        to,
		Limit:     limit,
	})
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("observations usecase error",
			xlogger.String("product_id", id),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// allow enforces the per-client token bucket, keyed by IP and endpoint.
func (h *MarketEchoHandler) allow(c echo.Context, endpoint string) error {
	if !h.rl.Allow(c.RealIP()+":"+endpoint, h.rateCapacity, h.rateRefill) {
		h.logger.Warn("rate limited",
			xlogger.String("endpoint", endpoint),
			xlogger.String("remote", c.RealIP()),
		)
		return xhttp.DataResponse(c, 429, "rate limited")
	}
	return nil
}

func (h *MarketEchoHandler) cached(key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil || !ok {
		return nil, false
	}
	return b, true
}

func (h *MarketEchoHandler) store(key string, v interface{}, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = h.cache.SetBytes(key, b, ttl)
}

func jsonBytes(c echo.Context, b []byte) error {
	var v json.RawMessage = b
	return xhttp.SuccessResponse(c, v)
}
