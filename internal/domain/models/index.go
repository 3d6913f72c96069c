package models

import "time"

// Trend is the three-way classification of a windowed variation.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// TrendResult carries the windowed variation and its classification.
type TrendResult struct {
	Trend         Trend   `json:"trend"`
	Variation     float64 `json:"variation"`
	HasRecentData bool    `json:"has_recent_data"`
}

// IndexPoint is one dated value of a composite index series.
type IndexPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MarketIndex is the global base-100 composite ("ISP"): the rebased point
// sequence plus its current level and rolling changes. Change fields are nil
// when no baseline point exists.
type MarketIndex struct {
	Points    []IndexPoint `json:"points"`
	Current   *float64     `json:"current"`
	Change7d  *float64     `json:"change_7d"`
	Change30d *float64     `json:"change_30d"`
	Change90d *float64     `json:"change_90d"`
	ChangeYTD *float64     `json:"change_ytd"`
}

// FinanceSummary is the full risk/performance record for a product or a
// series. Every pointer field is nil when the metric is not computable from
// the available data; nil is "insufficient data", never zero.
type FinanceSummary struct {
	PremiumNow       *float64 `json:"premium_now"`
	Return7d         *float64 `json:"return_7d"`
	Return30d        *float64 `json:"return_30d"`
	Return90d        *float64 `json:"return_90d"`
	ReturnYTD        *float64 `json:"return_ytd"`
	Vol30dAnnualized *float64 `json:"vol_30d_annualized"`
	DownsideVol      *float64 `json:"downside_vol"`
	MaxDrawdown      *float64 `json:"max_drawdown"`
	SharpeRatio      *float64 `json:"sharpe_ratio"`
	SortinoRatio     *float64 `json:"sortino_ratio"`
	CalmarRatio      *float64 `json:"calmar_ratio"`
	VaR95            *float64 `json:"var_95"`
	CVaR95           *float64 `json:"cvar_95"`
	Beta             *float64 `json:"beta"`
	Skewness         *float64 `json:"skewness"`
	Kurtosis         *float64 `json:"kurtosis"`
	RSI              *float64 `json:"rsi"`
	CoverageIndex    float64  `json:"coverage_index"`
	FreshnessDays    *float64 `json:"freshness_days"`
	Score            *float64 `json:"score"`
}

// SeriesSummary is the per-series analysis result served to callers.
type SeriesSummary struct {
	SeriesKey        string          `json:"series_key"`
	ProductCount     int             `json:"product_count"`
	Trend            TrendResult     `json:"trend"`
	AverageVariation float64         `json:"average_variation"`
	CoverageIndex    float64         `json:"coverage_index"`
	Summary          *FinanceSummary `json:"summary"`
}

// SeriesReport is a SeriesSummary together with its composite index points.
type SeriesReport struct {
	SeriesSummary
	Points []IndexPoint `json:"points"`
}

// MarketOverview is the top-level analysis output: the global index plus one
// summary per series, recomputed from the current catalog on every call.
type MarketOverview struct {
	AsOf   time.Time        `json:"as_of"`
	Index  *MarketIndex     `json:"index"`
	Series []*SeriesSummary `json:"series"`
}
