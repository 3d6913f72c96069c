package models

// Requests for the market API endpoints. Defined in domain for consistency
// and reuse across handlers.

type MarketRequest struct {
	Window string `query:"window" json:"window" default:"90d" validate:"oneof=7d 30d 90d ytd max"`
}

type SeriesListRequest struct {
	Limit int `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
}

type SeriesRequest struct {
	Key    string `param:"key" json:"key" validate:"required"`
	Window string `query:"window" json:"window" default:"max" validate:"oneof=7d 30d 90d ytd max"`
}

type ProductSummaryRequest struct {
	ID string `param:"id" json:"id" validate:"required"`
}
