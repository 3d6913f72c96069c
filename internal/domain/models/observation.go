package models

import "time"

// Observation is one raw price observation in transit through the ingestion
// path (feed → pipeline → kafka/clickhouse). The acquisition side has
// already matched the listing to a catalog product.
type Observation struct {
	ProductID string    `json:"product_id"`
	Date      time.Time `json:"date"`
	Price     float64   `json:"price"`
	SourceURL string    `json:"source_url,omitempty"`
}
