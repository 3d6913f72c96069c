package models

import "time"

// ProductType classifies a sealed product. Not all types carry the same
// collector-demand signal; the analytics config assigns each a weight.
type ProductType string

const (
	TypeETB     ProductType = "ETB"
	TypeDisplay ProductType = "Display"
	TypeDemi    ProductType = "Demi-Display"
	TypeTriPack ProductType = "Tri-Pack"
	TypeUPC     ProductType = "UPC"
	TypeArtset  ProductType = "Artset"
	TypeBundle  ProductType = "Bundle"
	TypeCoffret ProductType = "Coffret-Collection-Poster"
)

// PricePoint is one secondhand-market observation for a product.
// Multiple points may share a calendar day (several listings the same day).
type PricePoint struct {
	Date      time.Time `json:"date"`
	Price     float64   `json:"price"`
	SourceURL string    `json:"source_url,omitempty"`
}

// Product is a catalog entry with its full observation history.
// The analytics engine treats it as read-only; a RetailPrice of 0 excludes
// the product from variation math.
type Product struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        ProductType  `json:"type"`
	SeriesBloc  string       `json:"series_bloc,omitempty"`
	ReleaseDate time.Time    `json:"release_date"`
	RetailPrice float64      `json:"retail_price"`
	ImageURL    string       `json:"image_url,omitempty"`
	Prices      []PricePoint `json:"prices"`
}

// DailyPoint is one entry of a daily-aggregated series: the median of a
// day's valid observations.
type DailyPoint struct {
	Day   time.Time `json:"day"`
	Price float64   `json:"price"`
}

// SeriesGroup is the set of products sharing one canonical series key.
// Built per analysis call, never persisted.
type SeriesGroup struct {
	Key      string
	Products []*Product
}
