package repository

import (
	"context"

	"CardPulse/internal/domain/models"
)

// ProductCatalog provides read-only access to products and their price
// histories for analysis.
type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}
