package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CardPulse/internal/domain/models"
	pkgch "CardPulse/pkg/clickhouse"
	applogger "CardPulse/pkg/logger"
)

const (
	productsTable     = "cardpulse.products"
	observationsTable = "cardpulse.observations"
)

// CHCatalog implements ProductCatalog backed by ClickHouse: the products
// table joined with their raw observation history.
type CHCatalog struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHCatalog(ch *pkgch.Client) *CHCatalog {
	return &CHCatalog{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (c *CHCatalog) SetLogger(l *applogger.Logger) { c.l = l }

func (c *CHCatalog) ListProducts(ctx context.Context) ([]*models.Product, error) {
	start := time.Now()
	const q = `
        SELECT id, name, type, series_bloc, release_date, retail_price, image_url
        FROM ` + productsTable + `
        ORDER BY id ASC
    `
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		if c.l != nil {
			c.l.Error("clickhouse list_products query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	byID := make(map[string]*models.Product)
	for rows.Next() {
		var p models.Product
		var typ string
		if err := rows.Scan(&p.ID, &p.Name, &typ, &p.SeriesBloc, &p.ReleaseDate, &p.RetailPrice, &p.ImageURL); err != nil {
			if c.l != nil {
				c.l.Error("clickhouse list_products scan error", applogger.Error(err))
			}
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Type = models.ProductType(typ)
		products = append(products, &p)
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if err := c.loadPrices(ctx, byID, ""); err != nil {
		return nil, err
	}

	if c.l != nil {
		c.l.Info("clickhouse list_products ok",
			applogger.Int("products", len(products)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return products, nil
}

func (c *CHCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	start := time.Now()
	const q = `
        SELECT id, name, type, series_bloc, release_date, retail_price, image_url
        FROM ` + productsTable + `
        WHERE id = ?
        LIMIT 1
    `
	var p models.Product
	var typ string
	err := c.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &typ, &p.SeriesBloc, &p.ReleaseDate, &p.RetailPrice, &p.ImageURL)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s not found", id)
	}
	if err != nil {
		if c.l != nil {
			c.l.Error("clickhouse get_product query error",
				applogger.String("product_id", id),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	p.Type = models.ProductType(typ)

	byID := map[string]*models.Product{p.ID: &p}
	if err := c.loadPrices(ctx, byID, id); err != nil {
		return nil, err
	}

	if c.l != nil {
		c.l.Info("clickhouse get_product ok",
			applogger.String("product_id", id),
			applogger.Int("prices", len(p.Prices)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return &p, nil
}

// loadPrices attaches raw observations to the products in byID. An empty
// productID loads the whole observation table in one scan.
func (c *CHCatalog) loadPrices(ctx context.Context, byID map[string]*models.Product, productID string) error {
	q := `
        SELECT product_id, ts, price, source_url
        FROM ` + observationsTable + `
    `
	var args []interface{}
	if productID != "" {
		q += " WHERE product_id = ?"
		args = append(args, productID)
	}
	q += " ORDER BY product_id ASC, ts ASC"

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		if c.l != nil {
			c.l.Error("clickhouse load_prices query error",
				applogger.String("product_id", productID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("load prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid, url string
		var ts time.Time
		var price float64
		if err := rows.Scan(&pid, &ts, &price, &url); err != nil {
			return fmt.Errorf("scan observation: %w", err)
		}
		p, ok := byID[pid]
		if !ok {
			continue
		}
		p.Prices = append(p.Prices, models.PricePoint{Date: ts, Price: price, SourceURL: url})
	}
	return rows.Err()
}
