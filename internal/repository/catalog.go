package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nordmark-trading/settlement/internal/domain/pricing"
	"github.com/nordmark-trading/settlement/internal/domain/settlement"
	"github.com/nordmark-trading/settlement/internal/domain/tax"
)

const (
	getProductsByIDsSQL = `SELECT id, name, base_price, tax_class, moq
		FROM products WHERE id = ANY($1)`

	getTiersByProductIDsSQL = `SELECT product_id, min_quantity, unit_price, label
		FROM discount_tiers WHERE product_id = ANY($1)
		ORDER BY product_id, min_quantity`
)

var _ settlement.Catalog = (*CatalogRepository)(nil)

// CatalogRepository implements settlement.Catalog backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetByIDs fetches products and their discount tiers in two batch queries.
// Missing ids are simply absent from the result; the caller decides whether
// that is an error.
func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []string) ([]settlement.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("scanning products: %w", err)
	}
	if len(products) == 0 {
		return nil, nil
	}

	tierRows, err := r.pool.Query(ctx, getTiersByProductIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("querying discount tiers: %w", err)
	}

	type tierRow struct {
		productID string
		tier      pricing.Tier
	}
	tiers, err := pgx.CollectRows(tierRows, func(row pgx.CollectableRow) (tierRow, error) {
		var (
			t     tierRow
			minQ  int32
			price decimal.Decimal
		)
		err := row.Scan(&t.productID, &minQ, &price, &t.tier.Label)
		t.tier.MinQuantity = int(minQ)
		t.tier.UnitPrice = price
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning discount tiers: %w", err)
	}

	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	for _, t := range tiers {
		if i, ok := byID[t.productID]; ok {
			products[i].Tiers = append(products[i].Tiers, t.tier)
		}
	}

	return products, nil
}

func scanProduct(row pgx.CollectableRow) (settlement.Product, error) {
	var (
		p        settlement.Product
		taxClass string
		moq      int32
	)
	err := row.Scan(&p.ID, &p.Name, &p.BasePrice, &taxClass, &moq)
	p.TaxClass = tax.ParseClass(taxClass)
	p.MOQ = int(moq)
	return p, err
}
