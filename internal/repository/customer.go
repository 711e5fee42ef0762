package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordmark-trading/settlement/internal/domain/pricing"
	"github.com/nordmark-trading/settlement/internal/domain/settlement"
)

const getCustomerByIDSQL = `SELECT id, class, country, COALESCE(vat_number, '')
	FROM customers WHERE id = $1`

var _ settlement.Customers = (*CustomerRepository)(nil)

// CustomerRepository implements settlement.Customers backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetByID looks up a customer profile. Returns settlement.ErrCustomerNotFound
// when the id is unknown.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*settlement.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting customer %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, settlement.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("getting customer %q: %w", id, err)
	}
	return &c, nil
}

func scanCustomer(row pgx.CollectableRow) (settlement.Customer, error) {
	var (
		c     settlement.Customer
		class string
	)
	err := row.Scan(&c.ID, &class, &c.Country, &c.VATNumber)
	c.Class = pricing.ParseCustomerClass(class)
	return c, err
}
