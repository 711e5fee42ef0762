package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nordmark-trading/settlement/internal/domain/credit"
)

const (
	getCreditAccountSQL = `SELECT customer_id, credit_limit, used, terms_days, status
		FROM credit_accounts WHERE customer_id = $1`

	// The WHERE clause carries the full invariant so the reservation is a
	// single atomic statement; losers see zero affected rows.
	reserveCreditSQL = `UPDATE credit_accounts
		SET used = used + $2
		WHERE customer_id = $1 AND status = 'approved' AND used + $2 <= credit_limit`

	releaseCreditSQL = `UPDATE credit_accounts
		SET used = used - $2
		WHERE customer_id = $1 AND used - $2 >= 0`
)

var _ credit.Ledger = (*CreditRepository)(nil)

// CreditRepository implements credit.Ledger backed by PostgreSQL. Atomicity
// comes from conditional single-statement updates, not row locks, so two
// concurrent reservations against the same account can never jointly
// overdraw the limit.
type CreditRepository struct {
	pool *pgxpool.Pool
}

// NewCreditRepository returns a CreditRepository that uses the given pool.
func NewCreditRepository(pool *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{pool: pool}
}

// Account fetches one customer's credit account. Returns
// credit.ErrAccountNotFound when the customer has no account.
func (r *CreditRepository) Account(ctx context.Context, customerID string) (*credit.Account, error) {
	rows, err := r.pool.Query(ctx, getCreditAccountSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("getting credit account %q: %w", customerID, err)
	}

	acc, err := pgx.CollectExactlyOneRow(rows, scanCreditAccount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, credit.ErrAccountNotFound
		}
		return nil, fmt.Errorf("getting credit account %q: %w", customerID, err)
	}
	return &acc, nil
}

// Reserve atomically adds amount to the account's used balance. When the
// conditional update touches no row, the account is re-read once to report
// why: missing account, unapproved status or insufficient headroom.
func (r *CreditRepository) Reserve(ctx context.Context, customerID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return credit.ErrInvalidAmount
	}

	tag, err := r.pool.Exec(ctx, reserveCreditSQL, customerID, amount)
	if err != nil {
		return fmt.Errorf("reserving credit for %q: %w", customerID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	acc, err := r.Account(ctx, customerID)
	if err != nil {
		return err
	}
	if acc.Status != credit.StatusApproved {
		return credit.ErrAccountNotApproved
	}
	return credit.ErrInsufficientCredit
}

// Release atomically subtracts amount from the account's used balance.
func (r *CreditRepository) Release(ctx context.Context, customerID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return credit.ErrInvalidAmount
	}

	tag, err := r.pool.Exec(ctx, releaseCreditSQL, customerID, amount)
	if err != nil {
		return fmt.Errorf("releasing credit for %q: %w", customerID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.Account(ctx, customerID); err != nil {
		return err
	}
	return credit.ErrExcessRelease
}

func scanCreditAccount(row pgx.CollectableRow) (credit.Account, error) {
	var (
		acc       credit.Account
		status    string
		termsDays int32
	)
	err := row.Scan(&acc.CustomerID, &acc.Limit, &acc.Used, &termsDays, &status)
	acc.Status = credit.ParseStatus(status)
	acc.TermsDays = int(termsDays)
	return acc, err
}
