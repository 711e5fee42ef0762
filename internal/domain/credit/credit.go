// Package credit tracks per-customer credit limits and reservations.
//
// The ledger is the engine's only mutable shared state. Every mutation is a
// single atomic read-modify-write keyed by customer id: concurrent orders
// for the same customer must never jointly overdraw the limit, and orders
// for different customers must never block each other.
package credit

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for ledger operations.
var (
	ErrAccountNotFound    = errors.New("credit account not found")
	ErrAccountNotApproved = errors.New("credit account not approved")
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrBelowCreditMinimum = errors.New("order total below the credit minimum")
	ErrInvalidAmount      = errors.New("amount must be greater than 0")
	ErrExcessRelease      = errors.New("release exceeds reserved amount")
	// ErrConflict means a reservation lost a concurrent update; the caller
	// must redo the eligibility check before retrying.
	ErrConflict = errors.New("credit reservation conflict")
)

// Status is the lifecycle state of a credit account:
// none -> pending -> approved | rejected.
type Status string

const (
	StatusNone     Status = "none"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus maps a stored status string to a Status, defaulting to none.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusPending:
		return StatusPending
	case StatusApproved:
		return StatusApproved
	case StatusRejected:
		return StatusRejected
	default:
		return StatusNone
	}
}

// Account is one customer's credit state. Invariant: 0 <= Used <= Limit.
type Account struct {
	CustomerID string
	Limit      decimal.Decimal
	Used       decimal.Decimal
	TermsDays  int
	Status     Status
}

// Available returns the credit left on the account.
func (a Account) Available() decimal.Decimal {
	return a.Limit.Sub(a.Used)
}

// Ledger is the atomic credit store. Reserve and Release are each a single
// compare-and-set equivalent against Used.
type Ledger interface {
	Account(ctx context.Context, customerID string) (*Account, error)
	Reserve(ctx context.Context, customerID string, amount decimal.Decimal) error
	Release(ctx context.Context, customerID string, amount decimal.Decimal) error
}

// Eligibility reason codes surfaced to callers.
const (
	ReasonNotApproved        = "account_not_approved"
	ReasonBelowCreditMinimum = "below_credit_minimum"
	ReasonInsufficientCredit = "insufficient_credit"
)

// Eligibility is the outcome of a credit-terms payment eligibility check.
type Eligibility struct {
	Eligible bool
	Reason   string
}

// CheckEligibility decides whether an order may be paid on credit terms.
// The account may be nil (customer has no credit account). This is a pure
// read; the atomic check happens again inside Reserve.
func CheckEligibility(account *Account, orderTotal, minimumOrder decimal.Decimal) Eligibility {
	if account == nil || account.Status != StatusApproved {
		return Eligibility{Reason: ReasonNotApproved}
	}
	if orderTotal.LessThan(minimumOrder) {
		return Eligibility{Reason: ReasonBelowCreditMinimum}
	}
	if account.Used.Add(orderTotal).GreaterThan(account.Limit) {
		return Eligibility{Reason: ReasonInsufficientCredit}
	}
	return Eligibility{Eligible: true}
}
