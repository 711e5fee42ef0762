package credit

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryLedger is an in-process Ledger. Each account carries its own mutex,
// so mutations are serialized per customer while different customers
// proceed independently.
type MemoryLedger struct {
	mu       sync.RWMutex
	accounts map[string]*memoryAccount
}

type memoryAccount struct {
	mu      sync.Mutex
	account Account
}

// NewMemoryLedger creates an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{accounts: make(map[string]*memoryAccount)}
}

// Upsert inserts or replaces an account. Intended for seeding and tests.
func (l *MemoryLedger) Upsert(a Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.accounts[a.CustomerID]; ok {
		held.mu.Lock()
		held.account = a
		held.mu.Unlock()
		return
	}
	l.accounts[a.CustomerID] = &memoryAccount{account: a}
}

func (l *MemoryLedger) get(customerID string) (*memoryAccount, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.accounts[customerID]
	return a, ok
}

// Account returns a snapshot of the customer's account.
func (l *MemoryLedger) Account(_ context.Context, customerID string) (*Account, error) {
	held, ok := l.get(customerID)
	if !ok {
		return nil, ErrAccountNotFound
	}

	held.mu.Lock()
	snapshot := held.account
	held.mu.Unlock()
	return &snapshot, nil
}

// Reserve atomically adds amount to Used if the account is approved and the
// limit allows it.
func (l *MemoryLedger) Reserve(_ context.Context, customerID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	held, ok := l.get(customerID)
	if !ok {
		return ErrAccountNotFound
	}

	held.mu.Lock()
	defer held.mu.Unlock()

	if held.account.Status != StatusApproved {
		return ErrAccountNotApproved
	}
	next := held.account.Used.Add(amount)
	if next.GreaterThan(held.account.Limit) {
		return ErrInsufficientCredit
	}
	held.account.Used = next
	return nil
}

// Release atomically subtracts amount from Used. Used never goes below 0: a
// release larger than the outstanding reservation is rejected.
func (l *MemoryLedger) Release(_ context.Context, customerID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	held, ok := l.get(customerID)
	if !ok {
		return ErrAccountNotFound
	}

	held.mu.Lock()
	defer held.mu.Unlock()

	next := held.account.Used.Sub(amount)
	if next.IsNegative() {
		return ErrExcessRelease
	}
	held.account.Used = next
	return nil
}

var _ Ledger = (*MemoryLedger)(nil)
