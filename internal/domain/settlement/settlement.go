package settlement

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/nordmark-trading/settlement/internal/domain/credit"
	"github.com/nordmark-trading/settlement/internal/domain/pricing"
	"github.com/nordmark-trading/settlement/internal/domain/shipping"
	"github.com/nordmark-trading/settlement/internal/domain/tax"
)

// Sentinel errors for quote validation.
var (
	ErrEmptyItems        = errors.New("items required")
	ErrInvalidCountry    = errors.New("destination must be a two-letter ISO country code")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrMissingCustomerID = errors.New("customer id required")
)

// ProductNotFoundError indicates a requested product does not exist in the
// catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// LineItem is one requested cart line.
type LineItem struct {
	ProductID string
	Quantity  int
}

// Product is the settlement view of a catalog item: pricing facts plus the
// tax class. Populated once at the catalog boundary.
type Product struct {
	ID        string
	Name      string
	BasePrice decimal.Decimal
	MOQ       int
	Tiers     []pricing.Tier
	TaxClass  tax.Class
}

// PricingView narrows a Product to what the pricing resolver needs.
func (p Product) PricingView() pricing.Product {
	return pricing.Product{
		ID:        p.ID,
		BasePrice: p.BasePrice,
		MOQ:       p.MOQ,
		Tiers:     p.Tiers,
	}
}

// Customer is the settlement view of a customer profile. Class and the
// stored VAT number are resolved once at the collaborator boundary, never
// re-interpreted downstream.
type Customer struct {
	ID        string
	Class     pricing.CustomerClass
	Country   string
	VATNumber string
}

// Catalog provides product facts for settlement.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}

// Customers provides customer profiles for settlement.
type Customers interface {
	GetByID(ctx context.Context, id string) (*Customer, error)
}

// LineQuote is the priced form of one cart line. LineTotal is tax-inclusive
// unless reverse charge applies to the whole quote.
type LineQuote struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	TierLabel string
	LineTotal decimal.Decimal
	NextTier  *pricing.TierHint
}

// Result is a complete order quote. It is a derived, ephemeral value,
// recomputed on every request and never the system of record.
type Result struct {
	Currency      string
	Lines         []LineQuote
	Tax           tax.CartTax
	Shipping      shipping.Quote
	Credit        credit.Eligibility
	ReverseCharge bool
	Total         decimal.Decimal
}
