package pricing

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for pricing validation.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrInvalidProduct  = errors.New("product base price must not be negative")
)

// BelowMinimumOrderError indicates the requested quantity is below the
// effective minimum order quantity for the product.
type BelowMinimumOrderError struct {
	ProductID string
	Requested int
	Required  int
}

func (e *BelowMinimumOrderError) Error() string {
	return fmt.Sprintf("quantity %d for product %s is below the minimum order quantity %d",
		e.Requested, e.ProductID, e.Required)
}

// CustomerClass determines which discount table applies to a customer.
type CustomerClass string

const (
	ClassRetail            CustomerClass = "retail"
	ClassWholesalePending  CustomerClass = "wholesale-pending"
	ClassWholesaleApproved CustomerClass = "wholesale-approved"
)

// ParseCustomerClass maps a stored class string to a CustomerClass,
// defaulting to retail for unknown values.
func ParseCustomerClass(s string) CustomerClass {
	switch CustomerClass(s) {
	case ClassWholesalePending:
		return ClassWholesalePending
	case ClassWholesaleApproved:
		return ClassWholesaleApproved
	default:
		return ClassRetail
	}
}

// Tier is a quantity breakpoint with a negotiated unit price. A product owns
// an ascending, non-overlapping sequence of tiers.
type Tier struct {
	MinQuantity int
	UnitPrice   decimal.Decimal
	Label       string
}

// Product is the pricing view of a catalog item.
type Product struct {
	ID        string
	BasePrice decimal.Decimal
	MOQ       int
	Tiers     []Tier
}

// Step is a quantity breakpoint in the retail percentage ladder.
type Step struct {
	MinQuantity int
	Percent     decimal.Decimal
	Label       string
}

// TierHint describes the next quantity breakpoint above the requested
// quantity, for upsell display.
type TierHint struct {
	MinQuantity  int
	QuantityToGo int
	UnitPrice    decimal.Decimal
	Label        string
}

// Quote is the resolved unit price for one (product, quantity, class) triple.
type Quote struct {
	UnitPrice      decimal.Decimal
	TierLabel      string
	SavingsPercent decimal.Decimal
	NextTier       *TierHint
}

// DefaultLadder returns the standard retail quantity discount ladder.
func DefaultLadder() []Step {
	return []Step{
		{MinQuantity: 10, Percent: decimal.NewFromInt(5), Label: "volume 10+"},
		{MinQuantity: 50, Percent: decimal.NewFromInt(10), Label: "volume 50+"},
		{MinQuantity: 100, Percent: decimal.NewFromInt(15), Label: "volume 100+"},
	}
}
