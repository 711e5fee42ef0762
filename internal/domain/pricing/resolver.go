package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Resolver computes tiered unit prices. It is a pure function of its
// immutable configuration and call arguments, safe for concurrent use.
type Resolver struct {
	ladder    []Step
	globalMOQ int
}

// NewResolver creates a Resolver with the given retail ladder (ascending by
// MinQuantity) and a global minimum order quantity floor.
func NewResolver(ladder []Step, globalMOQ int) *Resolver {
	return &Resolver{ladder: ladder, globalMOQ: globalMOQ}
}

// Price resolves the unit price for an order being finalized. Quantities
// below the effective minimum order quantity are rejected, never clamped.
func (r *Resolver) Price(p Product, quantity int, class CustomerClass) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, ErrInvalidQuantity
	}
	if p.BasePrice.IsNegative() {
		return Quote{}, ErrInvalidProduct
	}

	if moq := r.effectiveMOQ(p); quantity < moq {
		return Quote{}, &BelowMinimumOrderError{
			ProductID: p.ID,
			Requested: quantity,
			Required:  moq,
		}
	}

	return r.quote(p, quantity, class), nil
}

// PriceForDisplay resolves a unit price for display hints. Quantities below
// the effective minimum order quantity are clamped up instead of rejected.
func (r *Resolver) PriceForDisplay(p Product, quantity int, class CustomerClass) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, ErrInvalidQuantity
	}
	if p.BasePrice.IsNegative() {
		return Quote{}, ErrInvalidProduct
	}

	if moq := r.effectiveMOQ(p); quantity < moq {
		quantity = moq
	}

	return r.quote(p, quantity, class), nil
}

// effectiveMOQ is the largest of the product MOQ, the global floor, and 1.
func (r *Resolver) effectiveMOQ(p Product) int {
	moq := 1
	if p.MOQ > moq {
		moq = p.MOQ
	}
	if r.globalMOQ > moq {
		moq = r.globalMOQ
	}
	return moq
}

func (r *Resolver) quote(p Product, quantity int, class CustomerClass) Quote {
	unit, label := r.unitAt(p, quantity, class)
	unit = unit.Round(2)

	savings := decimal.Zero
	if p.BasePrice.IsPositive() && unit.LessThan(p.BasePrice) {
		savings = p.BasePrice.Sub(unit).Div(p.BasePrice).Mul(hundred).Round(2)
	}

	return Quote{
		UnitPrice:      unit,
		TierLabel:      label,
		SavingsPercent: savings,
		NextTier:       r.nextTier(p, quantity, class),
	}
}

// unitAt picks the single best discount available at the given quantity:
// the retail ladder applies to every class, wholesale-approved customers
// additionally compete the product's negotiated tiers. Discounts are never
// stacked; the lowest resulting unit price wins.
func (r *Resolver) unitAt(p Product, quantity int, class CustomerClass) (decimal.Decimal, string) {
	unit := p.BasePrice
	label := ""

	for _, s := range r.ladder {
		if quantity < s.MinQuantity {
			continue
		}
		candidate := p.BasePrice.Mul(hundred.Sub(s.Percent)).Div(hundred)
		if candidate.LessThan(unit) {
			unit, label = candidate, s.Label
		}
	}

	if class == ClassWholesaleApproved {
		for _, t := range p.Tiers {
			if quantity >= t.MinQuantity && t.UnitPrice.LessThan(unit) {
				unit, label = t.UnitPrice, t.Label
			}
		}
	}

	return unit, label
}

// nextTier finds the closest quantity breakpoint above the requested
// quantity and the unit price it would unlock. Returns nil at or above the
// top breakpoint.
func (r *Resolver) nextTier(p Product, quantity int, class CustomerClass) *TierHint {
	next := 0
	for _, s := range r.ladder {
		if s.MinQuantity > quantity && (next == 0 || s.MinQuantity < next) {
			next = s.MinQuantity
		}
	}
	if class == ClassWholesaleApproved {
		for _, t := range p.Tiers {
			if t.MinQuantity > quantity && (next == 0 || t.MinQuantity < next) {
				next = t.MinQuantity
			}
		}
	}
	if next == 0 {
		return nil
	}

	unit, label := r.unitAt(p, next, class)
	return &TierHint{
		MinQuantity:  next,
		QuantityToGo: next - quantity,
		UnitPrice:    unit.Round(2),
		Label:        label,
	}
}
