package tax

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrUnknownCountry is returned when no rate table exists for a country.
var ErrUnknownCountry = errors.New("no tax rates configured for country")

// Class is a product's tax classification. The class maps to a percentage
// through the per-country rate table.
type Class string

const (
	ClassStandard Class = "standard"
	ClassReduced  Class = "reduced"
	ClassZero     Class = "zero"
	ClassExempt   Class = "exempt"
)

// ParseClass maps a stored class string to a Class, defaulting to standard
// for unclassified products.
func ParseClass(s string) Class {
	switch Class(s) {
	case ClassReduced:
		return ClassReduced
	case ClassZero:
		return ClassZero
	case ClassExempt:
		return ClassExempt
	default:
		return ClassStandard
	}
}

// Rates holds the VAT percentages for one country.
type Rates struct {
	Standard decimal.Decimal
	Reduced  decimal.Decimal
}

// Table maps ISO country codes to their VAT rates. Immutable, configured at
// deploy time.
type Table map[string]Rates

// DefaultTable returns the fixed EU/Nordic rate table the engine ships with.
func DefaultTable() Table {
	return Table{
		"SE": {Standard: dec("25"), Reduced: dec("12")},
		"NO": {Standard: dec("25"), Reduced: dec("15")},
		"DK": {Standard: dec("25"), Reduced: dec("25")},
		"FI": {Standard: dec("25.5"), Reduced: dec("14")},
		"DE": {Standard: dec("19"), Reduced: dec("7")},
		"NL": {Standard: dec("21"), Reduced: dec("9")},
		"BE": {Standard: dec("21"), Reduced: dec("6")},
		"FR": {Standard: dec("20"), Reduced: dec("5.5")},
		"AT": {Standard: dec("20"), Reduced: dec("10")},
		"PL": {Standard: dec("23"), Reduced: dec("8")},
		"EE": {Standard: dec("24"), Reduced: dec("9")},
		"LV": {Standard: dec("21"), Reduced: dec("12")},
		"LT": {Standard: dec("21"), Reduced: dec("9")},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Line is one cart line for tax calculation. UnitPrice is tax-inclusive.
type Line struct {
	Class     Class
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineTax is the per-line result of the tax-inclusive reversal.
type LineTax struct {
	Rate  decimal.Decimal
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Gross decimal.Decimal
}

// RateGroup aggregates all cart lines sharing one VAT rate.
type RateGroup struct {
	Rate  decimal.Decimal
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Gross decimal.Decimal
}

// CartTax is the cart-level aggregate across all rate groups.
type CartTax struct {
	Net       decimal.Decimal
	Tax       decimal.Decimal
	Gross     decimal.Decimal
	Breakdown []RateGroup

	// WeightedRate is tax/net expressed as a percentage. Derived for
	// display only, never an input to further calculation.
	WeightedRate decimal.Decimal
}

// ReverseCharged returns a copy of the cart tax with the liability shifted
// to the buyer: every group keeps its net, tax is zeroed, and gross collapses
// to net.
func (c CartTax) ReverseCharged() CartTax {
	out := CartTax{
		Net:       c.Net,
		Tax:       decimal.Zero,
		Gross:     c.Net,
		Breakdown: make([]RateGroup, len(c.Breakdown)),
	}
	for i, g := range c.Breakdown {
		out.Breakdown[i] = RateGroup{
			Rate:  g.Rate,
			Net:   g.Net,
			Tax:   decimal.Zero,
			Gross: g.Net,
		}
	}
	return out
}
