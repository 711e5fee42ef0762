package tax

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculator performs tax-inclusive VAT math against an immutable rate
// table. All methods are pure and safe for concurrent use.
type Calculator struct {
	table Table
}

// NewCalculator creates a Calculator over the given rate table.
func NewCalculator(table Table) *Calculator {
	return &Calculator{table: table}
}

// Rate resolves the percentage for a tax class in a country. Zero-rated and
// exempt classes are 0% regardless of the country table.
func (c *Calculator) Rate(country string, class Class) (decimal.Decimal, error) {
	if class == ClassZero || class == ClassExempt {
		return decimal.Zero, nil
	}

	rates, ok := c.table[country]
	if !ok {
		return decimal.Zero, ErrUnknownCountry
	}

	switch class {
	case ClassReduced:
		return rates.Reduced, nil
	default:
		return rates.Standard, nil
	}
}

// Line reverses the tax out of one tax-inclusive line. The reversal runs on
// the line total, not per unit, so per-unit rounding drift cannot multiply
// across quantity: net = round2(L / (1 + r/100)), tax = L - net. Net and tax
// always sum back to the line total exactly.
func (c *Calculator) Line(country string, class Class, quantity int, unitPrice decimal.Decimal) (LineTax, error) {
	rate, err := c.Rate(country, class)
	if err != nil {
		return LineTax{}, err
	}

	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	net := gross.Div(hundred.Add(rate).Div(hundred)).Round(2)
	tax := gross.Sub(net)

	return LineTax{Rate: rate, Net: net, Tax: tax, Gross: gross}, nil
}

// Cart aggregates per-line taxes into rate groups. Lines sharing a rate are
// summed into one group (a cart may mix rates, e.g. 12% food and 25%
// non-food), then the groups are summed into the cart totals. Groups are
// ordered by ascending rate.
func (c *Calculator) Cart(country string, lines []Line) (CartTax, error) {
	groups := make(map[string]*RateGroup)

	for _, l := range lines {
		lt, err := c.Line(country, l.Class, l.Quantity, l.UnitPrice)
		if err != nil {
			return CartTax{}, err
		}

		key := lt.Rate.String()
		g, ok := groups[key]
		if !ok {
			g = &RateGroup{Rate: lt.Rate}
			groups[key] = g
		}
		g.Net = g.Net.Add(lt.Net)
		g.Tax = g.Tax.Add(lt.Tax)
		g.Gross = g.Gross.Add(lt.Gross)
	}

	out := CartTax{}
	for _, g := range groups {
		out.Breakdown = append(out.Breakdown, *g)
		out.Net = out.Net.Add(g.Net)
		out.Tax = out.Tax.Add(g.Tax)
		out.Gross = out.Gross.Add(g.Gross)
	}
	sort.Slice(out.Breakdown, func(i, j int) bool {
		return out.Breakdown[i].Rate.LessThan(out.Breakdown[j].Rate)
	})

	out.Net = out.Net.Round(2)
	out.Tax = out.Tax.Round(2)
	out.Gross = out.Gross.Round(2)
	if out.Net.IsPositive() {
		out.WeightedRate = out.Tax.Div(out.Net).Mul(hundred).Round(2)
	}

	return out, nil
}
