package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator() *Calculator {
	return NewCalculator(DefaultTable())
}

func TestRate_Lookup(t *testing.T) {
	c := newTestCalculator()

	tests := []struct {
		country string
		class   Class
		want    string
	}{
		{"SE", ClassStandard, "25"},
		{"SE", ClassReduced, "12"},
		{"SE", ClassZero, "0"},
		{"SE", ClassExempt, "0"},
		{"DE", ClassStandard, "19"},
		{"FI", ClassStandard, "25.5"},
	}
	for _, tt := range tests {
		rate, err := c.Rate(tt.country, tt.class)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(rate),
			"%s/%s: want %s, got %s", tt.country, tt.class, tt.want, rate)
	}
}

func TestRate_UnknownCountry(t *testing.T) {
	c := newTestCalculator()

	_, err := c.Rate("US", ClassStandard)
	require.ErrorIs(t, err, ErrUnknownCountry)

	// Zero-rated classes never consult the table.
	rate, err := c.Rate("US", ClassExempt)
	require.NoError(t, err)
	assert.True(t, rate.IsZero())
}

func TestParseClass_DefaultsToStandard(t *testing.T) {
	assert.Equal(t, ClassStandard, ParseClass(""))
	assert.Equal(t, ClassStandard, ParseClass("unknown"))
	assert.Equal(t, ClassReduced, ParseClass("reduced"))
	assert.Equal(t, ClassExempt, ParseClass("exempt"))
}

func TestLine_InclusiveReversal(t *testing.T) {
	c := newTestCalculator()

	// 10 x 90.00 inclusive at 12%: net 900/1.12 = 803.57, tax 96.43.
	lt, err := c.Line("SE", ClassReduced, 10, decimal.RequireFromString("90.00"))
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("900").Equal(lt.Gross), "gross %s", lt.Gross)
	assert.True(t, decimal.RequireFromString("803.57").Equal(lt.Net), "net %s", lt.Net)
	assert.True(t, decimal.RequireFromString("96.43").Equal(lt.Tax), "tax %s", lt.Tax)
}

func TestLine_NetPlusTaxEqualsGross(t *testing.T) {
	c := newTestCalculator()

	// The reversal rounds net and derives tax from it, so the identity is
	// exact for any price and quantity.
	prices := []string{"0.01", "1.00", "33.33", "99.99", "123.45", "1999.90"}
	for _, p := range prices {
		for qty := 1; qty <= 13; qty++ {
			lt, err := c.Line("SE", ClassStandard, qty, decimal.RequireFromString(p))
			require.NoError(t, err)
			assert.True(t, lt.Net.Add(lt.Tax).Equal(lt.Gross),
				"price %s qty %d: %s + %s != %s", p, qty, lt.Net, lt.Tax, lt.Gross)
		}
	}
}

func TestLine_ExemptHasNoTax(t *testing.T) {
	c := newTestCalculator()

	lt, err := c.Line("SE", ClassExempt, 3, decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	assert.True(t, lt.Tax.IsZero())
	assert.True(t, lt.Net.Equal(lt.Gross))
}

func TestCart_MixedRates(t *testing.T) {
	c := newTestCalculator()

	// 12% food plus 25% non-food in one order.
	cart, err := c.Cart("SE", []Line{
		{Class: ClassReduced, Quantity: 2, UnitPrice: decimal.RequireFromString("56.00")},  // 112.00 gross
		{Class: ClassStandard, Quantity: 1, UnitPrice: decimal.RequireFromString("125.00")}, // 125.00 gross
	})
	require.NoError(t, err)

	require.Len(t, cart.Breakdown, 2)
	assert.True(t, decimal.RequireFromString("12").Equal(cart.Breakdown[0].Rate))
	assert.True(t, decimal.RequireFromString("25").Equal(cart.Breakdown[1].Rate))

	// 112.00 / 1.12 = 100.00 net, 12.00 tax.
	assert.True(t, decimal.RequireFromString("100.00").Equal(cart.Breakdown[0].Net))
	assert.True(t, decimal.RequireFromString("12.00").Equal(cart.Breakdown[0].Tax))

	// 125.00 / 1.25 = 100.00 net, 25.00 tax.
	assert.True(t, decimal.RequireFromString("100.00").Equal(cart.Breakdown[1].Net))
	assert.True(t, decimal.RequireFromString("25.00").Equal(cart.Breakdown[1].Tax))

	assert.True(t, decimal.RequireFromString("200.00").Equal(cart.Net))
	assert.True(t, decimal.RequireFromString("37.00").Equal(cart.Tax))
	assert.True(t, decimal.RequireFromString("237.00").Equal(cart.Gross))

	// Weighted rate is 37/200 = 18.5%, display only.
	assert.True(t, decimal.RequireFromString("18.50").Equal(cart.WeightedRate), "got %s", cart.WeightedRate)
}

func TestCart_SameRateLinesShareOneGroup(t *testing.T) {
	c := newTestCalculator()

	cart, err := c.Cart("SE", []Line{
		{Class: ClassReduced, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
		{Class: ClassReduced, Quantity: 4, UnitPrice: decimal.RequireFromString("25.00")},
	})
	require.NoError(t, err)
	require.Len(t, cart.Breakdown, 1)
	assert.True(t, decimal.RequireFromString("110").Equal(cart.Breakdown[0].Gross))
}

func TestCart_RoundTripTolerance(t *testing.T) {
	c := newTestCalculator()

	// net + tax must equal gross within one minor unit for any rate mix.
	cart, err := c.Cart("SE", []Line{
		{Class: ClassStandard, Quantity: 3, UnitPrice: decimal.RequireFromString("33.33")},
		{Class: ClassReduced, Quantity: 7, UnitPrice: decimal.RequireFromString("14.99")},
		{Class: ClassZero, Quantity: 2, UnitPrice: decimal.RequireFromString("5.00")},
	})
	require.NoError(t, err)

	diff := cart.Net.Add(cart.Tax).Sub(cart.Gross).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.01")),
		"net %s + tax %s vs gross %s", cart.Net, cart.Tax, cart.Gross)
}

func TestCart_EmptyCart(t *testing.T) {
	c := newTestCalculator()

	cart, err := c.Cart("SE", nil)
	require.NoError(t, err)
	assert.True(t, cart.Gross.IsZero())
	assert.True(t, cart.WeightedRate.IsZero())
	assert.Empty(t, cart.Breakdown)
}

func TestReverseCharged(t *testing.T) {
	c := newTestCalculator()

	cart, err := c.Cart("SE", []Line{
		{Class: ClassReduced, Quantity: 10, UnitPrice: decimal.RequireFromString("90.00")},
	})
	require.NoError(t, err)

	rc := cart.ReverseCharged()
	assert.True(t, decimal.RequireFromString("803.57").Equal(rc.Net))
	assert.True(t, rc.Tax.IsZero())
	assert.True(t, rc.Gross.Equal(rc.Net))
	require.Len(t, rc.Breakdown, 1)
	assert.True(t, rc.Breakdown[0].Tax.IsZero())
	assert.True(t, decimal.RequireFromString("12").Equal(rc.Breakdown[0].Rate))
}
