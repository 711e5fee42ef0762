package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(id string, base string, moq int, tiers ...Tier) Product {
	return Product{
		ID:        id,
		BasePrice: decimal.RequireFromString(base),
		MOQ:       moq,
		Tiers:     tiers,
	}
}

func defaultResolver() *Resolver {
	return NewResolver(DefaultLadder(), 1)
}

func TestPrice_InvalidQuantity(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "100.00", 1)

	_, err := r.Price(p, 0, ClassRetail)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = r.Price(p, -3, ClassRetail)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPrice_NegativeBasePrice(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "-1.00", 1)

	_, err := r.Price(p, 1, ClassRetail)
	require.ErrorIs(t, err, ErrInvalidProduct)
}

func TestPrice_BelowMOQRejected(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "100.00", 5)

	_, err := r.Price(p, 3, ClassRetail)

	var moqErr *BelowMinimumOrderError
	require.ErrorAs(t, err, &moqErr)
	assert.Equal(t, "p1", moqErr.ProductID)
	assert.Equal(t, 3, moqErr.Requested)
	assert.Equal(t, 5, moqErr.Required)
}

func TestPrice_GlobalMOQFloorWins(t *testing.T) {
	r := NewResolver(DefaultLadder(), 10)
	p := newTestProduct("p1", "100.00", 5)

	_, err := r.Price(p, 7, ClassRetail)

	var moqErr *BelowMinimumOrderError
	require.ErrorAs(t, err, &moqErr)
	assert.Equal(t, 10, moqErr.Required)
}

func TestPriceForDisplay_ClampsBelowMOQ(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "100.00", 10)

	q, err := r.PriceForDisplay(p, 3, ClassRetail)
	require.NoError(t, err)
	// Clamped to MOQ 10, which unlocks the 5% ladder step.
	assert.True(t, decimal.RequireFromString("95.00").Equal(q.UnitPrice), "got %s", q.UnitPrice)
}

func TestPrice_BasePriceBelowEveryBreakpoint(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "100.00", 1)

	q, err := r.Price(p, 9, ClassRetail)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.00").Equal(q.UnitPrice))
	assert.Empty(t, q.TierLabel)
	assert.True(t, q.SavingsPercent.IsZero())
}

func TestPrice_StepFunctionWithinTier(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "100.00", 1)

	// Every quantity inside [10, 50) resolves to the same unit price.
	var prev decimal.Decimal
	for qty := 10; qty < 50; qty++ {
		q, err := r.Price(p, qty, ClassRetail)
		require.NoError(t, err)
		if qty > 10 {
			assert.True(t, prev.Equal(q.UnitPrice), "qty %d: %s != %s", qty, prev, q.UnitPrice)
		}
		prev = q.UnitPrice
	}
	assert.True(t, decimal.RequireFromString("95.00").Equal(prev))
}

func TestPrice_RetailLadderBreakpoints(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "200.00", 1)

	tests := []struct {
		qty  int
		want string
	}{
		{1, "200.00"},
		{9, "200.00"},
		{10, "190.00"},
		{49, "190.00"},
		{50, "180.00"},
		{100, "170.00"},
		{500, "170.00"},
	}
	for _, tt := range tests {
		q, err := r.Price(p, tt.qty, ClassRetail)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(q.UnitPrice),
			"qty %d: want %s, got %s", tt.qty, tt.want, q.UnitPrice)
	}
}

func TestPrice_WholesaleTierWinsWhenLower(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "100.00", 1,
		Tier{MinQuantity: 10, UnitPrice: decimal.RequireFromString("90.00"), Label: "contract 10+"},
	)

	q, err := r.Price(p, 10, ClassWholesaleApproved)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("90.00").Equal(q.UnitPrice))
	assert.Equal(t, "contract 10+", q.TierLabel)
	assert.True(t, decimal.RequireFromString("10.00").Equal(q.SavingsPercent))
}

func TestPrice_LadderWinsOverWorseWholesaleTier(t *testing.T) {
	r := defaultResolver()
	// Negotiated tier is worse than the 10% ladder step at qty 50.
	p := newTestProduct("p1", "100.00", 1,
		Tier{MinQuantity: 50, UnitPrice: decimal.RequireFromString("93.00"), Label: "contract 50+"},
	)

	q, err := r.Price(p, 50, ClassWholesaleApproved)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("90.00").Equal(q.UnitPrice))
	assert.Equal(t, "volume 50+", q.TierLabel)
}

func TestPrice_TiersAreNotVisibleToRetail(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "100.00", 1,
		Tier{MinQuantity: 10, UnitPrice: decimal.RequireFromString("50.00"), Label: "contract 10+"},
	)

	retail, err := r.Price(p, 10, ClassRetail)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("95.00").Equal(retail.UnitPrice))

	pending, err := r.Price(p, 10, ClassWholesalePending)
	require.NoError(t, err)
	assert.True(t, retail.UnitPrice.Equal(pending.UnitPrice), "pending wholesale is priced as retail")
}

func TestPrice_WholesaleNeverAboveRetail(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "137.50", 2,
		Tier{MinQuantity: 25, UnitPrice: decimal.RequireFromString("120.00"), Label: "contract 25+"},
		Tier{MinQuantity: 75, UnitPrice: decimal.RequireFromString("110.00"), Label: "contract 75+"},
	)

	for qty := 2; qty <= 200; qty++ {
		retail, err := r.Price(p, qty, ClassRetail)
		require.NoError(t, err)
		wholesale, err := r.Price(p, qty, ClassWholesaleApproved)
		require.NoError(t, err)
		assert.True(t, wholesale.UnitPrice.LessThanOrEqual(retail.UnitPrice),
			"qty %d: wholesale %s > retail %s", qty, wholesale.UnitPrice, retail.UnitPrice)
	}
}

func TestPrice_NextTierHint(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "100.00", 1)

	q, err := r.Price(p, 42, ClassRetail)
	require.NoError(t, err)
	require.NotNil(t, q.NextTier)
	assert.Equal(t, 50, q.NextTier.MinQuantity)
	assert.Equal(t, 8, q.NextTier.QuantityToGo)
	assert.True(t, decimal.RequireFromString("90.00").Equal(q.NextTier.UnitPrice))
}

func TestPrice_NextTierHintPrefersClosestBreakpoint(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "100.00", 1,
		Tier{MinQuantity: 30, UnitPrice: decimal.RequireFromString("85.00"), Label: "contract 30+"},
	)

	q, err := r.Price(p, 12, ClassWholesaleApproved)
	require.NoError(t, err)
	require.NotNil(t, q.NextTier)
	assert.Equal(t, 30, q.NextTier.MinQuantity)
	assert.True(t, decimal.RequireFromString("85.00").Equal(q.NextTier.UnitPrice))
}

func TestPrice_NoHintAtTopTier(t *testing.T) {
	r := defaultResolver()
	p := newTestProduct("p1", "100.00", 1)

	q, err := r.Price(p, 100, ClassRetail)
	require.NoError(t, err)
	assert.Nil(t, q.NextTier)
}

func TestParseCustomerClass(t *testing.T) {
	assert.Equal(t, ClassRetail, ParseCustomerClass("retail"))
	assert.Equal(t, ClassWholesalePending, ParseCustomerClass("wholesale-pending"))
	assert.Equal(t, ClassWholesaleApproved, ParseCustomerClass("wholesale-approved"))
	assert.Equal(t, ClassRetail, ParseCustomerClass("unknown"))
	assert.Equal(t, ClassRetail, ParseCustomerClass(""))
}
