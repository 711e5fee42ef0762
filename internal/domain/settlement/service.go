package settlement

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/nordmark-trading/settlement/internal/domain/credit"
	"github.com/nordmark-trading/settlement/internal/domain/pricing"
	"github.com/nordmark-trading/settlement/internal/domain/shipping"
	"github.com/nordmark-trading/settlement/internal/domain/tax"
	"github.com/nordmark-trading/settlement/internal/domain/vat"
)

// Config holds the deploy-time settlement parameters.
type Config struct {
	// SellerCountry is the country whose VAT rates apply and the seller
	// side of reverse-charge determination.
	SellerCountry string
	// Currency labels all monetary results. FX is an external concern.
	Currency string
	// CreditMinimumOrder is the smallest order total payable on credit
	// terms.
	CreditMinimumOrder decimal.Decimal
}

// VATValidator is the slice of the VAT validator the orchestrator consumes.
type VATValidator interface {
	Validate(ctx context.Context, raw, countryHint string) vat.Result
}

// Service composes the pure pricing, tax and shipping components with the
// credit ledger and the VAT validator to produce order quotes.
type Service struct {
	catalog   Catalog
	customers Customers
	pricer    *pricing.Resolver
	taxes     *tax.Calculator
	zones     *shipping.Resolver
	ledger    credit.Ledger
	vat       VATValidator
	cfg       Config
}

// NewService creates a settlement Service with the required collaborators.
func NewService(
	catalog Catalog,
	customers Customers,
	pricer *pricing.Resolver,
	taxes *tax.Calculator,
	zones *shipping.Resolver,
	ledger credit.Ledger,
	vatValidator VATValidator,
	cfg Config,
) *Service {
	return &Service{
		catalog:   catalog,
		customers: customers,
		pricer:    pricer,
		taxes:     taxes,
		zones:     zones,
		ledger:    ledger,
		vat:       vatValidator,
		cfg:       cfg,
	}
}

// Quote turns a (customer, cart, destination) triple into a priced, taxed,
// shippable, credit-checked order quote. It performs no writes; credit is
// only consulted for eligibility.
func (s *Service) Quote(ctx context.Context, customerID string, items []LineItem, destCountry string) (*Result, error) {
	if customerID == "" {
		return nil, ErrMissingCustomerID
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	if !validCountryCode(destCountry) {
		return nil, ErrInvalidCountry
	}

	// Validate quantities and collect product ids.
	ids := make([]string, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "get customer")
	}

	fetched, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	productMap := make(map[string]Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	// Price every line and build the tax input.
	lines := make([]LineQuote, len(items))
	taxLines := make([]tax.Line, len(items))
	for i, item := range items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}

		q, err := s.pricer.Price(p.PricingView(), item.Quantity, customer.Class)
		if err != nil {
			return nil, err
		}

		lines[i] = LineQuote{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: q.UnitPrice,
			TierLabel: q.TierLabel,
			LineTotal: q.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			NextTier:  q.NextTier,
		}
		taxLines[i] = tax.Line{
			Class:     p.TaxClass,
			Quantity:  item.Quantity,
			UnitPrice: q.UnitPrice,
		}
	}

	cartTax, err := s.taxes.Cart(s.cfg.SellerCountry, taxLines)
	if err != nil {
		return nil, errors.Wrap(err, "calculate tax")
	}

	// The free-shipping threshold compares the tax-inclusive subtotal.
	shippingQuote, err := s.zones.Cost(destCountry, cartTax.Gross)
	if err != nil {
		return nil, err
	}

	reverseCharge := s.reverseChargeApplies(ctx, customer)
	if reverseCharge {
		cartTax = cartTax.ReverseCharged()
	}

	total := cartTax.Gross.Add(shippingQuote.Cost)

	result := &Result{
		Currency:      s.cfg.Currency,
		Lines:         lines,
		Tax:           cartTax,
		Shipping:      shippingQuote,
		ReverseCharge: reverseCharge,
		Total:         total,
	}
	result.Credit = s.creditEligibility(ctx, customerID, total)

	return result, nil
}

// CommitCredit reserves credit for a committed order. The ledger performs
// the atomic limit check; the eligibility pre-read only produces a better
// reason for the minimum-order rule, which the ledger does not know about.
func (s *Service) CommitCredit(ctx context.Context, customerID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return credit.ErrInvalidAmount
	}
	if amount.LessThan(s.cfg.CreditMinimumOrder) {
		return errors.Wrapf(credit.ErrBelowCreditMinimum, "minimum is %s", s.cfg.CreditMinimumOrder)
	}
	return s.ledger.Reserve(ctx, customerID, amount)
}

// ReleaseCredit reverses a reservation after cancellation or refund.
func (s *Service) ReleaseCredit(ctx context.Context, customerID string, amount decimal.Decimal) error {
	return s.ledger.Release(ctx, customerID, amount)
}

func (s *Service) creditEligibility(ctx context.Context, customerID string, total decimal.Decimal) credit.Eligibility {
	account, err := s.ledger.Account(ctx, customerID)
	if err != nil {
		// No account (or an unreadable one) is simply not eligible;
		// quoting must not fail over a payment option.
		return credit.Eligibility{Reason: credit.ReasonNotApproved}
	}
	return credit.CheckEligibility(account, total, s.cfg.CreditMinimumOrder)
}

// reverseChargeApplies checks the stored VAT number of the buyer. The buyer
// country is the one the validated number belongs to, with the customer's
// own country as the hint for unprefixed numbers; the shipping destination
// plays no part. The online confirmation upgrade is attempted inside
// Validate but the offline result decides when the service is degraded.
func (s *Service) reverseChargeApplies(ctx context.Context, customer *Customer) bool {
	if customer.VATNumber == "" {
		return false
	}
	res := s.vat.Validate(ctx, customer.VATNumber, customer.Country)
	if !res.Valid {
		return false
	}
	return vat.ReverseChargeApplies(s.cfg.SellerCountry, res.CountryCode, true)
}

func validCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := range len(code) {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
