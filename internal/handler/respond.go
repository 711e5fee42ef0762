package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/nordmark-trading/settlement/internal/domain/credit"
	"github.com/nordmark-trading/settlement/internal/domain/pricing"
	"github.com/nordmark-trading/settlement/internal/domain/settlement"
	"github.com/nordmark-trading/settlement/internal/domain/shipping"
)

var hundred = decimal.NewFromInt(100)

// writeJSON streams the object built by fill as the response body.
func writeJSON(w http.ResponseWriter, status int, fill func(e *jx.Encoder)) {
	var e jx.Encoder
	e.Obj(fill)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// encodeMoney writes a monetary field as minor units plus a display string.
// Amounts reaching the boundary are already rounded to 2 decimal places, so
// the minor-unit conversion is exact.
func encodeMoney(e *jx.Encoder, name string, amount decimal.Decimal) {
	e.Field(name, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("minor", func(e *jx.Encoder) { e.Int64(amount.Mul(hundred).IntPart()) })
			e.Field("display", func(e *jx.Encoder) { e.Str(amount.StringFixed(2)) })
		})
	})
}

func writeError(w http.ResponseWriter, status int, reason, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		if reason != "" {
			e.Field("reason", func(e *jx.Encoder) { e.Str(reason) })
		}
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
}

// writeDomainError maps domain errors onto the HTTP error envelope:
// malformed input is 400, violated business rules are 422 with a machine
// reason, lost concurrent updates are 409, everything else is 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		notFound *settlement.ProductNotFoundError
		badQty   *settlement.InvalidQuantityError
		belowMOQ *pricing.BelowMinimumOrderError
		noZone   *shipping.NoZoneForCountryError
	)

	switch {
	case errors.Is(err, settlement.ErrEmptyItems),
		errors.Is(err, settlement.ErrMissingCustomerID),
		errors.Is(err, settlement.ErrInvalidCountry),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, credit.ErrInvalidAmount),
		errors.As(err, &badQty):
		writeError(w, http.StatusBadRequest, "", err.Error())

	case errors.As(err, &notFound):
		writeError(w, http.StatusUnprocessableEntity, "product_not_found", err.Error())
	case errors.Is(err, settlement.ErrCustomerNotFound):
		writeError(w, http.StatusUnprocessableEntity, "customer_not_found", err.Error())
	case errors.As(err, &belowMOQ):
		writeError(w, http.StatusUnprocessableEntity, "below_minimum_order", err.Error())
	case errors.As(err, &noZone):
		writeError(w, http.StatusUnprocessableEntity, "no_shipping_zone", err.Error())

	case errors.Is(err, credit.ErrAccountNotFound),
		errors.Is(err, credit.ErrAccountNotApproved):
		writeError(w, http.StatusUnprocessableEntity, credit.ReasonNotApproved, err.Error())
	case errors.Is(err, credit.ErrInsufficientCredit):
		writeError(w, http.StatusUnprocessableEntity, credit.ReasonInsufficientCredit, err.Error())
	case errors.Is(err, credit.ErrBelowCreditMinimum):
		writeError(w, http.StatusUnprocessableEntity, credit.ReasonBelowCreditMinimum, err.Error())
	case errors.Is(err, credit.ErrExcessRelease):
		writeError(w, http.StatusUnprocessableEntity, "excess_release", err.Error())
	case errors.Is(err, credit.ErrConflict):
		writeError(w, http.StatusConflict, "concurrency_conflict", err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "", "internal error")
	}
}
