// Package vat validates EU/EEA VAT and company registration numbers.
//
// Validation is layered: normalization, per-country structural patterns,
// country-specific checksums (Swedish and Norwegian organization numbers),
// and an optional online confirmation against a VIES-compatible service.
// The online step is an upgrade only; when the service is unreachable the
// offline result stands and the caller sees a pending confirmation status.
package vat

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrConfirmationUnavailable is returned by ConfirmationService
// implementations when the online service cannot be reached.
var ErrConfirmationUnavailable = errors.New("vat confirmation service unavailable")

// ConfirmationStatus reports how far a number got through online
// confirmation.
type ConfirmationStatus string

const (
	// ConfirmationOffline means no online service is configured; the
	// result is based on format and checksum alone.
	ConfirmationOffline ConfirmationStatus = "offline"
	// ConfirmationPending means the online service was unreachable and
	// the offline result stands; the UI should show "pending
	// verification" rather than "verified".
	ConfirmationPending ConfirmationStatus = "pending"
	// ConfirmationOnline means the online service answered.
	ConfirmationOnline ConfirmationStatus = "online"
)

// Reason codes for invalid numbers.
const (
	ReasonEmpty          = "empty_input"
	ReasonUnknownCountry = "unknown_country"
	ReasonBadFormat      = "bad_format"
	ReasonBadChecksum    = "bad_checksum"
	ReasonRejectedOnline = "rejected_online"
)

// Result is the outcome of validating one raw number. Numbers are never
// persisted in this form; they are re-derived from raw input on every call.
type Result struct {
	Valid        bool
	CountryCode  string
	Normalized   string
	Confirmation ConfirmationStatus
	RegistryHint bool
	Reason       string

	// Filled from the online confirmation when available.
	CompanyName    string
	CompanyAddress string
}

// Confirmation is the answer from an online confirmation service.
type Confirmation struct {
	Valid   bool
	Name    string
	Address string
}

// ConfirmationService confirms a VAT number against an external registry
// (VIES or compatible). Implementations return ErrConfirmationUnavailable
// (possibly wrapped) when the service cannot answer.
type ConfirmationService interface {
	CheckVAT(ctx context.Context, country, number string) (*Confirmation, error)
}

// ReverseChargeApplies reports whether EU reverse charge shifts the VAT
// liability to the buyer: seller and buyer sit in different supported
// countries and the buyer's VAT number validated.
func ReverseChargeApplies(sellerCountry, buyerCountry string, buyerHasValidVAT bool) bool {
	if !buyerHasValidVAT {
		return false
	}
	if sellerCountry == buyerCountry {
		return false
	}
	return supportedCountry(sellerCountry) && supportedCountry(buyerCountry)
}
