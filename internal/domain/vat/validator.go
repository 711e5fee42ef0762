package vat

import (
	"context"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

// Validator layers the optional online confirmation and the optional
// registry hint on top of the offline format/checksum validation.
type Validator struct {
	confirm  ConfirmationService
	registry *bloom.BloomFilter
	timeout  time.Duration
}

// NewValidator creates a Validator. Both confirm and registry may be nil;
// the validator then answers from format and checksum alone. timeout bounds
// each online confirmation call.
func NewValidator(confirm ConfirmationService, registry *bloom.BloomFilter, timeout time.Duration) *Validator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Validator{confirm: confirm, registry: registry, timeout: timeout}
}

// Validate validates a raw number. The offline result is authoritative for
// rejection; the online service can additionally reject a structurally valid
// number or attach the registered company identity. When the online service
// is unreachable the offline result is returned with a pending confirmation
// status — degradation is part of the contract, not an error.
func (v *Validator) Validate(ctx context.Context, raw, countryHint string) Result {
	res := ValidateFormat(raw, countryHint)
	if !res.Valid {
		return res
	}

	if v.registry != nil {
		// Bloom membership is probabilistic: a hit is only a hint, a
		// miss proves nothing about an unloaded registry, so the hint
		// never changes Valid.
		res.RegistryHint = v.registry.TestString(res.Normalized)
	}

	if v.confirm == nil {
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	c, err := v.confirm.CheckVAT(ctx, res.CountryCode, res.Normalized[len(res.CountryCode):])
	if err != nil {
		// Only an unavailable service means a confirmation is still
		// pending. Any other failure leaves the offline answer as is.
		if errors.Is(err, ErrConfirmationUnavailable) {
			res.Confirmation = ConfirmationPending
		}
		return res
	}

	res.Confirmation = ConfirmationOnline
	if !c.Valid {
		res.Valid = false
		res.Reason = ReasonRejectedOnline
		return res
	}

	res.CompanyName = c.Name
	res.CompanyAddress = c.Address
	return res
}
