package shipping

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Resolver maps destination countries to zones and applies the
// free-shipping threshold. The zone table is static configuration loaded at
// startup; all methods are pure and safe for concurrent use.
type Resolver struct {
	byCountry map[string]Zone
}

// NewResolver builds a Resolver from the given zones. Zones must partition
// country codes: a country claimed by two zones is a configuration error.
func NewResolver(zones []Zone) (*Resolver, error) {
	byCountry := make(map[string]Zone)
	for _, z := range zones {
		for _, c := range z.Countries {
			if prev, ok := byCountry[c]; ok {
				return nil, errors.Wrapf(ErrOverlappingZones, "%s in %q and %q", c, prev.Name, z.Name)
			}
			byCountry[c] = z
		}
	}
	return &Resolver{byCountry: byCountry}, nil
}

// Cost resolves the delivery cost for a destination given the tax-inclusive
// cart subtotal. A destination outside every zone returns
// NoZoneForCountryError.
func (r *Resolver) Cost(country string, cartSubtotal decimal.Decimal) (Quote, error) {
	z, ok := r.byCountry[country]
	if !ok {
		return Quote{}, &NoZoneForCountryError{Country: country}
	}

	q := Quote{
		Zone:       z.Name,
		ETAMinDays: z.ETAMinDays,
		ETAMaxDays: z.ETAMaxDays,
	}

	if z.FreeThreshold.IsZero() || cartSubtotal.GreaterThanOrEqual(z.FreeThreshold) {
		q.Cost = decimal.Zero
		q.Free = true
		return q, nil
	}

	q.Cost = z.BaseRate
	return q, nil
}
