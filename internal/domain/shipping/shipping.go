package shipping

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrOverlappingZones is returned when two zones claim the same country.
var ErrOverlappingZones = errors.New("country claimed by more than one zone")

// NoZoneForCountryError indicates no enabled zone covers the destination.
// There is no fallback zone; the caller must route to a manual flow.
type NoZoneForCountryError struct {
	Country string
}

func (e *NoZoneForCountryError) Error() string {
	return fmt.Sprintf("no shipping zone for country %s", e.Country)
}

// Zone is a set of countries sharing one delivery rate. A FreeThreshold of 0
// means shipping is always free in the zone.
type Zone struct {
	Name          string
	Countries     []string
	BaseRate      decimal.Decimal
	FreeThreshold decimal.Decimal
	ETAMinDays    int
	ETAMaxDays    int
}

// Quote is the resolved delivery cost for one destination and cart subtotal.
type Quote struct {
	Cost       decimal.Decimal
	Zone       string
	Free       bool
	ETAMinDays int
	ETAMaxDays int
}

// DefaultZones returns the zone table for the reference deployment.
func DefaultZones() []Zone {
	return []Zone{
		{
			Name:          "domestic",
			Countries:     []string{"SE"},
			BaseRate:      decimal.Zero,
			FreeThreshold: decimal.Zero,
			ETAMinDays:    1,
			ETAMaxDays:    3,
		},
		{
			Name:          "nordics",
			Countries:     []string{"NO", "DK", "FI"},
			BaseRate:      decimal.NewFromInt(299),
			FreeThreshold: decimal.NewFromInt(5000),
			ETAMinDays:    2,
			ETAMaxDays:    5,
		},
		{
			Name:          "eu",
			Countries:     []string{"DE", "NL", "BE", "FR", "AT", "PL", "EE", "LV", "LT"},
			BaseRate:      decimal.NewFromInt(499),
			FreeThreshold: decimal.NewFromInt(8000),
			ETAMinDays:    4,
			ETAMaxDays:    9,
		},
	}
}
