// Package pricing turns operator net prices into commission-inclusive final
// prices. Everything here is pure and safe to call concurrently.
package pricing

import (
	"sort"
	"strings"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/domain"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places every price is rounded to.
const Places = 2

// RatePlaces is the precision a commission rate is stored with.
const RatePlaces = 4

// MaxPrice is the largest amount a price column holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

var one = decimal.NewFromInt(1)

// RawPrices holds prices as entered by the operator, keyed by ticket type or
// extra service. Values are decimal strings and are validated when priced.
type RawPrices map[string]string

// PricedTour is the result of PriceTour. The caller persists it on the tour.
type PricedTour struct {
	BasePrice                     decimal.Decimal
	CommissionRate                decimal.Decimal
	FinalPrice                    decimal.Decimal
	PriceVariations               entity.PriceMap
	PriceVariationsWithCommission entity.PriceMap
	ExtraServices                 entity.PriceMap
	ExtraServicesWithCommission   entity.PriceMap
}

// Apply copies the priced fields onto the tour.
func (p *PricedTour) Apply(tour *entity.TourPackage) {
	tour.BasePrice = p.BasePrice
	tour.CommissionRate = p.CommissionRate
	tour.FinalPrice = p.FinalPrice
	tour.PriceVariations = p.PriceVariations
	tour.PriceVariationsWithCommission = p.PriceVariationsWithCommission
	tour.ExtraServices = p.ExtraServices
	tour.ExtraServicesWithCommission = p.ExtraServicesWithCommission
}

// Round2 rounds half away from zero to cents, which is half-up for the
// non-negative amounts the engine accepts.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// WithCommission applies final = round2(p * (1 + rate)).
func WithCommission(p, rate decimal.Decimal) decimal.Decimal {
	return Round2(p.Mul(one.Add(rate)))
}

// ValidateRate fails with InvalidPrice unless rate is within [0, 1].
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(one) {
		return domain.New(domain.KindInvalidPrice, "commission rate must be between 0 and 1", "commission_rate")
	}
	if !fitsPlaces(rate, RatePlaces) {
		return domain.New(domain.KindInvalidPrice, "commission rate allows at most 4 decimal places", "commission_rate")
	}
	return nil
}

// ValidateBasePrice fails with InvalidPrice unless base is a non-negative
// amount in whole cents that fits a price column.
func ValidateBasePrice(base decimal.Decimal) error {
	switch {
	case base.IsNegative():
		return domain.New(domain.KindInvalidPrice, "base price cannot be negative", "base_price")
	case !fitsPlaces(base, Places):
		return domain.New(domain.KindInvalidPrice, "base price allows at most 2 decimal places", "base_price")
	case base.GreaterThan(MaxPrice):
		return domain.New(domain.KindInvalidPrice, "base price is too large", "base_price")
	}
	return nil
}

// fitsPlaces reports whether d has no significant digits past places.
// Trailing zeros such as "10.500" are fine.
func fitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// PriceTour derives the final base price and the commission-inclusive
// variation and extra maps. Each value is rounded on its own so no error
// accumulates across fields.
func PriceTour(basePrice, rate decimal.Decimal, variations, extras RawPrices) (*PricedTour, error) {
	if err := ValidateBasePrice(basePrice); err != nil {
		return nil, err
	}
	if err := ValidateRate(rate); err != nil {
		return nil, err
	}

	netVariations, err := parsePrices("price_variations", variations)
	if err != nil {
		return nil, err
	}
	netExtras, err := parsePrices("extra_services", extras)
	if err != nil {
		return nil, err
	}

	return &PricedTour{
		BasePrice:                     basePrice,
		CommissionRate:                rate,
		FinalPrice:                    WithCommission(basePrice, rate),
		PriceVariations:               netVariations,
		PriceVariationsWithCommission: PriceMap(netVariations, rate),
		ExtraServices:                 netExtras,
		ExtraServicesWithCommission:   PriceMap(netExtras, rate),
	}, nil
}

// PriceMap applies the commission formula to every net price in m.
func PriceMap(m entity.PriceMap, rate decimal.Decimal) entity.PriceMap {
	if m == nil {
		return nil
	}
	out := make(entity.PriceMap, len(m))
	for k, v := range m {
		out[k] = WithCommission(v, rate)
	}
	return out
}

// Reprice recomputes every derived field of tour from its net prices. Used
// after an update touches any of the price inputs.
func Reprice(tour *entity.TourPackage) error {
	if err := ValidateBasePrice(tour.BasePrice); err != nil {
		return err
	}
	if err := ValidateRate(tour.CommissionRate); err != nil {
		return err
	}
	if err := checkNonNegative("price_variations", tour.PriceVariations); err != nil {
		return err
	}
	if err := checkNonNegative("extra_services", tour.ExtraServices); err != nil {
		return err
	}
	tour.FinalPrice = WithCommission(tour.BasePrice, tour.CommissionRate)
	tour.PriceVariationsWithCommission = PriceMap(tour.PriceVariations, tour.CommissionRate)
	tour.ExtraServicesWithCommission = PriceMap(tour.ExtraServices, tour.CommissionRate)
	return nil
}

func parsePrices(field string, raw RawPrices) (entity.PriceMap, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	out := make(entity.PriceMap, len(raw))
	var malformed, negative, tooPrecise []string
	for _, key := range sortedKeys(raw) {
		if strings.TrimSpace(key) == "" {
			malformed = append(malformed, field+".<empty>")
			continue
		}
		d, err := decimal.NewFromString(strings.TrimSpace(raw[key]))
		if err != nil {
			malformed = append(malformed, field+"."+key)
			continue
		}
		if d.IsNegative() {
			negative = append(negative, field+"."+key)
			continue
		}
		if !fitsPlaces(d, Places) {
			tooPrecise = append(tooPrecise, field+"."+key)
			continue
		}
		out[key] = d
	}

	if len(malformed) > 0 {
		return nil, domain.New(domain.KindMalformedVariation, "price is not a well-formed decimal", malformed...)
	}
	if len(tooPrecise) > 0 {
		return nil, domain.New(domain.KindMalformedVariation, "price allows at most 2 decimal places", tooPrecise...)
	}
	if len(negative) > 0 {
		return nil, domain.New(domain.KindInvalidPrice, "price cannot be negative", negative...)
	}
	return out, nil
}

func checkNonNegative(field string, m entity.PriceMap) error {
	var negative, tooPrecise []string
	for k, v := range m {
		switch {
		case v.IsNegative():
			negative = append(negative, field+"."+k)
		case !fitsPlaces(v, Places):
			tooPrecise = append(tooPrecise, field+"."+k)
		}
	}
	if len(negative) > 0 {
		sort.Strings(negative)
		return domain.New(domain.KindInvalidPrice, "price cannot be negative", negative...)
	}
	if len(tooPrecise) > 0 {
		sort.Strings(tooPrecise)
		return domain.New(domain.KindMalformedVariation, "price allows at most 2 decimal places", tooPrecise...)
	}
	return nil
}

func sortedKeys(m RawPrices) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
