package pricing_test

import (
	"testing"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/domain"
	"tour-marketplace/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPriceTour_BasePriceWithTenPercent(t *testing.T) {
	priced, err := pricing.PriceTour(dec("100.00"), dec("0.10"), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "110.00", priced.FinalPrice.StringFixed(2))
	assert.Nil(t, priced.PriceVariationsWithCommission)
	assert.Nil(t, priced.ExtraServicesWithCommission)
}

func TestPriceTour_VariationsAndExtrasRoundedIndependently(t *testing.T) {
	priced, err := pricing.PriceTour(dec("100.00"), dec("0.15"),
		pricing.RawPrices{"adulto": "100.00", "nino": "33.33", "senior": " 45.5 "},
		pricing.RawPrices{"comidas": "10.05"},
	)

	require.NoError(t, err)
	assert.Equal(t, "115.00", priced.FinalPrice.StringFixed(2))
	assert.Equal(t, "115.00", priced.PriceVariationsWithCommission["adulto"].StringFixed(2))
	// 33.33 * 1.15 = 38.3295 -> 38.33
	assert.Equal(t, "38.33", priced.PriceVariationsWithCommission["nino"].StringFixed(2))
	// 45.5 * 1.15 = 52.325 -> 52.33 (half up)
	assert.Equal(t, "52.33", priced.PriceVariationsWithCommission["senior"].StringFixed(2))
	// 10.05 * 1.15 = 11.5575 -> 11.56
	assert.Equal(t, "11.56", priced.ExtraServicesWithCommission["comidas"].StringFixed(2))
	assert.Equal(t, "45.5", priced.PriceVariations["senior"].String())
}

func TestPriceTour_InvalidRate(t *testing.T) {
	for _, rate := range []string{"-0.01", "1.01", "2"} {
		_, err := pricing.PriceTour(dec("10"), dec(rate), nil, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidPrice, "rate %s", rate)
	}
}

func TestPriceTour_NegativePrices(t *testing.T) {
	_, err := pricing.PriceTour(dec("-1"), dec("0.10"), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = pricing.PriceTour(dec("10"), dec("0.10"), pricing.RawPrices{"nino": "-5"}, nil)
	require.ErrorIs(t, err, domain.ErrInvalidPrice)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"price_variations.nino"}, de.Fields)
}

func TestPriceTour_MalformedVariation(t *testing.T) {
	_, err := pricing.PriceTour(dec("10"), dec("0.10"),
		pricing.RawPrices{"adulto": "12.00", "nino": "doce"},
		pricing.RawPrices{"fotos": "1,5"},
	)

	require.ErrorIs(t, err, domain.ErrMalformedVariation)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"price_variations.nino"}, de.Fields)
}

func TestPriceTour_CommissionMonotonic(t *testing.T) {
	bases := []string{"0.01", "1.00", "9.99", "100.00", "123.45", "999999.99"}
	rates := []string{"0", "0.01", "0.10", "0.15", "0.333", "0.5", "1"}

	for _, b := range bases {
		for _, r := range rates {
			priced, err := pricing.PriceTour(dec(b), dec(r), nil, nil)
			require.NoError(t, err)

			base := dec(b)
			assert.True(t, priced.FinalPrice.GreaterThanOrEqual(base), "base=%s rate=%s", b, r)
			if dec(r).IsZero() {
				assert.True(t, priced.FinalPrice.Equal(base), "zero rate must not change price")
			} else {
				assert.True(t, priced.FinalPrice.GreaterThan(base), "base=%s rate=%s", b, r)
			}
		}
	}
}

func TestPriceTour_Deterministic(t *testing.T) {
	vars := pricing.RawPrices{"a": "10.10", "b": "20.20"}
	first, err := pricing.PriceTour(dec("50"), dec("0.12"), vars, nil)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := pricing.PriceTour(dec("50"), dec("0.12"), vars, nil)
		require.NoError(t, err)
		assert.Equal(t, first.FinalPrice.String(), again.FinalPrice.String())
		assert.Equal(t, first.PriceVariationsWithCommission["b"].String(), again.PriceVariationsWithCommission["b"].String())
	}
}

func TestReprice_UpdatesDerivedFields(t *testing.T) {
	tour := &entity.TourPackage{
		BasePrice:       dec("100"),
		CommissionRate:  dec("0.10"),
		PriceVariations: entity.PriceMap{"adulto": dec("100"), "nino": dec("50")},
	}
	require.NoError(t, pricing.Reprice(tour))
	assert.Equal(t, "110.00", tour.FinalPrice.StringFixed(2))
	assert.Equal(t, "55.00", tour.PriceVariationsWithCommission["nino"].StringFixed(2))

	tour.CommissionRate = dec("0.20")
	require.NoError(t, pricing.Reprice(tour))
	assert.Equal(t, "120.00", tour.FinalPrice.StringFixed(2))
	assert.Equal(t, "60.00", tour.PriceVariationsWithCommission["nino"].StringFixed(2))
}

func TestPriceTour_RejectsPrecisionTheColumnsCannotHold(t *testing.T) {
	tests := []struct {
		name       string
		base, rate string
		variations pricing.RawPrices
		extras     pricing.RawPrices
		want       error
		field      string
	}{
		{"base below a cent", "100.005", "0.10", nil, nil, domain.ErrInvalidPrice, "base_price"},
		{"base too large", "100000000.00", "0.10", nil, nil, domain.ErrInvalidPrice, "base_price"},
		{"rate with five places", "100", "0.12345", nil, nil, domain.ErrInvalidPrice, "commission_rate"},
		{"variation below a cent", "100", "0.10", pricing.RawPrices{"nino": "50.125"}, nil, domain.ErrMalformedVariation, "price_variations.nino"},
		{"extra below a cent", "100", "0.10", nil, pricing.RawPrices{"fotos": "0.001"}, domain.ErrMalformedVariation, "extra_services.fotos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pricing.PriceTour(dec(tt.base), dec(tt.rate), tt.variations, tt.extras)

			require.ErrorIs(t, err, tt.want)
			var de *domain.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, []string{tt.field}, de.Fields)
		})
	}
}

func TestPriceTour_TrailingZerosAreNotExtraPrecision(t *testing.T) {
	priced, err := pricing.PriceTour(dec("100.500"), dec("0.125000"), pricing.RawPrices{"adulto": "20.100"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "113.06", priced.FinalPrice.StringFixed(2))
	assert.Equal(t, "22.61", priced.PriceVariationsWithCommission["adulto"].StringFixed(2))
}

func TestReprice_RejectsSubCentPrices(t *testing.T) {
	tour := &entity.TourPackage{
		BasePrice:       dec("100"),
		CommissionRate:  dec("0.10"),
		PriceVariations: entity.PriceMap{"nino": dec("50.555")},
	}

	err := pricing.Reprice(tour)
	require.ErrorIs(t, err, domain.ErrMalformedVariation)
}
