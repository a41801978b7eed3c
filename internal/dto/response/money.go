package response

import (
	"tour-marketplace/internal/data/entity"

	"github.com/shopspring/decimal"
)

// Money renders an amount with exactly two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func Prices(m entity.PriceMap) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = Money(v)
	}
	return out
}

