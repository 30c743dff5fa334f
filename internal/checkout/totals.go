package checkout

import (
	"fempowered-storefront/internal/config"
	"fempowered-storefront/internal/domain"
)

// Subtotal sums unit price times quantity over the given lines, in minor
// currency units.
func Subtotal(lines []domain.CartLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.UnitPriceCents * int64(line.Quantity)
	}
	return total
}

// ShippingCost is a pure function of the shipping method and the subtotal.
// Express always costs the express rate; standard is free at or above the
// configured threshold.
func ShippingCost(method domain.ShippingMethod, subtotalCents int64, rates config.ShippingRates) int64 {
	if method == domain.ShippingExpress {
		return rates.ExpressCents
	}
	if subtotalCents >= rates.FreeStandardThresholdCents {
		return 0
	}
	return rates.StandardCents
}

// GrandTotal is the only place the order total is derived, so the stored
// total can never disagree with its parts.
func GrandTotal(subtotalCents, shippingCents int64) int64 {
	return subtotalCents + shippingCents
}
