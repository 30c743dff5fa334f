package checkout

import (
	"testing"

	"fempowered-storefront/internal/config"
	"fempowered-storefront/internal/domain"
)

var testRates = config.ShippingRates{
	StandardCents:              590,
	ExpressCents:               990,
	FreeStandardThresholdCents: 8000,
}

func TestShippingCost(t *testing.T) {
	cases := []struct {
		name     string
		method   domain.ShippingMethod
		subtotal int64
		want     int64
	}{
		{"standard at threshold is free", domain.ShippingStandard, 8000, 0},
		{"standard above threshold is free", domain.ShippingStandard, 12000, 0},
		{"standard below threshold costs", domain.ShippingStandard, 7999, 590},
		{"express ignores threshold", domain.ShippingExpress, 100000, 990},
		{"express on small order", domain.ShippingExpress, 100, 990},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShippingCost(tc.method, tc.subtotal, testRates); got != tc.want {
				t.Fatalf("ShippingCost(%s, %d) = %d, want %d", tc.method, tc.subtotal, got, tc.want)
			}
		})
	}
}

func TestSubtotalAndGrandTotal(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: 7, Size: "M", Quantity: 2, UnitPriceCents: 4999},
	}
	subtotal := Subtotal(lines)
	if subtotal != 9998 {
		t.Fatalf("Subtotal = %d, want 9998", subtotal)
	}
	shipping := ShippingCost(domain.ShippingStandard, subtotal, testRates)
	if shipping != 590 {
		t.Fatalf("ShippingCost = %d, want 590", shipping)
	}
	if got := GrandTotal(subtotal, shipping); got != 10588 {
		t.Fatalf("GrandTotal = %d, want 10588", got)
	}
}

func TestSubtotal_Empty(t *testing.T) {
	if got := Subtotal(nil); got != 0 {
		t.Fatalf("Subtotal(nil) = %d, want 0", got)
	}
}
