package trade

import (
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PricingPolicy holds the shop-wide delivery charge rules
type PricingPolicy struct {
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// Pricing is the breakdown of an order or a quote
type Pricing struct {
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
}

// Price computes the totals for a subtotal and a coupon discount.
// The discount never exceeds the subtotal; shipping is waived once the
// discounted subtotal reaches the free shipping threshold.
func (p PricingPolicy) Price(subtotal, discount decimal.Decimal) Pricing {
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	discounted := subtotal.Sub(discount)

	shipping := p.ShippingFee
	if p.FreeShippingThreshold.IsPositive() && discounted.GreaterThanOrEqual(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	if subtotal.IsZero() {
		shipping = decimal.Zero
	}

	return Pricing{
		Subtotal:    valueobject.RoundMoney(subtotal),
		Discount:    valueobject.RoundMoney(discount),
		ShippingFee: valueobject.RoundMoney(shipping),
		Total:       valueobject.RoundMoney(discounted.Add(shipping)),
	}
}
