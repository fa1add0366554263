package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// PriceBreakdown is the three-way split stamped on a subscription.
type PriceBreakdown struct {
	SubscriptionPrice decimal.Decimal `json:"subscription_price"`
	DeliveryPrice     decimal.Decimal `json:"delivery_price"`
	CommissionAmount  decimal.Decimal `json:"admin_commission_amount"`
	MerchantAmount    decimal.Decimal `json:"merchant_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
}

// SplitPrice sums the meal prices and splits them into platform commission and
// merchant share. Commission is levied on meals only and is the single rounding
// step, so CommissionAmount+MerchantAmount == SubscriptionPrice exactly.
func SplitPrice(unitPrices []decimal.Decimal, deliveryPrice, commissionPercent decimal.Decimal) (PriceBreakdown, error) {
	if commissionPercent.IsNegative() || commissionPercent.GreaterThan(hundred) {
		return PriceBreakdown{}, fmt.Errorf("commission percent %s outside 0..100: %w", commissionPercent, domain.ErrInvalidPlanConfiguration)
	}
	if deliveryPrice.IsNegative() {
		return PriceBreakdown{}, fmt.Errorf("negative delivery price %s: %w", deliveryPrice, domain.ErrInvalidPlanConfiguration)
	}
	sum := decimal.Zero
	for i, p := range unitPrices {
		if p.IsNegative() {
			return PriceBreakdown{}, fmt.Errorf("negative meal price at %d: %w", i, domain.ErrInvalidArgument)
		}
		sum = sum.Add(p)
	}
	commission := sum.Mul(commissionPercent).Div(hundred).Round(2)
	return PriceBreakdown{
		SubscriptionPrice: sum,
		DeliveryPrice:     deliveryPrice,
		CommissionAmount:  commission,
		MerchantAmount:    sum.Sub(commission),
		TotalAmount:       sum.Add(deliveryPrice),
	}, nil
}

// Verify checks both summation invariants.
func (b PriceBreakdown) Verify() error {
	if !b.SubscriptionPrice.Add(b.DeliveryPrice).Equal(b.TotalAmount) {
		return fmt.Errorf("total %s != subscription %s + delivery %s: %w", b.TotalAmount, b.SubscriptionPrice, b.DeliveryPrice, domain.ErrPricingMismatch)
	}
	if !b.CommissionAmount.Add(b.MerchantAmount).Equal(b.SubscriptionPrice) {
		return fmt.Errorf("commission %s + merchant %s != subscription %s: %w", b.CommissionAmount, b.MerchantAmount, b.SubscriptionPrice, domain.ErrPricingMismatch)
	}
	return nil
}

// Equal compares amounts numerically (12.0 equals 12.00).
func (b PriceBreakdown) Equal(o PriceBreakdown) bool {
	return b.SubscriptionPrice.Equal(o.SubscriptionPrice) &&
		b.DeliveryPrice.Equal(o.DeliveryPrice) &&
		b.CommissionAmount.Equal(o.CommissionAmount) &&
		b.MerchantAmount.Equal(o.MerchantAmount) &&
		b.TotalAmount.Equal(o.TotalAmount)
}
