package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueTotals sums the stored pricing fields; it is never re-derived from meal prices,
// so later commission changes do not alter past periods.
type RevenueTotals struct {
	Subscriptions     int             `json:"subscriptions"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	SubscriptionPrice decimal.Decimal `json:"subscription_price"`
	DeliveryPrice     decimal.Decimal `json:"delivery_price"`
	CommissionAmount  decimal.Decimal `json:"admin_commission_amount"`
	MerchantAmount    decimal.Decimal `json:"merchant_amount"`
}

type RevenueReport struct {
	RestaurantID string        `json:"restaurant_id,omitempty"`
	From         time.Time     `json:"from"`
	To           time.Time     `json:"to"`
	Totals       RevenueTotals `json:"totals"`
}
