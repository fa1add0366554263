package model

import (
	"github.com/shopspring/decimal"
)

// Meal is a read-only menu reference.
type Meal struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurant_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Active       bool            `json:"active"`
	PlanIDs      []string        `json:"plan_ids"`
}

// OfferedFor reports whether the meal can be bound to a delivery of plan at restaurantID.
func (m *Meal) OfferedFor(plan *SubscriptionPlan, restaurantID string) bool {
	if m == nil || plan == nil || !m.Active || m.RestaurantID != restaurantID {
		return false
	}
	for _, id := range m.PlanIDs {
		if id == plan.ID {
			return true
		}
	}
	return false
}
