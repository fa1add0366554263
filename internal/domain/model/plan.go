package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain"
)

type PlanCadence string

const (
	CadenceWeekly  PlanCadence = "weekly"
	CadenceMonthly PlanCadence = "monthly"
)

// MaxMealCount bounds the deliveries of one subscription to a year of daily meals.
const MaxMealCount = 366

func (c PlanCadence) Valid() bool { return c == CadenceWeekly || c == CadenceMonthly }

// SubscriptionPlan is a catalog entry. The cadence is informational; the number
// of deliveries is driven by MealCount alone.
type SubscriptionPlan struct {
	ID                string          `json:"id"`
	RestaurantID      string          `json:"restaurant_id"`
	Name              string          `json:"name"`
	Cadence           PlanCadence     `json:"cadence"`
	MealCount         int             `json:"meal_count"`
	DeliveryPrice     decimal.Decimal `json:"delivery_price"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (p *SubscriptionPlan) IsZero() bool { return p == nil || p.ID == "" }

// Validate reports ErrInvalidPlanConfiguration for an unusable plan.
func (p *SubscriptionPlan) Validate() error {
	if p.IsZero() || p.RestaurantID == "" || !p.Cadence.Valid() || p.MealCount <= 0 || p.MealCount > MaxMealCount ||
		p.DeliveryPrice.IsNegative() || p.CommissionPercent.IsNegative() || p.CommissionPercent.GreaterThan(hundred) {
		return domain.ErrInvalidPlanConfiguration
	}
	return nil
}

// NewSubscriptionPlan validates and constructs a plan. An empty id gets a fresh UUID.
func NewSubscriptionPlan(id, restaurantID, name string, cadence PlanCadence, mealCount int, deliveryPrice, commissionPercent decimal.Decimal) (*SubscriptionPlan, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	p := &SubscriptionPlan{
		ID:                id,
		RestaurantID:      restaurantID,
		Name:              name,
		Cadence:           cadence,
		MealCount:         mealCount,
		DeliveryPrice:     deliveryPrice,
		CommissionPercent: commissionPercent,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
