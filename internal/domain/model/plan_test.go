//go:build !integration

package model

import (
	"errors"
	"testing"

	"meal-subscriptions/internal/domain"
)

func TestSubscriptionPlan_Validate(t *testing.T) {
	base := func() *SubscriptionPlan {
		return &SubscriptionPlan{ID: "p1", RestaurantID: "rest-1", Cadence: CadenceWeekly, MealCount: 5, DeliveryPrice: d("3.00"), CommissionPercent: d("10")}
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("expected a valid plan, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(p *SubscriptionPlan)
	}{
		{"zero meals", func(p *SubscriptionPlan) { p.MealCount = 0 }},
		{"above the meal cap", func(p *SubscriptionPlan) { p.MealCount = MaxMealCount + 1 }},
		{"unknown cadence", func(p *SubscriptionPlan) { p.Cadence = "daily" }},
		{"negative delivery", func(p *SubscriptionPlan) { p.DeliveryPrice = d("-1") }},
		{"commission over 100", func(p *SubscriptionPlan) { p.CommissionPercent = d("100.01") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := base()
			tc.mutate(p)
			if err := p.Validate(); !errors.Is(err, domain.ErrInvalidPlanConfiguration) {
				t.Errorf("expected ErrInvalidPlanConfiguration, got %v", err)
			}
		})
	}

	p := base()
	p.MealCount = MaxMealCount
	if err := p.Validate(); err != nil {
		t.Errorf("the cap itself is valid, got %v", err)
	}
}
