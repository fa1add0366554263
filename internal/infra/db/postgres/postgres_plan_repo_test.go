//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
)

func newTestPlan(t *testing.T, id, restaurantID string, mealCount int) *model.SubscriptionPlan {
	t.Helper()
	p, err := model.NewSubscriptionPlan(id, restaurantID, "Plan "+id, model.CadenceWeekly, mealCount,
		decimal.RequireFromString("5.00"), decimal.RequireFromString("10"))
	if err != nil {
		t.Fatalf("NewSubscriptionPlan: %v", err)
	}
	return p
}

func TestPlanRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresPlanRepo(testPool)

	t.Run("Save and FindByID should work correctly", func(t *testing.T) {
		cleanup(t)
		plan := newTestPlan(t, "plan-weekly", "rest-1", 4)

		if err := repo.Save(ctx, nil, plan); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}

		found, err := repo.FindByID(ctx, nil, plan.ID)
		if err != nil {
			t.Fatalf("FindByID() failed: %v", err)
		}
		if found.Name != plan.Name || found.MealCount != 4 || found.Cadence != model.CadenceWeekly {
			t.Errorf("unexpected plan: %+v", found)
		}
		if !found.DeliveryPrice.Equal(plan.DeliveryPrice) || !found.CommissionPercent.Equal(plan.CommissionPercent) {
			t.Errorf("expected prices %s/%s, got %s/%s", plan.DeliveryPrice, plan.CommissionPercent, found.DeliveryPrice, found.CommissionPercent)
		}
	})

	t.Run("Save should upsert an existing plan", func(t *testing.T) {
		cleanup(t)
		plan := newTestPlan(t, "plan-weekly", "rest-1", 4)
		if err := repo.Save(ctx, nil, plan); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
		plan.MealCount = 8
		plan.Name = "Weekly Eight"
		if err := repo.Save(ctx, nil, plan); err != nil {
			t.Fatalf("second Save() failed: %v", err)
		}
		found, err := repo.FindByID(ctx, nil, plan.ID)
		if err != nil {
			t.Fatalf("FindByID() failed: %v", err)
		}
		if found.MealCount != 8 || found.Name != "Weekly Eight" {
			t.Errorf("upsert not applied: %+v", found)
		}
	})

	t.Run("FindByID returns ErrNotFound for a missing plan", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListByRestaurant filters by restaurant", func(t *testing.T) {
		cleanup(t)
		for _, p := range []*model.SubscriptionPlan{
			newTestPlan(t, "b", "rest-1", 8),
			newTestPlan(t, "a", "rest-1", 4),
			newTestPlan(t, "c", "rest-2", 4),
		} {
			if err := repo.Save(ctx, nil, p); err != nil {
				t.Fatalf("Save(%s) failed: %v", p.ID, err)
			}
		}

		plans, err := repo.ListByRestaurant(ctx, nil, "rest-1")
		if err != nil {
			t.Fatalf("ListByRestaurant() failed: %v", err)
		}
		if len(plans) != 2 || plans[0].ID != "a" || plans[1].ID != "b" {
			t.Errorf("expected [a b] ordered by meal count, got %v", planIDs(plans))
		}

		all, err := repo.ListByRestaurant(ctx, nil, "")
		if err != nil {
			t.Fatalf("ListByRestaurant(all) failed: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 plans, got %d", len(all))
		}
	})

	t.Run("UpdateDeliveryPrice touches only the restaurant's plans", func(t *testing.T) {
		cleanup(t)
		for _, p := range []*model.SubscriptionPlan{
			newTestPlan(t, "a", "rest-1", 4),
			newTestPlan(t, "b", "rest-1", 8),
			newTestPlan(t, "c", "rest-2", 4),
		} {
			if err := repo.Save(ctx, nil, p); err != nil {
				t.Fatalf("Save(%s) failed: %v", p.ID, err)
			}
		}

		price := decimal.RequireFromString("7.25")
		ids, err := repo.UpdateDeliveryPrice(ctx, nil, "rest-1", price)
		if err != nil {
			t.Fatalf("UpdateDeliveryPrice() failed: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("expected 2 updated plans, got %v", ids)
		}

		a, _ := repo.FindByID(ctx, nil, "a")
		c, _ := repo.FindByID(ctx, nil, "c")
		if !a.DeliveryPrice.Equal(price) {
			t.Errorf("plan a: expected %s, got %s", price, a.DeliveryPrice)
		}
		if !c.DeliveryPrice.Equal(decimal.RequireFromString("5")) {
			t.Errorf("plan c should be untouched, got %s", c.DeliveryPrice)
		}
	})

	t.Run("UpdateDeliveryPrice returns no ids for an unknown restaurant", func(t *testing.T) {
		cleanup(t)
		ids, err := repo.UpdateDeliveryPrice(ctx, nil, "ghost", decimal.RequireFromString("1"))
		if err != nil {
			t.Fatalf("UpdateDeliveryPrice() failed: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("expected no ids, got %v", ids)
		}
	})
}

func TestMealRepository(t *testing.T) {
	ctx := context.Background()
	plans := NewPostgresPlanRepo(testPool)
	meals := NewPostgresMealRepo(testPool)

	cleanup(t)
	for _, p := range []*model.SubscriptionPlan{newTestPlan(t, "p1", "rest-1", 4), newTestPlan(t, "p2", "rest-1", 8)} {
		if err := plans.Save(ctx, nil, p); err != nil {
			t.Fatalf("Save plan: %v", err)
		}
	}
	m := &model.Meal{ID: "meal-a", RestaurantID: "rest-1", Name: "Bowl", Price: decimal.RequireFromString("12.00"), Active: true, PlanIDs: []string{"p1", "p2"}}
	if err := meals.Save(ctx, nil, m); err != nil {
		t.Fatalf("Save meal: %v", err)
	}
	lonely := &model.Meal{ID: "meal-b", RestaurantID: "rest-1", Name: "Soup", Price: decimal.RequireFromString("9.50"), Active: false}
	if err := meals.Save(ctx, nil, lonely); err != nil {
		t.Fatalf("Save meal: %v", err)
	}

	got, err := meals.FindByIDs(ctx, nil, []string{"meal-a", "meal-b", "missing"})
	if err != nil {
		t.Fatalf("FindByIDs() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(got))
	}
	if _, ok := got["missing"]; ok {
		t.Error("missing ids must be absent from the result")
	}
	if a := got["meal-a"]; len(a.PlanIDs) != 2 || !a.Price.Equal(m.Price) || !a.Active {
		t.Errorf("unexpected meal-a: %+v", a)
	}
	if b := got["meal-b"]; len(b.PlanIDs) != 0 || b.Active {
		t.Errorf("unexpected meal-b: %+v", b)
	}

	// Re-saving replaces the plan links.
	m.PlanIDs = []string{"p2"}
	if err := meals.Save(ctx, nil, m); err != nil {
		t.Fatalf("re-Save meal: %v", err)
	}
	got, _ = meals.FindByIDs(ctx, nil, []string{"meal-a"})
	if ids := got["meal-a"].PlanIDs; len(ids) != 1 || ids[0] != "p2" {
		t.Errorf("expected plan links [p2], got %v", ids)
	}

	empty, err := meals.FindByIDs(ctx, nil, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty result for no ids, got %v %v", empty, err)
	}
}

func planIDs(plans []*model.SubscriptionPlan) []string {
	out := make([]string, len(plans))
	for i, p := range plans {
		out[i] = p.ID
	}
	return out
}
