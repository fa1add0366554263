package model

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain"
)

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusPreparing ItemStatus = "preparing"
	ItemStatusDelivered ItemStatus = "delivered"
	ItemStatusCancelled ItemStatus = "cancelled"
)

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusPending:   {ItemStatusPreparing, ItemStatusCancelled},
	ItemStatusPreparing: {ItemStatusDelivered, ItemStatusCancelled},
	ItemStatusDelivered: {},
	ItemStatusCancelled: {},
}

func (s ItemStatus) Valid() bool {
	_, ok := itemTransitions[s]
	return ok
}

func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusDelivered || s == ItemStatusCancelled
}

func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	for _, allowed := range itemTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// DeliveryItem is one dated, single-meal obligation of a subscription.
type DeliveryItem struct {
	ID             string          `json:"id"`
	SubscriptionID string          `json:"subscription_id"`
	DeliveryDate   time.Time       `json:"delivery_date"`
	MealID         string          `json:"meal_id"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Status         ItemStatus      `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TransitionTo changes only this item; siblings are never touched.
func (it *DeliveryItem) TransitionTo(target ItemStatus, at time.Time) error {
	if it.Status.IsTerminal() {
		return fmt.Errorf("item %s is %s and final: %w", it.ID, it.Status, domain.ErrInvalidStatusTransition)
	}
	if !it.Status.CanTransitionTo(target) {
		return fmt.Errorf("item %s: %s -> %s: %w", it.ID, it.Status, target, domain.ErrInvalidStatusTransition)
	}
	it.Status = target
	it.UpdatedAt = at
	return nil
}

// MealSelection maps weekdays to meal ids. Default serves plans without a per-day choice
// and any weekday not present in ByWeekday.
type MealSelection struct {
	ByWeekday map[Weekday]string
	Default   string
}

// MealFor resolves the meal chosen for the weekday of date.
func (s MealSelection) MealFor(date time.Time) (string, bool) {
	if id, ok := s.ByWeekday[WeekdayOf(date)]; ok && id != "" {
		return id, true
	}
	if s.Default != "" {
		return s.Default, true
	}
	return "", false
}

// MealIDs lists every distinct meal id referenced by the selection.
func (s MealSelection) MealIDs() []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, d := range AllWeekdays {
		add(s.ByWeekday[d])
	}
	add(s.Default)
	return out
}

// MaterializeItems binds every date to the selected meal and builds pending items.
// It fails on the first date without a selection or with a meal that is not on
// offer for plan at restaurantID; no partial result is returned.
func MaterializeItems(subscriptionID string, dates []time.Time, sel MealSelection, meals map[string]*Meal, plan *SubscriptionPlan, restaurantID string, now time.Time) ([]*DeliveryItem, error) {
	if plan == nil {
		return nil, fmt.Errorf("no plan to materialize against: %w", domain.ErrInvalidPlanConfiguration)
	}
	items := make([]*DeliveryItem, 0, len(dates))
	for _, d := range dates {
		mealID, ok := sel.MealFor(d)
		if !ok {
			return nil, fmt.Errorf("%s (%s): %w", d.Format(time.DateOnly), WeekdayOf(d), domain.ErrMissingMealSelection)
		}
		meal := meals[mealID]
		if !meal.OfferedFor(plan, restaurantID) {
			return nil, fmt.Errorf("meal %s for plan %s: %w", mealID, plan.ID, domain.ErrMealNotOffered)
		}
		items = append(items, &DeliveryItem{
			ID:             ulid.Make().String(),
			SubscriptionID: subscriptionID,
			DeliveryDate:   d,
			MealID:         meal.ID,
			UnitPrice:      meal.Price,
			Status:         ItemStatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return items, nil
}

// UnitPrices collects the price snapshot of items in delivery order.
func UnitPrices(items []*DeliveryItem) []decimal.Decimal {
	out := make([]decimal.Decimal, len(items))
	for i, it := range items {
		out[i] = it.UnitPrice
	}
	return out
}
