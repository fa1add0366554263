package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCompleted SubscriptionStatus = "completed"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

var AllSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusPending,
	SubscriptionStatusActive,
	SubscriptionStatusCompleted,
	SubscriptionStatusCancelled,
}

var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionStatusPending:   {SubscriptionStatusActive, SubscriptionStatusCancelled},
	SubscriptionStatusActive:    {SubscriptionStatusCompleted, SubscriptionStatusCancelled},
	SubscriptionStatusCompleted: {},
	SubscriptionStatusCancelled: {},
}

func (s SubscriptionStatus) Valid() bool {
	_, ok := subscriptionTransitions[s]
	return ok
}

func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCompleted || s == SubscriptionStatusCancelled
}

// CanTransitionTo never auto-completes: completed is only reached from active on request.
func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	for _, allowed := range subscriptionTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Subscription is one customer's recurring meal plan with its stamped price split.
type Subscription struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	RestaurantID      string             `json:"restaurant_id"`
	PlanID            string             `json:"plan_id"`
	StartDate         time.Time          `json:"start_date"`
	SelectedWeekdays  WeekdaySet         `json:"selected_weekdays"`
	Status            SubscriptionStatus `json:"status"`
	TotalAmount       decimal.Decimal    `json:"total_amount"`
	SubscriptionPrice decimal.Decimal    `json:"subscription_price"`
	DeliveryPrice     decimal.Decimal    `json:"delivery_price"`
	CommissionAmount  decimal.Decimal    `json:"admin_commission_amount"`
	MerchantAmount    decimal.Decimal    `json:"merchant_amount"`
	CommissionPercent decimal.Decimal    `json:"commission_percent"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	DeletedAt         *time.Time         `json:"deleted_at,omitempty"`
}

// ApplyPricing stamps the breakdown and the commission rate it was computed with.
func (s *Subscription) ApplyPricing(b PriceBreakdown, commissionPercent decimal.Decimal) {
	s.SubscriptionPrice = b.SubscriptionPrice
	s.DeliveryPrice = b.DeliveryPrice
	s.CommissionAmount = b.CommissionAmount
	s.MerchantAmount = b.MerchantAmount
	s.TotalAmount = b.TotalAmount
	s.CommissionPercent = commissionPercent
}

// Pricing returns the stored breakdown.
func (s *Subscription) Pricing() PriceBreakdown {
	return PriceBreakdown{
		SubscriptionPrice: s.SubscriptionPrice,
		DeliveryPrice:     s.DeliveryPrice,
		CommissionAmount:  s.CommissionAmount,
		MerchantAmount:    s.MerchantAmount,
		TotalAmount:       s.TotalAmount,
	}
}

// TransitionTo moves the subscription to target or returns ErrInvalidStatusTransition.
func (s *Subscription) TransitionTo(target SubscriptionStatus, at time.Time) error {
	if s.Status.IsTerminal() {
		return fmt.Errorf("subscription %s is %s and final: %w", s.ID, s.Status, domain.ErrInvalidStatusTransition)
	}
	if !s.Status.CanTransitionTo(target) {
		return fmt.Errorf("subscription %s: %s -> %s: %w", s.ID, s.Status, target, domain.ErrInvalidStatusTransition)
	}
	s.Status = target
	s.UpdatedAt = at
	return nil
}

// CanDelete is true only for pending and cancelled subscriptions.
func (s *Subscription) CanDelete() bool {
	return s.Status == SubscriptionStatusPending || s.Status == SubscriptionStatusCancelled
}

// MarkDeleted soft-deletes the subscription.
func (s *Subscription) MarkDeleted(at time.Time) error {
	if !s.CanDelete() {
		return fmt.Errorf("subscription %s is %s: %w", s.ID, s.Status, domain.ErrSubscriptionNotDeletable)
	}
	s.DeletedAt = &at
	s.UpdatedAt = at
	return nil
}
