package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain/model"
)

// SubscriptionPlanRepository is the port for plan persistence.
type SubscriptionPlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.SubscriptionPlan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.SubscriptionPlan, error)
	// ListByRestaurant returns all plans when restaurantID is empty.
	ListByRestaurant(ctx context.Context, tx Tx, restaurantID string) ([]*model.SubscriptionPlan, error)
	// UpdateDeliveryPrice sets the delivery price of every plan of a restaurant and
	// returns the ids of the updated plans.
	UpdateDeliveryPrice(ctx context.Context, tx Tx, restaurantID string, price decimal.Decimal) ([]string, error)
}

// PlanCacheInvalidator is implemented by plan repositories that cache reads.
// Callers writing inside a transaction invoke it again after commit, since a
// concurrent reader may have re-cached the pre-commit row.
type PlanCacheInvalidator interface {
	InvalidatePlans(ctx context.Context, restaurantID string, ids ...string)
}
