package repository

import (
	"context"
	"time"

	"meal-subscriptions/internal/domain/model"
)

// SubscriptionRepository is the port for subscriptions. Soft-deleted rows are
// invisible to every finder.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	// FindByID locks the row (FOR UPDATE) when tx is a live transaction.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)

	// --- Statistics read-only methods ---
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
	// SumRevenue aggregates the stored pricing fields of non-cancelled subscriptions
	// created in [from, to). An empty restaurantID covers all restaurants.
	SumRevenue(ctx context.Context, tx Tx, restaurantID string, from, to time.Time) (*model.RevenueTotals, error)
}

// DeliveryItemRepository is the port for delivery items.
type DeliveryItemRepository interface {
	// SaveBatch inserts all items of one subscription.
	SaveBatch(ctx context.Context, tx Tx, items []*model.DeliveryItem) error
	// UpdateStatus persists the status/updated_at of an existing item.
	UpdateStatus(ctx context.Context, tx Tx, item *model.DeliveryItem) error
	// FindByID locks the row (FOR UPDATE) when tx is a live transaction.
	FindByID(ctx context.Context, tx Tx, subscriptionID, itemID string) (*model.DeliveryItem, error)
	// ListBySubscription returns items ordered by delivery date.
	ListBySubscription(ctx context.Context, tx Tx, subscriptionID string) ([]*model.DeliveryItem, error)
	DeleteBySubscription(ctx context.Context, tx Tx, subscriptionID string) error
}
