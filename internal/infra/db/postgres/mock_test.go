//go:build !integration

package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"
	red "meal-subscriptions/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerPlanRepo mocks the database repository that the Plan decorator wraps.
type mockInnerPlanRepo struct {
	SaveFunc                func(ctx context.Context, tx repository.Tx, plan *model.SubscriptionPlan) error
	FindByIDFunc            func(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error)
	ListByRestaurantFunc    func(ctx context.Context, tx repository.Tx, restaurantID string) ([]*model.SubscriptionPlan, error)
	UpdateDeliveryPriceFunc func(ctx context.Context, tx repository.Tx, restaurantID string, price decimal.Decimal) ([]string, error)
}

var _ repository.SubscriptionPlanRepository = (*mockInnerPlanRepo)(nil)

func (m *mockInnerPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.SubscriptionPlan) error {
	return m.SaveFunc(ctx, tx, plan)
}
func (m *mockInnerPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerPlanRepo) ListByRestaurant(ctx context.Context, tx repository.Tx, restaurantID string) ([]*model.SubscriptionPlan, error) {
	return m.ListByRestaurantFunc(ctx, tx, restaurantID)
}
func (m *mockInnerPlanRepo) UpdateDeliveryPrice(ctx context.Context, tx repository.Tx, restaurantID string, price decimal.Decimal) ([]string, error) {
	return m.UpdateDeliveryPriceFunc(ctx, tx, restaurantID, price)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc   func(ctx context.Context, key string) (string, error)
	SetFunc   func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc   func(ctx context.Context, keys ...string) error
	PingFunc  func(ctx context.Context) error
	CloseFunc func() error
}

// Rate limiting and locking are not exercised by the plan cache.
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) { return 0, nil }
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) DelIfEquals(ctx context.Context, key, value string) (bool, error) {
	return true, nil
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Close() error                   { return m.CloseFunc() }
