package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"
	"meal-subscriptions/internal/infra/metrics"
	red "meal-subscriptions/internal/infra/redis"
)

var (
	_ repository.SubscriptionPlanRepository = (*planRepoCacheDecorator)(nil)
	_ repository.PlanCacheInvalidator       = (*planRepoCacheDecorator)(nil)
)

type planRepoCacheDecorator struct {
	inner repository.SubscriptionPlanRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

// NewPlanRepoCacheDecorator caches plan reads made outside a transaction.
// Reads inside a transaction always go to the inner repository.
func NewPlanRepoCacheDecorator(inner repository.SubscriptionPlanRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.SubscriptionPlanRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &planRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func planKey(id string) string { return fmt.Sprintf("plan:%s", id) }

func planListKey(restaurantID string) string {
	if restaurantID == "" {
		return "plans:all"
	}
	return fmt.Sprintf("plans:restaurant:%s", restaurantID)
}

func (d *planRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := planKey(id)
	var cached model.SubscriptionPlan
	if d.read(ctx, key, &cached) {
		metrics.IncPlanCacheLookup(metrics.CachePlan, true)
		return &cached, nil
	}

	metrics.IncPlanCacheLookup(metrics.CachePlan, false)
	plan, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	d.write(ctx, key, plan)
	return plan, nil
}

func (d *planRepoCacheDecorator) ListByRestaurant(ctx context.Context, tx repository.Tx, restaurantID string) ([]*model.SubscriptionPlan, error) {
	if tx != nil {
		return d.inner.ListByRestaurant(ctx, tx, restaurantID)
	}
	key := planListKey(restaurantID)
	var cached []*model.SubscriptionPlan
	if d.read(ctx, key, &cached) {
		metrics.IncPlanCacheLookup(metrics.CachePlanList, true)
		return cached, nil
	}

	metrics.IncPlanCacheLookup(metrics.CachePlanList, false)
	plans, err := d.inner.ListByRestaurant(ctx, tx, restaurantID)
	if err != nil {
		return nil, err
	}
	if len(plans) > 0 {
		d.write(ctx, key, plans)
	}
	return plans, nil
}

// For write operations, we must invalidate the cache.
func (d *planRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, plan *model.SubscriptionPlan) error {
	if err := d.inner.Save(ctx, tx, plan); err != nil {
		return err
	}
	d.InvalidatePlans(ctx, plan.RestaurantID, plan.ID)
	return nil
}

func (d *planRepoCacheDecorator) UpdateDeliveryPrice(ctx context.Context, tx repository.Tx, restaurantID string, price decimal.Decimal) ([]string, error) {
	ids, err := d.inner.UpdateDeliveryPrice(ctx, tx, restaurantID, price)
	if err != nil {
		return nil, err
	}
	// Under a transaction the caller must invalidate again once it commits.
	d.InvalidatePlans(ctx, restaurantID, ids...)
	return ids, nil
}

func (d *planRepoCacheDecorator) InvalidatePlans(ctx context.Context, restaurantID string, ids ...string) {
	keys := []string{planListKey(""), planListKey(restaurantID)}
	for _, id := range ids {
		keys = append(keys, planKey(id))
	}
	if err := d.cache.Del(ctx, keys...); err != nil {
		d.log.Warn().Err(err).Strs("keys", keys).Msg("plan cache invalidation failed")
	}
}

func (d *planRepoCacheDecorator) read(ctx context.Context, key string, dst interface{}) bool {
	val, err := d.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			d.log.Warn().Err(err).Str("key", key).Msg("plan cache read failed")
		}
		return false
	}
	return json.Unmarshal([]byte(val), dst) == nil
}

func (d *planRepoCacheDecorator) write(ctx context.Context, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, key, b, d.ttl); err != nil {
		d.log.Warn().Err(err).Str("key", key).Msg("plan cache write failed")
	}
}
