//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Mock SubscriptionPlanRepository ----

type MockPlanRepo struct {
	mu   sync.Mutex
	data map[string]*model.SubscriptionPlan

	SaveFunc                func(ctx context.Context, tx repository.Tx, p *model.SubscriptionPlan) error
	FindByIDFunc            func(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error)
	UpdateDeliveryPriceFunc func(ctx context.Context, tx repository.Tx, restaurantID string, price decimal.Decimal) ([]string, error)
}

var _ repository.SubscriptionPlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{data: map[string]*model.SubscriptionPlan{}}
}

func (r *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.SubscriptionPlan) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPlanRepo) ListByRestaurant(ctx context.Context, tx repository.Tx, restaurantID string) ([]*model.SubscriptionPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.SubscriptionPlan, 0, len(r.data))
	for _, p := range r.data {
		if restaurantID == "" || p.RestaurantID == restaurantID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MockPlanRepo) UpdateDeliveryPrice(ctx context.Context, tx repository.Tx, restaurantID string, price decimal.Decimal) ([]string, error) {
	if r.UpdateDeliveryPriceFunc != nil {
		return r.UpdateDeliveryPriceFunc(ctx, tx, restaurantID, price)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, p := range r.data {
		if p.RestaurantID == restaurantID {
			p.DeliveryPrice = price
			ids = append(ids, p.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ---- Mock MealRepository ----

type MockMealRepo struct {
	mu   sync.Mutex
	data map[string]*model.Meal
}

var _ repository.MealRepository = (*MockMealRepo)(nil)

func NewMockMealRepo(meals ...*model.Meal) *MockMealRepo {
	r := &MockMealRepo{data: map[string]*model.Meal{}}
	for _, m := range meals {
		r.data[m.ID] = m
	}
	return r
}

func (r *MockMealRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) (map[string]*model.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*model.Meal, len(ids))
	for _, id := range ids {
		if m, ok := r.data[id]; ok {
			cp := *m
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *MockMealRepo) Save(ctx context.Context, tx repository.Tx, m *model.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.data[m.ID] = &cp
	return nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	data map[string]*model.Subscription // by id

	SaveFunc          func(ctx context.Context, tx repository.Tx, s *model.Subscription) error
	CountByStatusFunc func(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error)
	SumRevenueFunc    func(ctx context.Context, tx repository.Tx, restaurantID string, from, to time.Time) (*model.RevenueTotals, error)
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{data: map[string]*model.Subscription{}}
}

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.data[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[id]
	if !ok || s.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Subscription
	for _, s := range r.data {
		if s.UserID == userID && s.DeletedAt == nil {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	if r.CountByStatusFunc != nil {
		return r.CountByStatusFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.SubscriptionStatus]int{}
	for _, s := range r.data {
		if s.DeletedAt == nil {
			out[s.Status]++
		}
	}
	return out, nil
}

func (r *MockSubscriptionRepo) SumRevenue(ctx context.Context, tx repository.Tx, restaurantID string, from, to time.Time) (*model.RevenueTotals, error) {
	if r.SumRevenueFunc != nil {
		return r.SumRevenueFunc(ctx, tx, restaurantID, from, to)
	}
	return &model.RevenueTotals{}, nil
}

// stored returns the persisted copy, including soft-deleted rows.
func (r *MockSubscriptionRepo) stored(id string) *model.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data[id]
}

// ---- Mock DeliveryItemRepository ----

type MockDeliveryItemRepo struct {
	mu   sync.Mutex
	data map[string][]*model.DeliveryItem // by subscription id

	SaveBatchFunc    func(ctx context.Context, tx repository.Tx, items []*model.DeliveryItem) error
	UpdateStatusFunc func(ctx context.Context, tx repository.Tx, it *model.DeliveryItem) error

	updates int
}

var _ repository.DeliveryItemRepository = (*MockDeliveryItemRepo)(nil)

func NewMockDeliveryItemRepo() *MockDeliveryItemRepo {
	return &MockDeliveryItemRepo{data: map[string][]*model.DeliveryItem{}}
}

func (r *MockDeliveryItemRepo) SaveBatch(ctx context.Context, tx repository.Tx, items []*model.DeliveryItem) error {
	if r.SaveBatchFunc != nil {
		return r.SaveBatchFunc(ctx, tx, items)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		cp := *it
		r.data[it.SubscriptionID] = append(r.data[it.SubscriptionID], &cp)
	}
	return nil
}

func (r *MockDeliveryItemRepo) UpdateStatus(ctx context.Context, tx repository.Tx, it *model.DeliveryItem) error {
	if r.UpdateStatusFunc != nil {
		return r.UpdateStatusFunc(ctx, tx, it)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.data[it.SubscriptionID] {
		if s.ID == it.ID {
			s.Status = it.Status
			s.UpdatedAt = it.UpdatedAt
			r.updates++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *MockDeliveryItemRepo) FindByID(ctx context.Context, tx repository.Tx, subscriptionID, itemID string) (*model.DeliveryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.data[subscriptionID] {
		if it.ID == itemID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockDeliveryItemRepo) ListBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.DeliveryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.DeliveryItem, 0, len(r.data[subscriptionID]))
	for _, it := range r.data[subscriptionID] {
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeliveryDate.Before(out[j].DeliveryDate) })
	return out, nil
}

func (r *MockDeliveryItemRepo) DeleteBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, subscriptionID)
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error

	mu         sync.Mutex
	Committed  int
	RolledBack int
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX and records the outcome.
// For specific transactional tests, assign a custom function to WithTxFunc.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	err := fn(ctx, repository.NoTX)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.RolledBack++
	} else {
		m.Committed++
	}
	return err
}
