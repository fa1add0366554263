// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"
	"meal-subscriptions/internal/infra/logging"
	"meal-subscriptions/internal/infra/metrics"
)

// ScheduleInput is what a customer chooses: when to start, which weekdays and
// which meal on each of them.
type ScheduleInput struct {
	StartDate time.Time
	Weekdays  model.WeekdaySet
	Meals     model.MealSelection
}

type CreateSubscriptionInput struct {
	RestaurantID string
	PlanID       string
	ScheduleInput
}

// SubscriptionDetails is a subscription with its delivery items in date order.
type SubscriptionDetails struct {
	Subscription *model.Subscription   `json:"subscription"`
	Items        []*model.DeliveryItem `json:"items"`
}

// PricingAudit compares the stamped breakdown with one recomputed from stored item prices.
type PricingAudit struct {
	SubscriptionID string               `json:"subscription_id"`
	Stored         model.PriceBreakdown `json:"stored"`
	Recomputed     model.PriceBreakdown `json:"recomputed"`
	Match          bool                 `json:"match"`
}

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	Create(ctx context.Context, userID string, in CreateSubscriptionInput) (*SubscriptionDetails, error)
	Get(ctx context.Context, id string) (*SubscriptionDetails, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Subscription, error)
	UpdateStatus(ctx context.Context, id string, status model.SubscriptionStatus) (*model.Subscription, error)
	Delete(ctx context.Context, id string) error
	Regenerate(ctx context.Context, id string, in ScheduleInput) (*SubscriptionDetails, error)
	UpdateItemStatus(ctx context.Context, subscriptionID, itemID string, status model.ItemStatus) (*model.DeliveryItem, error)
	UpdateItemsStatus(ctx context.Context, subscriptionID string, itemIDs []string, status model.ItemStatus) ([]*model.DeliveryItem, error)
	// AuditPricing returns the audit together with a wrapped ErrPricingMismatch when
	// the stamped fields disagree with the recomputed split.
	AuditPricing(ctx context.Context, id string) (*PricingAudit, error)
}

type subscriptionUC struct {
	plans PlanCatalog
	meals repository.MealRepository
	subs  repository.SubscriptionRepository
	items repository.DeliveryItemRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger

	now func() time.Time
}

func NewSubscriptionUseCase(
	plans PlanCatalog,
	meals repository.MealRepository,
	subs repository.SubscriptionRepository,
	items repository.DeliveryItemRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *subscriptionUC {
	return &subscriptionUC{
		plans: plans,
		meals: meals,
		subs:  subs,
		items: items,
		tm:    tm,
		log:   logger,
		now:   time.Now,
	}
}

func (u *subscriptionUC) Create(ctx context.Context, userID string, in CreateSubscriptionInput) (*SubscriptionDetails, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUseCase.Create")()

	ve := domain.NewValidationError()
	if userID == "" {
		ve.Add("user_id", "is required")
	}
	if in.RestaurantID == "" {
		ve.Add("restaurant_id", "is required")
	}
	if in.PlanID == "" {
		ve.Add("plan_id", "is required")
	}
	if in.StartDate.IsZero() {
		ve.Add("start_date", "is required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	plan, err := u.plans.Get(ctx, in.PlanID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			ve.Add("plan_id", "unknown plan")
			return nil, ve
		}
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if plan.RestaurantID != in.RestaurantID {
		return nil, fmt.Errorf("plan %s is not offered by restaurant %s: %w", plan.ID, in.RestaurantID, domain.ErrInvalidPlanConfiguration)
	}

	now := u.now()
	sub := &model.Subscription{
		ID:           uuid.NewString(),
		UserID:       userID,
		RestaurantID: in.RestaurantID,
		PlanID:       plan.ID,
		Status:       model.SubscriptionStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	items, err := u.schedule(ctx, sub, plan, in.ScheduleInput, now)
	if err != nil {
		return nil, err
	}

	// subscription and items commit together or not at all
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.subs.Save(ctx, tx, sub); err != nil {
			return fmt.Errorf("save subscription: %w", err)
		}
		if err := u.items.SaveBatch(ctx, tx, items); err != nil {
			return fmt.Errorf("save delivery items: %w", err)
		}
		return nil
	})
	if err != nil {
		logging.With(ctx, u.log).Error().Err(err).Str("plan_id", plan.ID).Msg("create subscription failed")
		return nil, err
	}

	metrics.IncSubscriptionCreated(plan.Cadence, len(items))
	logging.With(logging.WithSubscriptionID(ctx, sub.ID), u.log).Info().
		Str("plan_id", plan.ID).
		Int("items", len(items)).
		Str("total_amount", sub.TotalAmount.StringFixed(2)).
		Msg("subscription created")
	return &SubscriptionDetails{Subscription: sub, Items: items}, nil
}

// schedule expands the calendar, binds meals and stamps the price split on sub.
// It performs reads only.
func (u *subscriptionUC) schedule(ctx context.Context, sub *model.Subscription, plan *model.SubscriptionPlan, in ScheduleInput, now time.Time) ([]*model.DeliveryItem, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", plan.ID, err)
	}
	start := model.DateOnly(in.StartDate)
	dates, err := model.ExpandDeliveryDates(start, in.Weekdays, plan.MealCount)
	if err != nil {
		return nil, err
	}

	meals, err := u.meals.FindByIDs(ctx, repository.NoTX, in.Meals.MealIDs())
	if err != nil {
		return nil, fmt.Errorf("load meals: %w", err)
	}
	items, err := model.MaterializeItems(sub.ID, dates, in.Meals, meals, plan, sub.RestaurantID, now)
	if err != nil {
		return nil, err
	}

	breakdown, err := model.SplitPrice(model.UnitPrices(items), plan.DeliveryPrice, plan.CommissionPercent)
	if err != nil {
		return nil, err
	}
	if err := breakdown.Verify(); err != nil {
		return nil, err
	}

	sub.StartDate = start
	sub.SelectedWeekdays = in.Weekdays
	sub.ApplyPricing(breakdown, plan.CommissionPercent)
	return items, nil
}

func (u *subscriptionUC) Get(ctx context.Context, id string) (*SubscriptionDetails, error) {
	sub, err := u.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	items, err := u.items.ListBySubscription(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	return &SubscriptionDetails{Subscription: sub, Items: items}, nil
}

func (u *subscriptionUC) ListByUser(ctx context.Context, userID string) ([]*model.Subscription, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.subs.ListByUser(ctx, repository.NoTX, userID)
}

func (u *subscriptionUC) UpdateStatus(ctx context.Context, id string, status model.SubscriptionStatus) (*model.Subscription, error) {
	if !status.Valid() {
		ve := domain.NewValidationError()
		ve.Add("status", "must be one of pending, active, completed, cancelled")
		return nil, ve
	}

	var sub *model.Subscription
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if sub, err = u.subs.FindByID(ctx, tx, id); err != nil {
			return err
		}
		if err := sub.TransitionTo(status, u.now()); err != nil {
			return err
		}
		return u.subs.Save(ctx, tx, sub)
	})
	metrics.IncSubscriptionTransition(status, err == nil)
	if err != nil {
		return nil, err
	}

	logging.With(logging.WithSubscriptionID(ctx, id), u.log).Info().Str("status", string(status)).Msg("subscription status changed")
	return sub, nil
}

// Delete soft-deletes the subscription; its items are kept.
func (u *subscriptionUC) Delete(ctx context.Context, id string) error {
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := u.subs.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := sub.MarkDeleted(u.now()); err != nil {
			return err
		}
		return u.subs.Save(ctx, tx, sub)
	})
	if err != nil {
		return err
	}
	logging.With(logging.WithSubscriptionID(ctx, id), u.log).Info().Msg("subscription deleted")
	return nil
}

// Regenerate replaces the schedule, items and price split of a pending subscription.
func (u *subscriptionUC) Regenerate(ctx context.Context, id string, in ScheduleInput) (*SubscriptionDetails, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUseCase.Regenerate")()
	if in.StartDate.IsZero() {
		ve := domain.NewValidationError()
		ve.Add("start_date", "is required")
		return nil, ve
	}

	var (
		sub   *model.Subscription
		items []*model.DeliveryItem
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if sub, err = u.subs.FindByID(ctx, tx, id); err != nil {
			return err
		}
		if sub.Status != model.SubscriptionStatusPending {
			return fmt.Errorf("regenerate subscription %s in status %s: %w", sub.ID, sub.Status, domain.ErrInvalidStatusTransition)
		}
		plan, err := u.plans.Get(ctx, sub.PlanID)
		if err != nil {
			return fmt.Errorf("load plan: %w", err)
		}

		now := u.now()
		if items, err = u.schedule(ctx, sub, plan, in, now); err != nil {
			return err
		}
		sub.UpdatedAt = now

		if err := u.items.DeleteBySubscription(ctx, tx, sub.ID); err != nil {
			return fmt.Errorf("drop delivery items: %w", err)
		}
		if err := u.items.SaveBatch(ctx, tx, items); err != nil {
			return fmt.Errorf("save delivery items: %w", err)
		}
		return u.subs.Save(ctx, tx, sub)
	})
	if err != nil {
		return nil, err
	}

	logging.With(logging.WithSubscriptionID(ctx, id), u.log).Info().Int("items", len(items)).Msg("subscription regenerated")
	return &SubscriptionDetails{Subscription: sub, Items: items}, nil
}

// UpdateItemStatus moves one item. Sibling items and the subscription status are untouched.
func (u *subscriptionUC) UpdateItemStatus(ctx context.Context, subscriptionID, itemID string, status model.ItemStatus) (*model.DeliveryItem, error) {
	items, err := u.UpdateItemsStatus(ctx, subscriptionID, []string{itemID}, status)
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// UpdateItemsStatus applies status to every listed item in one transaction.
// One rejected transition leaves all of them unchanged.
func (u *subscriptionUC) UpdateItemsStatus(ctx context.Context, subscriptionID string, itemIDs []string, status model.ItemStatus) ([]*model.DeliveryItem, error) {
	ve := domain.NewValidationError()
	if !status.Valid() {
		ve.Add("status", "must be one of pending, preparing, delivered, cancelled")
	}
	ids := dedupe(itemIDs)
	if len(ids) == 0 {
		ve.Add("item_ids", "is required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	updated := make([]*model.DeliveryItem, 0, len(ids))
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.subs.FindByID(ctx, tx, subscriptionID); err != nil {
			return err
		}
		now := u.now()
		for _, id := range ids {
			it, err := u.items.FindByID(ctx, tx, subscriptionID, id)
			if err != nil {
				return fmt.Errorf("item %s: %w", id, err)
			}
			if err := it.TransitionTo(status, now); err != nil {
				return err
			}
			updated = append(updated, it)
		}
		for _, it := range updated {
			if err := u.items.UpdateStatus(ctx, tx, it); err != nil {
				return fmt.Errorf("item %s: %w", it.ID, err)
			}
		}
		return nil
	})
	for range ids {
		metrics.IncItemTransition(status, err == nil)
	}
	if err != nil {
		return nil, err
	}

	logging.With(logging.WithSubscriptionID(ctx, subscriptionID), u.log).Info().
		Str("status", string(status)).
		Int("items", len(updated)).
		Msg("delivery items status changed")
	return updated, nil
}

func (u *subscriptionUC) AuditPricing(ctx context.Context, id string) (*PricingAudit, error) {
	sub, err := u.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	items, err := u.items.ListBySubscription(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	recomputed, err := model.SplitPrice(model.UnitPrices(items), sub.DeliveryPrice, sub.CommissionPercent)
	if err != nil {
		return nil, err
	}

	stored := sub.Pricing()
	audit := &PricingAudit{
		SubscriptionID: sub.ID,
		Stored:         stored,
		Recomputed:     recomputed,
		Match:          stored.Equal(recomputed) && stored.Verify() == nil,
	}
	if !audit.Match {
		logging.With(logging.WithSubscriptionID(ctx, id), u.log).Warn().Msg("stored pricing differs from recomputed split")
		return audit, fmt.Errorf("subscription %s: %w", id, domain.ErrPricingMismatch)
	}
	return audit, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
