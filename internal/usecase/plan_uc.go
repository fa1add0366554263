// File: internal/usecase/plan_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"
	"meal-subscriptions/internal/infra/logging"
)

// PlanCatalog is the read side of the plan catalog consumed by the subscription flow.
type PlanCatalog interface {
	Get(ctx context.Context, id string) (*model.SubscriptionPlan, error)
	// List returns every plan when restaurantID is empty.
	List(ctx context.Context, restaurantID string) ([]*model.SubscriptionPlan, error)
}

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	PlanCatalog
	Save(ctx context.Context, plan *model.SubscriptionPlan) error
	// UpdateDeliveryPrice sets one delivery price on every plan of a restaurant.
	// Stamped subscriptions keep the price they were created with.
	UpdateDeliveryPrice(ctx context.Context, restaurantID string, price decimal.Decimal) ([]string, error)
}

type planUC struct {
	repo repository.SubscriptionPlanRepository
	tm   repository.TransactionManager
	log  *zerolog.Logger
}

func NewPlanUseCase(repo repository.SubscriptionPlanRepository, tm repository.TransactionManager, logger *zerolog.Logger) *planUC {
	return &planUC{repo: repo, tm: tm, log: logger}
}

func (p *planUC) Get(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return p.repo.FindByID(ctx, repository.NoTX, id)
}

func (p *planUC) List(ctx context.Context, restaurantID string) ([]*model.SubscriptionPlan, error) {
	return p.repo.ListByRestaurant(ctx, repository.NoTX, restaurantID)
}

func (p *planUC) Save(ctx context.Context, plan *model.SubscriptionPlan) error {
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("plan %q: %w", plan.Name, err)
	}
	return p.repo.Save(ctx, repository.NoTX, plan)
}

func (p *planUC) UpdateDeliveryPrice(ctx context.Context, restaurantID string, price decimal.Decimal) ([]string, error) {
	defer logging.TraceDuration(p.log, "PlanUseCase.UpdateDeliveryPrice")()
	if restaurantID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("delivery price %s: %w", price, domain.ErrInvalidPlanConfiguration)
	}
	price = price.Round(2)

	var ids []string
	err := p.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		ids, err = p.repo.UpdateDeliveryPrice(ctx, tx, restaurantID, price)
		return err
	})
	if err != nil {
		logging.With(ctx, p.log).Error().Err(err).Str("restaurant_id", restaurantID).Msg("update delivery price failed")
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("restaurant %s has no plans: %w", restaurantID, domain.ErrNotFound)
	}
	if inv, ok := p.repo.(repository.PlanCacheInvalidator); ok {
		inv.InvalidatePlans(ctx, restaurantID, ids...)
	}
	logging.With(ctx, p.log).Info().Str("restaurant_id", restaurantID).Str("delivery_price", price.StringFixed(2)).Int("plans", len(ids)).Msg("delivery price updated")
	return ids, nil
}
