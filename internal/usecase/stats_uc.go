package usecase

import (
	"context"
	"fmt"
	"time"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error)
	// Revenue sums the stored price fields of subscriptions created in [from, to).
	Revenue(ctx context.Context, restaurantID string, from, to time.Time) (*model.RevenueReport, error)
}

type statsUC struct {
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
}

func NewStatsUseCase(subs repository.SubscriptionRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{subs: subs, log: logger}
}

func (s *statsUC) CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
	return s.subs.CountByStatus(ctx, repository.NoTX)
}

func (s *statsUC) Revenue(ctx context.Context, restaurantID string, from, to time.Time) (*model.RevenueReport, error) {
	if from.IsZero() || to.IsZero() || !from.Before(to) {
		ve := domain.NewValidationError()
		ve.Add("to", "must be after from")
		return nil, ve
	}
	totals, err := s.subs.SumRevenue(ctx, repository.NoTX, restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	return &model.RevenueReport{
		RestaurantID: restaurantID,
		From:         from,
		To:           to,
		Totals:       *totals,
	}, nil
}
