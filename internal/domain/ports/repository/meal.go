package repository

import (
	"context"

	"meal-subscriptions/internal/domain/model"
)

// MealRepository is the read-only port to the menu.
type MealRepository interface {
	// FindByIDs returns the meals that exist, keyed by id. Missing ids are absent from the map.
	FindByIDs(ctx context.Context, tx Tx, ids []string) (map[string]*model.Meal, error)
	// Save is used by seeding and tests only.
	Save(ctx context.Context, tx Tx, meal *model.Meal) error
}
