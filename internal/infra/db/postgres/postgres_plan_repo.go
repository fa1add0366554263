package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.SubscriptionPlanRepository = (*PostgresPlanRepo)(nil)

type PostgresPlanRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPlanRepo(pool *pgxpool.Pool) *PostgresPlanRepo {
	return &PostgresPlanRepo{pool: pool}
}

const planColumns = `id, restaurant_id, name, cadence, meal_count, delivery_price, commission_percent, created_at, updated_at`

func (r *PostgresPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.SubscriptionPlan) error {
	const q = `
INSERT INTO subscription_plans (` + planColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE
  SET restaurant_id      = EXCLUDED.restaurant_id,
      name               = EXCLUDED.name,
      cadence            = EXCLUDED.cadence,
      meal_count         = EXCLUDED.meal_count,
      delivery_price     = EXCLUDED.delivery_price,
      commission_percent = EXCLUDED.commission_percent,
      updated_at         = EXCLUDED.updated_at;`
	_, err := execSQL(ctx, r.pool, tx, q,
		plan.ID, plan.RestaurantID, plan.Name, string(plan.Cadence), plan.MealCount,
		plan.DeliveryPrice, plan.CommissionPercent, plan.CreatedAt, plan.UpdatedAt,
	)
	return mapErr("save plan", err)
}

func (r *PostgresPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	const q = `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p, err := scanPlan(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *PostgresPlanRepo) ListByRestaurant(ctx context.Context, tx repository.Tx, restaurantID string) ([]*model.SubscriptionPlan, error) {
	const q = `
SELECT ` + planColumns + `
  FROM subscription_plans
 WHERE ($1 = '' OR restaurant_id = $1)
 ORDER BY restaurant_id, meal_count, id;`
	rows, err := queryRows(ctx, r.pool, tx, q, restaurantID)
	if err != nil {
		return nil, mapErr("list plans", err)
	}
	defer rows.Close()
	var out []*model.SubscriptionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *PostgresPlanRepo) UpdateDeliveryPrice(ctx context.Context, tx repository.Tx, restaurantID string, price decimal.Decimal) ([]string, error) {
	const q = `
UPDATE subscription_plans
   SET delivery_price = $2, updated_at = $3
 WHERE restaurant_id = $1
RETURNING id;`
	rows, err := queryRows(ctx, r.pool, tx, q, restaurantID, price, time.Now())
	if err != nil {
		return nil, mapErr("update delivery price", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("update delivery price", err)
	}
	return ids, nil
}

func scanPlan(row pgx.Row) (*model.SubscriptionPlan, error) {
	var p model.SubscriptionPlan
	var cadence string
	if err := row.Scan(&p.ID, &p.RestaurantID, &p.Name, &cadence, &p.MealCount,
		&p.DeliveryPrice, &p.CommissionPercent, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Cadence = model.PlanCadence(cadence)
	return &p, nil
}
