package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"
)

var _ repository.MealRepository = (*PostgresMealRepo)(nil)

type PostgresMealRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresMealRepo(pool *pgxpool.Pool) *PostgresMealRepo {
	return &PostgresMealRepo{pool: pool}
}

func (r *PostgresMealRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) (map[string]*model.Meal, error) {
	out := make(map[string]*model.Meal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `
SELECT m.id, m.restaurant_id, m.name, m.price, m.active,
       COALESCE(array_agg(pm.plan_id) FILTER (WHERE pm.plan_id IS NOT NULL), '{}')
  FROM meals m
  LEFT JOIN plan_meals pm ON pm.meal_id = m.id
 WHERE m.id = ANY($1)
 GROUP BY m.id;`
	rows, err := queryRows(ctx, r.pool, tx, q, ids)
	if err != nil {
		return nil, mapErr("find meals", err)
	}
	defer rows.Close()
	for rows.Next() {
		m := &model.Meal{}
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Price, &m.Active, &m.PlanIDs); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

// Save upserts the meal and replaces its plan links.
func (r *PostgresMealRepo) Save(ctx context.Context, tx repository.Tx, m *model.Meal) error {
	const upsert = `
INSERT INTO meals (id, restaurant_id, name, price, active)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET restaurant_id=$2, name=$3, price=$4, active=$5;`
	if _, err := execSQL(ctx, r.pool, tx, upsert, m.ID, m.RestaurantID, m.Name, m.Price, m.Active); err != nil {
		return mapErr("save meal", err)
	}
	if _, err := execSQL(ctx, r.pool, tx, `DELETE FROM plan_meals WHERE meal_id=$1;`, m.ID); err != nil {
		return mapErr("save meal plans", err)
	}
	const link = `INSERT INTO plan_meals (plan_id, meal_id) SELECT unnest($2::text[]), $1;`
	if len(m.PlanIDs) > 0 {
		if _, err := execSQL(ctx, r.pool, tx, link, m.ID, m.PlanIDs); err != nil {
			return mapErr("save meal plans", err)
		}
	}
	return nil
}
