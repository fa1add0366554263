package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, restaurant_id, plan_id, start_date, selected_weekdays, status,
  total_amount, subscription_price, delivery_price, admin_commission_amount, merchant_amount,
  commission_percent, created_at, updated_at, deleted_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (` + subscriptionColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
  start_date=$5, selected_weekdays=$6, status=$7,
  total_amount=$8, subscription_price=$9, delivery_price=$10, admin_commission_amount=$11, merchant_amount=$12,
  commission_percent=$13, updated_at=$15, deleted_at=$16;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.RestaurantID, s.PlanID, s.StartDate, s.SelectedWeekdays.Names(), string(s.Status),
		s.TotalAmount, s.SubscriptionPrice, s.DeliveryPrice, s.CommissionAmount, s.MerchantAmount,
		s.CommissionPercent, s.CreatedAt, s.UpdatedAt, s.DeletedAt,
	)
	return mapErr("save subscription", err)
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id=$1 AND deleted_at IS NULL`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	s, err := scanSub(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *subscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionColumns + `
  FROM subscriptions
 WHERE user_id=$1 AND deleted_at IS NULL
 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, mapErr("list subscriptions", err)
	}
	defer rows.Close()
	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM subscriptions WHERE deleted_at IS NULL GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, mapErr("count subscriptions", err)
	}
	defer rows.Close()

	counts := make(map[model.SubscriptionStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.SubscriptionStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

func (r *subscriptionRepo) SumRevenue(ctx context.Context, tx repository.Tx, restaurantID string, from, to time.Time) (*model.RevenueTotals, error) {
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(total_amount),0),
       COALESCE(SUM(subscription_price),0),
       COALESCE(SUM(delivery_price),0),
       COALESCE(SUM(admin_commission_amount),0),
       COALESCE(SUM(merchant_amount),0)
  FROM subscriptions
 WHERE deleted_at IS NULL
   AND status <> 'cancelled'
   AND ($1 = '' OR restaurant_id = $1)
   AND created_at >= $2 AND created_at < $3;`
	row, err := pickRow(ctx, r.pool, tx, q, restaurantID, from, to)
	if err != nil {
		return nil, err
	}
	t := &model.RevenueTotals{}
	if err := row.Scan(&t.Subscriptions, &t.TotalAmount, &t.SubscriptionPrice, &t.DeliveryPrice, &t.CommissionAmount, &t.MerchantAmount); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func scanSub(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	var status string
	var weekdays []string
	if err := row.Scan(&s.ID, &s.UserID, &s.RestaurantID, &s.PlanID, &s.StartDate, &weekdays, &status,
		&s.TotalAmount, &s.SubscriptionPrice, &s.DeliveryPrice, &s.CommissionAmount, &s.MerchantAmount,
		&s.CommissionPercent, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt); err != nil {
		return nil, err
	}
	set, err := model.ParseWeekdaySet(weekdays)
	if err != nil {
		return nil, err
	}
	s.SelectedWeekdays = set
	s.Status = model.SubscriptionStatus(status)
	return s, nil
}
