package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"
)

var _ repository.DeliveryItemRepository = (*deliveryItemRepo)(nil)

type deliveryItemRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresDeliveryItemRepo(pool *pgxpool.Pool) *deliveryItemRepo {
	return &deliveryItemRepo{pool: pool}
}

const itemColumns = `id, subscription_id, delivery_date, meal_id, unit_price, status, created_at, updated_at`

// SaveBatch queues one INSERT per item on a single round trip. Callers run it
// inside the creating transaction so a failure leaves no partial set behind.
func (r *deliveryItemRepo) SaveBatch(ctx context.Context, tx repository.Tx, items []*model.DeliveryItem) error {
	if len(items) == 0 {
		return nil
	}
	const q = `INSERT INTO delivery_items (` + itemColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	b := &pgx.Batch{}
	for _, it := range items {
		b.Queue(q, it.ID, it.SubscriptionID, it.DeliveryDate, it.MealID, it.UnitPrice, string(it.Status), it.CreatedAt, it.UpdatedAt)
	}

	var br pgx.BatchResults
	switch v := tx.(type) {
	case pgx.Tx:
		br = v.SendBatch(ctx, b)
	case nil:
		if r.pool == nil {
			return domain.ErrInvalidArgument
		}
		br = r.pool.SendBatch(ctx, b)
	default:
		return domain.ErrInvalidExecContext
	}
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return mapErr("save delivery items", err)
		}
	}
	return nil
}

func (r *deliveryItemRepo) UpdateStatus(ctx context.Context, tx repository.Tx, it *model.DeliveryItem) error {
	const q = `UPDATE delivery_items SET status=$2, updated_at=$3 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, it.ID, string(it.Status), it.UpdatedAt)
	if err != nil {
		return mapErr("update delivery item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *deliveryItemRepo) FindByID(ctx context.Context, tx repository.Tx, subscriptionID, itemID string) (*model.DeliveryItem, error) {
	q := `SELECT ` + itemColumns + ` FROM delivery_items WHERE id=$1 AND subscription_id=$2`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, itemID, subscriptionID)
	if err != nil {
		return nil, err
	}
	it, err := scanItem(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return it, nil
}

func (r *deliveryItemRepo) ListBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.DeliveryItem, error) {
	const q = `SELECT ` + itemColumns + ` FROM delivery_items WHERE subscription_id=$1 ORDER BY delivery_date ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, subscriptionID)
	if err != nil {
		return nil, mapErr("list delivery items", err)
	}
	defer rows.Close()
	var out []*model.DeliveryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *deliveryItemRepo) DeleteBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM delivery_items WHERE subscription_id=$1;`, subscriptionID)
	return mapErr("delete delivery items", err)
}

func scanItem(row pgx.Row) (*model.DeliveryItem, error) {
	it := &model.DeliveryItem{}
	var status string
	if err := row.Scan(&it.ID, &it.SubscriptionID, &it.DeliveryDate, &it.MealID, &it.UnitPrice, &status, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	it.Status = model.ItemStatus(status)
	return it, nil
}
