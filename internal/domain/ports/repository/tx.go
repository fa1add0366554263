package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Its concrete type is infra-defined
// (pgx.Tx for Postgres). Repositories accept NoTX for the non-transactional path.
type Tx interface{}

var NoTX Tx

// TransactionManager executes fn within a database transaction, passing the
// handle so repositories called with the same ctx and tx join it.
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
//		sub, err := subs.FindByID(ctx, tx, id) // SELECT ... FOR UPDATE
//		...
//		return subs.Save(ctx, tx, sub)
//	})
//
// A non-nil error from fn rolls the transaction back; otherwise it is committed.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
