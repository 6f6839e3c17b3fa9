package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	sqlStateCheckViolation      = "23514"
	sqlStateForeignKeyViolation = "23503"
)

type txKey struct{}

// withTx runs fn in a transaction carried by its context. Calls nested inside
// an open transaction join it instead of starting another.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// constraintErr maps a CHECK violation to onCheck and a FOREIGN KEY
// violation to onForeignKey. A nil target leaves that violation wrapped with
// op like any other failure.
func constraintErr(err error, op string, onCheck, onForeignKey error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == sqlStateCheckViolation && onCheck != nil:
			return onCheck
		case pgErr.Code == sqlStateForeignKeyViolation && onForeignKey != nil:
			return onForeignKey
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
