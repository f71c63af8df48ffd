package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxRunner runs fn inside one database transaction. fn receives the
// transaction as a DBTX; returning an error rolls everything back.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(db DBTX) error) error
}

type PoolTxRunner struct {
	db txBeginner
}

func NewPoolTxRunner(db txBeginner) *PoolTxRunner {
	return &PoolTxRunner{db: db}
}

func (r *PoolTxRunner) RunInTx(ctx context.Context, fn func(db DBTX) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
