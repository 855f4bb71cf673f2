package database

import (
	"context"
	"errors"
	"fmt"
)

// Tx is an open transaction as seen by the driver packages.
type Tx interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type txKey struct{}

// ExecutorFromContext returns the transaction carried by ctx, or conn when
// there is none.
func ExecutorFromContext(ctx context.Context, conn Executor) Executor {
	if tx, ok := ctx.Value(txKey{}).(Tx); ok {
		return tx
	}
	return conn
}

// RunInTx implements Connection.InTx for a driver. A transaction already in
// ctx is joined and left for the outer call to finish.
func RunInTx(ctx context.Context, begin func(context.Context) (Tx, error), fn func(context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(Tx); ok {
		return fn(ctx)
	}

	tx, err := begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
