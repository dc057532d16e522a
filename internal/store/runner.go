package store

import (
	"context"
	"database/sql"
)

// TxRunner abstracts transaction execution so services can run multi-store
// mutations atomically without holding a *sql.DB themselves. Tests substitute
// a fake that invokes the function directly.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn TxFn) error
}

// DBTxRunner is the production TxRunner over a *sql.DB.
type DBTxRunner struct {
	DB *sql.DB
}

// RunInTransaction implements TxRunner.
func (r *DBTxRunner) RunInTransaction(ctx context.Context, fn TxFn) error {
	return RunInTransaction(ctx, r.DB, fn)
}
