package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// acquireTimeout bounds how long Begin waits for a pooled connection, so
// callers fail fast instead of queueing when the pool is exhausted.
const acquireTimeout = 5 * time.Second

// ErrTxnDone is returned for any use of a Txn after Commit or Rollback.
var ErrTxnDone = errors.New("transaction already finished")

// Txn is a single-owner transaction handle. The owner either commits it
// exactly once or lets a deferred Rollback discard it; after either, every
// method fails with ErrTxnDone, so a handle that has been committed inside
// a store operation cannot be reused by the caller. Txn is not safe for
// concurrent use — each request works on its own handle.
type Txn struct {
	tx   pgx.Tx
	done bool
}

// Begin starts a transaction on a connection from the pool, waiting at
// most acquireTimeout for one to become available.
func Begin(ctx context.Context, pool *pgxpool.Pool) (*Txn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	tx, err := pool.Begin(acquireCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Txn{tx: tx}, nil
}

func (t *Txn) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if t.done {
		return pgconn.CommandTag{}, ErrTxnDone
	}
	return t.tx.Exec(ctx, sql, args...)
}

func (t *Txn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	if t.done {
		return nil, ErrTxnDone
	}
	return t.tx.Query(ctx, sql, args...)
}

func (t *Txn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	if t.done {
		return errRow{err: ErrTxnDone}
	}
	return t.tx.QueryRow(ctx, sql, args...)
}

// Commit ends the transaction. The handle is unusable afterwards even if
// the commit itself fails.
func (t *Txn) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxnDone
	}
	t.done = true
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the transaction. It is a no-op on a finished handle,
// so callers can unconditionally defer it.
func (t *Txn) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// errRow satisfies pgx.Row for queries issued against a finished handle.
type errRow struct {
	err error
}

func (r errRow) Scan(dest ...interface{}) error {
	return r.err
}
