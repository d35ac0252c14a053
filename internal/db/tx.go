package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

type txState struct {
	tx pgx.Tx // nil for LocalTxRunner

	mu          sync.Mutex
	afterCommit []func(context.Context)
}

// Conn returns the transaction carried by ctx, or pool when there is none.
func Conn(ctx context.Context, pool *pgxpool.Pool) DBTX {
	if st, ok := ctx.Value(txKey{}).(*txState); ok && st.tx != nil {
		return st.tx
	}
	return pool
}

// InTransaction reports whether ctx carries a unit of work.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*txState)
	return ok
}

// AfterCommit schedules fn to run once the unit of work in ctx commits. Without
// a unit of work fn runs immediately. Hooks are dropped on rollback.
func AfterCommit(ctx context.Context, fn func(context.Context)) {
	st, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		fn(ctx)
		return
	}
	st.mu.Lock()
	st.afterCommit = append(st.afterCommit, fn)
	st.mu.Unlock()
}

// TxRunner runs fn as one unit of work.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PgxTxRunner wraps fn in a postgres transaction.
type PgxTxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *PgxTxRunner {
	return &PgxTxRunner{pool: pool}
}

func (r *PgxTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	st := &txState{tx: tx}
	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	st.runHooks(ctx)
	return nil
}

// LocalTxRunner provides unit-of-work semantics (after-commit hooks only run on
// success) without a database, for in-memory stores.
type LocalTxRunner struct{}

func (LocalTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return fn(ctx)
	}
	st := &txState{}
	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		return err
	}
	st.runHooks(ctx)
	return nil
}

func (st *txState) runHooks(ctx context.Context) {
	st.mu.Lock()
	hooks := st.afterCommit
	st.afterCommit = nil
	st.mu.Unlock()

	for _, fn := range hooks {
		fn(ctx)
	}
}
