package dbmap

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Querier is the subset of pgx execution methods the mapper needs. It is
// satisfied by *DB and by Tx, so the same mapper code runs inside and
// outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is an explicit transaction handle. Every statement issued through it
// belongs to one database transaction until Commit or Rollback. Handles are
// not reentrant: one workflow per handle.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB wraps a connection pool with transaction control. Statements issued
// directly on DB auto-commit; Begin returns a Tx for multi-statement units.
type DB struct {
	pool *pgxpool.Pool
	lg   *zap.Logger
}

// NewDB returns a DB over the given pool. The logger receives best-effort
// failures that are swallowed by contract (see Rollback and Mapper.Delete).
func NewDB(pool *pgxpool.Pool, lg *zap.Logger) *DB {
	return &DB{pool: pool, lg: lg}
}

func (d *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return d.pool.Exec(ctx, sql, args...)
}

func (d *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return d.pool.Query(ctx, sql, args...)
}

func (d *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return d.pool.QueryRow(ctx, sql, args...)
}

// Begin opens a transaction and returns its handle.
func (d *DB) Begin(ctx context.Context) (Tx, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "begin", Err: err}
	}
	return tx, nil
}

// Rollback aborts tx. Its own failure is logged and swallowed: Rollback
// usually runs while another error is already in flight and must not mask
// it. Rolling back an already-finished transaction is a no-op, which makes
// it safe to defer right after Begin.
func (d *DB) Rollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		d.lg.Warn("transaction rollback failed", zap.Error(err))
	}
}

// PersistenceError is a storage-engine failure annotated with the operation
// and entity it occurred on. The underlying error is preserved and reachable
// through Unwrap.
type PersistenceError struct {
	Op     string
	Entity string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persistence: %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
