// Package database declares the narrow Postgres surface the catalog and
// roadmap stores depend on. Readers only need Querier; seeders write inside
// a transaction opened with WithTx.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNilDB = errors.New("database not configured")

// Querier runs read queries. Repositories accept it instead of DB so tests
// can hand them a table-backed fake.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

type DB interface {
	Querier

	Ping(ctx context.Context) error
	Close() error
	Begin(ctx context.Context) (Tx, error)

	// SQLDB exposes the pool through database/sql for the migration runner.
	SQLDB() *sql.DB
}

// Tx is a write transaction. Rollback after Commit is a no-op.
type Tx interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// WithTx runs fn in a transaction and commits when fn returns nil. Any error
// rolls the transaction back.
func WithTx(ctx context.Context, db DB, fn func(Tx) error) error {
	if db == nil {
		return ErrNilDB
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
