package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// UnitOfWork manages transactional boundaries. The callback receives a DBTX
// backed by a *sql.Tx; callers create tx-scoped repositories from it.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

const defaultBusyRetryMaxElapsed = 5 * time.Second

// SQLiteUnitOfWork implements UnitOfWork using database/sql transactions.
// A transaction attempt that fails because another process holds the write
// lock is retried from the start with exponential backoff.
type SQLiteUnitOfWork struct {
	db         *sql.DB
	maxElapsed time.Duration
}

// UoWOption configures a SQLiteUnitOfWork.
type UoWOption func(*SQLiteUnitOfWork)

// WithBusyRetry sets how long busy transactions are retried. Zero disables
// retry.
func WithBusyRetry(maxElapsed time.Duration) UoWOption {
	return func(u *SQLiteUnitOfWork) {
		u.maxElapsed = maxElapsed
	}
}

// NewSQLiteUnitOfWork creates a UnitOfWork backed by the given *sql.DB.
func NewSQLiteUnitOfWork(db *sql.DB, opts ...UoWOption) *SQLiteUnitOfWork {
	u := &SQLiteUnitOfWork{db: db, maxElapsed: defaultBusyRetryMaxElapsed}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	if u.maxElapsed <= 0 {
		return u.runOnce(ctx, fn)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 20 * time.Millisecond
	bo.MaxElapsedTime = u.maxElapsed

	return backoff.Retry(func() error {
		err := u.runOnce(ctx, fn)
		if err != nil && IsBusy(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}

func (u *SQLiteUnitOfWork) runOnce(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// IsBusy reports whether err is SQLite's busy or locked condition.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "database table is locked")
}
