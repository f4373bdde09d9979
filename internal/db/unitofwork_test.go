package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/issueflow/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, opts ...db.UoWOption) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	// Create a simple test table outside the migration set.
	_, err = database.Exec(`CREATE TABLE IF NOT EXISTS uow_test (id TEXT PRIMARY KEY, val TEXT)`)
	require.NoError(t, err)

	return db.NewSQLiteUnitOfWork(database, opts...)
}

// readVal reads val for a given id through a read-only transaction.
func readVal(uow *db.SQLiteUnitOfWork, id string) (string, bool) {
	var val string
	var found bool
	_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		row := tx.QueryRowContext(ctx, `SELECT val FROM uow_test WHERE id = ?`, id)
		if err := row.Scan(&val); err != nil {
			return nil // not found
		}
		found = true
		return nil
	})
	return val, found
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := openTestDB(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO uow_test (id, val) VALUES (?, ?)`, "k1", "v1")
		return err
	})
	require.NoError(t, err)

	val, found := readVal(uow, "k1")
	assert.True(t, found, "row should exist after commit")
	assert.Equal(t, "v1", val)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openTestDB(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO uow_test (id, val) VALUES (?, ?)`, "k2", "v2")
		if err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	_, found := readVal(uow, "k2")
	assert.False(t, found, "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestDB(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO uow_test (id, val) VALUES (?, ?)`, "k3", "v3")
			panic("boom")
		})
	})

	_, found := readVal(uow, "k3")
	assert.False(t, found, "row should not exist after panic rollback")
}

func TestWithinTx_RetriesBusy(t *testing.T) {
	uow := openTestDB(t, db.WithBusyRetry(2*time.Second))

	attempts := 0
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO uow_test (id, val) VALUES (?, ?)`, "k4", "v4")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	val, found := readVal(uow, "k4")
	assert.True(t, found)
	assert.Equal(t, "v4", val)
}

func TestWithinTx_DoesNotRetryOtherErrors(t *testing.T) {
	uow := openTestDB(t, db.WithBusyRetry(2*time.Second))
	sentinel := errors.New("validation failed")

	attempts := 0
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		attempts++
		return fmt.Errorf("linking: %w", sentinel)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel, "original error survives the retry wrapper")
	assert.Equal(t, 1, attempts)
}

func TestWithinTx_RetryDisabled(t *testing.T) {
	uow := openTestDB(t, db.WithBusyRetry(0))

	attempts := 0
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		attempts++
		return errors.New("database is locked")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, db.IsBusy(errors.New("database is locked")))
	assert.True(t, db.IsBusy(fmt.Errorf("committing: %w", errors.New("SQLITE_BUSY"))))
	assert.False(t, db.IsBusy(errors.New("no such table")))
	assert.False(t, db.IsBusy(nil))
}
