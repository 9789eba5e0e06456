//go:build integration

// Package testdb connects integration tests to a migrated PostgreSQL database.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/scry-scheduler/internal/config"
	"github.com/phrazzld/scry-scheduler/internal/platform/postgres"
	"github.com/phrazzld/scry-scheduler/internal/redact"
	"github.com/phrazzld/scry-scheduler/internal/store"
)

// URLVariables are checked in order for the test database URL.
var URLVariables = []string{"DATABASE_URL", "SCRY_TEST_DATABASE_URL", "SCRY_DATABASE_URL"}

// DatabaseURL returns the first non-empty URL from URLVariables.
func DatabaseURL() string {
	for _, name := range URLVariables {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Open connects to the test database and applies every migration. The test
// is skipped when no database URL is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skip("no test database configured; set DATABASE_URL to run PostgreSQL tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{
		URL:                    url,
		MaxOpenConns:           5,
		MaxIdleConns:           2,
		ConnMaxLifetimeMinutes: 5,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %s", redact.Error(err))
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := postgres.Migrate(ctx, db, nil, "up"); err != nil {
		t.Fatalf("failed to migrate test database: %s", redact.Error(err))
	}
	return db
}

// NewUnitOfWork builds the PostgreSQL-backed unit of work over db.
func NewUnitOfWork(db *sql.DB) *store.SQLUnitOfWork {
	return store.NewSQLUnitOfWork(db,
		postgres.NewPostgresCardStore(db, nil),
		postgres.NewPostgresDeckStore(db, nil),
		postgres.NewPostgresReviewLogStore(db, nil))
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// leave no rows behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %s", redact.Error(err))
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
