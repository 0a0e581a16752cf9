// Package testutil holds helpers for integration tests that need Postgres.
// They skip when TEST_DATABASE_URL is not set.
package testutil

import (
	"context"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yakoovad/planner/internal/db"
	"os"
	"testing"
)

// NewPool connects to TEST_DATABASE_URL, applies migrations and closes the
// pool when the test ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err = db.Migrate(ctx, pool); err != nil {
		t.Fatalf("testutil.NewPool: migrate: %v", err)
	}

	return pool
}
