// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"oportunidades/internal/platform/config"
	"oportunidades/internal/platform/database"
)

// Open returns a fresh in-memory database with the schema applied and the
// default categories seeded. It is closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.NewDB(config.DatabaseConfig{URL: ":memory:"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	if _, err := database.SeedCategories(ctx, db, config.DefaultCategories); err != nil {
		t.Fatalf("seed test db: %v", err)
	}
	return db
}
