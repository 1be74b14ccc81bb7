package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"oportunidades/internal/platform/config"
)

// SeedCategories inserts the configured categories, leaving existing rows
// untouched. Safe to run on every boot.
func SeedCategories(ctx context.Context, db *sql.DB, seeds []config.CategorySeed) (int, error) {
	now := time.Now().UTC()
	inserted := 0
	for _, seed := range seeds {
		res, err := db.ExecContext(ctx, `
			INSERT INTO categorias (nome, descricao, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(nome) DO NOTHING
		`, seed.Name, seed.Description, now, now)
		if err != nil {
			return inserted, fmt.Errorf("seed category %q: %w", seed.Name, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}
	return inserted, nil
}
