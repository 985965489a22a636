package repository

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS housing (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		address     TEXT NOT NULL DEFAULT '',
		city        TEXT NOT NULL DEFAULT '',
		district    TEXT,
		price       BIGINT NOT NULL DEFAULT 0,
		area        DOUBLE PRECISION,
		bedrooms    INTEGER,
		bathrooms   INTEGER,
		floor       TEXT,
		orientation TEXT,
		description TEXT,
		contact     TEXT,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_housing_updated_at ON housing (updated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_housing_city ON housing (city)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS housing (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		address     TEXT NOT NULL DEFAULT '',
		city        TEXT NOT NULL DEFAULT '',
		district    TEXT,
		price       INTEGER NOT NULL DEFAULT 0,
		area        REAL,
		bedrooms    INTEGER,
		bathrooms   INTEGER,
		floor       TEXT,
		orientation TEXT,
		description TEXT,
		contact     TEXT,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_housing_updated_at ON housing (updated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_housing_city ON housing (city)`,
}

// EnsureSchema creates the housing table and its indexes if they are missing
func (r *ListingRepository) EnsureSchema(ctx context.Context) error {
	statements := postgresSchema
	if r.driver == "sqlite" {
		statements = sqliteSchema
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
