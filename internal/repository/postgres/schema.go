package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema creates the tables used by the KV store and the preferences
// repository if they do not exist.
func EnsureSchema(ctx context.Context, cfg *RepositoryConfig) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				key        TEXT PRIMARY KEY,
				value      JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, cfg.Tables.KVEntries),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id     TEXT PRIMARY KEY,
				preferences JSONB NOT NULL DEFAULT '{}'::jsonb,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, cfg.Tables.UserPreferences),
	}

	for _, stmt := range statements {
		if _, err := cfg.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	cfg.Logger.Info("schema ready", "tables", cfg.Tables.All())
	return nil
}

// DropTables drops every table for the configured prefix.
func DropTables(ctx context.Context, cfg *RepositoryConfig) error {
	for _, table := range cfg.Tables.All() {
		if _, err := cfg.Pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		cfg.Logger.Info("dropped table", "table", table)
	}
	return nil
}

// ClearData deletes all rows but keeps the tables.
func ClearData(ctx context.Context, cfg *RepositoryConfig) error {
	for _, table := range cfg.Tables.All() {
		if _, err := cfg.Pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
