// Package repository selects and opens the storage backend named in config.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"dharmabot/internal/config"
	"dharmabot/internal/domain/repositories"
	"dharmabot/internal/repository/collection"
	"dharmabot/internal/repository/memory"
	"dharmabot/internal/repository/postgres"
	"dharmabot/internal/repository/sqlite"
)

// Storage is an opened backend. Preferences live in their own table on
// Postgres and in the KV store otherwise.
type Storage struct {
	KV          repositories.KVStore
	Preferences repositories.UserPreferencesRepository

	// Postgres is set only for the postgres driver.
	Postgres *postgres.RepositoryConfig

	pool *pgxpool.Pool
}

// Open connects to the backend named by cfg.StorageDriver. The postgres
// driver also creates missing tables.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case "memory":
		kv := memory.NewKVStore(int(cfg.StorageQuotaBytes))
		logger.Warn("using in-memory storage - data is lost on restart")
		return &Storage{KV: kv, Preferences: collection.NewUserPreferencesRepository(kv)}, nil

	case "sqlite":
		kv, err := sqlite.Open(cfg.SQLitePath, cfg.StorageQuotaBytes)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("storage ready", "driver", "sqlite", "path", cfg.SQLitePath)
		return &Storage{KV: kv, Preferences: collection.NewUserPreferencesRepository(kv)}, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		if err := postgres.EnsureSchema(ctx, repoConfig); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("storage ready", "driver", "postgres", "table_prefix", cfg.TablePrefix)
		return &Storage{
			KV:          postgres.NewKVStore(repoConfig, postgres.NewTransactionManager(pool, logger)),
			Preferences: postgres.NewUserPreferencesRepository(repoConfig),
			Postgres:    repoConfig,
			pool:        pool,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q (want memory, sqlite or postgres)", cfg.StorageDriver)
}

// Close releases the KV store and any connection pool.
func (s *Storage) Close() error {
	err := s.KV.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}
