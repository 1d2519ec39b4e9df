package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// KVStore stores each collection as one JSONB row. Update locks the row with
// SELECT ... FOR UPDATE inside a transaction.
type KVStore struct {
	pool      *pgxpool.Pool
	tables    *TableNames
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewKVStore creates a KV store on the prefixed kv_entries table.
func NewKVStore(config *RepositoryConfig, txManager repositories.TransactionManager) *KVStore {
	return &KVStore{
		pool:      config.Pool,
		tables:    config.Tables,
		txManager: txManager,
		logger:    config.Logger,
	}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := fmt.Sprintf(`SELECT value::text FROM %s WHERE key = $1`, s.tables.KVEntries)

	var value string
	err := GetExecutor(ctx, s.pool).QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, s.tables.KVEntries)

	if _, err := GetExecutor(ctx, s.pool).Exec(ctx, query, key, string(value)); err != nil {
		if IsPgStorageFullError(err) {
			return &domain.QuotaExceededError{Key: key}
		}
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.tables.KVEntries)
	if _, err := GetExecutor(ctx, s.pool).Exec(ctx, query, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Update(ctx context.Context, key string, fn repositories.UpdateFn) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// Make sure a row exists so FOR UPDATE has something to lock
		seed := fmt.Sprintf(`
			INSERT INTO %s (key, value) VALUES ($1, 'null'::jsonb)
			ON CONFLICT (key) DO NOTHING
		`, s.tables.KVEntries)
		if _, err := GetExecutor(txCtx, s.pool).Exec(txCtx, seed, key); err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}

		query := fmt.Sprintf(`SELECT value::text FROM %s WHERE key = $1 FOR UPDATE`, s.tables.KVEntries)
		var raw string
		if err := GetExecutor(txCtx, s.pool).QueryRow(txCtx, query, key).Scan(&raw); err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}

		var current []byte
		if raw != "null" {
			current = []byte(raw)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		return s.Set(txCtx, key, next)
	})
}

// Close is a no-op; the pool is owned by the caller.
func (s *KVStore) Close() error { return nil }
