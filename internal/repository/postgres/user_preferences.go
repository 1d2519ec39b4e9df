package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserPreferencesRepository implements the UserPreferencesRepository interface
type PostgresUserPreferencesRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUserPreferencesRepository creates a new PostgresUserPreferencesRepository
func NewUserPreferencesRepository(config *RepositoryConfig) repositories.UserPreferencesRepository {
	return &PostgresUserPreferencesRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByUserID retrieves preferences for a specific user
func (r *PostgresUserPreferencesRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error) {
	query := fmt.Sprintf(`
		SELECT preferences::text, updated_at
		FROM %s
		WHERE user_id = $1
	`, r.tables.UserPreferences)

	var (
		raw       string
		updatedAt time.Time
	)
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID).Scan(&raw, &updatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			// No preferences exist yet - return nil (not an error)
			return nil, nil
		}
		return nil, fmt.Errorf("get user preferences: %w", err)
	}

	prefs := models.DefaultPreferences(userID)
	if err := json.Unmarshal([]byte(raw), prefs); err != nil {
		return nil, fmt.Errorf("decode user preferences: %w", err)
	}
	prefs.UserID = userID
	prefs.UpdatedAt = updatedAt.UnixMilli()

	return prefs, nil
}

// Upsert creates or updates user preferences
func (r *PostgresUserPreferencesRepository) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode user preferences: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, preferences, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = EXCLUDED.preferences,
			updated_at = NOW()
		RETURNING updated_at
	`, r.tables.UserPreferences)

	var updatedAt time.Time
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, prefs.UserID, string(payload)).Scan(&updatedAt); err != nil {
		return fmt.Errorf("upsert user preferences: %w", err)
	}
	prefs.UpdatedAt = updatedAt.UnixMilli()

	r.logger.Debug("user preferences upserted", "user_id", prefs.UserID)
	return nil
}
