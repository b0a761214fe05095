package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/race-photo-sync/internal/database"
	"github.com/yourusername/race-photo-sync/internal/models"
)

// PostgresEventSettingRepository implements EventSettingRepository for PostgreSQL
type PostgresEventSettingRepository struct {
	db *database.DB
}

// NewPostgresEventSettingRepository creates a new event setting repository
func NewPostgresEventSettingRepository(db *database.DB) EventSettingRepository {
	return &PostgresEventSettingRepository{db: db}
}

// Get retrieves a single setting of an event
func (r *PostgresEventSettingRepository) Get(ctx context.Context, eventID, key string) (*models.EventSetting, error) {
	query := `SELECT event_id, key, value, updated_at FROM event_settings WHERE event_id = $1 AND key = $2`

	setting := &models.EventSetting{}
	err := r.db.GetPool().QueryRow(ctx, query, eventID, key).Scan(
		&setting.EventID, &setting.Key, &setting.Value, &setting.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event setting %s: %w", key, err)
	}

	return setting, nil
}

// Set inserts or replaces a setting of an event
func (r *PostgresEventSettingRepository) Set(ctx context.Context, eventID, key, value string) error {
	query := `
		INSERT INTO event_settings (event_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (event_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := r.db.GetPool().Exec(ctx, query, eventID, key, value); err != nil {
		return fmt.Errorf("failed to set event setting %s: %w", key, err)
	}

	return nil
}
