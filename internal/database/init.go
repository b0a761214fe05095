package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/race-photo-sync/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// requiredTables are read or written by the sync service
var requiredTables = []string{
	"events", "races", "start_entries", "contestants", "raceclasses", "photos", "event_settings",
}

// Initialize creates a database connection pool and verifies the schema
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	missing, err := db.MissingTables(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(missing) > 0 {
		logger.WithField("tables", missing).Warn("Database schema incomplete, run EnsureSchema or apply migrations")
	}

	return db, nil
}

// MissingTables lists required tables absent from the public schema
func (db *DB) MissingTables(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ANY($1)",
		requiredTables,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect schema: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to inspect schema: %w", err)
	}

	var missing []string
	for _, table := range requiredTables {
		if !present[table] {
			missing = append(missing, table)
		}
	}
	return missing, nil
}

// EnsureSchema creates any missing tables
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
