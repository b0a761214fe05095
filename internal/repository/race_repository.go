package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/race-photo-sync/internal/database"
	"github.com/yourusername/race-photo-sync/internal/models"
)

const (
	errScanRace       = "failed to scan race: %w"
	errScanStartEntry = "failed to scan start entry: %w"
	raceColumns       = "id, event_id, raceclass, round, race_index, heat, start_time, created_at"
)

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

// GetByID retrieves a race of the given event
func (r *PostgresRaceRepository) GetByID(ctx context.Context, eventID, raceID string) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE event_id = $1 AND id = $2`

	race := &models.Race{}
	err := r.db.GetPool().QueryRow(ctx, query, eventID, raceID).Scan(
		&race.ID, &race.EventID, &race.RaceClass, &race.Round, &race.Index,
		&race.Heat, &race.StartTime, &race.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}

	return race, nil
}

// GetAllByEvent retrieves the race plan of an event ordered by start time
func (r *PostgresRaceRepository) GetAllByEvent(ctx context.Context, eventID string) ([]*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE event_id = $1 ORDER BY start_time, id`

	rows, err := r.db.GetPool().Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query races: %w", err)
	}
	defer rows.Close()

	var races []*models.Race
	for rows.Next() {
		race := &models.Race{}
		if err := rows.Scan(
			&race.ID, &race.EventID, &race.RaceClass, &race.Round, &race.Index,
			&race.Heat, &race.StartTime, &race.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanRace, err)
		}
		races = append(races, race)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate races: %w", err)
	}

	return races, nil
}

// PostgresStartEntryRepository implements StartEntryRepository for PostgreSQL
type PostgresStartEntryRepository struct {
	db *database.DB
}

// NewPostgresStartEntryRepository creates a new start list repository
func NewPostgresStartEntryRepository(db *database.DB) StartEntryRepository {
	return &PostgresStartEntryRepository{db: db}
}

// GetByBib retrieves every start entry for a bib, one per race the bib runs
func (r *PostgresStartEntryRepository) GetByBib(ctx context.Context, eventID string, bib int) ([]*models.StartEntry, error) {
	query := `
		SELECT s.id, s.event_id, s.race_id, s.bib
		FROM start_entries s
		JOIN races r ON r.id = s.race_id
		WHERE s.event_id = $1 AND s.bib = $2
		ORDER BY r.start_time, s.id
	`

	rows, err := r.db.GetPool().Query(ctx, query, eventID, bib)
	if err != nil {
		return nil, fmt.Errorf("failed to query start entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.StartEntry
	for rows.Next() {
		entry := &models.StartEntry{}
		if err := rows.Scan(&entry.ID, &entry.EventID, &entry.RaceID, &entry.Bib); err != nil {
			return nil, fmt.Errorf(errScanStartEntry, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate start entries: %w", err)
	}

	return entries, nil
}
