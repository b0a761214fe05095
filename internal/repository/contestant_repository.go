package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/race-photo-sync/internal/database"
	"github.com/yourusername/race-photo-sync/internal/models"
)

// PostgresContestantRepository implements ContestantRepository for PostgreSQL
type PostgresContestantRepository struct {
	db *database.DB
}

// NewPostgresContestantRepository creates a new contestant repository
func NewPostgresContestantRepository(db *database.DB) ContestantRepository {
	return &PostgresContestantRepository{db: db}
}

// GetByBib retrieves the contestant wearing bib in the given event
func (r *PostgresContestantRepository) GetByBib(ctx context.Context, eventID string, bib int) (*models.Contestant, error) {
	query := `
		SELECT id, event_id, bib, name, club, ageclass
		FROM contestants WHERE event_id = $1 AND bib = $2
	`

	c := &models.Contestant{}
	err := r.db.GetPool().QueryRow(ctx, query, eventID, bib).Scan(
		&c.ID, &c.EventID, &c.Bib, &c.Name, &c.Club, &c.AgeClass,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contestant: %w", err)
	}

	return c, nil
}

// PostgresRaceClassRepository implements RaceClassRepository for PostgreSQL
type PostgresRaceClassRepository struct {
	db *database.DB
}

// NewPostgresRaceClassRepository creates a new race class repository
func NewPostgresRaceClassRepository(db *database.DB) RaceClassRepository {
	return &PostgresRaceClassRepository{db: db}
}

// GetByEvent retrieves all race classes of an event
func (r *PostgresRaceClassRepository) GetByEvent(ctx context.Context, eventID string) ([]*models.RaceClass, error) {
	rows, err := r.db.GetPool().Query(ctx,
		`SELECT id, event_id, name, ageclasses FROM raceclasses WHERE event_id = $1 ORDER BY name`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query raceclasses: %w", err)
	}
	defer rows.Close()

	var classes []*models.RaceClass
	for rows.Next() {
		rc := &models.RaceClass{}
		if err := rows.Scan(&rc.ID, &rc.EventID, &rc.Name, &rc.AgeClasses); err != nil {
			return nil, fmt.Errorf("failed to scan raceclass: %w", err)
		}
		classes = append(classes, rc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate raceclasses: %w", err)
	}

	return classes, nil
}
