package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/race-photo-sync/internal/database"
	"github.com/yourusername/race-photo-sync/internal/models"
)

const (
	errScanPhoto = "failed to scan photo: %w"
	photoColumns = `id, name, event_id, creation_time, is_photo_finish, is_start_registration,
		ai_information, information, race_id, raceclass, biblist, clublist, confidence, starred,
		g_base_url, g_crop_url, created_at, updated_at`
	uniqueViolation = "23505"
)

// PostgresPhotoRepository implements PhotoRepository for PostgreSQL
type PostgresPhotoRepository struct {
	db *database.DB
}

// NewPostgresPhotoRepository creates a new photo repository
func NewPostgresPhotoRepository(db *database.DB) PhotoRepository {
	return &PostgresPhotoRepository{db: db}
}

// Create inserts a new photo and returns its ID, generating one when unset
func (r *PostgresPhotoRepository) Create(ctx context.Context, photo *models.Photo) (uuid.UUID, error) {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}

	aiInfo, information, err := encodePhotoJSON(photo)
	if err != nil {
		return uuid.Nil, err
	}

	query := `
		INSERT INTO photos (id, name, event_id, creation_time, is_photo_finish, is_start_registration,
			ai_information, information, race_id, raceclass, biblist, clublist, confidence, starred,
			g_base_url, g_crop_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`

	err = r.db.GetPool().QueryRow(ctx, query,
		photo.ID, photo.Name, photo.EventID, photo.CreationTime, photo.IsPhotoFinish,
		photo.IsStartRegistration, aiInfo, information, photo.RaceID, photo.RaceClass,
		nonNilInts(photo.BibList), nonNilStrings(photo.ClubList), photo.Confidence, photo.Starred,
		photo.GBaseURL, photo.GCropURL,
	).Scan(&photo.CreatedAt, &photo.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uuid.Nil, models.ErrDuplicateKey
		}
		return uuid.Nil, fmt.Errorf("failed to create photo: %w", err)
	}

	return photo.ID, nil
}

// GetByID retrieves a photo by ID
func (r *PostgresPhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	row := r.db.GetPool().QueryRow(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)
	return scanPhoto(row)
}

// GetByBaseURL retrieves the photo stored at the given main image URL
func (r *PostgresPhotoRepository) GetByBaseURL(ctx context.Context, url string) (*models.Photo, error) {
	row := r.db.GetPool().QueryRow(ctx, `SELECT `+photoColumns+` FROM photos WHERE g_base_url = $1`, url)
	return scanPhoto(row)
}

// Update refreshes the name, storage urls and crossing-point flags of an
// existing photo. Race linkage, bibs, confidence and starred are not written.
func (r *PostgresPhotoRepository) Update(ctx context.Context, id uuid.UUID, photo *models.Photo) error {
	query := `
		UPDATE photos
		SET name = $2, g_base_url = $3, g_crop_url = $4, is_photo_finish = $5,
			is_start_registration = $6, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		id, photo.Name, photo.GBaseURL, photo.GCropURL, photo.IsPhotoFinish, photo.IsStartRegistration,
	)
	if err != nil {
		return fmt.Errorf("failed to update photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	photo := &models.Photo{}
	var aiInfo, information []byte

	err := row.Scan(
		&photo.ID, &photo.Name, &photo.EventID, &photo.CreationTime, &photo.IsPhotoFinish,
		&photo.IsStartRegistration, &aiInfo, &information, &photo.RaceID, &photo.RaceClass,
		&photo.BibList, &photo.ClubList, &photo.Confidence, &photo.Starred,
		&photo.GBaseURL, &photo.GCropURL, &photo.CreatedAt, &photo.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errScanPhoto, err)
	}

	if len(aiInfo) > 0 {
		photo.AIInformation = &models.AIInformation{}
		if err := json.Unmarshal(aiInfo, photo.AIInformation); err != nil {
			return nil, fmt.Errorf("failed to decode ai_information: %w", err)
		}
	}
	if len(information) > 0 {
		if err := json.Unmarshal(information, &photo.Information); err != nil {
			return nil, fmt.Errorf("failed to decode information: %w", err)
		}
	}

	return photo, nil
}

func encodePhotoJSON(photo *models.Photo) ([]byte, []byte, error) {
	var aiInfo []byte
	if photo.AIInformation != nil {
		encoded, err := photo.AIInformationJSON()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode ai_information: %w", err)
		}
		aiInfo = encoded
	}

	information := photo.Information
	if information == nil {
		information = map[string]string{}
	}
	encoded, err := json.Marshal(information)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode information: %w", err)
	}

	return aiInfo, encoded, nil
}

func nonNilInts(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
