package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/race-photo-sync/internal/models"
)

// EventRepository defines the interface for event data access
type EventRepository interface {
	GetAll(ctx context.Context) ([]*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
}

// RaceRepository defines the interface for race plan data access
type RaceRepository interface {
	GetByID(ctx context.Context, eventID, raceID string) (*models.Race, error)
	GetAllByEvent(ctx context.Context, eventID string) ([]*models.Race, error)
}

// StartEntryRepository defines the interface for start list data access
type StartEntryRepository interface {
	GetByBib(ctx context.Context, eventID string, bib int) ([]*models.StartEntry, error)
}

// ContestantRepository defines the interface for contestant data access
type ContestantRepository interface {
	GetByBib(ctx context.Context, eventID string, bib int) (*models.Contestant, error)
}

// RaceClassRepository defines the interface for race class data access
type RaceClassRepository interface {
	GetByEvent(ctx context.Context, eventID string) ([]*models.RaceClass, error)
}

// PhotoRepository defines the interface for photo data access
type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	GetByBaseURL(ctx context.Context, url string) (*models.Photo, error)
	Update(ctx context.Context, id uuid.UUID, photo *models.Photo) error
}

// EventSettingRepository defines the interface for per-event configuration
type EventSettingRepository interface {
	Get(ctx context.Context, eventID, key string) (*models.EventSetting, error)
	Set(ctx context.Context, eventID, key, value string) error
}
