package repository

import (
	"fmt"

	"github.com/yourusername/race-photo-sync/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Event        EventRepository
	Race         RaceRepository
	StartEntry   StartEntryRepository
	Contestant   ContestantRepository
	RaceClass    RaceClassRepository
	Photo        PhotoRepository
	EventSetting EventSettingRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Event:        NewPostgresEventRepository(db),
		Race:         NewPostgresRaceRepository(db),
		StartEntry:   NewPostgresStartEntryRepository(db),
		Contestant:   NewPostgresContestantRepository(db),
		RaceClass:    NewPostgresRaceClassRepository(db),
		Photo:        NewPostgresPhotoRepository(db),
		EventSetting: NewPostgresEventSettingRepository(db),
	}, nil
}
