package correlation

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/yourusername/race-photo-sync/internal/models"
)

// MockStartEntryRepository is a mock implementation of StartEntryRepository
type MockStartEntryRepository struct {
	mock.Mock
}

func (m *MockStartEntryRepository) GetByBib(ctx context.Context, eventID string, bib int) ([]*models.StartEntry, error) {
	args := m.Called(ctx, eventID, bib)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StartEntry), args.Error(1)
}

// MockRaceRepository is a mock implementation of RaceRepository
type MockRaceRepository struct {
	mock.Mock
}

func (m *MockRaceRepository) GetByID(ctx context.Context, eventID, raceID string) (*models.Race, error) {
	args := m.Called(ctx, eventID, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Race), args.Error(1)
}

func (m *MockRaceRepository) GetAllByEvent(ctx context.Context, eventID string) ([]*models.Race, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Race), args.Error(1)
}

// MockContestantRepository is a mock implementation of ContestantRepository
type MockContestantRepository struct {
	mock.Mock
}

func (m *MockContestantRepository) GetByBib(ctx context.Context, eventID string, bib int) (*models.Contestant, error) {
	args := m.Called(ctx, eventID, bib)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contestant), args.Error(1)
}

const (
	testEventID      = "event-1"
	isoPattern       = "%Y-%m-%dT%H:%M:%S"
	spacedPattern    = "%Y-%m-%d %H:%M:%S"
	testRaceDuration = 30
	testMaxDeviation = 10
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newTestSettings() *Settings {
	return &Settings{
		RaceDuration: testRaceDuration,
		MaxDeviation: testMaxDeviation,
		Normalizer:   NewTimeNormalizer([]string{isoPattern, spacedPattern}),
	}
}

func newTestPhoto(creationTime string, cropNumbers ...int) *models.Photo {
	return &models.Photo{
		Name:          "a.jpg",
		EventID:       testEventID,
		CreationTime:  creationTime,
		AIInformation: &models.AIInformation{AICropNumbers: cropNumbers},
		BibList:       []int{},
		ClubList:      []string{},
		GBaseURL:      "a.jpg",
	}
}
