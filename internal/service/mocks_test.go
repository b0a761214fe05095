package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/yourusername/race-photo-sync/internal/models"
)

// MockPhotoRepository is a mock implementation of PhotoRepository
type MockPhotoRepository struct {
	mock.Mock
}

func (m *MockPhotoRepository) Create(ctx context.Context, photo *models.Photo) (uuid.UUID, error) {
	args := m.Called(ctx, photo)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockPhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Photo), args.Error(1)
}

func (m *MockPhotoRepository) GetByBaseURL(ctx context.Context, url string) (*models.Photo, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Photo), args.Error(1)
}

func (m *MockPhotoRepository) Update(ctx context.Context, id uuid.UUID, photo *models.Photo) error {
	args := m.Called(ctx, id, photo)
	return args.Error(0)
}

// MockRaceClassRepository is a mock implementation of RaceClassRepository
type MockRaceClassRepository struct {
	mock.Mock
}

func (m *MockRaceClassRepository) GetByEvent(ctx context.Context, eventID string) ([]*models.RaceClass, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RaceClass), args.Error(1)
}

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

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) UploadFile(ctx context.Context, eventID, folder, localPath string) (string, error) {
	args := m.Called(ctx, eventID, folder, localPath)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) ListDetections(ctx context.Context, eventID string) ([]*models.Detection, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Detection), args.Error(1)
}

func (m *MockObjectStorage) MoveToArchive(ctx context.Context, eventID, name string) error {
	args := m.Called(ctx, eventID, name)
	return args.Error(0)
}

// MockMessageQueue is a mock implementation of MessageQueue
type MockMessageQueue struct {
	mock.Mock
}

func (m *MockMessageQueue) Publish(ctx context.Context, msg *models.PhotoMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func (m *MockMessageQueue) Pull(ctx context.Context) ([]*models.PhotoMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PhotoMessage), args.Error(1)
}

func (m *MockMessageQueue) Acknowledge(ctx context.Context, ackIDs []string) error {
	args := m.Called(ctx, ackIDs)
	return args.Error(0)
}

// MockImageAnalyzer is a mock implementation of ImageAnalyzer
type MockImageAnalyzer struct {
	mock.Mock
}

func (m *MockImageAnalyzer) Analyze(ctx context.Context, mainURL, cropURL string, confidenceLimit float64) (*models.AIInformation, error) {
	args := m.Called(ctx, mainURL, cropURL, confidenceLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AIInformation), args.Error(1)
}

// MockPhotoDirectory is a mock implementation of PhotoDirectory
type MockPhotoDirectory struct {
	mock.Mock
}

func (m *MockPhotoDirectory) ListPhotos() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPhotoDirectory) MoveToArchive(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

// MockCaptureDirectory is a mock implementation of CaptureDirectory
type MockCaptureDirectory struct {
	mock.Mock
}

func (m *MockCaptureDirectory) ListCaptures() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCaptureDirectory) MoveToArchive(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

func (m *MockCaptureDirectory) MoveToErrorArchive(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

// memorySettings is an in-memory EventSettings keyed by event and key
type memorySettings struct {
	values map[string]string
}

func newMemorySettings(eventID string, values map[string]string) *memorySettings {
	s := &memorySettings{values: map[string]string{}}
	for k, v := range values {
		s.values[eventID+"/"+k] = v
	}
	return s
}

func (s *memorySettings) GetString(_ context.Context, eventID, key string) (string, error) {
	v, ok := s.values[eventID+"/"+key]
	if !ok {
		return "", fmt.Errorf("setting %s: %w", key, models.ErrNotFound)
	}
	return v, nil
}

func (s *memorySettings) GetInt(ctx context.Context, eventID, key string) (int, error) {
	v, err := s.GetString(ctx, eventID, key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

func (s *memorySettings) GetFloat(ctx context.Context, eventID, key string) (float64, error) {
	v, err := s.GetString(ctx, eventID, key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(v, 64)
}

func (s *memorySettings) Set(_ context.Context, eventID, key, value string) error {
	s.values[eventID+"/"+key] = value
	return nil
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}
