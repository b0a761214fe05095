package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/race-photo-sync/internal/correlation"
	"github.com/yourusername/race-photo-sync/internal/models"
	"github.com/yourusername/race-photo-sync/internal/storage"
)

const (
	testEventID   = "event-1"
	detectPrefix  = "https://storage.googleapis.com/photos-bucket/event-1/DETECT/"
	photosPrefix  = "https://storage.googleapis.com/photos-bucket/event-1/photos/"
	testCapture   = "2024-01-01T10:00:05"
	testRaceStart = "2024-01-01T10:00:00"
)

type testFixture struct {
	photos      *MockPhotoRepository
	raceclasses *MockRaceClassRepository
	starts      *MockStartEntryRepository
	races       *MockRaceRepository
	contestants *MockContestantRepository
	storage     *MockObjectStorage
	queue       *MockMessageQueue
	analyzer    *MockImageAnalyzer
	files       *MockPhotoDirectory
	captures    *MockCaptureDirectory
	settings    *memorySettings
	service     *SyncService
}

func newTestFixture() *testFixture {
	f := &testFixture{
		photos:      new(MockPhotoRepository),
		raceclasses: new(MockRaceClassRepository),
		starts:      new(MockStartEntryRepository),
		races:       new(MockRaceRepository),
		contestants: new(MockContestantRepository),
		storage:     new(MockObjectStorage),
		queue:       new(MockMessageQueue),
		analyzer:    new(MockImageAnalyzer),
		files:       new(MockPhotoDirectory),
		captures:    new(MockCaptureDirectory),
		settings: newMemorySettings(testEventID, map[string]string{
			models.SettingRaceDurationEstimate: "30",
			models.SettingRaceTimeDeviation:    "10",
			models.SettingDatePatterns:         "%Y-%m-%dT%H:%M:%S;%Y-%m-%d %H:%M:%S",
			models.SettingConfidenceLimit:      "0.5",
		}),
	}

	logger := newTestLogger()
	f.service = NewSyncService(Dependencies{
		Photos:      f.photos,
		RaceClasses: f.raceclasses,
		Settings:    f.settings,
		Correlator:  correlation.NewEngine(f.starts, f.races, f.contestants, logger),
		Storage:     f.storage,
		Queue:       f.queue,
		Analyzer:    f.analyzer,
		Files:       f.files,
		Captures:    f.captures,
	}, logger)

	f.raceclasses.On("GetByEvent", mock.Anything, testEventID).Return([]*models.RaceClass{
		{EventID: testEventID, Name: "G12", AgeClasses: []string{"G 12 år"}},
	}, nil).Maybe()

	return f
}

func testRace() *models.Race {
	return &models.Race{ID: "R1", EventID: testEventID, RaceClass: "G12", Round: "Q", Index: "", Heat: 1, StartTime: testRaceStart}
}

func finishDetection(name string) *models.Detection {
	return models.NewDetection(testEventID, detectPrefix+name+".jpg", detectPrefix+name+"_crop.jpg", map[string]string{
		models.MetadataCaptureTime:   testCapture,
		models.MetadataCrossingPoint: models.CrossingPointFinish,
	})
}

// expectNewDetection stubs the lookups, analysis, create and archive calls of
// one new storage detection and returns a pointer to the created photo
func (f *testFixture) expectNewDetection(d *models.Detection, ai *models.AIInformation) **models.Photo {
	var created *models.Photo

	f.photos.On("GetByBaseURL", mock.Anything, d.MainURL).Return(nil, models.ErrNotFound)
	f.photos.On("GetByBaseURL", mock.Anything, storage.ArchiveURL(d.MainURL)).Return(nil, models.ErrNotFound)
	f.analyzer.On("Analyze", mock.Anything, d.MainURL, d.CropURL, 0.5).Return(ai, nil)
	f.photos.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Photo) bool {
		return p.GBaseURL == storage.ArchiveURL(d.MainURL)
	})).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Photo)
	}).Return(uuid.New(), nil)
	f.storage.On("MoveToArchive", mock.Anything, testEventID, "a.jpg").Return(nil)
	f.storage.On("MoveToArchive", mock.Anything, testEventID, "a_crop.jpg").Return(nil)

	return &created
}

func TestPullPhotosFromStorageBibMatch(t *testing.T) {
	f := newTestFixture()
	d := finishDetection("a")
	f.storage.On("ListDetections", mock.Anything, testEventID).Return([]*models.Detection{d}, nil)
	created := f.expectNewDetection(d, &models.AIInformation{Persons: 1, AICropNumbers: []int{42, 42, 7}})

	f.starts.On("GetByBib", mock.Anything, testEventID, 42).Return([]*models.StartEntry{{RaceID: "R1", Bib: 42}}, nil)
	f.races.On("GetByID", mock.Anything, testEventID, "R1").Return(testRace(), nil)
	f.contestants.On("GetByBib", mock.Anything, testEventID, 42).Return(&models.Contestant{Bib: 42, Club: "Lyn", AgeClass: "G 12 år"}, nil)

	summary, err := f.service.PullPhotosFromStorage(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Contains(t, summary, "0 updated and 1 created")
	require.NotNil(t, *created)
	photo := *created
	assert.Equal(t, "R1", photo.RaceID)
	assert.Equal(t, "G12", photo.RaceClass)
	assert.Equal(t, []int{42}, photo.BibList)
	assert.Equal(t, []string{"Lyn"}, photo.ClubList)
	assert.Equal(t, models.ConfidenceBib, photo.Confidence)
	assert.True(t, photo.IsPhotoFinish)
	assert.False(t, photo.IsStartRegistration)
	assert.Equal(t, testCapture, photo.CreationTime)
	assert.Equal(t, "a.jpg", photo.Name)
	assert.Equal(t, storage.ArchiveURL(d.CropURL), photo.GCropURL)

	latest, err := f.settings.GetString(context.Background(), testEventID, models.SettingLatestPhoto)
	require.NoError(t, err)
	assert.Equal(t, storage.ArchiveURL(d.MainURL), latest)

	f.starts.AssertNotCalled(t, "GetByBib", mock.Anything, testEventID, 7)
	f.races.AssertNotCalled(t, "GetAllByEvent", mock.Anything, mock.Anything)
	f.storage.AssertExpectations(t)
}

func TestPullPhotosFromStorageTimeFallback(t *testing.T) {
	f := newTestFixture()
	d := finishDetection("a")
	f.storage.On("ListDetections", mock.Anything, testEventID).Return([]*models.Detection{d}, nil)
	created := f.expectNewDetection(d, &models.AIInformation{Persons: 1, AICropNumbers: []int{42, 42, 7}})

	f.starts.On("GetByBib", mock.Anything, testEventID, 42).Return([]*models.StartEntry{}, nil)
	f.starts.On("GetByBib", mock.Anything, testEventID, 7).Return([]*models.StartEntry{}, nil)
	f.races.On("GetAllByEvent", mock.Anything, testEventID).Return([]*models.Race{testRace()}, nil)

	_, err := f.service.PullPhotosFromStorage(context.Background(), testEventID)

	require.NoError(t, err)
	require.NotNil(t, *created)
	photo := *created
	assert.Equal(t, "R1", photo.RaceID)
	assert.Equal(t, models.ConfidenceTime, photo.Confidence)
	assert.Empty(t, photo.BibList)
	f.contestants.AssertNotCalled(t, "GetByBib", mock.Anything, mock.Anything, mock.Anything)
}

func TestPullPhotosFromStorageEmpty(t *testing.T) {
	f := newTestFixture()
	f.storage.On("ListDetections", mock.Anything, testEventID).Return([]*models.Detection{}, nil)

	summary, err := f.service.PullPhotosFromStorage(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Equal(t, "No photos found.", summary)
	f.photos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPullPhotosFromStorageListFailure(t *testing.T) {
	f := newTestFixture()
	f.storage.On("ListDetections", mock.Anything, testEventID).Return(nil, errors.New("bucket unavailable"))

	_, err := f.service.PullPhotosFromStorage(context.Background(), testEventID)

	assert.Error(t, err)
}

func TestPullPhotosFromStorageItemFailureContinues(t *testing.T) {
	f := newTestFixture()
	broken := finishDetection("broken")
	mainOnly := models.NewDetection(testEventID, detectPrefix+"a.jpg", "", map[string]string{
		models.MetadataCaptureTime: testCapture,
	})
	f.storage.On("ListDetections", mock.Anything, testEventID).Return([]*models.Detection{broken, mainOnly}, nil)

	f.photos.On("GetByBaseURL", mock.Anything, mock.Anything).Return(nil, models.ErrNotFound)
	f.analyzer.On("Analyze", mock.Anything, broken.MainURL, broken.CropURL, 0.5).Return(nil, errors.New("vision unavailable"))
	f.photos.On("Create", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	f.storage.On("MoveToArchive", mock.Anything, testEventID, "a.jpg").Return(nil)

	summary, err := f.service.PullPhotosFromStorage(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Contains(t, summary, "1 created")
	assert.Contains(t, summary, "1 errors")
	f.photos.AssertNumberOfCalls(t, "Create", 1)
	f.analyzer.AssertNumberOfCalls(t, "Analyze", 1)
}

func TestPullPhotosFromStorageRetriesArchiveOfCreatedPhoto(t *testing.T) {
	f := newTestFixture()
	d := finishDetection("a")
	existing := &models.Photo{
		ID:         uuid.New(),
		EventID:    testEventID,
		Name:       "a.jpg",
		RaceID:     "R1",
		Confidence: models.ConfidenceBib,
		GBaseURL:   storage.ArchiveURL(d.MainURL),
	}
	f.storage.On("ListDetections", mock.Anything, testEventID).Return([]*models.Detection{d}, nil)
	f.photos.On("GetByBaseURL", mock.Anything, d.MainURL).Return(nil, models.ErrNotFound)
	f.photos.On("GetByBaseURL", mock.Anything, existing.GBaseURL).Return(existing, nil)
	f.photos.On("Update", mock.Anything, existing.ID, existing).Return(nil)
	f.storage.On("MoveToArchive", mock.Anything, testEventID, "a.jpg").Return(nil)
	f.storage.On("MoveToArchive", mock.Anything, testEventID, "a_crop.jpg").Return(nil)

	summary, err := f.service.PullPhotosFromStorage(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Contains(t, summary, "1 updated and 0 created")
	assert.Equal(t, storage.ArchiveURL(d.MainURL), existing.GBaseURL)
	assert.Equal(t, storage.ArchiveURL(d.CropURL), existing.GCropURL)
	f.photos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.storage.AssertExpectations(t)
}

func TestPullPhotosFromStorageStopsOnCancel(t *testing.T) {
	f := newTestFixture()
	f.storage.On("ListDetections", mock.Anything, testEventID).Return([]*models.Detection{finishDetection("a")}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.PullPhotosFromStorage(ctx, testEventID)

	assert.ErrorIs(t, err, context.Canceled)
	f.photos.AssertNotCalled(t, "GetByBaseURL", mock.Anything, mock.Anything)
}

func TestPullPhotosFromQueueResyncUpdatesOnly(t *testing.T) {
	f := newTestFixture()
	url := photosPrefix + "a.jpg"
	existing := &models.Photo{
		ID:            uuid.New(),
		EventID:       testEventID,
		Name:          "a.jpg",
		RaceID:        "R1",
		RaceClass:     "G12",
		BibList:       []int{42},
		Confidence:    models.ConfidenceBib,
		IsPhotoFinish: true,
		GBaseURL:      url,
	}
	f.queue.On("Pull", mock.Anything).Return([]*models.PhotoMessage{{
		AIInformation: &models.AIInformation{AICropNumbers: []int{42}},
		CropURL:       photosPrefix + "a_crop.jpg",
		EventID:       testEventID,
		PhotoInfo: map[string]interface{}{
			models.MetadataCaptureTime:   testCapture,
			models.MetadataCrossingPoint: models.CrossingPointStart,
		},
		PhotoURL: url,
		AckID:    "ack-1",
	}}, nil)
	f.photos.On("GetByBaseURL", mock.Anything, url).Return(existing, nil)
	f.photos.On("Update", mock.Anything, existing.ID, existing).Return(nil)
	f.queue.On("Acknowledge", mock.Anything, []string{"ack-1"}).Return(nil)

	summary, err := f.service.PullPhotosFromQueue(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Contains(t, summary, "0 created, 1 updated")
	assert.Equal(t, "R1", existing.RaceID)
	assert.Equal(t, models.ConfidenceBib, existing.Confidence)
	assert.Equal(t, []int{42}, existing.BibList)
	assert.True(t, existing.IsStartRegistration)
	assert.False(t, existing.IsPhotoFinish)
	assert.Equal(t, photosPrefix+"a_crop.jpg", existing.GCropURL)

	f.photos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.starts.AssertNotCalled(t, "GetByBib", mock.Anything, mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "MoveToArchive", mock.Anything, mock.Anything, mock.Anything)
	_, err = f.settings.GetString(context.Background(), testEventID, models.SettingLatestPhoto)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPullPhotosFromQueueDiscardsForeignEvent(t *testing.T) {
	f := newTestFixture()
	f.queue.On("Pull", mock.Anything).Return([]*models.PhotoMessage{{
		EventID:  "event-2",
		PhotoURL: "https://storage.googleapis.com/photos-bucket/event-2/photos/a.jpg",
		AckID:    "ack-1",
	}}, nil)
	f.queue.On("Acknowledge", mock.Anything, []string{"ack-1"}).Return(nil)

	summary, err := f.service.PullPhotosFromQueue(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Contains(t, summary, "1 discarded")
	assert.Contains(t, summary, "0 created")
	f.photos.AssertNotCalled(t, "GetByBaseURL", mock.Anything, mock.Anything)
	f.photos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.photos.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.queue.AssertExpectations(t)
}

func TestPullPhotosFromQueueUsesMessageTags(t *testing.T) {
	f := newTestFixture()
	url := photosPrefix + "a.jpg"
	f.queue.On("Pull", mock.Anything).Return([]*models.PhotoMessage{{
		AIInformation: &models.AIInformation{Persons: 2, AICropNumbers: []int{42}},
		CropURL:       photosPrefix + "a_crop.jpg",
		EventID:       testEventID,
		PhotoInfo: map[string]interface{}{
			models.MetadataCaptureTime:   testCapture,
			models.MetadataCrossingPoint: models.CrossingPointMaal,
		},
		PhotoURL: url,
		AckID:    "ack-1",
	}}, nil)
	f.queue.On("Acknowledge", mock.Anything, []string{"ack-1"}).Return(nil)
	f.photos.On("GetByBaseURL", mock.Anything, url).Return(nil, models.ErrNotFound)
	f.starts.On("GetByBib", mock.Anything, testEventID, 42).Return([]*models.StartEntry{{RaceID: "R1", Bib: 42}}, nil)
	f.races.On("GetByID", mock.Anything, testEventID, "R1").Return(testRace(), nil)
	f.contestants.On("GetByBib", mock.Anything, testEventID, 42).Return(nil, models.ErrNotFound)

	var created *models.Photo
	f.photos.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Photo)
	}).Return(uuid.New(), nil)

	summary, err := f.service.PullPhotosFromQueue(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Contains(t, summary, "1 created")
	require.NotNil(t, created)
	assert.Equal(t, url, created.GBaseURL)
	assert.Equal(t, "R1", created.RaceID)
	assert.True(t, created.IsPhotoFinish)
	f.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "MoveToArchive", mock.Anything, mock.Anything, mock.Anything)

	latest, err := f.settings.GetString(context.Background(), testEventID, models.SettingLatestPhoto)
	require.NoError(t, err)
	assert.Equal(t, url, latest)
}

func TestPullPhotosFromStorageCountsCreateWhenArchiveFails(t *testing.T) {
	f := newTestFixture()
	d := finishDetection("a")
	f.storage.On("ListDetections", mock.Anything, testEventID).Return([]*models.Detection{d}, nil)
	f.photos.On("GetByBaseURL", mock.Anything, mock.Anything).Return(nil, models.ErrNotFound)
	f.analyzer.On("Analyze", mock.Anything, d.MainURL, d.CropURL, 0.5).Return(&models.AIInformation{}, nil)
	f.photos.On("Create", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	f.storage.On("MoveToArchive", mock.Anything, testEventID, "a.jpg").Return(errors.New("copy failed"))

	summary, err := f.service.PullPhotosFromStorage(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Equal(t, "Synchronized photos from cloud storage. 0 updated and 1 created, 0 discarded, 1 errors.", summary)
	latest, err := f.settings.GetString(context.Background(), testEventID, models.SettingLatestPhoto)
	require.NoError(t, err)
	assert.Equal(t, storage.ArchiveURL(d.MainURL), latest)
	f.photos.AssertNumberOfCalls(t, "Create", 1)
}

func TestPullPhotosFromQueueLeavesFailedMessagesUnacknowledged(t *testing.T) {
	f := newTestFixture()
	f.queue.On("Pull", mock.Anything).Return([]*models.PhotoMessage{
		{EventID: testEventID, PhotoURL: photosPrefix + "a.jpg", AckID: "ack-1"},
		{EventID: testEventID, PhotoURL: photosPrefix + "b.jpg", AckID: "ack-2"},
		{EventID: "event-2", PhotoURL: photosPrefix + "c.jpg", AckID: "ack-3"},
	}, nil)
	f.photos.On("GetByBaseURL", mock.Anything, photosPrefix+"a.jpg").Return(nil, errors.New("connection reset"))
	f.photos.On("GetByBaseURL", mock.Anything, photosPrefix+"b.jpg").Return(nil, models.ErrNotFound)
	f.photos.On("Create", mock.Anything, mock.Anything).Return(uuid.New(), nil)
	f.queue.On("Acknowledge", mock.Anything, []string{"ack-2", "ack-3"}).Return(nil)

	summary, err := f.service.PullPhotosFromQueue(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Equal(t, "Pulled 3 photo messages: 1 created, 0 updated, 1 discarded, 1 errors.", summary)
	f.queue.AssertExpectations(t)
}

func TestPullPhotosFromQueueCancelledLeavesMessagesUnacknowledged(t *testing.T) {
	f := newTestFixture()
	f.queue.On("Pull", mock.Anything).Return([]*models.PhotoMessage{
		{EventID: testEventID, PhotoURL: photosPrefix + "a.jpg", AckID: "ack-1"},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.PullPhotosFromQueue(ctx, testEventID)

	assert.ErrorIs(t, err, context.Canceled)
	f.queue.AssertNotCalled(t, "Acknowledge", mock.Anything, mock.Anything)
}

func TestPullPhotosFromQueueAcknowledgeFailure(t *testing.T) {
	f := newTestFixture()
	f.queue.On("Pull", mock.Anything).Return([]*models.PhotoMessage{
		{EventID: "event-2", PhotoURL: photosPrefix + "a.jpg", AckID: "ack-1"},
	}, nil)
	f.queue.On("Acknowledge", mock.Anything, []string{"ack-1"}).Return(errors.New("deadline exceeded"))

	_, err := f.service.PullPhotosFromQueue(context.Background(), testEventID)

	assert.ErrorContains(t, err, "deadline exceeded")
}

func TestPushNewPhotosFromFile(t *testing.T) {
	f := newTestFixture()
	dir := t.TempDir()
	main := dir + "/a.jpg"
	crop := dir + "/a_crop.jpg"
	f.files.On("ListPhotos").Return([]string{main, crop, dir + "/b_crop.jpg"}, nil)

	f.storage.On("UploadFile", mock.Anything, testEventID, storage.FolderPhotos, main).Return(photosPrefix+"a.jpg", nil)
	f.storage.On("UploadFile", mock.Anything, testEventID, storage.FolderPhotos, crop).Return(photosPrefix+"a_crop.jpg", nil)
	ai := &models.AIInformation{Persons: 1, AICropNumbers: []int{42}}
	f.analyzer.On("Analyze", mock.Anything, photosPrefix+"a.jpg", photosPrefix+"a_crop.jpg", 0.5).Return(ai, nil)
	f.queue.On("Publish", mock.Anything, mock.MatchedBy(func(msg *models.PhotoMessage) bool {
		return msg.EventID == testEventID &&
			msg.PhotoURL == photosPrefix+"a.jpg" &&
			msg.CropURL == photosPrefix+"a_crop.jpg" &&
			msg.AIInformation == ai &&
			msg.PhotoInfo != nil
	})).Return("msg-1", nil)
	f.files.On("MoveToArchive", "a.jpg").Return(nil)
	f.files.On("MoveToArchive", "a_crop.jpg").Return(errors.New("disk full"))

	summary, err := f.service.PushNewPhotosFromFile(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Equal(t, "Pushed 1 photos to pubsub, errors: 0", summary)
	f.queue.AssertExpectations(t)
	f.files.AssertExpectations(t)
}

func TestPushNewPhotosFromFileCountsErrors(t *testing.T) {
	f := newTestFixture()
	dir := t.TempDir()
	f.files.On("ListPhotos").Return([]string{dir + "/a.jpg", dir + "/a_crop.jpg"}, nil)
	f.storage.On("UploadFile", mock.Anything, testEventID, storage.FolderPhotos, mock.Anything).Return("", errors.New("upload failed"))

	summary, err := f.service.PushNewPhotosFromFile(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Equal(t, "Pushed 0 photos to pubsub, errors: 1", summary)
	f.queue.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	f.files.AssertNotCalled(t, "MoveToArchive", mock.Anything)
}

func TestPushNewPhotosFromFileRequiresCollaborators(t *testing.T) {
	service := NewSyncService(Dependencies{}, newTestLogger())

	_, err := service.PushNewPhotosFromFile(context.Background(), testEventID)

	assert.Error(t, err)
}

func TestPushCapturedVideos(t *testing.T) {
	f := newTestFixture()
	dir := t.TempDir()
	f.captures.On("ListCaptures").Return([]string{dir + "/run1.mp4", dir + "/run2.mp4"}, nil)
	f.storage.On("UploadFile", mock.Anything, testEventID, storage.FolderCapture, dir+"/run1.mp4").
		Return("https://storage.googleapis.com/photos-bucket/event-1/CAPTURE/run1.mp4", nil)
	f.storage.On("UploadFile", mock.Anything, testEventID, storage.FolderCapture, dir+"/run2.mp4").
		Return("", errors.New("upload failed"))
	f.captures.On("MoveToArchive", "run1.mp4").Return(nil)
	f.captures.On("MoveToErrorArchive", "run2.mp4").Return(nil)

	summary, err := f.service.PushCapturedVideos(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Equal(t, "Pushed 1 videos to cloud bucket, errors: 1", summary)
	f.storage.AssertExpectations(t)
	f.captures.AssertExpectations(t)
	f.captures.AssertNotCalled(t, "MoveToArchive", "run2.mp4")
}

func TestPushCapturedVideosArchiveFailureStillCounts(t *testing.T) {
	f := newTestFixture()
	dir := t.TempDir()
	f.captures.On("ListCaptures").Return([]string{dir + "/run1.mp4"}, nil)
	f.storage.On("UploadFile", mock.Anything, testEventID, storage.FolderCapture, dir+"/run1.mp4").
		Return("https://storage.googleapis.com/photos-bucket/event-1/CAPTURE/run1.mp4", nil)
	f.captures.On("MoveToArchive", "run1.mp4").Return(errors.New("disk full"))

	summary, err := f.service.PushCapturedVideos(context.Background(), testEventID)

	require.NoError(t, err)
	assert.Equal(t, "Pushed 1 videos to cloud bucket, errors: 0", summary)
	f.captures.AssertNotCalled(t, "MoveToErrorArchive", mock.Anything)
}

func TestPushCapturedVideosListFailure(t *testing.T) {
	f := newTestFixture()
	f.captures.On("ListCaptures").Return(nil, errors.New("permission denied"))

	_, err := f.service.PushCapturedVideos(context.Background(), testEventID)

	assert.ErrorContains(t, err, "failed to list captured videos")
	f.storage.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPushCapturedVideosCancelled(t *testing.T) {
	f := newTestFixture()
	f.captures.On("ListCaptures").Return([]string{"run1.mp4"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.service.PushCapturedVideos(ctx, testEventID)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Pushed 0 videos to cloud bucket, errors: 0", summary)
	f.storage.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPushCapturedVideosRequiresCollaborators(t *testing.T) {
	service := NewSyncService(Dependencies{Storage: new(MockObjectStorage)}, newTestLogger())

	_, err := service.PushCapturedVideos(context.Background(), testEventID)

	assert.ErrorContains(t, err, "capture mode")
}

func TestSyncMetrics(t *testing.T) {
	m := NewSyncMetrics(SourceQueue)
	m.SetTotal(4)
	m.RecordCreated()
	m.RecordUpdated()
	m.RecordDiscarded()
	m.RecordError()
	m.Finish()

	assert.Contains(t, m.String(), "Source=queue, Total=4, Created=1, Updated=1, Discarded=1, Pushed=0, Errors=1")

	m.Reset()
	assert.Equal(t, 0, m.Created)
	assert.Equal(t, 0, m.Total)
}
